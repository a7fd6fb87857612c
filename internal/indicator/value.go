// Package indicator computes technical indicators over ordered numeric series.
//
// Every function is pure: it allocates a new output slice aligned
// index-for-index with its input and never touches the input. Cells that
// cannot be computed yet (warm-up of a rolling window, a zero denominator)
// are returned as undefined Values rather than NaN, so callers have to
// decide explicitly what an undefined cell means.
package indicator

// Value is one indicator cell, either a defined float or undefined.
// The zero Value is undefined.
type Value struct {
	v       float64
	defined bool
}

func Defined(v float64) Value { return Value{v: v, defined: true} }

func Undefined() Value { return Value{} }

// Get returns the cell value and whether it is defined.
func (x Value) Get() (float64, bool) { return x.v, x.defined }

func (x Value) IsDefined() bool { return x.defined }

// Or returns the value if defined, otherwise def.
func (x Value) Or(def float64) float64 {
	if x.defined {
		return x.v
	}
	return def
}

// Lag shifts a series forward by k cells; the first k cells become undefined.
// Lag(xs, 1)[i] == xs[i-1].
func Lag(xs []Value, k int) []Value {
	out := make([]Value, len(xs))
	if k < 0 {
		k = 0
	}
	for i := k; i < len(xs); i++ {
		out[i] = xs[i-k]
	}
	return out
}

// Floats wraps a plain series as fully defined cells.
func Floats(xs []float64) []Value {
	out := make([]Value, len(xs))
	for i, x := range xs {
		out[i] = Defined(x)
	}
	return out
}
