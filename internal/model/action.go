package model

// Signal is the per-bar strategy decision: -1 short, 0 flat, +1 long.
type Signal int

const (
	Short Signal = -1
	Flat  Signal = 0
	Long  Signal = 1
)

// Action is a human-friendly name for a position.
// Keep these values stable; they are intended for CSV output.
type Action string

const (
	ActionLong  Action = "LONG"
	ActionFlat  Action = "FLAT"
	ActionShort Action = "SHORT"
)

func ActionFromPosition(pos Signal) Action {
	switch {
	case pos > 0:
		return ActionLong
	case pos < 0:
		return ActionShort
	default:
		return ActionFlat
	}
}
