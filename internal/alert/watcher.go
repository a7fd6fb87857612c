package alert

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"signal-backtest/internal/metrics"
	"signal-backtest/internal/model"
	"signal-backtest/internal/notify"
)

const minErrorWait = 2 * time.Second

type PriceSource interface {
	LastPrice(ctx context.Context, symbol string) (float64, error)
}

type Config struct {
	Symbol     string
	Thresholds Thresholds
	Interval   time.Duration
}

// Event is a state transition. Previous is empty for the first observation.
type Event struct {
	Symbol   string
	Price    float64
	State    State
	Previous State
	At       time.Time
}

func (e Event) Message() string { return Message(e.Symbol, e.Price, e.State) }

// Watcher polls a PriceSource and emits an Event only when the classified
// state differs from the last one seen. High and low transitions are pushed
// to the notifier; every transition is logged.
type Watcher struct {
	cfg      Config
	source   PriceSource
	notifier notify.Notifier
	log      zerolog.Logger
	metrics  *metrics.Metrics

	last    State
	started bool

	errorWait time.Duration
	now       func() time.Time
}

// NewWatcher validates cfg. notifier and m may be nil.
func NewWatcher(cfg Config, source PriceSource, notifier notify.Notifier, log zerolog.Logger, m *metrics.Metrics) (*Watcher, error) {
	if source == nil {
		return nil, fmt.Errorf("%w: alert needs a price source", model.ErrInvalidParameter)
	}
	if cfg.Symbol == "" {
		return nil, fmt.Errorf("%w: alert symbol is required", model.ErrInvalidParameter)
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("%w: alert interval must be positive, got %s", model.ErrInvalidParameter, cfg.Interval)
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return nil, err
	}

	errorWait := cfg.Interval
	if errorWait < minErrorWait {
		errorWait = minErrorWait
	}
	return &Watcher{
		cfg:       cfg,
		source:    source,
		notifier:  notifier,
		log:       log.With().Str("component", "alert").Str("symbol", cfg.Symbol).Logger(),
		metrics:   m,
		errorWait: errorWait,
		now:       time.Now,
	}, nil
}

// State returns the last observed state and whether anything was observed.
func (w *Watcher) State() (State, bool) { return w.last, w.started }

// Observe classifies price and reports the transition, if any.
func (w *Watcher) Observe(ctx context.Context, price float64) (Event, bool) {
	state := Classify(price, w.cfg.Thresholds)
	if w.started && state == w.last {
		return Event{}, false
	}

	ev := Event{
		Symbol:   w.cfg.Symbol,
		Price:    price,
		State:    state,
		Previous: w.last,
		At:       w.now().UTC(),
	}
	w.last = state
	w.started = true

	w.log.Info().
		Float64("price", price).
		Str("state", string(state)).
		Str("previous", string(ev.Previous)).
		Msg(ev.Message())
	w.metrics.ObserveAlert(w.cfg.Symbol, string(state))

	if w.notifier != nil && (state == StateHigh || state == StateLow) {
		if err := w.notifier.Notify(ctx, ev.Message()); err != nil {
			w.log.Warn().Err(err).Msg("notification failed")
		}
	}
	return ev, true
}

// Poll fetches the current price once and observes it.
func (w *Watcher) Poll(ctx context.Context) (Event, bool, error) {
	price, err := w.source.LastPrice(ctx, w.cfg.Symbol)
	if err != nil {
		return Event{}, false, err
	}
	ev, changed := w.Observe(ctx, price)
	return ev, changed, nil
}

// Run polls until ctx is done. Fetch errors are logged and retried after
// max(2s, interval); they never stop the loop.
func (w *Watcher) Run(ctx context.Context, events chan<- Event) error {
	w.log.Info().
		Dur("interval", w.cfg.Interval).
		Str("thresholds", w.cfg.Thresholds.String()).
		Msg("watching")

	for {
		wait := w.cfg.Interval
		ev, changed, err := w.Poll(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.log.Error().Err(err).Msg("price fetch failed")
			wait = w.errorWait
		case changed && events != nil:
			select {
			case events <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
