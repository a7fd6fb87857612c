package data

import (
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Pool hands out one client per exchange name, created on first use and
// wrapped in the shared cache when one is configured.
type Pool struct {
	opts  Options
	cache Cache
	log   zerolog.Logger

	mu      sync.Mutex
	clients map[string]Exchange
}

// NewPool returns a pool. cache may be nil to disable caching.
func NewPool(opts Options, cache Cache) *Pool {
	return &Pool{
		opts:    opts,
		cache:   cache,
		log:     opts.logger("exchange_pool"),
		clients: make(map[string]Exchange),
	}
}

func (p *Pool) Get(name string) (Exchange, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		key = "binance"
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if ex, ok := p.clients[key]; ok {
		return ex, nil
	}

	ex, err := NewExchange(key, p.opts)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		ex = NewCachedExchange(ex, p.cache, p.opts.logger("candle_cache"), p.opts.Metrics)
	}
	p.clients[key] = ex
	return ex, nil
}

// Put registers ex under its name, replacing any existing client.
func (p *Pool) Put(ex Exchange) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.clients[strings.ToLower(ex.Name())] = ex
}
