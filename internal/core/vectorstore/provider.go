package vectorstore

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Provider opens the store backend at most once per process. Concurrent
// first callers collapse into a single open via singleflight, so two
// ingestions racing at startup cannot double-initialize the client handle.
type Provider struct {
	open func(ctx context.Context) (Store, error)

	sf    singleflight.Group
	mu    sync.RWMutex
	store Store
}

func NewProvider(open func(ctx context.Context) (Store, error)) *Provider {
	return &Provider{open: open}
}

// NewStaticProvider wraps an already constructed store. Used by the memory
// backend and by tests.
func NewStaticProvider(store Store) *Provider {
	return &Provider{store: store}
}

// Get returns the process-lifetime store, opening it on first use. A failed
// open is not cached; the next caller retries.
func (p *Provider) Get(ctx context.Context) (Store, error) {
	p.mu.RLock()
	store := p.store
	p.mu.RUnlock()
	if store != nil {
		return store, nil
	}

	v, err, _ := p.sf.Do("open", func() (any, error) {
		p.mu.RLock()
		existing := p.store
		p.mu.RUnlock()
		if existing != nil {
			return existing, nil
		}
		s, err := p.open(ctx)
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.store = s
		p.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Store), nil
}

// Close tears down the backend if it was ever opened.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.store == nil {
		return nil
	}
	err := p.store.Close()
	p.store = nil
	return err
}
