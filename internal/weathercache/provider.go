// Weather Dashboard - Historical Weather Caching and Resilience
// Copyright 2026 kamaleshsk123
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kamaleshsk123/Weather-Dashboard

package weathercache

import (
	"context"
	"sync"
	"sync/atomic"
)

// InitFunc builds the Manager on first use.
type InitFunc func(ctx context.Context) (*Manager, error)

// ManagerSource yields the Manager once it is ready, without blocking.
type ManagerSource interface {
	Current() (*Manager, bool)
}

// Provider owns the process-wide Manager. Concurrent first callers of Get
// share one initialization; a failed initialization is retried by the next
// Get.
type Provider struct {
	init InitFunc

	mu     sync.Mutex
	closed bool
	ready  atomic.Pointer[Manager]
}

var _ ManagerSource = (*Provider)(nil)

// NewProvider returns a Provider that initializes with init.
func NewProvider(init InitFunc) *Provider {
	return &Provider{init: init}
}

// NewProviderWithOptions returns a Provider that opens a Manager from opts.
func NewProviderWithOptions(opts Options) *Provider {
	return NewProvider(func(ctx context.Context) (*Manager, error) {
		return Open(ctx, opts)
	})
}

// Get returns the Manager, initializing it if needed.
func (p *Provider) Get(ctx context.Context) (*Manager, error) {
	if m := p.ready.Load(); m != nil {
		return m, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if m := p.ready.Load(); m != nil {
		return m, nil
	}
	if p.closed {
		return nil, ErrClosed
	}

	m, err := p.init(ctx)
	if err != nil {
		return nil, err
	}
	p.ready.Store(m)
	return m, nil
}

// Current returns the Manager if initialization has completed.
func (p *Provider) Current() (*Manager, bool) {
	m := p.ready.Load()
	return m, m != nil
}

// Close closes the Manager, if any. Later Get calls return ErrClosed.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	m := p.ready.Swap(nil)
	if m == nil {
		return nil
	}
	return m.Close()
}
