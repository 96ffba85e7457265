package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Lazy opens a Store on first use and shares it afterwards. Concurrent first
// callers join one initialization. A failed attempt is reported to everyone
// who joined it and the next caller tries again.
type Lazy struct {
	opts Options
	open func(context.Context, Options) (*Store, error)

	group singleflight.Group
	mu    sync.RWMutex
	store *Store
}

// NewLazy returns a Lazy that opens the store described by opts.
func NewLazy(opts Options) *Lazy {
	return &Lazy{opts: opts, open: Open}
}

// Get returns the shared store, opening it if needed. The open runs detached
// from the caller's cancellation since other callers may be waiting on it.
func (l *Lazy) Get(ctx context.Context) (*Store, error) {
	if s := l.loaded(); s != nil {
		return s, nil
	}

	v, err, _ := l.group.Do("open", func() (any, error) {
		if s := l.loaded(); s != nil {
			return s, nil
		}
		s, err := l.open(context.WithoutCancel(ctx), l.opts)
		if err != nil {
			return nil, err
		}
		l.mu.Lock()
		l.store = s
		l.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Store), nil
}

func (l *Lazy) loaded() *Store {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.store
}

// Close closes the shared store if it was opened. A later Get reopens it.
func (l *Lazy) Close() error {
	l.mu.Lock()
	s := l.store
	l.store = nil
	l.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close()
}

var (
	defaultOnce sync.Once
	defaultLazy *Lazy
)

// Default returns the process-wide Lazy. Only the options of the first call
// are used.
func Default(opts Options) *Lazy {
	defaultOnce.Do(func() {
		defaultLazy = NewLazy(opts)
	})
	return defaultLazy
}
