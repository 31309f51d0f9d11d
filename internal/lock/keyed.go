// Package lock serializes work on a single key within one process.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Domenick1991/officeseats/internal/domain"
)

type entry struct {
	sem  chan struct{}
	refs int
}

// Keyed is a set of mutexes addressed by string key. Entries exist only while
// someone holds or waits for them.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
	maxWait time.Duration
}

// NewKeyed returns a Keyed lock. A positive maxWait bounds how long Lock waits.
func NewKeyed(maxWait time.Duration) *Keyed {
	return &Keyed{entries: make(map[string]*entry), maxWait: maxWait}
}

// Lock blocks until key is free, ctx is done or maxWait elapses.
func (k *Keyed) Lock(ctx context.Context, key string) (func(), error) {
	k.mu.Lock()
	e, ok := k.entries[key]
	if !ok {
		e = &entry{sem: make(chan struct{}, 1)}
		k.entries[key] = e
	}
	e.refs++
	k.mu.Unlock()

	if k.maxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, k.maxWait)
		defer cancel()
	}

	select {
	case e.sem <- struct{}{}:
	case <-ctx.Done():
		k.release(key, e)
		return nil, fmt.Errorf("%w: %s", domain.ErrLockTimeout, key)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-e.sem
			k.release(key, e)
		})
	}, nil
}

func (k *Keyed) release(key string, e *entry) {
	k.mu.Lock()
	defer k.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(k.entries, key)
	}
}
