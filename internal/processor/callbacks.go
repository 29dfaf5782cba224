// SPDX-License-Identifier: MIT
package processor

import (
	"sync"

	applog "github.com/Pierrekw/voiceinput/internal/log"
)

// registry is an append-only observer list. Dispatch is synchronous and
// in registration order; a panicking observer is logged and never
// suppresses delivery to the remaining observers or aborts the caller.
type registry[T any] struct {
	mu  sync.RWMutex
	fns []func(T)
}

// add appends a callback. Registrations are never removed.
func (r *registry[T]) add(fn func(T)) {
	if fn == nil {
		return
	}
	r.mu.Lock()
	r.fns = append(r.fns, fn)
	r.mu.Unlock()
}

func (r *registry[T]) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.fns)
}

// dispatch invokes every registered callback with v, isolating panics per
// callback.
func (r *registry[T]) dispatch(name string, v T) {
	r.mu.RLock()
	fns := r.fns
	r.mu.RUnlock()

	for i, fn := range fns {
		invoke(name, i, fn, v)
	}
}

func invoke[T any](name string, i int, fn func(T), v T) {
	defer func() {
		if rec := recover(); rec != nil {
			applog.Errorf("processor: %s callback %d panicked: %v", name, i, rec)
		}
	}()
	fn(v)
}
