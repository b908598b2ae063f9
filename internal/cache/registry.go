// Package cache deduplicates compiled expressions by identity.
//
// A Registry publishes at most one artifact per identity, however many
// goroutines ask for it at once. Concurrent requests for an identity that is
// not yet published share one compilation; the loser of any remaining race
// discards its work and receives the published artifact.
package cache

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Registry maps identities to published artifacts.
type Registry[T any] struct {
	entries   sync.Map // identity -> T
	group     singleflight.Group
	published atomic.Int64
	onPublish func(id string, v T)
}

// NewRegistry creates an empty registry. onPublish, if not nil, is called
// once per published identity, right after the artifact becomes visible to
// Get. The call that published it returns only after onPublish does.
func NewRegistry[T any](onPublish func(id string, v T)) *Registry[T] {
	return &Registry[T]{onPublish: onPublish}
}

// Get returns the artifact published under id.
func (r *Registry[T]) Get(id string) (T, bool) {
	v, ok := r.entries.Load(id)
	if !ok {
		var zero T
		return zero, false
	}
	return v.(T), true
}

// GetOrCompile returns the artifact published under id, calling compile to
// build it if there is none. published reports whether this call published
// the artifact. Errors are returned to every waiting caller but never
// stored, so a later call compiles again.
func (r *Registry[T]) GetOrCompile(id string, compile func() (T, error)) (v T, published bool, err error) {
	if v, ok := r.Get(id); ok {
		return v, false, nil
	}

	res, err, _ := r.group.Do(id, func() (any, error) {
		if v, ok := r.entries.Load(id); ok {
			return v, nil
		}
		v, err := compile()
		if err != nil {
			return nil, err
		}
		actual, loaded := r.entries.LoadOrStore(id, v)
		if !loaded {
			published = true
			r.published.Add(1)
			if r.onPublish != nil {
				r.onPublish(id, v)
			}
		}
		return actual, nil
	})
	if err != nil {
		var zero T
		return zero, false, err
	}
	return res.(T), published, nil
}

// Invalidate removes the artifact published under id.
func (r *Registry[T]) Invalidate(id string) {
	r.entries.Delete(id)
	r.group.Forget(id)
}

// Clear removes every artifact.
func (r *Registry[T]) Clear() {
	r.entries.Clear()
}

// Len returns the number of artifacts currently held.
func (r *Registry[T]) Len() int {
	n := 0
	r.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Published returns how many artifacts have been published since the
// registry was created, counting republished identities again.
func (r *Registry[T]) Published() int64 {
	return r.published.Load()
}
