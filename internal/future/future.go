// Package future implements the one-shot promise used throughout the
// resolver and builder's fan-out scheduling: each task's result is
// placed once into a Future that
// any number of dependent tasks can block on, without the futures map
// itself staying locked for the duration of the work.
package future

import "sync"

// Future is a one-shot container for a value of type T. Exactly one
// goroutine is expected to call Resolve; any number may call Wait.
type Future[T any] struct {
	done  chan struct{}
	once  sync.Once
	value T
}

// New returns an unresolved Future.
func New[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve sets the future's value and unblocks all waiters. Only the first
// call has an effect; later calls are silently ignored, matching a
// one-shot promise's semantics.
func (f *Future[T]) Resolve(v T) {
	f.once.Do(func() {
		f.value = v
		close(f.done)
	})
}

// Wait blocks until the future is resolved and returns its value.
func (f *Future[T]) Wait() T {
	<-f.done
	return f.value
}

// Done returns a channel that closes once the future resolves, for callers
// that need to select against cancellation alongside it.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Map is a concurrent, append-only map of key to Future, guarded by a
// single short-held mutex for insertion only — once a Future is obtained,
// waiting on it never holds the map lock. GetOrCreate is the only way to
// insert: the first caller for a given key creates and stores a fresh
// Future; later callers observe the same one and simply wait on it. Get
// looks up an existing Future without creating one.
type Map[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*Future[V]
}

// NewMap returns an empty Map.
func NewMap[K comparable, V any]() *Map[K, V] {
	return &Map[K, V]{m: make(map[K]*Future[V])}
}

// GetOrCreate returns the Future for key, creating and inserting a new one
// under the lock if none exists yet. created reports whether this call is
// the one that created it, so the caller knows whether it, not someone
// else, is responsible for resolving it.
func (m *Map[K, V]) GetOrCreate(key K) (f *Future[V], created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.m[key]; ok {
		return existing, false
	}
	f = New[V]()
	m.m[key] = f
	return f, true
}

// Get returns the Future for key if one has already been created.
func (m *Map[K, V]) Get(key K) (*Future[V], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.m[key]
	return f, ok
}
