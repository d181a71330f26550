package hub

import "sync"

// Registry keeps one Channel per key. Channels are created on first
// subscription and dropped as soon as their last subscriber leaves or their
// key is retired.
type Registry[K comparable, T any] struct {
	mu       sync.Mutex
	channels map[K]*Channel[T]
	retired  []*Channel[T]
}

// NewRegistry returns an empty registry.
func NewRegistry[K comparable, T any]() *Registry[K, T] {
	return &Registry[K, T]{channels: make(map[K]*Channel[T])}
}

// Subscribe registers cb for values staged under key.
func (r *Registry[K, T]) Subscribe(key K, cb func(T)) func() {
	r.mu.Lock()
	ch, ok := r.channels[key]
	if !ok {
		ch = NewChannel[T]()
		r.channels[key] = ch
	}
	unsub := ch.Subscribe(cb)
	r.mu.Unlock()

	return func() {
		unsub()
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.channels[key]; ok && cur == ch && ch.Len() == 0 {
			delete(r.channels, key)
		}
	}
}

// Stage queues v for the subscribers of key. Keys nobody listens to are
// ignored.
func (r *Registry[K, T]) Stage(key K, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ch, ok := r.channels[key]; ok {
		ch.Stage(v)
	}
}

// Retire stages a final value for key and forgets its listeners.
func (r *Registry[K, T]) Retire(key K, final T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch, ok := r.channels[key]
	if !ok {
		return
	}
	ch.Stage(final)
	delete(r.channels, key)
	r.retired = append(r.retired, ch)
}

// Flush delivers everything staged since the last flush.
func (r *Registry[K, T]) Flush() {
	r.mu.Lock()
	chans := make([]*Channel[T], 0, len(r.channels)+len(r.retired))
	for _, ch := range r.channels {
		chans = append(chans, ch)
	}
	chans = append(chans, r.retired...)
	r.retired = nil
	r.mu.Unlock()
	for _, ch := range chans {
		ch.Flush()
	}
}

// Keys returns the number of keys with live listeners.
func (r *Registry[K, T]) Keys() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.channels)
}
