// Package hub fans derived state out to subscribers. A Channel keeps the last
// published value and delivers values strictly in publish order. Delivery is
// queued, so a subscriber may publish again (or subscribe) from inside its
// callback without deadlocking.
package hub

import (
	"sync"
	"sync/atomic"
)

type subscriber[T any] struct {
	cb     func(T)
	active atomic.Bool
}

type delivery[T any] struct {
	value T
	subs  []*subscriber[T]
}

// Channel is one state channel.
type Channel[T any] struct {
	mu       sync.Mutex
	value    T
	has      bool
	subs     map[uint64]*subscriber[T]
	next     uint64
	pending  []delivery[T]
	draining bool
}

// NewChannel returns an empty channel.
func NewChannel[T any]() *Channel[T] {
	return &Channel[T]{subs: make(map[uint64]*subscriber[T])}
}

// Current returns the last staged value.
func (c *Channel[T]) Current() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value, c.has
}

// Len returns the number of live subscribers.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Subscribe registers cb for future values and returns an unsubscribe func.
func (c *Channel[T]) Subscribe(cb func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, unsub := c.register(cb)
	return unsub
}

// SubscribeNow delivers the current value (when there is one) to cb and then
// keeps it registered for future values. Reading the value and registering
// happen in one critical section, so nothing published in between is missed
// or delivered out of order.
func (c *Channel[T]) SubscribeNow(cb func(T)) func() {
	c.mu.Lock()
	s, unsub := c.register(cb)
	if c.has {
		c.pending = append(c.pending, delivery[T]{value: c.value, subs: []*subscriber[T]{s}})
	}
	c.mu.Unlock()
	c.Flush()
	return unsub
}

func (c *Channel[T]) register(cb func(T)) (*subscriber[T], func()) {
	id := c.next
	c.next++
	s := &subscriber[T]{cb: cb}
	s.active.Store(true)
	c.subs[id] = s
	var once sync.Once
	return s, func() {
		once.Do(func() {
			s.active.Store(false)
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
		})
	}
}

// Stage records v as the current value and queues it for every current
// subscriber without calling anyone. Callers holding their own locks stage
// first and Flush after releasing them.
func (c *Channel[T]) Stage(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value, c.has = v, true
	if len(c.subs) == 0 {
		return
	}
	subs := make([]*subscriber[T], 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.pending = append(c.pending, delivery[T]{value: v, subs: subs})
}

// Flush delivers queued values. If another Flush is already draining this
// channel (including one further up the current call stack) it returns at
// once and the active drain picks the queue up.
func (c *Channel[T]) Flush() {
	c.mu.Lock()
	if c.draining {
		c.mu.Unlock()
		return
	}
	c.draining = true
	for len(c.pending) > 0 {
		d := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()
		for _, s := range d.subs {
			if s.active.Load() {
				s.cb(d.value)
			}
		}
		c.mu.Lock()
	}
	c.draining = false
	c.mu.Unlock()
}

// Publish stages v and flushes.
func (c *Channel[T]) Publish(v T) {
	c.Stage(v)
	c.Flush()
}
