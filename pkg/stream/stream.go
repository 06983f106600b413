package stream

import "sync"

// Listener receives the notifications of one subscription.
// Nil callbacks are ignored.
type Listener[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// Producer starts pushing into l and returns the function that stops it.
// The returned function may be nil when there is nothing to release.
type Producer[T any] func(l Listener[T]) func()

// Stream is a cold, push-based sequence of values.
// The zero Stream is invalid; see Valid.
type Stream[T any] struct {
	produce Producer[T]
}

// New creates a stream from a producer.
func New[T any](produce Producer[T]) Stream[T] {
	return Stream[T]{produce: produce}
}

// Valid reports whether the stream was built from a producer.
func (s Stream[T]) Valid() bool {
	return s.produce != nil
}

// Subscribe starts the stream and delivers its notifications to l.
// Subscribing to an invalid stream returns an already-closed subscription.
func (s Stream[T]) Subscribe(l Listener[T]) *Subscription {
	sub := &Subscription{}
	if s.produce == nil {
		sub.closed = true
		return sub
	}

	sk := &sink[T]{out: l, sub: sub}
	teardown := s.produce(Listener[T]{
		Next:     sk.next,
		Error:    sk.error,
		Complete: sk.complete,
	})
	sub.attach(teardown)
	return sub
}

// Subscription stops a running stream.
type Subscription struct {
	mu       sync.Mutex
	closed   bool
	teardown func()
}

// attach records the producer's teardown. If the stream already terminated
// while starting, the teardown runs immediately.
func (s *Subscription) attach(teardown func()) {
	s.mu.Lock()
	if !s.closed {
		s.teardown = teardown
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	if teardown != nil {
		teardown()
	}
}

// Unsubscribe stops the stream. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	teardown := s.teardown
	s.teardown = nil
	s.mu.Unlock()

	if teardown != nil {
		teardown()
	}
}

// Closed reports whether the subscription was stopped or its stream ended.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// sink enforces the listener contract: nothing after Error or Complete.
type sink[T any] struct {
	out Listener[T]
	sub *Subscription
}

func (k *sink[T]) next(v T) {
	if k.sub.Closed() {
		return
	}
	if k.out.Next != nil {
		k.out.Next(v)
	}
}

func (k *sink[T]) error(err error) {
	if k.sub.Closed() {
		return
	}
	if k.out.Error != nil {
		k.out.Error(err)
	}
	k.sub.Unsubscribe()
}

func (k *sink[T]) complete() {
	if k.sub.Closed() {
		return
	}
	if k.out.Complete != nil {
		k.out.Complete()
	}
	k.sub.Unsubscribe()
}

// Of emits the given values then completes.
func Of[T any](values ...T) Stream[T] {
	return New(func(l Listener[T]) func() {
		for _, v := range values {
			l.Next(v)
		}
		l.Complete()
		return nil
	})
}

// Empty completes immediately.
func Empty[T any]() Stream[T] {
	return Of[T]()
}

// Never emits nothing and never terminates.
func Never[T any]() Stream[T] {
	return New(func(Listener[T]) func() { return nil })
}

// Throw errors immediately with err.
func Throw[T any](err error) Stream[T] {
	return New(func(l Listener[T]) func() {
		l.Error(err)
		return nil
	})
}
