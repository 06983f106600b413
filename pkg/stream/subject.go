package stream

import "sync"

// Subject is a hot stream fed imperatively. Every subscriber sees the values
// pushed after it subscribed; a memory subject also replays the latest one.
type Subject[T any] struct {
	mu       sync.RWMutex
	subs     []*subjectEntry[T]
	nextID   uint64
	done     bool
	err      error
	remember bool
	last     T
	hasLast  bool
}

type subjectEntry[T any] struct {
	id uint64
	l  Listener[T]
}

// NewSubject creates a subject without replay.
func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// NewMemorySubject creates a subject that replays its latest value to new
// subscribers.
func NewMemorySubject[T any]() *Subject[T] {
	return &Subject[T]{remember: true}
}

// Stream returns the subject as a Stream.
func (s *Subject[T]) Stream() Stream[T] {
	return New(func(l Listener[T]) func() {
		s.mu.Lock()
		if s.done {
			err := s.err
			s.mu.Unlock()
			if err != nil {
				l.Error(err)
			} else {
				l.Complete()
			}
			return nil
		}
		s.nextID++
		id := s.nextID
		s.subs = append(s.subs, &subjectEntry[T]{id: id, l: l})
		last, replay := s.last, s.remember && s.hasLast
		s.mu.Unlock()

		if replay {
			l.Next(last)
		}
		return func() { s.remove(id) }
	})
}

// remove drops a subscriber, preserving the order of the rest.
func (s *Subject[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.subs {
		if e.id == id {
			s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
			return
		}
	}
}

// snapshot copies the subscriber list so notification runs without the lock.
func (s *Subject[T]) snapshot() []*subjectEntry[T] {
	subs := make([]*subjectEntry[T], len(s.subs))
	copy(subs, s.subs)
	return subs
}

// Next pushes v to every current subscriber.
func (s *Subject[T]) Next(v T) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	if s.remember {
		s.last, s.hasLast = v, true
	}
	subs := s.snapshot()
	s.mu.Unlock()

	for _, e := range subs {
		e.l.Next(v)
	}
}

// Error terminates the subject with err.
func (s *Subject[T]) Error(err error) {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done, s.err = true, err
	subs := s.snapshot()
	s.subs = nil
	s.mu.Unlock()

	for _, e := range subs {
		e.l.Error(err)
	}
}

// Complete terminates the subject.
func (s *Subject[T]) Complete() {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return
	}
	s.done = true
	subs := s.snapshot()
	s.subs = nil
	s.mu.Unlock()

	for _, e := range subs {
		e.l.Complete()
	}
}

// Latest returns the remembered value, if any.
func (s *Subject[T]) Latest() (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last, s.hasLast
}

// Len returns the number of active subscribers.
func (s *Subject[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
