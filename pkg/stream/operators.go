package stream

// Map transforms every value of s with fn.
func Map[T, R any](s Stream[T], fn func(T) R) Stream[R] {
	if !s.Valid() {
		return Stream[R]{}
	}
	return New(func(l Listener[R]) func() {
		sub := s.Subscribe(Listener[T]{
			Next:     func(v T) { l.Next(fn(v)) },
			Error:    l.Error,
			Complete: l.Complete,
		})
		return sub.Unsubscribe
	})
}

// Filter passes only the values for which keep returns true.
func Filter[T any](s Stream[T], keep func(T) bool) Stream[T] {
	if !s.Valid() {
		return Stream[T]{}
	}
	return New(func(l Listener[T]) func() {
		sub := s.Subscribe(Listener[T]{
			Next: func(v T) {
				if keep(v) {
					l.Next(v)
				}
			},
			Error:    l.Error,
			Complete: l.Complete,
		})
		return sub.Unsubscribe
	})
}

// Fold emits seed, then the accumulation of every value of s.
func Fold[T, A any](s Stream[T], seed A, fn func(A, T) A) Stream[A] {
	if !s.Valid() {
		return Stream[A]{}
	}
	return New(func(l Listener[A]) func() {
		acc := seed
		l.Next(acc)
		sub := s.Subscribe(Listener[T]{
			Next: func(v T) {
				acc = fn(acc, v)
				l.Next(acc)
			},
			Error:    l.Error,
			Complete: l.Complete,
		})
		return sub.Unsubscribe
	})
}

// StartWith emits first before the values of s.
func StartWith[T any](s Stream[T], first T) Stream[T] {
	if !s.Valid() {
		return Stream[T]{}
	}
	return New(func(l Listener[T]) func() {
		l.Next(first)
		sub := s.Subscribe(l)
		return sub.Unsubscribe
	})
}

// Merge interleaves the values of all streams. It completes once every input
// has completed and errors as soon as one input errors.
func Merge[T any](streams ...Stream[T]) Stream[T] {
	return New(func(l Listener[T]) func() {
		remaining := len(streams)
		if remaining == 0 {
			l.Complete()
			return nil
		}
		subs := make([]*Subscription, 0, len(streams))
		for _, s := range streams {
			subs = append(subs, s.Subscribe(Listener[T]{
				Next:  l.Next,
				Error: l.Error,
				Complete: func() {
					remaining--
					if remaining == 0 {
						l.Complete()
					}
				},
			}))
		}
		return func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}
	})
}

// Combine2 emits fn(a, b) with the latest value of each input once both have
// emitted at least once.
func Combine2[A, B, R any](a Stream[A], b Stream[B], fn func(A, B) R) Stream[R] {
	if !a.Valid() || !b.Valid() {
		return Stream[R]{}
	}
	return New(func(l Listener[R]) func() {
		var (
			lastA      A
			lastB      B
			hasA, hasB bool
			remaining  = 2
		)
		done := func() {
			remaining--
			if remaining == 0 {
				l.Complete()
			}
		}
		subA := a.Subscribe(Listener[A]{
			Next: func(v A) {
				lastA, hasA = v, true
				if hasB {
					l.Next(fn(lastA, lastB))
				}
			},
			Error:    l.Error,
			Complete: done,
		})
		subB := b.Subscribe(Listener[B]{
			Next: func(v B) {
				lastB, hasB = v, true
				if hasA {
					l.Next(fn(lastA, lastB))
				}
			},
			Error:    l.Error,
			Complete: done,
		})
		return func() {
			subA.Unsubscribe()
			subB.Unsubscribe()
		}
	})
}

// CombineAll emits the latest values of every input, in input order, once
// each has emitted at least once. No inputs emits one empty slice.
func CombineAll[T any](streams ...Stream[T]) Stream[[]T] {
	return New(func(l Listener[[]T]) func() {
		n := len(streams)
		if n == 0 {
			l.Next(nil)
			l.Complete()
			return nil
		}
		latest := make([]T, n)
		seen := make([]bool, n)
		pending, remaining := n, n
		subs := make([]*Subscription, 0, n)
		for i, s := range streams {
			i := i
			subs = append(subs, s.Subscribe(Listener[T]{
				Next: func(v T) {
					latest[i] = v
					if !seen[i] {
						seen[i] = true
						pending--
					}
					if pending == 0 {
						out := make([]T, n)
						copy(out, latest)
						l.Next(out)
					}
				},
				Error: l.Error,
				Complete: func() {
					remaining--
					if remaining == 0 {
						l.Complete()
					}
				},
			}))
		}
		return func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}
	})
}
