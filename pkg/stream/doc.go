// Package stream provides the push-based streams that connect the DOM driver
// to application components.
//
// A Stream[T] is a cold description of a producer. Subscribing with a
// Listener[T] starts it; the returned Subscription stops it. Producers push
// values synchronously with Next and terminate with Error or Complete. After
// termination a listener receives nothing further.
//
// # Core Types
//
// Subject[T] is a hot, multicast producer fed by calling Next:
//
//	clicks := stream.NewSubject[int]()
//	sub := clicks.Stream().Subscribe(stream.Listener[int]{
//	    Next: func(n int) { fmt.Println(n) },
//	})
//	clicks.Next(1)
//	sub.Unsubscribe()
//
// NewMemorySubject replays the latest value to late subscribers.
//
// # Combinators
//
// Map, Filter, Fold, StartWith, Merge and Combine2 cover what isolated
// components need to derive their view from DOM events.
//
// # Thread Safety
//
// Subjects guard their listener list and may be fed from any goroutine, but
// notification runs on the calling goroutine. The DOM driver feeds its
// subjects from a single goroutine.
package stream
