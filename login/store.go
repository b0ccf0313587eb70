package login

import "sync"

// subscriberBuffer is the per-subscriber channel capacity. A subscriber that
// falls behind loses the oldest queued states, never the newest.
const subscriberBuffer = 16

// Store holds the current State and fans every transition out to
// subscribers. All updates are serialized under one mutex.
type Store struct {
	mu     sync.Mutex
	state  State
	subs   map[uint64]chan State
	nextID uint64
	closed bool
}

// NewStore returns a store starting at initial.
func NewStore(initial State) *Store {
	return &Store{
		state: initial,
		subs:  make(map[uint64]chan State),
	}
}

// State returns the current snapshot.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dispatch applies ev through Reduce and publishes the result when the state
// changed. It returns the resulting state and whether a transition happened.
func (s *Store) Dispatch(ev Event) (State, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := Reduce(s.state, ev)
	if next == s.state {
		return s.state, false
	}
	s.state = next
	for _, ch := range s.subs {
		publish(ch, next)
	}
	return next, true
}

// Subscribe returns a channel that first receives the current state and then
// every later transition in order. The channel is closed by cancel or Close.
func (s *Store) Subscribe() (<-chan State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State, subscriberBuffer)
	if s.closed {
		ch <- s.state
		close(ch)
		return ch, func() {}
	}

	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.state

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close closes every subscriber channel. Later subscriptions receive the
// final state and are closed immediately.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// publish never blocks: on a full buffer the oldest queued state is dropped.
func publish(ch chan State, st State) {
	select {
	case ch <- st:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- st:
	default:
	}
}
