package dashauth

import "sync"

// Listener observes every dispatch. It receives the action and the state
// that resulted from it.
type Listener func(Action, State)

// Store holds State and serializes dispatches.
//
// Listeners run after the new state is published and outside the store lock,
// so a listener may read State or dispatch again.
type Store struct {
	// commitMu orders a dispatch together with its commit hook.
	commitMu  sync.Mutex
	mu        sync.RWMutex
	state     State
	listeners map[uint64]Listener
	order     []uint64
	nextID    uint64
}

// NewStore creates a store seeded with initial.
func NewStore(initial State) *Store {
	return &Store{
		state:     initial.clone(),
		listeners: make(map[uint64]Listener),
	}
}

// Dispatch reduces a into the current state and returns the result.
// A nil action is ignored.
func (s *Store) Dispatch(a Action) State {
	return s.dispatch(a, nil)
}

// dispatch runs commit with the new state before the next dispatch can
// reduce, so whatever commit records follows reducer order. commit must not
// dispatch into s.
func (s *Store) dispatch(a Action, commit func(State)) State {
	if a == nil {
		return s.State()
	}

	s.commitMu.Lock()
	s.mu.Lock()
	s.state = Reduce(s.state, a)
	next := s.state.clone()
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()
	if commit != nil {
		commit(next)
	}
	s.commitMu.Unlock()

	for _, l := range listeners {
		l(a, next.clone())
	}
	return next
}

// State returns a copy of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// Subscribe registers l and returns a function that removes it. Calling the
// returned function more than once is harmless.
func (s *Store) Subscribe(l Listener) func() {
	if l == nil {
		return func() {}
	}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
