package linker

import "sync"

// sink is an append-only collection shared by pool workers
type sink[T any] struct {
	mu    sync.Mutex
	items []T
}

func (s *sink[T]) add(item T) {
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
}

// drain returns the collected items; call it after the workers are done
func (s *sink[T]) drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := s.items
	s.items = nil
	return items
}
