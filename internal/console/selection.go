package console

import (
	"fmt"
	"sync"
)

// Selection tracks which sub-orders on the currently loaded page are checked.
// Membership is restricted to loaded ids: loading a new page prunes every
// selected id that is no longer visible.
type Selection struct {
	mu     sync.Mutex
	loaded map[string]struct{}
	order  []string
	chosen map[string]struct{}
}

// NewSelection constructs an empty selection.
func NewSelection() *Selection {
	return &Selection{
		loaded: make(map[string]struct{}),
		chosen: make(map[string]struct{}),
	}
}

// SetLoaded replaces the set of selectable ids and prunes stale selections.
func (s *Selection) SetLoaded(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loaded = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s.loaded[id] = struct{}{}
	}

	kept := s.order[:0]
	for _, id := range s.order {
		if _, ok := s.loaded[id]; ok {
			kept = append(kept, id)
			continue
		}
		delete(s.chosen, id)
	}
	s.order = kept
}

// Select marks a loaded sub-order as chosen.
func (s *Selection) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.loaded[id]; !ok {
		return fmt.Errorf("console: sub-order %s is not on the loaded page", id)
	}
	if _, ok := s.chosen[id]; ok {
		return nil
	}
	s.chosen[id] = struct{}{}
	s.order = append(s.order, id)
	return nil
}

// Deselect unchecks a sub-order; unknown ids are ignored.
func (s *Selection) Deselect(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.chosen[id]; !ok {
		return
	}
	delete(s.chosen, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Toggle flips the checked state, returning the new state.
func (s *Selection) Toggle(id string) (bool, error) {
	s.mu.Lock()
	_, chosen := s.chosen[id]
	s.mu.Unlock()

	if chosen {
		s.Deselect(id)
		return false, nil
	}
	if err := s.Select(id); err != nil {
		return false, err
	}
	return true, nil
}

// IDs returns the chosen ids in selection order.
func (s *Selection) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Len reports how many sub-orders are chosen.
func (s *Selection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Clear drops every chosen id, keeping the loaded set.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chosen = make(map[string]struct{})
	s.order = nil
}
