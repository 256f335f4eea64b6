package engine

import (
	"sort"
	"sync"
)

// selection is the set of message ids currently selected for a bulk
// operation. Selection mode is simply "the set is non-empty".
type selection struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func (s *selection) init() { s.ids = make(map[string]struct{}) }

func (s *selection) toggle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *selection) drop(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.ids, id)
	}
}

func (s *selection) list() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *selection) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = make(map[string]struct{})
}

// ToggleSelect flips selection for one id and reports the new state.
func (e *Engine) ToggleSelect(id string) bool { return e.sel.toggle(id) }

// Selected returns the selected ids in stable order.
func (e *Engine) Selected() []string { return e.sel.list() }

// SelectionMode reports whether any message is selected.
func (e *Engine) SelectionMode() bool { return len(e.sel.list()) > 0 }

// ClearSelection empties the selection set.
func (e *Engine) ClearSelection() { e.sel.clear() }
