package services

import (
	"sync"

	"github.com/SscSPs/exchange_desk/internal/core/domain"
)

// SelectionStore holds the form's currency pair and tab.
// Observers always see whole snapshots; Swap changes both sides in one update.
type SelectionStore struct {
	mu        sync.Mutex
	current   domain.Selection
	observers map[int]func(domain.Selection)
	nextID    int
}

// NewSelectionStore starts at domain.DefaultSelection.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		current:   domain.DefaultSelection(),
		observers: make(map[int]func(domain.Selection)),
	}
}

// Current returns a snapshot of the selection.
func (s *SelectionStore) Current() domain.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetSource sets the source currency. Source and target may coincide until the
// caller adjusts the other side; quotes and orders validate the pair.
func (s *SelectionStore) SetSource(c domain.Currency) {
	s.update(func(sel *domain.Selection) { sel.Source = c })
}

func (s *SelectionStore) SetTarget(c domain.Currency) {
	s.update(func(sel *domain.Selection) { sel.Target = c })
}

func (s *SelectionStore) SetTab(t domain.Tab) {
	s.update(func(sel *domain.Selection) { sel.Tab = t })
}

// Set replaces the whole selection in one update.
func (s *SelectionStore) Set(next domain.Selection) {
	s.update(func(sel *domain.Selection) { *sel = next })
}

// Swap exchanges source and target atomically.
func (s *SelectionStore) Swap() {
	s.update(func(sel *domain.Selection) { sel.Source, sel.Target = sel.Target, sel.Source })
}

// Reset restores {KRW, USD, receive}.
func (s *SelectionStore) Reset() {
	s.update(func(sel *domain.Selection) { *sel = domain.DefaultSelection() })
}

// Subscribe registers fn for every change and returns an unsubscribe func.
func (s *SelectionStore) Subscribe(fn func(domain.Selection)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *SelectionStore) update(mutate func(*domain.Selection)) {
	s.mu.Lock()
	prev := s.current
	mutate(&s.current)
	next := s.current
	observers := make([]func(domain.Selection), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.mu.Unlock()

	if next == prev {
		return
	}
	for _, fn := range observers {
		fn(next)
	}
}
