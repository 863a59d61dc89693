package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackhub/internal/event/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

// InMemory is a map-backed event store.
type InMemory struct {
	mu     sync.RWMutex
	events map[id.EventID]*models.Event
}

func NewInMemory() *InMemory {
	return &InMemory{events: make(map[id.EventID]*models.Event)}
}

func (s *InMemory) Create(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; ok {
		return fmt.Errorf("create event %s: %w", e.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(_ context.Context, eventID id.EventID) (*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[eventID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

// FindForUpdate is FindByID; the in-memory runner already serializes writers.
func (s *InMemory) FindForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	return s.FindByID(ctx, eventID)
}

func (s *InMemory) Update(_ context.Context, e *models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[e.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *e
	s.events[e.ID] = &cp
	return nil
}

// List returns matching events ordered by start date, then creation time.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Event, 0, len(s.events))
	for _, e := range s.events {
		if filter.Matches(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}

func (s *InMemory) CountByStatus(_ context.Context) (map[models.Status]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.Status]int)
	for _, e := range s.events {
		counts[e.Status]++
	}
	return counts, nil
}
