package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackhub/internal/judging/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

type userEvent struct {
	user  id.UserID
	event id.EventID
}

// InMemory is a map-backed assignment store keyed by (judge, event).
type InMemory struct {
	mu          sync.RWMutex
	assignments map[userEvent]*models.Assignment
}

func NewInMemory() *InMemory {
	return &InMemory{assignments: make(map[userEvent]*models.Assignment)}
}

func (s *InMemory) Create(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userEvent{a.UserID, a.EventID}
	if _, ok := s.assignments[key]; ok {
		return fmt.Errorf("assign judge %s: %w", a.UserID, sentinel.ErrAlreadyUsed)
	}
	cp := *a
	s.assignments[key] = &cp
	return nil
}

func (s *InMemory) FindByUserAndEvent(_ context.Context, userID id.UserID, eventID id.EventID) (*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.assignments[userEvent{userID, eventID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// FindForUpdate is FindByUserAndEvent; the in-memory runner already
// serializes writers.
func (s *InMemory) FindForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Assignment, error) {
	return s.FindByUserAndEvent(ctx, userID, eventID)
}

func (s *InMemory) IsAssigned(_ context.Context, userID id.UserID, eventID id.EventID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assignments[userEvent{userID, eventID}]
	return ok, nil
}

// UpdateWorkload persists the evaluation counter.
func (s *InMemory) UpdateWorkload(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.assignments[userEvent{a.UserID, a.EventID}]
	if !ok {
		return sentinel.ErrNotFound
	}
	if a.EvaluationsPerformed > models.WorkloadCap {
		return fmt.Errorf("update workload: %w", sentinel.ErrInvalidState)
	}
	existing.EvaluationsPerformed = a.EvaluationsPerformed
	return nil
}

func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Assignment, 0)
	for _, a := range s.assignments {
		if a.EventID == eventID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].AssignedAt.Equal(out[j].AssignedAt) {
			return out[i].AssignedAt.Before(out[j].AssignedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}
