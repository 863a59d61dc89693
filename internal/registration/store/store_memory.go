package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

type userEvent struct {
	user  id.UserID
	event id.EventID
}

// InMemory is a map-backed registration store. The (user, event) index
// plays the role of the unique constraint.
type InMemory struct {
	mu          sync.RWMutex
	regs        map[id.RegistrationID]*models.Registration
	byUserEvent map[userEvent]id.RegistrationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		regs:        make(map[id.RegistrationID]*models.Registration),
		byUserEvent: make(map[userEvent]id.RegistrationID),
	}
}

func (s *InMemory) Create(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := userEvent{r.UserID, r.EventID}
	if _, ok := s.byUserEvent[key]; ok {
		return fmt.Errorf("create registration for user %s: %w", r.UserID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.regs[r.ID]; ok {
		return fmt.Errorf("create registration %s: %w", r.ID, sentinel.ErrAlreadyUsed)
	}
	cp := *r
	s.regs[r.ID] = &cp
	s.byUserEvent[key] = r.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, regID id.RegistrationID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.regs[regID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

// FindForUpdate is FindByID; the in-memory runner already serializes writers.
func (s *InMemory) FindForUpdate(ctx context.Context, regID id.RegistrationID) (*models.Registration, error) {
	return s.FindByID(ctx, regID)
}

func (s *InMemory) FindByUserAndEvent(_ context.Context, userID id.UserID, eventID id.EventID) (*models.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	regID, ok := s.byUserEvent[userEvent{userID, eventID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.regs[regID]
	return &cp, nil
}

func (s *InMemory) FindByUserAndEventForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Registration, error) {
	return s.FindByUserAndEvent(ctx, userID, eventID)
}

func (s *InMemory) UpdateStatus(_ context.Context, r *models.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.regs[r.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	existing.Status = r.Status
	existing.UpdatedAt = r.UpdatedAt
	return nil
}

// CountActive counts registrations holding a slot of the event.
func (s *InMemory) CountActive(_ context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, r := range s.regs {
		if r.EventID == eventID && r.Status.HoldsSlot() {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Registration, error) {
	return s.list(func(r *models.Registration) bool { return r.EventID == eventID }), nil
}

func (s *InMemory) ListByUser(_ context.Context, userID id.UserID) ([]*models.Registration, error) {
	return s.list(func(r *models.Registration) bool { return r.UserID == userID }), nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.regs), nil
}

func (s *InMemory) list(match func(*models.Registration) bool) []*models.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Registration, 0)
	for _, r := range s.regs {
		if match(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RegisteredAt.Equal(out[j].RegisteredAt) {
			return out[i].RegisteredAt.Before(out[j].RegisteredAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}
