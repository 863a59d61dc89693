package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

type submitterEvent struct {
	submitter id.UserID
	event     id.EventID
}

// InMemory is a map-backed project store. The (submitter, event) index
// plays the role of the unique constraint.
type InMemory struct {
	mu               sync.RWMutex
	projects         map[id.ProjectID]*models.Project
	bySubmitterEvent map[submitterEvent]id.ProjectID
}

func NewInMemory() *InMemory {
	return &InMemory{
		projects:         make(map[id.ProjectID]*models.Project),
		bySubmitterEvent: make(map[submitterEvent]id.ProjectID),
	}
}

func (s *InMemory) Create(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := submitterEvent{p.SubmitterID, p.EventID}
	if _, ok := s.bySubmitterEvent[key]; ok {
		return fmt.Errorf("create project for submitter %s: %w", p.SubmitterID, sentinel.ErrAlreadyUsed)
	}
	if _, ok := s.projects[p.ID]; ok {
		return fmt.Errorf("create project %s: %w", p.ID, sentinel.ErrAlreadyUsed)
	}
	s.projects[p.ID] = clone(p)
	s.bySubmitterEvent[key] = p.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, projectID id.ProjectID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[projectID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(p), nil
}

// FindForUpdate is FindByID; the in-memory runner already serializes writers.
func (s *InMemory) FindForUpdate(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	return s.FindByID(ctx, projectID)
}

func (s *InMemory) FindBySubmitterAndEvent(_ context.Context, submitter id.UserID, eventID id.EventID) (*models.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projectID, ok := s.bySubmitterEvent[submitterEvent{submitter, eventID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.projects[projectID]), nil
}

func (s *InMemory) Update(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.projects[p.ID] = clone(p)
	return nil
}

func (s *InMemory) CountByEvent(_ context.Context, eventID id.EventID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.projects {
		if p.EventID == eventID {
			n++
		}
	}
	return n, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.projects), nil
}

func (s *InMemory) ListByEvent(_ context.Context, eventID id.EventID) ([]*models.Project, error) {
	out := s.filter(func(p *models.Project) bool { return p.EventID == eventID })
	sortBySubmission(out)
	return out, nil
}

func (s *InMemory) ListBySubmitter(_ context.Context, submitter id.UserID) ([]*models.Project, error) {
	out := s.filter(func(p *models.Project) bool { return p.SubmitterID == submitter })
	sortBySubmission(out)
	return out, nil
}

// Ranked returns projects ordered by score descending, then submission time,
// then ID. A nil eventID ranks across all events; limit <= 0 means no limit.
func (s *InMemory) Ranked(_ context.Context, eventID id.EventID, limit int) ([]*models.Project, error) {
	out := s.filter(func(p *models.Project) bool { return eventID.IsNil() || p.EventID == eventID })
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.SubmittedAt.Equal(b.SubmittedAt) {
			return a.SubmittedAt.Before(b.SubmittedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemory) filter(match func(*models.Project) bool) []*models.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Project, 0)
	for _, p := range s.projects {
		if match(p) {
			out = append(out, clone(p))
		}
	}
	return out
}

func sortBySubmission(out []*models.Project) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.Before(out[j].SubmittedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
}

func clone(p *models.Project) *models.Project {
	cp := *p
	if p.EvaluatedAt != nil {
		t := *p.EvaluatedAt
		cp.EvaluatedAt = &t
	}
	return &cp
}
