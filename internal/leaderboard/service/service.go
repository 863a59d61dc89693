// Package service computes the public standings, platform statistics and the
// per-role dashboards. Reads only; nothing here takes a lock or starts a unit
// of work.
package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"

	eventmodels "hackhub/internal/event/models"
	"hackhub/internal/platform/metrics"
	projectmodels "hackhub/internal/project/models"
	regmodels "hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/leaderboard")

// ProjectRanker returns projects ordered by score descending, submission
// time ascending, then ID.
type ProjectRanker interface {
	Ranked(ctx context.Context, eventID id.EventID, limit int) ([]*projectmodels.Project, error)
	Count(ctx context.Context) (int, error)
	CountByEvent(ctx context.Context, eventID id.EventID) (int, error)
	ListBySubmitter(ctx context.Context, submitter id.UserID) ([]*projectmodels.Project, error)
}

type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	CountByStatus(ctx context.Context) (map[eventmodels.Status]int, error)
	List(ctx context.Context, filter eventmodels.ListFilter) ([]*eventmodels.Event, error)
}

type UserCounter interface {
	Count(ctx context.Context) (int, error)
}

type RegistrationCounter interface {
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, eventID id.EventID) (int, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*regmodels.Registration, error)
}

// Filter narrows the leaderboard. A nil EventID ranks across all events;
// Limit <= 0 returns every project.
type Filter struct {
	EventID id.EventID
	Limit   int
}

// Entry is one ranked project.
type Entry struct {
	Rank        int                  `json:"rank"`
	ProjectID   id.ProjectID         `json:"project_id"`
	Title       string               `json:"title"`
	Score       int                  `json:"score"`
	Status      projectmodels.Status `json:"status"`
	EventID     id.EventID           `json:"event_id"`
	EventName   string               `json:"event_name"`
	SubmitterID id.UserID            `json:"submitter_id"`
	SubmittedAt time.Time            `json:"submitted_at"`
}

// Stats are platform-wide totals.
type Stats struct {
	TotalUsers         int                        `json:"total_users"`
	TotalEvents        int                        `json:"total_events"`
	EventsByStatus     map[eventmodels.Status]int `json:"events_by_status"`
	TotalProjects      int                        `json:"total_projects"`
	TotalRegistrations int                        `json:"total_registrations"`
}

type Service struct {
	projects      ProjectRanker
	events        EventStore
	users         UserCounter
	registrations RegistrationCounter
	metrics       *metrics.Metrics
}

type Option func(*Service)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(projects ProjectRanker, events EventStore, users UserCounter, registrations RegistrationCounter, opts ...Option) *Service {
	s := &Service{
		projects:      projects,
		events:        events,
		users:         users,
		registrations: registrations,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Leaderboard ranks projects. Ties on score go to the earlier submission;
// the project ID breaks any remaining tie so the order is total.
func (s *Service) Leaderboard(ctx context.Context, filter Filter) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.Leaderboard")
	defer span.End()
	defer s.metrics.ObserveOperation("leaderboard", time.Now())

	if !filter.EventID.IsNil() {
		if _, err := s.events.FindByID(ctx, filter.EventID); err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "event not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
		}
	}
	projects, err := s.projects.Ranked(ctx, filter.EventID, filter.Limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to rank projects")
	}

	names := make(map[id.EventID]string)
	entries := make([]Entry, 0, len(projects))
	for i, p := range projects {
		name, ok := names[p.EventID]
		if !ok {
			e, err := s.events.FindByID(ctx, p.EventID)
			if err != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
			}
			name = e.Name
			names[p.EventID] = name
		}
		entries = append(entries, Entry{
			Rank:        i + 1,
			ProjectID:   p.ID,
			Title:       p.Title,
			Score:       p.Score,
			Status:      p.Status,
			EventID:     p.EventID,
			EventName:   name,
			SubmitterID: p.SubmitterID,
			SubmittedAt: p.SubmittedAt,
		})
	}
	return entries, nil
}

// Stats returns platform-wide totals.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.Stats")
	defer span.End()

	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	byStatus, err := s.events.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count events")
	}
	projects, err := s.projects.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count projects")
	}
	registrations, err := s.registrations.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
	}

	stats := &Stats{
		TotalUsers:         users,
		EventsByStatus:     make(map[eventmodels.Status]int, 4),
		TotalProjects:      projects,
		TotalRegistrations: registrations,
	}
	for _, status := range []eventmodels.Status{
		eventmodels.StatusUpcoming, eventmodels.StatusActive, eventmodels.StatusCompleted, eventmodels.StatusCancelled,
	} {
		stats.EventsByStatus[status] = byStatus[status]
		stats.TotalEvents += byStatus[status]
	}
	return stats, nil
}
