package service

import (
	"context"
	"time"

	eventmodels "hackhub/internal/event/models"
	projectmodels "hackhub/internal/project/models"
	regmodels "hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

// adminTopProjects is how many ranked projects the admin dashboard carries.
const adminTopProjects = 10

var (
	participantDashboardRoles = id.Roles(id.RoleParticipant, id.RoleAdmin)
	organizerDashboardRoles   = id.Roles(id.RoleOrganizer, id.RoleAdmin)
	adminDashboardRoles       = id.Roles(id.RoleAdmin)
)

// ParticipantDashboard is what a participant has entered and what is still
// open to enter.
type ParticipantDashboard struct {
	Registrations []*regmodels.Registration `json:"registrations"`
	Projects      []*projectmodels.Project  `json:"projects"`
	OpenEvents    []*eventmodels.Event      `json:"open_events"`
}

// OrganizerDashboard totals the events an organizer runs. Participants count
// active registrations only.
type OrganizerDashboard struct {
	Events            []eventmodels.Details `json:"events"`
	TotalEvents       int                   `json:"total_events"`
	TotalParticipants int                   `json:"total_participants"`
	TotalProjects     int                   `json:"total_projects"`
}

type AdminDashboard struct {
	Stats
	TopProjects []Entry `json:"top_projects"`
}

// ParticipantDashboard lists the actor's registrations and projects, plus the
// events still taking entries.
func (s *Service) ParticipantDashboard(ctx context.Context, actor id.Actor) (*ParticipantDashboard, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.ParticipantDashboard")
	defer span.End()
	defer s.metrics.ObserveOperation("participant_dashboard", time.Now())

	if err := actor.Gate(participantDashboardRoles, "view the participant dashboard"); err != nil {
		return nil, err
	}
	regs, err := s.registrations.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	projects, err := s.projects.ListBySubmitter(ctx, actor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	events, err := s.events.List(ctx, eventmodels.ListFilter{})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}

	d := &ParticipantDashboard{
		Registrations: nonNil(regs),
		Projects:      nonNil(projects),
		OpenEvents:    make([]*eventmodels.Event, 0, len(events)),
	}
	for _, e := range events {
		if e.AcceptsEntries() {
			d.OpenEvents = append(d.OpenEvents, e)
		}
	}
	return d, nil
}

// OrganizerDashboard summarizes every event the actor organizes.
func (s *Service) OrganizerDashboard(ctx context.Context, actor id.Actor) (*OrganizerDashboard, error) {
	ctx, span := tracer.Start(ctx, "leaderboard.OrganizerDashboard")
	defer span.End()
	defer s.metrics.ObserveOperation("organizer_dashboard", time.Now())

	if err := actor.Gate(organizerDashboardRoles, "view the organizer dashboard"); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, eventmodels.ListFilter{OrganizerID: actor.ID})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}

	d := &OrganizerDashboard{Events: make([]eventmodels.Details, 0, len(events))}
	for _, e := range events {
		regs, err := s.registrations.CountActive(ctx, e.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
		}
		projects, err := s.projects.CountByEvent(ctx, e.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count projects")
		}
		d.Events = append(d.Events, eventmodels.Details{Event: *e, RegistrationCount: regs, ProjectCount: projects})
		d.TotalParticipants += regs
		d.TotalProjects += projects
	}
	d.TotalEvents = len(d.Events)
	return d, nil
}

// AdminDashboard is the platform statistics plus the current top projects.
func (s *Service) AdminDashboard(ctx context.Context, actor id.Actor) (*AdminDashboard, error) {
	if err := actor.Gate(adminDashboardRoles, "view the admin dashboard"); err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	top, err := s.Leaderboard(ctx, Filter{Limit: adminTopProjects})
	if err != nil {
		return nil, err
	}
	return &AdminDashboard{Stats: *stats, TopProjects: top}, nil
}

func nonNil[T any](xs []*T) []*T {
	if xs == nil {
		return []*T{}
	}
	return xs
}
