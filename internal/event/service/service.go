package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hackhub/internal/audit"
	"hackhub/internal/event/models"
	"hackhub/internal/platform/metrics"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/event")

// EventStore is the persistence port for events.
type EventStore interface {
	Create(ctx context.Context, e *models.Event) error
	FindByID(ctx context.Context, eventID id.EventID) (*models.Event, error)
	FindForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error)
	Update(ctx context.Context, e *models.Event) error
	List(ctx context.Context, filter models.ListFilter) ([]*models.Event, error)
	CountByStatus(ctx context.Context) (map[models.Status]int, error)
}

// RegistrationCounter reports how many slots of an event are taken.
type RegistrationCounter interface {
	CountActive(ctx context.Context, eventID id.EventID) (int, error)
}

// ProjectCounter reports how many projects an event has received.
type ProjectCounter interface {
	CountByEvent(ctx context.Context, eventID id.EventID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service owns the event lifecycle: creation, edits and status transitions.
type Service struct {
	events         EventStore
	registrations  RegistrationCounter
	projects       ProjectCounter
	tx             tx.Runner
	logger         *slog.Logger
	metrics        *metrics.Metrics
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithTx(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func New(events EventStore, registrations RegistrationCounter, projects ProjectCounter, opts ...Option) *Service {
	s := &Service{
		events:        events,
		registrations: registrations,
		projects:      projects,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewInMemory()
	}
	return s
}

var manageEvents = id.Roles(id.RoleOrganizer, id.RoleAdmin)

// CreateEvent creates an UPCOMING event organized by the caller.
func (s *Service) CreateEvent(ctx context.Context, actor id.Actor, fields models.Fields) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.CreateEvent")
	defer span.End()
	defer s.metrics.ObserveOperation("create_event", time.Now())

	if err := actor.Gate(manageEvents, "create events"); err != nil {
		return nil, err
	}
	e, err := models.NewEvent(id.NewEventID(), actor.ID, fields, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.events.Create(txCtx, e); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create event")
		}
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	span.SetAttributes(attribute.String("event_id", e.ID.String()))
	s.logger.InfoContext(ctx, "event created",
		"event_id", e.ID,
		"organizer_id", e.OrganizerID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionEventCreated,
		ActorID: actor.ID.String(),
		Subject: e.ID.String(),
		EventID: e.ID.String(),
	})
	return e, nil
}

// UpdateEvent replaces the editable fields of an event. The event row stays
// locked for the whole unit of work so capacity cannot shrink below the
// registrations admitted concurrently.
func (s *Service) UpdateEvent(ctx context.Context, actor id.Actor, eventID id.EventID, fields models.Fields) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.UpdateEvent")
	defer span.End()
	defer s.metrics.ObserveOperation("update_event", time.Now())

	if err := actor.Gate(manageEvents, "edit events"); err != nil {
		return nil, err
	}
	fields.Normalize()
	if err := fields.Check(); err != nil {
		return nil, asValidation(err)
	}

	var updated *models.Event
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !e.ManagedBy(actor) {
			return dErrors.New(dErrors.CodeForbidden, "only the event organizer can edit this event")
		}
		if err := e.CanEdit(); err != nil {
			return asBadRequest(err)
		}
		active, err := s.registrations.CountActive(txCtx, eventID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
		}
		if fields.MaxParticipants < active {
			return dErrors.Conflict(dErrors.ReasonFull,
				"max participants cannot drop below "+strconv.Itoa(active)+" active registrations")
		}
		e.ApplyFields(fields, requestcontext.Now(txCtx))
		if err := s.events.Update(txCtx, e); err != nil {
			return wrapEventErr(err)
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	s.emit(ctx, audit.Event{
		Action:  audit.ActionEventUpdated,
		ActorID: actor.ID.String(),
		Subject: eventID.String(),
		EventID: eventID.String(),
	})
	return updated, nil
}

// UpdateStatus moves an event along its lifecycle. Only the organizer who
// owns the event, or an admin, may do so; holding the ORGANIZER role is not
// enough.
func (s *Service) UpdateStatus(ctx context.Context, actor id.Actor, eventID id.EventID, next models.Status) (*models.Event, error) {
	ctx, span := tracer.Start(ctx, "event.UpdateStatus")
	defer span.End()
	defer s.metrics.ObserveOperation("update_event_status", time.Now())

	if !next.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid event status")
	}
	if err := actor.Gate(manageEvents, "change event status"); err != nil {
		return nil, err
	}

	var (
		updated  *models.Event
		previous models.Status
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		e, err := s.findForUpdate(txCtx, eventID)
		if err != nil {
			return err
		}
		if !e.ManagedBy(actor) {
			return dErrors.New(dErrors.CodeForbidden, "only the event organizer can change its status")
		}
		if err := e.CanTransitionTo(next); err != nil {
			return asBadRequest(err)
		}
		previous = e.Status
		e.ApplyStatus(next, requestcontext.Now(txCtx))
		if err := s.events.Update(txCtx, e); err != nil {
			return wrapEventErr(err)
		}
		updated = e
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "event status change rejected",
			"event_id", eventID,
			"actor_id", actor.ID,
			"target_status", next,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, tx.DomainError(err)
	}

	s.metrics.IncStatusTransition(string(previous), string(next))
	s.logger.InfoContext(ctx, "event status changed",
		"event_id", eventID,
		"from", previous,
		"to", next,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionEventStatusChanged,
		ActorID: actor.ID.String(),
		Subject: eventID.String(),
		EventID: eventID.String(),
		Detail:  map[string]string{"from": string(previous), "to": string(next)},
	})
	return updated, nil
}

// GetEvent returns an event with its registration and project counts.
func (s *Service) GetEvent(ctx context.Context, eventID id.EventID) (*models.Details, error) {
	e, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	regs, err := s.registrations.CountActive(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
	}
	projects, err := s.projects.CountByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count projects")
	}
	return &models.Details{Event: *e, RegistrationCount: regs, ProjectCount: projects}, nil
}

// ListEvents returns events ordered by start date.
func (s *Service) ListEvents(ctx context.Context, filter models.ListFilter) ([]*models.Event, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid event status")
	}
	events, err := s.events.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list events")
	}
	return events, nil
}

// CountByStatus feeds the platform statistics.
func (s *Service) CountByStatus(ctx context.Context) (map[models.Status]int, error) {
	counts, err := s.events.CountByStatus(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count events")
	}
	return counts, nil
}

func (s *Service) findForUpdate(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	e, err := s.events.FindForUpdate(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	return e, nil
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditPublisher == nil {
		return
	}
	if err := s.auditPublisher.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed",
			"action", e.Action,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}

func wrapEventErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

// asBadRequest reports a lifecycle move the event does not allow. It is a
// request the caller should not have made, not a race with another writer.
func asBadRequest(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeBadRequest, de.Message)
	}
	return err
}
