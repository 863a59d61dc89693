package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hackhub/internal/audit"
	eventmodels "hackhub/internal/event/models"
	"hackhub/internal/platform/metrics"
	"hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/registration")

// RegistrationStore is the persistence port for registrations.
type RegistrationStore interface {
	Create(ctx context.Context, r *models.Registration) error
	FindByID(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	FindForUpdate(ctx context.Context, regID id.RegistrationID) (*models.Registration, error)
	FindByUserAndEvent(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Registration, error)
	UpdateStatus(ctx context.Context, r *models.Registration) error
	CountActive(ctx context.Context, eventID id.EventID) (int, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Registration, error)
	ListByUser(ctx context.Context, userID id.UserID) ([]*models.Registration, error)
}

// EventStore is the slice of the event store admission needs.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
	FindForUpdate(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service is the admission controller. All admissions to one event are
// linearized on the event row lock, so the capacity check and the insert
// observe the same count.
type Service struct {
	registrations  RegistrationStore
	events         EventStore
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

func New(registrations RegistrationStore, events EventStore, opts ...Option) *Service {
	s := &Service{
		registrations: registrations,
		events:        events,
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

var registerRoles = id.Roles(id.RoleParticipant, id.RoleAdmin)

const (
	outcomeAdmitted  = "admitted"
	outcomeFull      = "full"
	outcomeDuplicate = "duplicate"
	outcomeClosed    = "closed"
	outcomeRejected  = "rejected"
)

// Register admits the caller to an event. A caller holds at most one
// registration per event in any state, and admissions never exceed the
// event's capacity.
func (s *Service) Register(ctx context.Context, actor id.Actor, eventID id.EventID, teamName string) (*models.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Register")
	defer span.End()
	defer s.metrics.ObserveOperation("register", time.Now())
	span.SetAttributes(attribute.String("event_id", eventID.String()))

	if err := actor.Gate(registerRoles, "register for events"); err != nil {
		s.metrics.IncRegistration(outcomeRejected)
		return nil, err
	}
	reg, err := models.NewRegistration(id.NewRegistrationID(), actor.ID, eventID, teamName, requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncRegistration(outcomeRejected)
		return nil, asValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.FindForUpdate(txCtx, eventID)
		if err != nil {
			return wrapEventErr(err)
		}
		if !event.AcceptsEntries() {
			return dErrors.New(dErrors.CodeBadRequest, "event is "+string(event.Status)+" and no longer accepts registrations")
		}
		existing, err := s.registrations.FindByUserAndEvent(txCtx, actor.ID, eventID)
		switch {
		case err == nil && existing != nil:
			return dErrors.Conflict(dErrors.ReasonDuplicate, "already registered for this event")
		case err != nil && !errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing registration")
		}
		active, err := s.registrations.CountActive(txCtx, eventID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count registrations")
		}
		if active >= event.MaxParticipants {
			return dErrors.Conflict(dErrors.ReasonFull, "event has reached maximum participants")
		}
		if err := s.registrations.Create(txCtx, reg); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Conflict(dErrors.ReasonDuplicate, "already registered for this event")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create registration")
		}
		return nil
	})
	if err != nil {
		err = tx.DomainError(err)
		s.metrics.IncRegistration(registrationOutcome(err))
		s.logger.InfoContext(ctx, "registration rejected",
			"event_id", eventID,
			"user_id", actor.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, err
	}

	s.metrics.IncRegistration(outcomeAdmitted)
	s.logger.InfoContext(ctx, "registration created",
		"registration_id", reg.ID,
		"event_id", eventID,
		"user_id", actor.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionRegistrationCreated,
		ActorID: actor.ID.String(),
		Subject: reg.ID.String(),
		EventID: eventID.String(),
	})
	return reg, nil
}

// Cancel withdraws a registration and frees its slot. Allowed for the
// registrant, the event organizer and admins.
func (s *Service) Cancel(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error) {
	return s.transition(ctx, actor, regID, models.StatusCancelled, true)
}

// Confirm marks a registration as confirmed. Event organizer or admin only.
func (s *Service) Confirm(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error) {
	return s.transition(ctx, actor, regID, models.StatusConfirmed, false)
}

// Disqualify removes a participant from contention. The slot stays taken.
// Event organizer or admin only.
func (s *Service) Disqualify(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error) {
	return s.transition(ctx, actor, regID, models.StatusDisqualified, false)
}

func (s *Service) transition(ctx context.Context, actor id.Actor, regID id.RegistrationID, next models.Status, registrantAllowed bool) (*models.Registration, error) {
	ctx, span := tracer.Start(ctx, "registration.Transition")
	defer span.End()
	span.SetAttributes(attribute.String("target_status", string(next)))

	var (
		updated  *models.Registration
		previous models.Status
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		reg, err := s.registrations.FindForUpdate(txCtx, regID)
		if err != nil {
			return wrapRegistrationErr(err)
		}
		event, err := s.events.FindByID(txCtx, reg.EventID)
		if err != nil {
			return wrapEventErr(err)
		}
		allowed := event.ManagedBy(actor) || (registrantAllowed && actor.Owns(reg.UserID))
		if !allowed {
			return dErrors.New(dErrors.CodeForbidden, "not allowed to change this registration")
		}
		if err := reg.CanTransitionTo(next); err != nil {
			return asConflict(err)
		}
		previous = reg.Status
		reg.ApplyStatus(next, requestcontext.Now(txCtx))
		if err := s.registrations.UpdateStatus(txCtx, reg); err != nil {
			return wrapRegistrationErr(err)
		}
		updated = reg
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	s.metrics.IncStatusTransition(string(previous), string(next))
	s.emit(ctx, audit.Event{
		Action:  audit.ActionRegistrationStatusChanged,
		ActorID: actor.ID.String(),
		Subject: regID.String(),
		EventID: updated.EventID.String(),
		Detail:  map[string]string{"from": string(previous), "to": string(next)},
	})
	return updated, nil
}

// ListByEvent returns an event's registrations to its organizer or an admin.
func (s *Service) ListByEvent(ctx context.Context, actor id.Actor, eventID id.EventID) ([]*models.Registration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapEventErr(err)
	}
	if !event.ManagedBy(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the event organizer can list registrations")
	}
	regs, err := s.registrations.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
}

// ListMine returns the caller's registrations.
func (s *Service) ListMine(ctx context.Context, actor id.Actor) ([]*models.Registration, error) {
	regs, err := s.registrations.ListByUser(ctx, actor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list registrations")
	}
	return regs, nil
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

func registrationOutcome(err error) string {
	switch {
	case dErrors.ReasonOf(err) == dErrors.ReasonFull:
		return outcomeFull
	case dErrors.ReasonOf(err) == dErrors.ReasonDuplicate:
		return outcomeDuplicate
	case dErrors.HasCode(err, dErrors.CodeBadRequest):
		return outcomeClosed
	default:
		return outcomeRejected
	}
}

func wrapEventErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
}

func wrapRegistrationErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "registration not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

func asConflict(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.Conflict(dErrors.ReasonInvalidState, de.Message)
	}
	return err
}
