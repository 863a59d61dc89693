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
	"hackhub/internal/project/models"
	regmodels "hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/project")

// ProjectStore is the persistence port for projects.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	FindByID(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	FindForUpdate(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	FindBySubmitterAndEvent(ctx context.Context, submitter id.UserID, eventID id.EventID) (*models.Project, error)
	Update(ctx context.Context, p *models.Project) error
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Project, error)
	ListBySubmitter(ctx context.Context, submitter id.UserID) ([]*models.Project, error)
}

// EventStore is the slice of the event store submission needs.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

// RegistrationLocker locks the caller's registration for the unit of work.
type RegistrationLocker interface {
	FindByUserAndEventForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*regmodels.Registration, error)
}

// JudgeDirectory answers whether a user judges an event.
type JudgeDirectory interface {
	IsAssigned(ctx context.Context, userID id.UserID, eventID id.EventID) (bool, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service is the submission gate: only registered participants of an open
// event submit, once each.
type Service struct {
	projects       ProjectStore
	events         EventStore
	registrations  RegistrationLocker
	judges         JudgeDirectory
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

func New(projects ProjectStore, events EventStore, registrations RegistrationLocker, judges JudgeDirectory, opts ...Option) *Service {
	s := &Service{
		projects:      projects,
		events:        events,
		registrations: registrations,
		judges:        judges,
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

var submitRoles = id.Roles(id.RoleParticipant, id.RoleAdmin)

// Submit records the caller's project for an event. The caller's
// registration row is locked so it cannot be cancelled mid-submission.
func (s *Service) Submit(ctx context.Context, actor id.Actor, eventID id.EventID, fields models.Fields) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "project.Submit")
	defer span.End()
	defer s.metrics.ObserveOperation("submit_project", time.Now())
	span.SetAttributes(attribute.String("event_id", eventID.String()))

	if err := actor.Gate(submitRoles, "submit projects"); err != nil {
		s.metrics.IncSubmission("rejected")
		return nil, err
	}
	p, err := models.NewProject(id.NewProjectID(), eventID, actor.ID, fields, requestcontext.Now(ctx))
	if err != nil {
		s.metrics.IncSubmission("rejected")
		return nil, asValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.FindByID(txCtx, eventID)
		if err != nil {
			return wrapEventErr(err)
		}
		if !event.AcceptsEntries() {
			return dErrors.New(dErrors.CodeBadRequest, "event is "+string(event.Status)+" and no longer accepts submissions")
		}
		reg, err := s.registrations.FindByUserAndEventForUpdate(txCtx, actor.ID, eventID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return dErrors.Conflict(dErrors.ReasonNotRegistered, "you must be registered for this event to submit")
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load registration")
		case !reg.CanSubmit():
			return dErrors.Conflict(dErrors.ReasonNotRegistered, "registration is "+string(reg.Status))
		}
		if _, err := s.projects.FindBySubmitterAndEvent(txCtx, actor.ID, eventID); err == nil {
			return dErrors.Conflict(dErrors.ReasonDuplicate, "you already submitted a project for this event")
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing project")
		}
		if err := s.projects.Create(txCtx, p); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Conflict(dErrors.ReasonDuplicate, "you already submitted a project for this event")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create project")
		}
		return nil
	})
	if err != nil {
		err = tx.DomainError(err)
		s.metrics.IncSubmission(submissionOutcome(err))
		return nil, err
	}

	s.metrics.IncSubmission("accepted")
	s.logger.InfoContext(ctx, "project submitted",
		"project_id", p.ID,
		"event_id", eventID,
		"submitter_id", actor.ID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionProjectSubmitted,
		ActorID: actor.ID.String(),
		Subject: p.ID.String(),
		EventID: eventID.String(),
	})
	return p, nil
}

// MarkUnderReview moves a fresh submission into review. Allowed for the
// event organizer, a judge assigned to the event, and admins.
func (s *Service) MarkUnderReview(ctx context.Context, actor id.Actor, projectID id.ProjectID) (*models.Project, error) {
	ctx, span := tracer.Start(ctx, "project.MarkUnderReview")
	defer span.End()

	var updated *models.Project
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.projects.FindForUpdate(txCtx, projectID)
		if err != nil {
			return wrapProjectErr(err)
		}
		event, err := s.events.FindByID(txCtx, p.EventID)
		if err != nil {
			return wrapEventErr(err)
		}
		if !event.ManagedBy(actor) {
			assigned, err := s.judges.IsAssigned(txCtx, actor.ID, p.EventID)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check judge assignment")
			}
			if !assigned {
				return dErrors.New(dErrors.CodeForbidden, "not allowed to review this project")
			}
		}
		if err := p.CanMarkUnderReview(); err != nil {
			return asConflict(err)
		}
		p.ApplyStatus(models.StatusUnderReview, requestcontext.Now(txCtx))
		if err := s.projects.Update(txCtx, p); err != nil {
			return wrapProjectErr(err)
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	s.metrics.IncStatusTransition(string(models.StatusSubmitted), string(models.StatusUnderReview))
	s.emit(ctx, audit.Event{
		Action:  audit.ActionProjectStatusChanged,
		ActorID: actor.ID.String(),
		Subject: projectID.String(),
		EventID: updated.EventID.String(),
		Detail:  map[string]string{"from": string(models.StatusSubmitted), "to": string(models.StatusUnderReview)},
	})
	return updated, nil
}

// GetProject returns a single project.
func (s *Service) GetProject(ctx context.Context, projectID id.ProjectID) (*models.Project, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, wrapProjectErr(err)
	}
	return p, nil
}

// ListByEvent returns an event's projects in submission order.
func (s *Service) ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Project, error) {
	if _, err := s.events.FindByID(ctx, eventID); err != nil {
		return nil, wrapEventErr(err)
	}
	projects, err := s.projects.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
}

// ListMine returns the caller's projects.
func (s *Service) ListMine(ctx context.Context, actor id.Actor) ([]*models.Project, error) {
	projects, err := s.projects.ListBySubmitter(ctx, actor.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list projects")
	}
	return projects, nil
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

func submissionOutcome(err error) string {
	switch dErrors.ReasonOf(err) {
	case dErrors.ReasonDuplicate:
		return "duplicate"
	case dErrors.ReasonNotRegistered:
		return "not_registered"
	}
	if dErrors.HasCode(err, dErrors.CodeBadRequest) {
		return "closed"
	}
	return "rejected"
}

func wrapEventErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load event")
}

func wrapProjectErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "project not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load project")
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
