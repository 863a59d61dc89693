package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"hackhub/internal/audit"
	eventmodels "hackhub/internal/event/models"
	idmodels "hackhub/internal/identity/models"
	"hackhub/internal/judging/models"
	"hackhub/internal/platform/metrics"
	projectmodels "hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/judging")

// AssignmentStore is the persistence port for judge assignments.
type AssignmentStore interface {
	Create(ctx context.Context, a *models.Assignment) error
	FindForUpdate(ctx context.Context, userID id.UserID, eventID id.EventID) (*models.Assignment, error)
	UpdateWorkload(ctx context.Context, a *models.Assignment) error
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Assignment, error)
}

// ProjectStore is the slice of the project store evaluation needs.
type ProjectStore interface {
	FindForUpdate(ctx context.Context, projectID id.ProjectID) (*projectmodels.Project, error)
	Update(ctx context.Context, p *projectmodels.Project) error
}

// EventStore is the slice of the event store judge assignment needs.
type EventStore interface {
	FindByID(ctx context.Context, eventID id.EventID) (*eventmodels.Event, error)
}

// UserDirectory looks up the account behind a judge candidate.
type UserDirectory interface {
	FindUser(ctx context.Context, userID id.UserID) (*idmodels.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Evaluation is a judge's verdict on a project.
type Evaluation struct {
	ProjectID id.ProjectID
	// EventID optionally names the event the caller believes the project
	// belongs to. A mismatch is rejected.
	EventID  id.EventID
	Score    int
	Feedback string
}

// Service is the evaluation engine: it scores projects and enforces the
// per-judge workload cap.
type Service struct {
	assignments    AssignmentStore
	projects       ProjectStore
	events         EventStore
	users          UserDirectory
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

func New(assignments AssignmentStore, projects ProjectStore, events EventStore, users UserDirectory, opts ...Option) *Service {
	s := &Service{
		assignments: assignments,
		projects:    projects,
		events:      events,
		users:       users,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewInMemory()
	}
	return s
}

var (
	evaluateRoles = id.Roles(id.RoleJudge, id.RoleAdmin)
	judgeRoles    = id.Roles(id.RoleJudge, id.RoleAdmin)
)

// Evaluate scores a project. The project write and the workload increment
// commit together or not at all. Admins without an assignment may evaluate
// and consume no workload.
func (s *Service) Evaluate(ctx context.Context, actor id.Actor, in Evaluation) (*projectmodels.Project, error) {
	ctx, span := tracer.Start(ctx, "judging.Evaluate")
	defer span.End()
	defer s.metrics.ObserveOperation("evaluate_project", time.Now())
	span.SetAttributes(attribute.String("project_id", in.ProjectID.String()))

	if !projectmodels.ValidScore(in.Score) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "score must be between 0 and 100")
	}
	if utf8.RuneCountInString(in.Feedback) > projectmodels.MaxFeedbackLength {
		return nil, dErrors.New(dErrors.CodeValidation, "feedback must be at most 2000 characters")
	}
	if err := actor.Gate(evaluateRoles, "evaluate projects"); err != nil {
		return nil, err
	}

	var (
		evaluated *projectmodels.Project
		workload  *models.Assignment
	)
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.projects.FindForUpdate(txCtx, in.ProjectID)
		if err != nil {
			return wrapNotFound(err, "project not found", "failed to load project")
		}
		if !in.EventID.IsNil() && in.EventID != p.EventID {
			return dErrors.New(dErrors.CodeBadRequest, "project does not belong to the given event")
		}

		assignment, err := s.assignments.FindForUpdate(txCtx, actor.ID, p.EventID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			if !actor.IsAdmin() {
				return dErrors.New(dErrors.CodeForbidden, "you are not assigned to judge this event")
			}
		case err != nil:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load judge assignment")
		case !assignment.CanEvaluate():
			return dErrors.Conflict(dErrors.ReasonWorkloadCap,
				"judge has reached the limit of "+strconv.Itoa(models.WorkloadCap)+" evaluations for this event")
		}

		if err := p.ApplyEvaluation(in.Score, in.Feedback, actor.ID, requestcontext.Now(txCtx)); err != nil {
			return asValidation(err)
		}
		if err := s.projects.Update(txCtx, p); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save evaluation")
		}
		if assignment != nil {
			if err := assignment.RecordEvaluation(); err != nil {
				return dErrors.Conflict(dErrors.ReasonWorkloadCap, "judge has reached the workload cap")
			}
			if err := s.assignments.UpdateWorkload(txCtx, assignment); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record workload")
			}
		}
		evaluated = p
		workload = assignment
		return nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "evaluation rejected",
			"project_id", in.ProjectID,
			"judge_id", actor.ID,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return nil, tx.DomainError(err)
	}

	s.metrics.IncEvaluation(string(evaluated.Status))
	attrs := []any{
		"project_id", evaluated.ID,
		"judge_id", actor.ID,
		"score", evaluated.Score,
		"status", evaluated.Status,
		"request_id", requestcontext.RequestID(ctx),
	}
	if workload != nil {
		attrs = append(attrs, "remaining_workload", workload.Remaining())
	}
	s.logger.InfoContext(ctx, "project evaluated", attrs...)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionProjectEvaluated,
		ActorID: actor.ID.String(),
		Subject: evaluated.ID.String(),
		EventID: evaluated.EventID.String(),
		Detail:  map[string]string{"score": strconv.Itoa(evaluated.Score), "status": string(evaluated.Status)},
	})
	return evaluated, nil
}

// AssignJudge grants a judge the right to evaluate an event's projects.
// Event organizer or admin only.
func (s *Service) AssignJudge(ctx context.Context, actor id.Actor, eventID id.EventID, judgeID id.UserID, expertise string) (*models.Assignment, error) {
	ctx, span := tracer.Start(ctx, "judging.AssignJudge")
	defer span.End()

	a, err := models.NewAssignment(id.NewAssignmentID(), judgeID, eventID, expertise, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		event, err := s.events.FindByID(txCtx, eventID)
		if err != nil {
			return wrapNotFound(err, "event not found", "failed to load event")
		}
		if !event.ManagedBy(actor) {
			return dErrors.New(dErrors.CodeForbidden, "only the event organizer can assign judges")
		}
		if event.Status.IsTerminal() {
			return dErrors.New(dErrors.CodeBadRequest, "event is "+string(event.Status))
		}
		judge, err := s.users.FindUser(txCtx, judgeID)
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return dErrors.New(dErrors.CodeBadRequest, "judge user does not exist")
			}
			return err
		}
		if !judge.Active || !judgeRoles.Allows(judge.Role) {
			return dErrors.New(dErrors.CodeBadRequest, "user is not an active judge")
		}
		if err := s.assignments.Create(txCtx, a); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Conflict(dErrors.ReasonDuplicate, "judge is already assigned to this event")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to assign judge")
		}
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	s.logger.InfoContext(ctx, "judge assigned",
		"event_id", eventID,
		"judge_id", judgeID,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{
		Action:  audit.ActionJudgeAssigned,
		ActorID: actor.ID.String(),
		Subject: judgeID.String(),
		EventID: eventID.String(),
	})
	return a, nil
}

// ListAssignments returns an event's judges. Event organizer or admin only.
func (s *Service) ListAssignments(ctx context.Context, actor id.Actor, eventID id.EventID) ([]*models.Assignment, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, wrapNotFound(err, "event not found", "failed to load event")
	}
	if !event.ManagedBy(actor) {
		return nil, dErrors.New(dErrors.CodeForbidden, "only the event organizer can list judges")
	}
	out, err := s.assignments.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list assignments")
	}
	return out, nil
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

func wrapNotFound(err error, notFound, internal string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, notFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, internal)
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}
