package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"

	"hackhub/internal/audit"
	"hackhub/internal/identity/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/platform/tx"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

var tracer = otel.Tracer("hackhub/identity")

// UserStore is the persistence port for users.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindForUpdate(ctx context.Context, userID id.UserID) (*models.User, error)
	Update(ctx context.Context, u *models.User) error
	List(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service is the identity and role oracle: it turns an authenticated user ID
// into an Actor and manages the role assignments behind it.
type Service struct {
	users          UserStore
	tx             tx.Runner
	logger         *slog.Logger
	auditPublisher AuditPublisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = p }
}

func WithTx(r tx.Runner) Option {
	return func(s *Service) { s.tx = r }
}

func New(users UserStore, opts ...Option) *Service {
	s := &Service{
		users:  users,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = tx.NewInMemory()
	}
	return s
}

var manageUsers = id.Roles(id.RoleAdmin)

// Resolve returns the Actor for an authenticated user. Unknown users are
// Unauthorized; deactivated users are Forbidden.
func (s *Service) Resolve(ctx context.Context, userID id.UserID) (id.Actor, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return id.Actor{}, dErrors.New(dErrors.CodeUnauthorized, "unknown user")
		}
		return id.Actor{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve user")
	}
	if !u.Active {
		return id.Actor{}, dErrors.New(dErrors.CodeForbidden, "user is deactivated")
	}
	return u.Actor(), nil
}

// CreateUser registers an account. Used by the bootstrap CLI; there is no
// self-service signup.
func (s *Service) CreateUser(ctx context.Context, email, name string, role id.Role) (*models.User, error) {
	ctx, span := tracer.Start(ctx, "identity.CreateUser")
	defer span.End()

	u, err := models.NewUser(id.NewUserID(), email, name, role, requestcontext.Now(ctx))
	if err != nil {
		return nil, asValidation(err)
	}
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.users.Create(txCtx, u); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return dErrors.Conflict(dErrors.ReasonDuplicate, "email already registered")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
		}
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}

	s.logger.InfoContext(ctx, "user created",
		"user_id", u.ID,
		"role", u.Role,
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, audit.Event{Action: audit.ActionUserCreated, Subject: u.ID.String(), Detail: map[string]string{"role": string(u.Role)}})
	return u, nil
}

// UpdateRole changes a user's role. ADMIN only; an admin cannot demote
// themselves.
func (s *Service) UpdateRole(ctx context.Context, actor id.Actor, userID id.UserID, role id.Role) (*models.User, error) {
	if err := actor.Gate(manageUsers, "change roles"); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "invalid role")
	}
	if actor.ID == userID && role != id.RoleAdmin {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cannot demote your own account")
	}
	var updated *models.User
	var previous id.Role
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.findForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		previous = u.Role
		u.ApplyRole(role, requestcontext.Now(txCtx))
		if err := s.users.Update(txCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionUserRoleChanged,
		ActorID: actor.ID.String(),
		Subject: userID.String(),
		Detail:  map[string]string{"from": string(previous), "to": string(role)},
	})
	return updated, nil
}

// SetActive activates or deactivates a user. ADMIN only; an admin cannot
// deactivate themselves.
func (s *Service) SetActive(ctx context.Context, actor id.Actor, userID id.UserID, active bool) (*models.User, error) {
	if err := actor.Gate(manageUsers, "change account status"); err != nil {
		return nil, err
	}
	if !active && actor.ID == userID {
		return nil, dErrors.New(dErrors.CodeBadRequest, "cannot deactivate your own account")
	}
	var updated *models.User
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		u, err := s.findForUpdate(txCtx, userID)
		if err != nil {
			return err
		}
		u.ApplyActive(active, requestcontext.Now(txCtx))
		if err := s.users.Update(txCtx, u); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update user")
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, tx.DomainError(err)
	}
	s.emit(ctx, audit.Event{
		Action:  audit.ActionUserActiveChanged,
		ActorID: actor.ID.String(),
		Subject: userID.String(),
		Detail:  map[string]string{"active": boolString(active)},
	})
	return updated, nil
}

// Get returns a user to themselves or to an admin.
func (s *Service) Get(ctx context.Context, actor id.Actor, userID id.UserID) (*models.User, error) {
	if !actor.Owns(userID) && !actor.IsAdmin() {
		return nil, dErrors.New(dErrors.CodeForbidden, "cannot view another user's account")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return u, nil
}

// FindUser looks a user up without an authorization gate. Used by other
// services (judge assignment) that have already authorized the caller.
func (s *Service) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return u, nil
}

// List returns every user. ADMIN only.
func (s *Service) List(ctx context.Context, actor id.Actor) ([]*models.User, error) {
	if err := actor.Gate(manageUsers, "list users"); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	return users, nil
}

// CountUsers feeds the platform statistics.
func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

func (s *Service) findForUpdate(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindForUpdate(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err)
	}
	return u, nil
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

func wrapUserErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load user")
}

func asValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
