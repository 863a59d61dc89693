package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/identity/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the identity operations exposed over HTTP.
type Service interface {
	Get(ctx context.Context, actor id.Actor, userID id.UserID) (*models.User, error)
	List(ctx context.Context, actor id.Actor) ([]*models.User, error)
	UpdateRole(ctx context.Context, actor id.Actor, userID id.UserID, role id.Role) (*models.User, error)
	SetActive(ctx context.Context, actor id.Actor, userID id.UserID, active bool) (*models.User, error)
}

// Handler wires user endpoints to the identity service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts user endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Get("/users/me", h.HandleMe)
	r.Get("/users", h.HandleList)
	r.Patch("/users/{id}/role", h.HandleUpdateRole)
	r.Patch("/users/{id}/active", h.HandleSetActive)
}

// HandleMe handles GET /users/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	u, err := h.service.Get(ctx, actor, actor.ID)
	if err != nil {
		h.fail(w, ctx, "get current user failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleList handles GET /users.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	users, err := h.service.List(ctx, actor)
	if err != nil {
		h.fail(w, ctx, "list users failed", err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdateRole handles PATCH /users/{id}/role.
func (h *Handler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	userID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseUserID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.UpdateRole(ctx, actor, userID, req.role)
	if err != nil {
		h.fail(w, ctx, "update role failed", err)
		return
	}
	h.logger.InfoContext(ctx, "user role updated",
		"request_id", requestID,
		"user_id", userID,
		"role", u.Role,
	)
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

// HandleSetActive handles PATCH /users/{id}/active.
func (h *Handler) HandleSetActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	userID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseUserID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SetActiveRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	u, err := h.service.SetActive(ctx, actor, userID, *req.Active)
	if err != nil {
		h.fail(w, ctx, "set active failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
