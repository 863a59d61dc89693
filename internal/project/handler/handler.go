package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the submission operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, actor id.Actor, eventID id.EventID, fields models.Fields) (*models.Project, error)
	MarkUnderReview(ctx context.Context, actor id.Actor, projectID id.ProjectID) (*models.Project, error)
	GetProject(ctx context.Context, projectID id.ProjectID) (*models.Project, error)
	ListByEvent(ctx context.Context, eventID id.EventID) ([]*models.Project, error)
	ListMine(ctx context.Context, actor id.Actor) ([]*models.Project, error)
}

// Handler wires project endpoints to the submission gate.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts project endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{id}/projects", h.HandleSubmit)
	r.Get("/events/{id}/projects", h.HandleListByEvent)
	r.Get("/me/projects", h.HandleListMine)
	r.Get("/projects/{id}", h.HandleGet)
	r.Post("/projects/{id}/review", h.HandleMarkUnderReview)
}

// SubmitRequest is the body for POST /events/{id}/projects.
type SubmitRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	TechStack   string `json:"tech_stack"`
	GithubURL   string `json:"github_url"`
	DemoURL     string `json:"demo_url"`
}

func (r *SubmitRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Title == "" {
		return dErrors.New(dErrors.CodeValidation, "title is required")
	}
	return nil
}

func (r *SubmitRequest) fields() models.Fields {
	return models.Fields{
		Title:       r.Title,
		Description: r.Description,
		TechStack:   r.TechStack,
		GithubURL:   r.GithubURL,
		DemoURL:     r.DemoURL,
	}
}

// HandleSubmit handles POST /events/{id}/projects.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseEventID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[SubmitRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Submit(ctx, actor, eventID, req.fields())
	if err != nil {
		h.fail(w, ctx, "project submission failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

// HandleListByEvent handles GET /events/{id}/projects.
func (h *Handler) HandleListByEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseEventID)
	if !ok {
		return
	}
	projects, err := h.service.ListByEvent(ctx, eventID)
	if err != nil {
		h.fail(w, ctx, "list projects failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projects)
}

// HandleListMine handles GET /me/projects.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	projects, err := h.service.ListMine(ctx, actor)
	if err != nil {
		h.fail(w, ctx, "list own projects failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projects)
}

// HandleGet handles GET /projects/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseProjectID)
	if !ok {
		return
	}
	p, err := h.service.GetProject(ctx, projectID)
	if err != nil {
		h.fail(w, ctx, "get project failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleMarkUnderReview handles POST /projects/{id}/review.
func (h *Handler) HandleMarkUnderReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	projectID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseProjectID)
	if !ok {
		return
	}
	p, err := h.service.MarkUnderReview(ctx, actor, projectID)
	if err != nil {
		h.fail(w, ctx, "mark under review failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
