package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/judging/models"
	"hackhub/internal/judging/service"
	projectmodels "hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the judging operations exposed over HTTP.
type Service interface {
	Evaluate(ctx context.Context, actor id.Actor, in service.Evaluation) (*projectmodels.Project, error)
	AssignJudge(ctx context.Context, actor id.Actor, eventID id.EventID, judgeID id.UserID, expertise string) (*models.Assignment, error)
	ListAssignments(ctx context.Context, actor id.Actor, eventID id.EventID) ([]*models.Assignment, error)
}

// Handler wires judging endpoints to the evaluation engine.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts judging endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/projects/{id}/evaluation", h.HandleEvaluate)
	r.Post("/events/{id}/judges", h.HandleAssign)
	r.Get("/events/{id}/judges", h.HandleList)
}

// EvaluateRequest is the body for POST /projects/{id}/evaluation.
type EvaluateRequest struct {
	Score    *int   `json:"score"`
	Feedback string `json:"feedback"`
	EventID  string `json:"event_id,omitempty"`

	eventID id.EventID
}

func (r *EvaluateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Score == nil {
		return dErrors.New(dErrors.CodeValidation, "score is required")
	}
	if raw := strings.TrimSpace(r.EventID); raw != "" {
		eventID, err := id.ParseEventID(raw)
		if err != nil {
			return err
		}
		r.eventID = eventID
	}
	return nil
}

// AssignRequest is the body for POST /events/{id}/judges.
type AssignRequest struct {
	UserID    string `json:"user_id"`
	Expertise string `json:"expertise"`

	userID id.UserID
}

func (r *AssignRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	userID, err := id.ParseUserID(strings.TrimSpace(r.UserID))
	if err != nil {
		return err
	}
	r.userID = userID
	return nil
}

// HandleEvaluate handles POST /projects/{id}/evaluation.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	projectID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseProjectID)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	p, err := h.service.Evaluate(ctx, actor, service.Evaluation{
		ProjectID: projectID,
		EventID:   req.eventID,
		Score:     *req.Score,
		Feedback:  req.Feedback,
	})
	if err != nil {
		h.fail(w, ctx, "evaluation failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

// HandleAssign handles POST /events/{id}/judges.
func (h *Handler) HandleAssign(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[AssignRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	a, err := h.service.AssignJudge(ctx, actor, eventID, req.userID, req.Expertise)
	if err != nil {
		h.fail(w, ctx, "judge assignment failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, a)
}

// HandleList handles GET /events/{id}/judges.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseEventID)
	if !ok {
		return
	}
	assignments, err := h.service.ListAssignments(ctx, actor, eventID)
	if err != nil {
		h.fail(w, ctx, "list judges failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, assignments)
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
