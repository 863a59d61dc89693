package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/event/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the event operations exposed over HTTP.
type Service interface {
	CreateEvent(ctx context.Context, actor id.Actor, fields models.Fields) (*models.Event, error)
	UpdateEvent(ctx context.Context, actor id.Actor, eventID id.EventID, fields models.Fields) (*models.Event, error)
	UpdateStatus(ctx context.Context, actor id.Actor, eventID id.EventID, next models.Status) (*models.Event, error)
	GetEvent(ctx context.Context, eventID id.EventID) (*models.Details, error)
	ListEvents(ctx context.Context, filter models.ListFilter) ([]*models.Event, error)
}

// Handler wires event endpoints to the event service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the anonymous read endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/events", h.HandleList)
	r.Get("/events/{id}", h.HandleGet)
}

// Register mounts the endpoints that require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events", h.HandleCreate)
	r.Put("/events/{id}", h.HandleUpdate)
	r.Put("/events/{id}/status", h.HandleUpdateStatus)
}

// HandleList handles GET /events?status=&organizer_id=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter models.ListFilter
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		filter.Status = status
	}
	if raw := r.URL.Query().Get("organizer_id"); raw != "" {
		organizer, ok := httputil.PathID(w, raw, id.ParseUserID)
		if !ok {
			return
		}
		filter.OrganizerID = organizer
	}
	events, err := h.service.ListEvents(ctx, filter)
	if err != nil {
		h.fail(w, ctx, "list events failed", err)
		return
	}
	if events == nil {
		events = []*models.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, events)
}

// HandleGet handles GET /events/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseEventID)
	if !ok {
		return
	}
	details, err := h.service.GetEvent(ctx, eventID)
	if err != nil {
		h.fail(w, ctx, "get event failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, details)
}

// HandleCreate handles POST /events.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[EventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.CreateEvent(ctx, actor, req.fields)
	if err != nil {
		h.fail(w, ctx, "create event failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, e)
}

// HandleUpdate handles PUT /events/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[EventRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.UpdateEvent(ctx, actor, eventID, req.fields)
	if err != nil {
		h.fail(w, ctx, "update event failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

// HandleUpdateStatus handles PUT /events/{id}/status.
func (h *Handler) HandleUpdateStatus(w http.ResponseWriter, r *http.Request) {
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
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	e, err := h.service.UpdateStatus(ctx, actor, eventID, req.status)
	if err != nil {
		h.fail(w, ctx, "update event status failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
