package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

// Service defines the admission operations exposed over HTTP.
type Service interface {
	Register(ctx context.Context, actor id.Actor, eventID id.EventID, teamName string) (*models.Registration, error)
	Cancel(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error)
	Confirm(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error)
	Disqualify(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error)
	ListByEvent(ctx context.Context, actor id.Actor, eventID id.EventID) ([]*models.Registration, error)
	ListMine(ctx context.Context, actor id.Actor) ([]*models.Registration, error)
}

// Handler wires registration endpoints to the admission controller.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts registration endpoints. All of them require authentication.
func (h *Handler) Register(r chi.Router) {
	r.Post("/events/{id}/registrations", h.HandleRegister)
	r.Get("/events/{id}/registrations", h.HandleListByEvent)
	r.Get("/me/registrations", h.HandleListMine)
	r.Post("/registrations/{id}/cancel", h.transition("cancel", h.service.Cancel))
	r.Post("/registrations/{id}/confirm", h.transition("confirm", h.service.Confirm))
	r.Post("/registrations/{id}/disqualify", h.transition("disqualify", h.service.Disqualify))
}

// RegisterRequest is the optional body for POST /events/{id}/registrations.
type RegisterRequest struct {
	TeamName string `json:"team_name"`
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// HandleRegister handles POST /events/{id}/registrations.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
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
	var teamName string
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		teamName = req.TeamName
	}
	reg, err := h.service.Register(ctx, actor, eventID, teamName)
	if err != nil {
		h.fail(w, ctx, "registration failed", err)
		return
	}
	h.logger.InfoContext(ctx, "participant registered",
		"request_id", requestID,
		"registration_id", reg.ID,
		"event_id", eventID,
	)
	httputil.WriteJSON(w, http.StatusCreated, reg)
}

// HandleListByEvent handles GET /events/{id}/registrations.
func (h *Handler) HandleListByEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	eventID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseEventID)
	if !ok {
		return
	}
	regs, err := h.service.ListByEvent(ctx, actor, eventID)
	if err != nil {
		h.fail(w, ctx, "list registrations failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, regs)
}

// HandleListMine handles GET /me/registrations.
func (h *Handler) HandleListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actor, ok := httputil.RequireActor(w, ctx)
	if !ok {
		return
	}
	regs, err := h.service.ListMine(ctx, actor)
	if err != nil {
		h.fail(w, ctx, "list own registrations failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, regs)
}

type transitionFunc func(ctx context.Context, actor id.Actor, regID id.RegistrationID) (*models.Registration, error)

// transition handles POST /registrations/{id}/{verb}.
func (h *Handler) transition(verb string, apply transitionFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor, ok := httputil.RequireActor(w, ctx)
		if !ok {
			return
		}
		regID, ok := httputil.PathID(w, chi.URLParam(r, "id"), id.ParseRegistrationID)
		if !ok {
			return
		}
		reg, err := apply(ctx, actor, regID)
		if err != nil {
			h.fail(w, ctx, verb+" registration failed", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, reg)
	}
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
