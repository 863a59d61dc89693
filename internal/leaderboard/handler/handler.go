package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hackhub/internal/leaderboard/service"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

const maxLimit = 1000

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

type Service interface {
	Leaderboard(ctx context.Context, filter service.Filter) ([]service.Entry, error)
	Stats(ctx context.Context) (*service.Stats, error)
	ParticipantDashboard(ctx context.Context, actor id.Actor) (*service.ParticipantDashboard, error)
	OrganizerDashboard(ctx context.Context, actor id.Actor) (*service.OrganizerDashboard, error)
	AdminDashboard(ctx context.Context, actor id.Actor) (*service.AdminDashboard, error)
}

// Handler serves the public standings and the signed-in dashboards.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the anonymous read endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/leaderboard", h.HandleLeaderboard)
	r.Get("/stats", h.HandleStats)
}

// Register mounts the per-role dashboards. The service decides which roles
// may read each one.
func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard/participant", dashboard(h, "participant dashboard failed", h.service.ParticipantDashboard))
	r.Get("/dashboard/organizer", dashboard(h, "organizer dashboard failed", h.service.OrganizerDashboard))
	r.Get("/dashboard/admin", dashboard(h, "admin dashboard failed", h.service.AdminDashboard))
}

// HandleLeaderboard handles GET /leaderboard?event_id=&limit=.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var filter service.Filter
	q := r.URL.Query()
	if raw := q.Get("event_id"); raw != "" {
		eventID, ok := httputil.PathID(w, raw, id.ParseEventID)
		if !ok {
			return
		}
		filter.EventID = eventID
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > maxLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "limit must be between 1 and 1000"))
			return
		}
		filter.Limit = limit
	}
	entries, err := h.service.Leaderboard(ctx, filter)
	if err != nil {
		h.fail(w, ctx, "leaderboard failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, entries)
}

// HandleStats handles GET /stats.
func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats, err := h.service.Stats(ctx)
	if err != nil {
		h.fail(w, ctx, "stats failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, stats)
}

func dashboard[T any](h *Handler, msg string, load func(context.Context, id.Actor) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		actor, ok := httputil.RequireActor(w, ctx)
		if !ok {
			return
		}
		d, err := load(ctx, actor)
		if err != nil {
			h.fail(w, ctx, msg, err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, d)
	}
}

func (h *Handler) fail(w http.ResponseWriter, ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	httputil.WriteError(w, err)
}
