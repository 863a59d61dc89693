package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hackhub/internal/platform/logger"
	"hackhub/pkg/domain"
	"hackhub/pkg/platform/middleware/metadata"
	"hackhub/pkg/requestcontext"
)

type countingRejects struct{ n int }

func (c *countingRejects) IncRateLimited() { c.n++ }

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
}

func requestFrom(ip string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/events", nil)
	return r.WithContext(requestcontext.WithClientIP(r.Context(), ip))
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rejects := &countingRejects{}
	l := NewRateLimiter(1, 2, logger.Discard(), WithClock(func() time.Time { return now }), WithRejectCounter(rejects))
	h := l.Handler(okHandler())

	for i := range 2 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.0.2.1"))
		require.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, 1, rejects.n)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "too_many_requests", body["error"])
}

func TestRateLimiter_RefillsOverTime(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1, logger.Discard(), WithClock(func() time.Time { return now }))
	h := l.Handler(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	now = now.Add(time.Second)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter_KeysByActorThenIP(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewRateLimiter(1, 1, logger.Discard(), WithClock(func() time.Time { return now }))
	h := l.Handler(okHandler())

	actor := domain.Actor{ID: domain.NewUserID(), Role: domain.RoleParticipant}
	asActor := func(ip string) *http.Request {
		r := requestFrom(ip)
		return r.WithContext(requestcontext.WithActor(r.Context(), actor))
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, asActor("192.0.2.1"))
	require.Equal(t, http.StatusNoContent, rec.Code)

	// same user from another address shares the bucket
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, asActor("192.0.2.2"))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	// an anonymous caller on the first address has its own bucket
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, requestFrom("192.0.2.1"))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRateLimiter_Disabled(t *testing.T) {
	l := NewRateLimiter(1, 1, logger.Discard(), WithDisabled(true))
	h := l.Handler(okHandler())
	for range 5 {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.0.2.1"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	}
}

func TestRequestIDAndAccessLog(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)

	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = requestcontext.RequestID(r.Context())
		w.WriteHeader(http.StatusCreated)
	})
	h := chimw.RequestID(RequestID(AccessLog(log)(inner)))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/events", nil)
	r.Header.Set(chimw.RequestIDHeader, "req-123")
	h.ServeHTTP(rec, r)

	assert.Equal(t, "req-123", seen)
	assert.Equal(t, "req-123", rec.Header().Get(chimw.RequestIDHeader))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "http request", line["msg"])
	assert.Equal(t, float64(http.StatusCreated), line["status"])
	assert.Equal(t, "req-123", line["request_id"])
	assert.Equal(t, "/events", line["path"])
}

func TestAccessLogRecordsClientAgent(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, slog.LevelInfo)
	h := metadata.ClientMetadata(AccessLog(log)(okHandler()))

	r := httptest.NewRequest(http.MethodGet, "/leaderboard", nil)
	r.RemoteAddr = "198.51.100.9:4000"
	r.Header.Set("User-Agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	h.ServeHTTP(httptest.NewRecorder(), r)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "198.51.100.9", line["client_ip"])
	assert.Equal(t, true, line["bot"])
	assert.Contains(t, line, "browser")
	assert.Contains(t, line, "os")
}
