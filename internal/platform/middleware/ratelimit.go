package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/httputil"
	"hackhub/pkg/requestcontext"
)

// idleLimiterTTL is how long an unused per-caller bucket is kept.
const idleLimiterTTL = 10 * time.Minute

// RejectCounter is the slice of metrics the limiter reports to.
type RejectCounter interface {
	IncRateLimited()
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds one token bucket per caller. Authenticated callers are
// keyed by user ID, anonymous ones by client IP.
type RateLimiter struct {
	rps      rate.Limit
	burst    int
	logger   *slog.Logger
	metrics  RejectCounter
	disabled bool
	now      func() time.Time

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

type Option func(*RateLimiter)

// WithDisabled turns the limiter into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(l *RateLimiter) {
		l.disabled = disabled
	}
}

func WithRejectCounter(c RejectCounter) Option {
	return func(l *RateLimiter) {
		l.metrics = c
	}
}

// WithClock overrides the limiter clock. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(l *RateLimiter) {
		l.now = now
	}
}

func NewRateLimiter(rps float64, burst int, logger *slog.Logger, opts ...Option) *RateLimiter {
	l := &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		logger:  logger,
		metrics: nopCounter{},
		now:     time.Now,
		buckets: make(map[string]*bucket),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.disabled {
		logger.Info("rate limiting disabled")
	}
	return l
}

// Handler rejects callers that exceed their bucket with 429.
func (l *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.disabled {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		key := callerKey(r)
		now := l.now()

		lim := l.limiterFor(key, now)
		allowed := lim.AllowN(now, 1)
		remaining := int(math.Max(0, math.Floor(lim.TokensAt(now))))

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			retryAfter := l.retryAfter(lim, now)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(time.Duration(retryAfter)*time.Second).Unix(), 10))
			l.metrics.IncRateLimited()
			l.logger.WarnContext(ctx, "rate limit exceeded",
				"caller", key,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteError(w, dErrors.New(dErrors.CodeTooManyRequests, "too many requests, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *RateLimiter) limiterFor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > idleLimiterTTL {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleLimiterTTL {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter
}

func (l *RateLimiter) retryAfter(lim *rate.Limiter, now time.Time) int {
	deficit := 1 - lim.TokensAt(now)
	if deficit <= 0 || l.rps <= 0 {
		return 1
	}
	return int(math.Ceil(deficit / float64(l.rps)))
}

func callerKey(r *http.Request) string {
	if actor, ok := requestcontext.Actor(r.Context()); ok && !actor.ID.IsNil() {
		return "user:" + actor.ID.String()
	}
	return "ip:" + requestcontext.ClientIP(r.Context())
}

type nopCounter struct{}

func (nopCounter) IncRateLimited() {}
