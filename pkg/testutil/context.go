package testutil

import (
	"net/http"
	"time"

	id "hackhub/pkg/domain"
	"hackhub/pkg/requestcontext"
)

// WithActor adds an authenticated caller to the request context.
// This simulates what the auth middleware does for authenticated requests.
func WithActor(req *http.Request, actor id.Actor) *http.Request {
	return req.WithContext(requestcontext.WithActor(req.Context(), actor))
}

// WithTime pins the request-scoped clock.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
