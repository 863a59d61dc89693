// Package metadata records where a request came from so rate limiting,
// access logs and audit records can key on it.
package metadata

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/mssola/useragent"

	"hackhub/pkg/requestcontext"
)

type (
	contextKeyUserAgent   struct{}
	contextKeyClientAgent struct{}
)

// ClientAgent is the caller's User-Agent reduced to what logs and audit
// records need.
type ClientAgent struct {
	Browser        string
	BrowserVersion string
	OS             string
	Mobile         bool
	Bot            bool
}

// ParseUserAgent parses a raw User-Agent header. An empty header yields the
// zero ClientAgent.
func ParseUserAgent(raw string) ClientAgent {
	if strings.TrimSpace(raw) == "" {
		return ClientAgent{}
	}
	ua := useragent.New(raw)
	name, version := ua.Browser()
	return ClientAgent{
		Browser:        name,
		BrowserVersion: version,
		OS:             ua.OS(),
		Mobile:         ua.Mobile(),
		Bot:            ua.Bot(),
	}
}

// ClientMetadata stores the client IP and User-Agent in the request context.
// Apply it before anything that keys on the client.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientMetadata(r.Context(), ClientIPFromRequest(r), r.Header.Get("User-Agent"))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserAgent retrieves the User-Agent from the context.
func GetUserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return ua
	}
	return ""
}

// GetClientAgent returns the parsed User-Agent stored by ClientMetadata.
func GetClientAgent(ctx context.Context) ClientAgent {
	if agent, ok := ctx.Value(contextKeyClientAgent{}).(ClientAgent); ok {
		return agent
	}
	return ClientAgent{}
}

// WithClientMetadata injects client IP and User-Agent, raw and parsed, into a
// context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = requestcontext.WithClientIP(ctx, clientIP)
	ctx = context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
	return context.WithValue(ctx, contextKeyClientAgent{}, ParseUserAgent(userAgent))
}

// ClientIPFromRequest returns the originating client address. The first
// X-Forwarded-For hop wins, then X-Real-IP, then RemoteAddr.
func ClientIPFromRequest(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	if r.RemoteAddr == "" {
		return "unknown"
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
