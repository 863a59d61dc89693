package auth_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/middleware/auth"
	"hackhub/pkg/platform/middleware/auth/mocks"
	"hackhub/pkg/requestcontext"
)

type fixture struct {
	validator *mocks.MockJWTValidator
	revoker   *mocks.MockTokenRevocationChecker
	resolver  *mocks.MockActorResolver
	handler   http.Handler
	seen      *id.Actor
}

func newFixture(t *testing.T, withRevocation bool) *fixture {
	ctrl := gomock.NewController(t)
	f := &fixture{
		validator: mocks.NewMockJWTValidator(ctrl),
		revoker:   mocks.NewMockTokenRevocationChecker(ctrl),
		resolver:  mocks.NewMockActorResolver(ctrl),
	}
	var checker auth.TokenRevocationChecker
	if withRevocation {
		checker = f.revoker
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.handler = auth.RequireAuth(f.validator, checker, f.resolver, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := requestcontext.Actor(r.Context())
		if ok {
			f.seen = &actor
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return f
}

func request(header string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/me", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func TestRequireAuth(t *testing.T) {
	userID := id.NewUserID()

	t.Run("missing header", func(t *testing.T) {
		f := newFixture(t, true)
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request(""))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Nil(t, f.seen)
	})

	t.Run("invalid token", func(t *testing.T) {
		f := newFixture(t, true)
		f.validator.EXPECT().ValidateToken("bad").Return(nil, errors.New("nope"))
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request("Bearer bad"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("revoked token", func(t *testing.T) {
		f := newFixture(t, true)
		f.validator.EXPECT().ValidateToken("tok").Return(&auth.JWTClaims{UserID: userID.String(), JTI: "j1"}, nil)
		f.revoker.EXPECT().IsTokenRevoked(gomock.Any(), "j1").Return(true, nil)
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request("Bearer tok"))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), "revoked")
	})

	t.Run("revocation backend down", func(t *testing.T) {
		f := newFixture(t, true)
		f.validator.EXPECT().ValidateToken("tok").Return(&auth.JWTClaims{UserID: userID.String(), JTI: "j1"}, nil)
		f.revoker.EXPECT().IsTokenRevoked(gomock.Any(), "j1").Return(false, errors.New("redis down"))
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request("Bearer tok"))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("inactive user", func(t *testing.T) {
		f := newFixture(t, false)
		f.validator.EXPECT().ValidateToken("tok").Return(&auth.JWTClaims{UserID: userID.String(), JTI: "j1"}, nil)
		f.resolver.EXPECT().Resolve(gomock.Any(), userID).Return(id.Actor{}, dErrors.New(dErrors.CodeForbidden, "user is deactivated"))
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request("Bearer tok"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("valid token resolves actor", func(t *testing.T) {
		f := newFixture(t, true)
		actor := id.Actor{ID: userID, Role: id.RoleJudge}
		f.validator.EXPECT().ValidateToken("tok").Return(&auth.JWTClaims{UserID: userID.String(), JTI: "j1"}, nil)
		f.revoker.EXPECT().IsTokenRevoked(gomock.Any(), "j1").Return(false, nil)
		f.resolver.EXPECT().Resolve(gomock.Any(), userID).Return(actor, nil)
		rr := httptest.NewRecorder()
		f.handler.ServeHTTP(rr, request("Bearer tok"))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		if assert.NotNil(t, f.seen) {
			assert.Equal(t, actor, *f.seen)
		}
	})
}
