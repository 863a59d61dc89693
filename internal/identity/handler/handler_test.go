package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hackhub/internal/identity/handler"
	"hackhub/internal/identity/handler/mocks"
	"hackhub/internal/identity/models"
	"hackhub/internal/platform/logger"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/testutil"
)

func newRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	svc := mocks.NewMockService(gomock.NewController(t))
	r := chi.NewRouter()
	handler.New(svc, logger.Discard()).Register(r)
	return r, svc
}

func user(role id.Role) *models.User {
	return &models.User{
		ID:        id.NewUserID(),
		Email:     "ana@example.com",
		Name:      "Ana",
		Role:      role,
		Active:    true,
		CreatedAt: time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC),
	}
}

func TestHandleMe(t *testing.T) {
	r, svc := newRouter(t)
	u := user(id.RoleJudge)
	actor := id.Actor{ID: u.ID, Role: u.Role}
	svc.EXPECT().Get(gomock.Any(), actor, u.ID).Return(u, nil)

	rr := testutil.DoRequest(r, testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/users/me"), actor))
	testutil.AssertStatus(t, rr, http.StatusOK)
	resp := testutil.UnmarshalResponse[handler.UserResponse](t, rr)
	assert.Equal(t, u.ID.String(), resp.ID)
	assert.Equal(t, "JUDGE", resp.Role)
	assert.True(t, resp.Active)
}

func TestHandleList(t *testing.T) {
	admin := id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}

	t.Run("admin lists", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().List(gomock.Any(), admin).Return([]*models.User{user(id.RoleParticipant), user(id.RoleOrganizer)}, nil)

		rr := testutil.DoRequest(r, testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/users"), admin))
		testutil.AssertStatus(t, rr, http.StatusOK)
		require.Len(t, *testutil.UnmarshalResponse[[]handler.UserResponse](t, rr), 2)
	})

	t.Run("empty is an array", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().List(gomock.Any(), admin).Return(nil, nil)

		rr := testutil.DoRequest(r, testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/users"), admin))
		testutil.AssertStatus(t, rr, http.StatusOK)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestHandleUpdateRole(t *testing.T) {
	admin := id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}

	t.Run("parses the role", func(t *testing.T) {
		r, svc := newRouter(t)
		u := user(id.RoleOrganizer)
		svc.EXPECT().UpdateRole(gomock.Any(), admin, u.ID, id.RoleOrganizer).Return(u, nil)

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+u.ID.String()+"/role",
			map[string]string{"role": " ORGANIZER "}), admin)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "role", "ORGANIZER")
	})

	t.Run("unknown role never reaches the service", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+id.NewUserID().String()+"/role",
			map[string]string{"role": "SUPERUSER"}), admin)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	})

	t.Run("self demotion", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().UpdateRole(gomock.Any(), admin, admin.ID, id.RoleParticipant).
			Return(nil, dErrors.New(dErrors.CodeBadRequest, "cannot demote your own account"))

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+admin.ID.String()+"/role",
			map[string]string{"role": "PARTICIPANT"}), admin)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
	})
}

func TestHandleSetActive(t *testing.T) {
	admin := id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}

	t.Run("deactivates", func(t *testing.T) {
		r, svc := newRouter(t)
		u := user(id.RoleParticipant)
		u.Active = false
		svc.EXPECT().SetActive(gomock.Any(), admin, u.ID, false).Return(u, nil)

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+u.ID.String()+"/active",
			map[string]bool{"active": false}), admin)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "active", false)
	})

	t.Run("missing flag", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+id.NewUserID().String()+"/active",
			map[string]string{}), admin)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	t.Run("non-admin", func(t *testing.T) {
		r, svc := newRouter(t)
		organizer := id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
		userID := id.NewUserID()
		svc.EXPECT().SetActive(gomock.Any(), organizer, userID, true).
			Return(nil, dErrors.New(dErrors.CodeForbidden, "role ORGANIZER may not manage users"))

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPatch, "/users/"+userID.String()+"/active",
			map[string]bool{"active": true}), organizer)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodeForbidden))
	})
}
