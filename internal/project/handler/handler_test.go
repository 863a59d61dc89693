package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"hackhub/internal/platform/logger"
	"hackhub/internal/project/handler"
	"hackhub/internal/project/handler/mocks"
	"hackhub/internal/project/models"
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

func project(eventID id.EventID, submitter id.UserID, title string) *models.Project {
	now := time.Date(2026, 9, 2, 15, 0, 0, 0, time.UTC)
	return &models.Project{
		ID:          id.NewProjectID(),
		EventID:     eventID,
		SubmitterID: submitter,
		Title:       title,
		Status:      models.StatusSubmitted,
		SubmittedAt: now,
		UpdatedAt:   now,
	}
}

func TestHandleSubmit(t *testing.T) {
	participant := id.Actor{ID: id.NewUserID(), Role: id.RoleParticipant}
	eventID := id.NewEventID()
	path := "/events/" + eventID.String() + "/projects"

	t.Run("passes every field through", func(t *testing.T) {
		r, svc := newRouter(t)
		want := models.Fields{
			Title:       "Harbor Watch",
			Description: "ship tracking",
			TechStack:   "Go, Postgres",
			GithubURL:   "https://github.com/example/harbor",
			DemoURL:     "https://harbor.example.com",
		}
		svc.EXPECT().Submit(gomock.Any(), participant, eventID, want).
			Return(project(eventID, participant.ID, want.Title), nil)

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{
			"title":       want.Title,
			"description": want.Description,
			"tech_stack":  want.TechStack,
			"github_url":  want.GithubURL,
			"demo_url":    want.DemoURL,
		}), participant)
		rr := testutil.DoRequest(r, req)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		testutil.AssertJSONContains(t, rr, "status", string(models.StatusSubmitted))
	})

	t.Run("missing title", func(t *testing.T) {
		r, _ := newRouter(t)
		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"description": "untitled"}), participant)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeValidation))
	})

	t.Run("not registered", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().Submit(gomock.Any(), participant, eventID, gomock.Any()).
			Return(nil, dErrors.Conflict(dErrors.ReasonNotRegistered, "register for the event before submitting"))

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"title": "Harbor Watch"}), participant)
		rr := testutil.DoRequest(r, req)
		testutil.AssertConflictReason(t, rr, string(dErrors.ReasonNotRegistered))
	})

	t.Run("second submission", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().Submit(gomock.Any(), participant, eventID, gomock.Any()).
			Return(nil, dErrors.Conflict(dErrors.ReasonDuplicate, "already submitted a project for this event"))

		req := testutil.WithActor(testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"title": "Harbor Watch"}), participant)
		rr := testutil.DoRequest(r, req)
		testutil.AssertConflictReason(t, rr, string(dErrors.ReasonDuplicate))
	})

	t.Run("unauthenticated", func(t *testing.T) {
		r, _ := newRouter(t)
		rr := testutil.DoRequest(r, testutil.NewJSONRequest(t, http.MethodPost, path, map[string]string{"title": "Harbor Watch"}))
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func TestHandleReads(t *testing.T) {
	participant := id.Actor{ID: id.NewUserID(), Role: id.RoleParticipant}
	eventID := id.NewEventID()

	t.Run("get", func(t *testing.T) {
		r, svc := newRouter(t)
		p := project(eventID, participant.ID, "Harbor Watch")
		svc.EXPECT().GetProject(gomock.Any(), p.ID).Return(p, nil)

		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/projects/"+p.ID.String()))
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "title", "Harbor Watch")
	})

	t.Run("get missing", func(t *testing.T) {
		r, svc := newRouter(t)
		projectID := id.NewProjectID()
		svc.EXPECT().GetProject(gomock.Any(), projectID).Return(nil, dErrors.New(dErrors.CodeNotFound, "project not found"))

		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/projects/"+projectID.String()))
		testutil.AssertStatusAndError(t, rr, http.StatusNotFound, string(dErrors.CodeNotFound))
	})

	t.Run("by event", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().ListByEvent(gomock.Any(), eventID).Return([]*models.Project{
			project(eventID, id.NewUserID(), "First Entry"),
			project(eventID, id.NewUserID(), "Second Entry"),
		}, nil)

		rr := testutil.DoRequest(r, testutil.NewRequest(t, http.MethodGet, "/events/"+eventID.String()+"/projects"))
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[[]models.Project](t, rr)
		require.Len(t, *resp, 2)
		assert.Equal(t, eventID, (*resp)[1].EventID)
	})

	t.Run("mine", func(t *testing.T) {
		r, svc := newRouter(t)
		svc.EXPECT().ListMine(gomock.Any(), participant).Return([]*models.Project{
			project(eventID, participant.ID, "Harbor Watch"),
		}, nil)

		req := testutil.WithActor(testutil.NewRequest(t, http.MethodGet, "/me/projects"), participant)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		resp := testutil.UnmarshalResponse[[]models.Project](t, rr)
		require.Len(t, *resp, 1)
		assert.Equal(t, participant.ID, (*resp)[0].SubmitterID)
	})
}

func TestHandleMarkUnderReview(t *testing.T) {
	judge := id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}

	t.Run("moves to review", func(t *testing.T) {
		r, svc := newRouter(t)
		p := project(id.NewEventID(), id.NewUserID(), "Harbor Watch")
		p.Status = models.StatusUnderReview
		svc.EXPECT().MarkUnderReview(gomock.Any(), judge, p.ID).Return(p, nil)

		req := testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/projects/"+p.ID.String()+"/review"), judge)
		rr := testutil.DoRequest(r, req)
		testutil.AssertStatus(t, rr, http.StatusOK)
		testutil.AssertJSONContains(t, rr, "status", string(models.StatusUnderReview))
	})

	t.Run("already evaluated", func(t *testing.T) {
		r, svc := newRouter(t)
		projectID := id.NewProjectID()
		svc.EXPECT().MarkUnderReview(gomock.Any(), judge, projectID).
			Return(nil, dErrors.Conflict(dErrors.ReasonInvalidState, "cannot move from ACCEPTED to UNDER_REVIEW"))

		req := testutil.WithActor(testutil.NewRequest(t, http.MethodPost, "/projects/"+projectID.String()+"/review"), judge)
		rr := testutil.DoRequest(r, req)
		testutil.AssertConflictReason(t, rr, string(dErrors.ReasonInvalidState))
	})
}
