package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	eventmodels "hackhub/internal/event/models"
	idmodels "hackhub/internal/identity/models"
	"hackhub/internal/judging/models"
	"hackhub/internal/judging/service"
	"hackhub/internal/judging/service/mocks"
	projectmodels "hackhub/internal/project/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
)

type JudgingServiceSuite struct {
	suite.Suite
	ctrl        *gomock.Controller
	assignments *mocks.MockAssignmentStore
	projects    *mocks.MockProjectStore
	events      *mocks.MockEventStore
	users       *mocks.MockUserDirectory
	publisher   *mocks.MockAuditPublisher
	svc         *service.Service
	judge       id.Actor
	organizer   id.Actor
}

func TestJudgingServiceSuite(t *testing.T) {
	suite.Run(t, new(JudgingServiceSuite))
}

func (s *JudgingServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.assignments = mocks.NewMockAssignmentStore(s.ctrl)
	s.projects = mocks.NewMockProjectStore(s.ctrl)
	s.events = mocks.NewMockEventStore(s.ctrl)
	s.users = mocks.NewMockUserDirectory(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = service.New(s.assignments, s.projects, s.events, s.users,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithAuditPublisher(s.publisher),
	)
	s.judge = id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}
	s.organizer = id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
}

func (s *JudgingServiceSuite) project() *projectmodels.Project {
	p, err := projectmodels.NewProject(id.NewProjectID(), id.NewEventID(), id.NewUserID(),
		projectmodels.Fields{Title: "Edge Cache"}, time.Now())
	s.Require().NoError(err)
	return p
}

func (s *JudgingServiceSuite) assignment(eventID id.EventID, performed int) *models.Assignment {
	return &models.Assignment{ID: id.NewAssignmentID(), UserID: s.judge.ID, EventID: eventID, EvaluationsPerformed: performed}
}

func (s *JudgingServiceSuite) TestEvaluate() {
	ctx := context.Background()

	s.Run("assigned judge scores project and consumes workload", func() {
		p := s.project()
		a := s.assignment(p.EventID, 3)
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.assignments.EXPECT().FindForUpdate(gomock.Any(), s.judge.ID, p.EventID).Return(a, nil)
		s.projects.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.assignments.EXPECT().UpdateWorkload(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *models.Assignment) error {
				s.Equal(4, updated.EvaluationsPerformed)
				return nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		evaluated, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: p.ID, Score: 72, Feedback: "solid"})
		s.Require().NoError(err)
		s.Equal(projectmodels.StatusAccepted, evaluated.Status)
		s.Equal(72, evaluated.Score)
		s.Equal(s.judge.ID, evaluated.EvaluatorID)
	})

	s.Run("judge at cap is rejected before any write", func() {
		p := s.project()
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.assignments.EXPECT().FindForUpdate(gomock.Any(), s.judge.ID, p.EventID).Return(s.assignment(p.EventID, models.WorkloadCap), nil)

		_, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: p.ID, Score: 90})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(dErrors.ReasonWorkloadCap, dErrors.ReasonOf(err))
	})

	s.Run("unassigned judge is forbidden", func() {
		p := s.project()
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.assignments.EXPECT().FindForUpdate(gomock.Any(), s.judge.ID, p.EventID).Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: p.ID, Score: 90})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("unassigned admin evaluates without workload", func() {
		p := s.project()
		admin := id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.assignments.EXPECT().FindForUpdate(gomock.Any(), admin.ID, p.EventID).Return(nil, sentinel.ErrNotFound)
		s.projects.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		evaluated, err := s.svc.Evaluate(ctx, admin, service.Evaluation{ProjectID: p.ID, Score: 80})
		s.Require().NoError(err)
		s.Equal(projectmodels.StatusWinner, evaluated.Status)
	})

	s.Run("event hint mismatch is a bad request", func() {
		p := s.project()
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)

		_, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: p.ID, EventID: id.NewEventID(), Score: 50})
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("score out of range is a bad request", func() {
		for _, score := range []int{-1, 101} {
			_, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: id.NewProjectID(), Score: score})
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest), "score %d", score)
		}
	})

	s.Run("participants cannot evaluate", func() {
		_, err := s.svc.Evaluate(ctx, id.Actor{ID: id.NewUserID(), Role: id.RoleParticipant},
			service.Evaluation{ProjectID: id.NewProjectID(), Score: 50})
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("missing project is not found", func() {
		s.projects.EXPECT().FindForUpdate(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.Evaluate(ctx, s.judge, service.Evaluation{ProjectID: id.NewProjectID(), Score: 50})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *JudgingServiceSuite) TestAssignJudge() {
	ctx := context.Background()
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	event, err := eventmodels.NewEvent(id.NewEventID(), s.organizer.ID, eventmodels.Fields{
		Name: "Judged Hack", Location: "Prague", StartDate: start, EndDate: start, MaxParticipants: 10,
	}, time.Now())
	s.Require().NoError(err)
	judgeUser := &idmodels.User{ID: s.judge.ID, Role: id.RoleJudge, Active: true}

	s.Run("organizer assigns an active judge", func() {
		s.events.EXPECT().FindByID(gomock.Any(), event.ID).Return(event, nil)
		s.users.EXPECT().FindUser(gomock.Any(), s.judge.ID).Return(judgeUser, nil)
		s.assignments.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		a, err := s.svc.AssignJudge(ctx, s.organizer, event.ID, s.judge.ID, "security")
		s.Require().NoError(err)
		s.Zero(a.EvaluationsPerformed)
		s.Equal("security", a.Expertise)
	})

	s.Run("duplicate assignment is a conflict", func() {
		s.events.EXPECT().FindByID(gomock.Any(), event.ID).Return(event, nil)
		s.users.EXPECT().FindUser(gomock.Any(), s.judge.ID).Return(judgeUser, nil)
		s.assignments.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.svc.AssignJudge(ctx, s.organizer, event.ID, s.judge.ID, "")
		s.Equal(dErrors.ReasonDuplicate, dErrors.ReasonOf(err))
	})

	s.Run("participant cannot be assigned", func() {
		s.events.EXPECT().FindByID(gomock.Any(), event.ID).Return(event, nil)
		s.users.EXPECT().FindUser(gomock.Any(), gomock.Any()).Return(&idmodels.User{Role: id.RoleParticipant, Active: true}, nil)

		_, err := s.svc.AssignJudge(ctx, s.organizer, event.ID, id.NewUserID(), "")
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("other organizer is forbidden", func() {
		s.events.EXPECT().FindByID(gomock.Any(), event.ID).Return(event, nil)

		_, err := s.svc.AssignJudge(ctx, id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}, event.ID, s.judge.ID, "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}
