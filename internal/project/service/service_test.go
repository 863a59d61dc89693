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
	"hackhub/internal/project/models"
	"hackhub/internal/project/service"
	"hackhub/internal/project/service/mocks"
	regmodels "hackhub/internal/registration/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
)

type ProjectServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	projects      *mocks.MockProjectStore
	events        *mocks.MockEventStore
	registrations *mocks.MockRegistrationLocker
	judges        *mocks.MockJudgeDirectory
	publisher     *mocks.MockAuditPublisher
	svc           *service.Service
	participant   id.Actor
	organizer     id.Actor
}

func TestProjectServiceSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceSuite))
}

func (s *ProjectServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.projects = mocks.NewMockProjectStore(s.ctrl)
	s.events = mocks.NewMockEventStore(s.ctrl)
	s.registrations = mocks.NewMockRegistrationLocker(s.ctrl)
	s.judges = mocks.NewMockJudgeDirectory(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = service.New(s.projects, s.events, s.registrations, s.judges,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithAuditPublisher(s.publisher),
	)
	s.participant = id.Actor{ID: id.NewUserID(), Role: id.RoleParticipant}
	s.organizer = id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
}

func (s *ProjectServiceSuite) event(status eventmodels.Status) *eventmodels.Event {
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	e, err := eventmodels.NewEvent(id.NewEventID(), s.organizer.ID, eventmodels.Fields{
		Name: "Submission Hack", Location: "Rome", StartDate: start, EndDate: start, MaxParticipants: 10,
	}, time.Now())
	s.Require().NoError(err)
	e.Status = status
	return e
}

func (s *ProjectServiceSuite) registration(eventID id.EventID, status regmodels.Status) *regmodels.Registration {
	return &regmodels.Registration{ID: id.NewRegistrationID(), UserID: s.participant.ID, EventID: eventID, Status: status}
}

var validFields = models.Fields{Title: "Carbon Ledger", GithubURL: "https://github.com/acme/ledger"}

func (s *ProjectServiceSuite) TestSubmit() {
	ctx := context.Background()

	s.Run("registered participant submits", func() {
		e := s.event(eventmodels.StatusActive)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().FindByUserAndEventForUpdate(gomock.Any(), s.participant.ID, e.ID).
			Return(s.registration(e.ID, regmodels.StatusConfirmed), nil)
		s.projects.EXPECT().FindBySubmitterAndEvent(gomock.Any(), s.participant.ID, e.ID).Return(nil, sentinel.ErrNotFound)
		s.projects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		p, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.Require().NoError(err)
		s.Equal(models.StatusSubmitted, p.Status)
		s.Zero(p.Score)
	})

	s.Run("unregistered caller is not-registered", func() {
		e := s.event(eventmodels.StatusUpcoming)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().FindByUserAndEventForUpdate(gomock.Any(), s.participant.ID, e.ID).Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(dErrors.ReasonNotRegistered, dErrors.ReasonOf(err))
	})

	s.Run("cancelled registration is not-registered", func() {
		e := s.event(eventmodels.StatusActive)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().FindByUserAndEventForUpdate(gomock.Any(), s.participant.ID, e.ID).
			Return(s.registration(e.ID, regmodels.StatusCancelled), nil)

		_, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.Equal(dErrors.ReasonNotRegistered, dErrors.ReasonOf(err))
	})

	s.Run("second submission is a duplicate", func() {
		e := s.event(eventmodels.StatusActive)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().FindByUserAndEventForUpdate(gomock.Any(), s.participant.ID, e.ID).
			Return(s.registration(e.ID, regmodels.StatusRegistered), nil)
		s.projects.EXPECT().FindBySubmitterAndEvent(gomock.Any(), s.participant.ID, e.ID).Return(&models.Project{}, nil)

		_, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.Equal(dErrors.ReasonDuplicate, dErrors.ReasonOf(err))
	})

	s.Run("unique violation is a duplicate", func() {
		e := s.event(eventmodels.StatusActive)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().FindByUserAndEventForUpdate(gomock.Any(), s.participant.ID, e.ID).
			Return(s.registration(e.ID, regmodels.StatusRegistered), nil)
		s.projects.EXPECT().FindBySubmitterAndEvent(gomock.Any(), s.participant.ID, e.ID).Return(nil, sentinel.ErrNotFound)
		s.projects.EXPECT().Create(gomock.Any(), gomock.Any()).Return(sentinel.ErrAlreadyUsed)

		_, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.Equal(dErrors.ReasonDuplicate, dErrors.ReasonOf(err))
	})

	s.Run("closed event is a bad request", func() {
		e := s.event(eventmodels.StatusCompleted)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)

		_, err := s.svc.Submit(ctx, s.participant, e.ID, validFields)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing event is not found", func() {
		s.events.EXPECT().FindByID(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.Submit(ctx, s.participant, id.NewEventID(), validFields)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("invalid fields fail before any read", func() {
		_, err := s.svc.Submit(ctx, s.participant, id.NewEventID(), models.Fields{Title: "x"})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("organizers cannot submit", func() {
		_, err := s.svc.Submit(ctx, s.organizer, id.NewEventID(), validFields)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *ProjectServiceSuite) TestMarkUnderReview() {
	ctx := context.Background()
	e := s.event(eventmodels.StatusActive)
	project := func(status models.Status) *models.Project {
		return &models.Project{ID: id.NewProjectID(), EventID: e.ID, SubmitterID: s.participant.ID, Status: status}
	}

	s.Run("assigned judge moves submission to review", func() {
		p := project(models.StatusSubmitted)
		judge := id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.judges.EXPECT().IsAssigned(gomock.Any(), judge.ID, e.ID).Return(true, nil)
		s.projects.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		updated, err := s.svc.MarkUnderReview(ctx, judge, p.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusUnderReview, updated.Status)
	})

	s.Run("unassigned judge is forbidden", func() {
		p := project(models.StatusSubmitted)
		judge := id.Actor{ID: id.NewUserID(), Role: id.RoleJudge}
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
		s.judges.EXPECT().IsAssigned(gomock.Any(), judge.ID, e.ID).Return(false, nil)

		_, err := s.svc.MarkUnderReview(ctx, judge, p.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("evaluated project cannot go back to review", func() {
		p := project(models.StatusWinner)
		s.projects.EXPECT().FindForUpdate(gomock.Any(), p.ID).Return(p, nil)
		s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)

		_, err := s.svc.MarkUnderReview(ctx, s.organizer, p.ID)
		s.Equal(dErrors.ReasonInvalidState, dErrors.ReasonOf(err))
	})
}
