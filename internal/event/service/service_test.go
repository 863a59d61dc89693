package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"hackhub/internal/audit"
	"hackhub/internal/event/models"
	"hackhub/internal/event/service"
	"hackhub/internal/event/service/mocks"
	"hackhub/internal/event/store"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/platform/sentinel"
)

type EventServiceSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	events        *mocks.MockEventStore
	registrations *mocks.MockRegistrationCounter
	projects      *mocks.MockProjectCounter
	publisher     *mocks.MockAuditPublisher
	svc           *service.Service
	owner         id.Actor
}

func TestEventServiceSuite(t *testing.T) {
	suite.Run(t, new(EventServiceSuite))
}

func (s *EventServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.events = mocks.NewMockEventStore(s.ctrl)
	s.registrations = mocks.NewMockRegistrationCounter(s.ctrl)
	s.projects = mocks.NewMockProjectCounter(s.ctrl)
	s.publisher = mocks.NewMockAuditPublisher(s.ctrl)
	s.svc = service.New(s.events, s.registrations, s.projects,
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithAuditPublisher(s.publisher),
	)
	s.owner = id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
}

func fields() models.Fields {
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	return models.Fields{
		Name:            "Autumn Hack",
		Location:        "Lisbon",
		StartDate:       start,
		EndDate:         start.Add(24 * time.Hour),
		MaxParticipants: 10,
	}
}

func (s *EventServiceSuite) event(status models.Status) *models.Event {
	e, err := models.NewEvent(id.NewEventID(), s.owner.ID, fields(), time.Now())
	s.Require().NoError(err)
	e.Status = status
	return e
}

func (s *EventServiceSuite) TestCreateEvent() {
	ctx := context.Background()

	s.Run("organizer creates upcoming event", func() {
		s.events.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, e audit.Event) error {
				s.Equal(audit.ActionEventCreated, e.Action)
				return nil
			})

		e, err := s.svc.CreateEvent(ctx, s.owner, fields())
		s.Require().NoError(err)
		s.Equal(models.StatusUpcoming, e.Status)
		s.Equal(s.owner.ID, e.OrganizerID)
	})

	s.Run("participant is forbidden", func() {
		_, err := s.svc.CreateEvent(ctx, id.Actor{ID: id.NewUserID(), Role: id.RoleParticipant}, fields())
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("end before start is a validation error", func() {
		f := fields()
		f.EndDate = f.StartDate.Add(-time.Minute)
		_, err := s.svc.CreateEvent(ctx, s.owner, f)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("audit failure does not fail the operation", func() {
		s.events.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(audit.ErrBufferFull)

		_, err := s.svc.CreateEvent(ctx, s.owner, fields())
		s.NoError(err)
	})
}

func (s *EventServiceSuite) TestUpdateStatus() {
	ctx := context.Background()

	s.Run("owner activates upcoming event", func() {
		e := s.event(models.StatusUpcoming)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)
		s.events.EXPECT().Update(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, updated *models.Event) error {
				s.Equal(models.StatusActive, updated.Status)
				return nil
			})
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		updated, err := s.svc.UpdateStatus(ctx, s.owner, e.ID, models.StatusActive)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, updated.Status)
	})

	s.Run("another organizer is forbidden and nothing is written", func() {
		e := s.event(models.StatusUpcoming)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)

		intruder := id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
		_, err := s.svc.UpdateStatus(ctx, intruder, e.ID, models.StatusCancelled)
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	s.Run("admin may change any event", func() {
		e := s.event(models.StatusActive)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)
		s.events.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		admin := id.Actor{ID: id.NewUserID(), Role: id.RoleAdmin}
		updated, err := s.svc.UpdateStatus(ctx, admin, e.ID, models.StatusCompleted)
		s.Require().NoError(err)
		s.Equal(models.StatusCompleted, updated.Status)
	})

	s.Run("terminal event cannot move", func() {
		e := s.event(models.StatusCompleted)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := s.svc.UpdateStatus(ctx, s.owner, e.ID, models.StatusActive)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Empty(dErrors.ReasonOf(err))
		s.Equal(models.StatusCompleted, e.Status)
	})

	s.Run("same state is an invalid transition", func() {
		e := s.event(models.StatusActive)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := s.svc.UpdateStatus(ctx, s.owner, e.ID, models.StatusActive)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("unknown status is a bad request", func() {
		_, err := s.svc.UpdateStatus(ctx, s.owner, id.NewEventID(), models.Status("ARCHIVED"))
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("missing event is not found", func() {
		s.events.EXPECT().FindForUpdate(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrNotFound)

		_, err := s.svc.UpdateStatus(ctx, s.owner, id.NewEventID(), models.StatusActive)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("store failure is internal", func() {
		s.events.EXPECT().FindForUpdate(gomock.Any(), gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := s.svc.UpdateStatus(ctx, s.owner, id.NewEventID(), models.StatusActive)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func (s *EventServiceSuite) TestUpdateEvent() {
	ctx := context.Background()

	s.Run("capacity cannot drop below active registrations", func() {
		e := s.event(models.StatusUpcoming)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().CountActive(gomock.Any(), e.ID).Return(5, nil)

		f := fields()
		f.MaxParticipants = 4
		_, err := s.svc.UpdateEvent(ctx, s.owner, e.ID, f)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(dErrors.ReasonFull, dErrors.ReasonOf(err))
	})

	s.Run("terminal event cannot be edited", func() {
		e := s.event(models.StatusCancelled)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)

		_, err := s.svc.UpdateEvent(ctx, s.owner, e.ID, fields())
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	s.Run("owner edits fields", func() {
		e := s.event(models.StatusActive)
		s.events.EXPECT().FindForUpdate(gomock.Any(), e.ID).Return(e, nil)
		s.registrations.EXPECT().CountActive(gomock.Any(), e.ID).Return(2, nil)
		s.events.EXPECT().Update(gomock.Any(), gomock.Any()).Return(nil)
		s.publisher.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil)

		f := fields()
		f.Name = "  Renamed Hack  "
		f.MaxParticipants = 2
		updated, err := s.svc.UpdateEvent(ctx, s.owner, e.ID, f)
		s.Require().NoError(err)
		s.Equal("Renamed Hack", updated.Name)
		s.Equal(2, updated.MaxParticipants)
		s.Equal(models.StatusActive, updated.Status)
	})
}

func (s *EventServiceSuite) TestGetEvent() {
	e := s.event(models.StatusActive)
	s.events.EXPECT().FindByID(gomock.Any(), e.ID).Return(e, nil)
	s.registrations.EXPECT().CountActive(gomock.Any(), e.ID).Return(3, nil)
	s.projects.EXPECT().CountByEvent(gomock.Any(), e.ID).Return(1, nil)

	details, err := s.svc.GetEvent(context.Background(), e.ID)
	s.Require().NoError(err)
	s.Equal(e.ID, details.ID)
	s.Equal(3, details.RegistrationCount)
	s.Equal(1, details.ProjectCount)
}

func TestUpdateStatus_IllegalMovesAreBadRequests(t *testing.T) {
	owner := id.Actor{ID: id.NewUserID(), Role: id.RoleOrganizer}
	tests := []struct {
		from, to models.Status
	}{
		{models.StatusCompleted, models.StatusActive},
		{models.StatusCancelled, models.StatusUpcoming},
		{models.StatusActive, models.StatusUpcoming},
		{models.StatusUpcoming, models.StatusCompleted},
		{models.StatusActive, models.StatusActive},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			ctrl := gomock.NewController(t)
			events := store.NewInMemory()
			svc := service.New(events, mocks.NewMockRegistrationCounter(ctrl), mocks.NewMockProjectCounter(ctrl))

			e, err := models.NewEvent(id.NewEventID(), owner.ID, fields(), time.Now())
			require.NoError(t, err)
			e.Status = tt.from
			require.NoError(t, events.Create(context.Background(), e))

			_, err = svc.UpdateStatus(context.Background(), owner, e.ID, tt.to)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
			assert.Empty(t, dErrors.ReasonOf(err))

			stored, err := events.FindByID(context.Background(), e.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.from, stored.Status)
		})
	}
}
