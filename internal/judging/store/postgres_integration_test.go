//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	eventmodels "hackhub/internal/event/models"
	eventstore "hackhub/internal/event/store"
	idmodels "hackhub/internal/identity/models"
	userstore "hackhub/internal/identity/store/user"
	"hackhub/internal/judging/models"
	"hackhub/internal/judging/store"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/testutil/containers"
)

type AssignmentPostgresSuite struct {
	suite.Suite
	pg          *containers.PostgresContainer
	users       *userstore.PostgresStore
	events      *eventstore.PostgresStore
	assignments *store.PostgresStore
	now         time.Time
}

func TestAssignmentPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AssignmentPostgresSuite))
}

func (s *AssignmentPostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.users = userstore.NewPostgres(s.pg.DB)
	s.events = eventstore.NewPostgres(s.pg.DB)
	s.assignments = store.NewPostgres(s.pg.DB)
	s.now = time.Date(2026, 6, 10, 12, 0, 0, 0, time.UTC)
}

func (s *AssignmentPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background()))
}

func (s *AssignmentPostgresSuite) user(role id.Role) id.UserID {
	u, err := idmodels.NewUser(id.NewUserID(), gofakeit.UUID()+"@example.com", gofakeit.Name(), role, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u.ID
}

func (s *AssignmentPostgresSuite) event() id.EventID {
	e, err := eventmodels.NewEvent(id.NewEventID(), s.user(id.RoleOrganizer), eventmodels.Fields{
		Name: "Judged Hack", Location: "Berlin", StartDate: s.now, EndDate: s.now.Add(time.Hour), MaxParticipants: 5,
	}, s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.events.Create(context.Background(), e))
	return e.ID
}

func (s *AssignmentPostgresSuite) TestWorkloadPersistsAndDuplicateRejected() {
	ctx := context.Background()
	judge := s.user(id.RoleJudge)
	eventID := s.event()

	a, err := models.NewAssignment(id.NewAssignmentID(), judge, eventID, "ml", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.assignments.Create(ctx, a))

	dup, err := models.NewAssignment(id.NewAssignmentID(), judge, eventID, "", s.now)
	s.Require().NoError(err)
	s.ErrorIs(s.assignments.Create(ctx, dup), sentinel.ErrAlreadyUsed)

	assigned, err := s.assignments.IsAssigned(ctx, judge, eventID)
	s.Require().NoError(err)
	s.True(assigned)

	locked, err := s.assignments.FindForUpdate(ctx, judge, eventID)
	s.Require().NoError(err)
	s.Require().NoError(locked.RecordEvaluation())
	s.Require().NoError(s.assignments.UpdateWorkload(ctx, locked))

	found, err := s.assignments.FindByUserAndEvent(ctx, judge, eventID)
	s.Require().NoError(err)
	s.Equal(1, found.EvaluationsPerformed)
	s.Equal("ml", found.Expertise)

	list, err := s.assignments.ListByEvent(ctx, eventID)
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *AssignmentPostgresSuite) TestCheckConstraintBacksWorkloadCap() {
	ctx := context.Background()
	judge := s.user(id.RoleJudge)
	eventID := s.event()

	a, err := models.NewAssignment(id.NewAssignmentID(), judge, eventID, "", s.now)
	s.Require().NoError(err)
	s.Require().NoError(s.assignments.Create(ctx, a))

	a.EvaluationsPerformed = models.WorkloadCap + 1
	s.Error(s.assignments.UpdateWorkload(ctx, a))

	_, err = s.assignments.FindByUserAndEvent(ctx, id.NewUserID(), eventID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}
