//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	"hackhub/internal/event/models"
	"hackhub/internal/event/store"
	idmodels "hackhub/internal/identity/models"
	userstore "hackhub/internal/identity/store/user"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/testutil/containers"
)

type EventPostgresSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	users  *userstore.PostgresStore
	events *store.PostgresStore
	base   time.Time
}

func TestEventPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(EventPostgresSuite))
}

func (s *EventPostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.users = userstore.NewPostgres(s.pg.DB)
	s.events = store.NewPostgres(s.pg.DB)
	s.base = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
}

func (s *EventPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background()))
}

func (s *EventPostgresSuite) organizer() id.UserID {
	u, err := idmodels.NewUser(id.NewUserID(), gofakeit.UUID()+"@example.com", gofakeit.Name(), id.RoleOrganizer, s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u.ID
}

func (s *EventPostgresSuite) create(organizer id.UserID, start time.Time) *models.Event {
	e, err := models.NewEvent(id.NewEventID(), organizer, models.Fields{
		Name:            gofakeit.AppName() + " Hack",
		Location:        gofakeit.City(),
		StartDate:       start,
		EndDate:         start.Add(24 * time.Hour),
		MaxParticipants: 25,
		PrizeAmount:     1500.50,
	}, s.base)
	s.Require().NoError(err)
	s.Require().NoError(s.events.Create(context.Background(), e))
	return e
}

func (s *EventPostgresSuite) TestRoundTripAndUpdate() {
	ctx := context.Background()
	e := s.create(s.organizer(), s.base)

	found, err := s.events.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(e.Name, found.Name)
	s.Equal(1500.50, found.PrizeAmount)
	s.True(e.StartDate.Equal(found.StartDate))
	s.Equal(models.StatusUpcoming, found.Status)

	found.ApplyStatus(models.StatusActive, s.base.Add(time.Hour))
	s.Require().NoError(s.events.Update(ctx, found))

	again, err := s.events.FindForUpdate(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusActive, again.Status)

	_, err = s.events.FindByID(ctx, id.NewEventID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *EventPostgresSuite) TestListFiltersAndOrders() {
	ctx := context.Background()
	alice := s.organizer()
	bob := s.organizer()
	later := s.create(alice, s.base.Add(48*time.Hour))
	sooner := s.create(alice, s.base)
	other := s.create(bob, s.base.Add(24*time.Hour))

	all, err := s.events.List(ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal([]id.EventID{sooner.ID, other.ID, later.ID}, []id.EventID{all[0].ID, all[1].ID, all[2].ID})

	mine, err := s.events.List(ctx, models.ListFilter{OrganizerID: alice})
	s.Require().NoError(err)
	s.Len(mine, 2)

	other.ApplyStatus(models.StatusActive, s.base)
	s.Require().NoError(s.events.Update(ctx, other))
	active, err := s.events.List(ctx, models.ListFilter{Status: models.StatusActive})
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal(other.ID, active[0].ID)

	counts, err := s.events.CountByStatus(ctx)
	s.Require().NoError(err)
	s.Equal(2, counts[models.StatusUpcoming])
	s.Equal(1, counts[models.StatusActive])
}
