//go:build integration

package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	eventmodels "hackhub/internal/event/models"
	eventstore "hackhub/internal/event/store"
	idmodels "hackhub/internal/identity/models"
	userstore "hackhub/internal/identity/store/user"
	"hackhub/internal/platform/logger"
	"hackhub/internal/platform/postgres"
	"hackhub/internal/registration/service"
	regstore "hackhub/internal/registration/store"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
	"hackhub/pkg/testutil/containers"
)

type AdmissionPostgresSuite struct {
	suite.Suite
	pg     *containers.PostgresContainer
	users  *userstore.PostgresStore
	events *eventstore.PostgresStore
	regs   *regstore.PostgresStore
	svc    *service.Service
}

func TestAdmissionPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AdmissionPostgresSuite))
}

func (s *AdmissionPostgresSuite) SetupSuite() {
	s.pg = containers.GetManager().GetPostgres(s.T())
	s.users = userstore.NewPostgres(s.pg.DB)
	s.events = eventstore.NewPostgres(s.pg.DB)
	s.regs = regstore.NewPostgres(s.pg.DB)
	s.svc = service.New(s.regs, s.events,
		service.WithLogger(logger.Discard()),
		service.WithTx(postgres.NewTxManager(s.pg.DB, postgres.WithTxLogger(logger.Discard()))),
	)
}

func (s *AdmissionPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateAll(context.Background()))
}

func (s *AdmissionPostgresSuite) newUser(role id.Role) id.Actor {
	u, err := idmodels.NewUser(id.NewUserID(), gofakeit.UUID()+"@example.com", gofakeit.Name(), role, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.users.Create(context.Background(), u))
	return u.Actor()
}

func (s *AdmissionPostgresSuite) newEvent(capacity int) *eventmodels.Event {
	organizer := s.newUser(id.RoleOrganizer)
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Microsecond)
	e, err := eventmodels.NewEvent(id.NewEventID(), organizer.ID, eventmodels.Fields{
		Name: "Contended Hack", Location: "Porto", StartDate: start, EndDate: start.Add(time.Hour), MaxParticipants: capacity,
	}, time.Now().UTC())
	s.Require().NoError(err)
	s.Require().NoError(s.events.Create(context.Background(), e))
	return e
}

func (s *AdmissionPostgresSuite) TestCapacityHoldsUnderContention() {
	const (
		capacity = 5
		callers  = 48
	)
	e := s.newEvent(capacity)
	actors := make([]id.Actor, callers)
	for i := range actors {
		actors[i] = s.newUser(id.RoleParticipant)
	}

	var (
		wg             sync.WaitGroup
		admitted, full atomic.Int32
		other          atomic.Int32
	)
	start := make(chan struct{})
	for _, actor := range actors {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.svc.Register(context.Background(), actor, e.ID, "")
			switch {
			case err == nil:
				admitted.Add(1)
			case dErrors.ReasonOf(err) == dErrors.ReasonFull:
				full.Add(1)
			default:
				other.Add(1)
				s.T().Logf("unexpected error: %v", err)
			}
		}()
	}
	close(start)
	wg.Wait()

	s.EqualValues(capacity, admitted.Load())
	s.EqualValues(callers-capacity, full.Load())
	s.Zero(other.Load())

	active, err := s.regs.CountActive(context.Background(), e.ID)
	s.Require().NoError(err)
	s.Equal(capacity, active)
}

func (s *AdmissionPostgresSuite) TestSameUserRacesToOneRow() {
	e := s.newEvent(10)
	actor := s.newUser(id.RoleParticipant)

	var (
		wg        sync.WaitGroup
		admitted  atomic.Int32
		duplicate atomic.Int32
	)
	for range 12 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Register(context.Background(), actor, e.ID, "solo")
			switch {
			case err == nil:
				admitted.Add(1)
			case dErrors.ReasonOf(err) == dErrors.ReasonDuplicate:
				duplicate.Add(1)
			}
		}()
	}
	wg.Wait()

	s.EqualValues(1, admitted.Load())
	s.EqualValues(11, duplicate.Load())
}

func (s *AdmissionPostgresSuite) TestCancelFreesSlotButBlocksReentry() {
	e := s.newEvent(1)
	alice := s.newUser(id.RoleParticipant)
	bob := s.newUser(id.RoleParticipant)
	ctx := context.Background()

	reg, err := s.svc.Register(ctx, alice, e.ID, "")
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, bob, e.ID, "")
	s.Equal(dErrors.ReasonFull, dErrors.ReasonOf(err))

	_, err = s.svc.Cancel(ctx, alice, reg.ID)
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, bob, e.ID, "")
	s.Require().NoError(err)

	_, err = s.svc.Register(ctx, alice, e.ID, "")
	s.Equal(dErrors.ReasonDuplicate, dErrors.ReasonOf(err))
}
