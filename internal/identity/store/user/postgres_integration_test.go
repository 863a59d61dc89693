//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	"hackhub/internal/identity/models"
	"hackhub/internal/identity/store/user"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
	"hackhub/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *user.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = user.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) TestRoundTripAndUniqueEmail() {
	ctx := context.Background()
	u, err := models.NewUser(id.NewUserID(), gofakeit.Email(), gofakeit.Name(), id.RoleJudge, time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(err)
	s.Require().NoError(s.store.Create(ctx, u))

	found, err := s.store.FindByEmail(ctx, u.Email)
	s.Require().NoError(err)
	s.Equal(u.ID, found.ID)
	s.Equal(id.RoleJudge, found.Role)
	s.True(found.Active)

	dup := *u
	dup.ID = id.NewUserID()
	s.ErrorIs(s.store.Create(ctx, &dup), sentinel.ErrAlreadyUsed)

	_, err = s.store.FindByID(ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}
