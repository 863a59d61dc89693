package user

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/suite"

	"hackhub/internal/identity/models"
	id "hackhub/pkg/domain"
	"hackhub/pkg/platform/sentinel"
)

type UserStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func TestUserStoreSuite(t *testing.T) {
	suite.Run(t, new(UserStoreSuite))
}

func (s *UserStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func (s *UserStoreSuite) newUser(role id.Role) *models.User {
	u, err := models.NewUser(id.NewUserID(), gofakeit.Email(), gofakeit.Name(), role, time.Now())
	s.Require().NoError(err)
	return u
}

func (s *UserStoreSuite) TestCreateAndFind() {
	u := s.newUser(id.RoleParticipant)
	s.Require().NoError(s.store.Create(s.ctx, u))

	byID, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(u.Email, byID.Email)

	byEmail, err := s.store.FindByEmail(s.ctx, u.Email)
	s.Require().NoError(err)
	s.Equal(u.ID, byEmail.ID)

	_, err = s.store.FindByID(s.ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *UserStoreSuite) TestEmailIsUnique() {
	u := s.newUser(id.RoleParticipant)
	s.Require().NoError(s.store.Create(s.ctx, u))

	dup := s.newUser(id.RoleJudge)
	dup.Email = u.Email
	s.ErrorIs(s.store.Create(s.ctx, dup), sentinel.ErrAlreadyUsed)
}

func (s *UserStoreSuite) TestReturnedCopiesAreDetached() {
	u := s.newUser(id.RoleParticipant)
	s.Require().NoError(s.store.Create(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	found.Role = id.RoleAdmin

	again, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(id.RoleParticipant, again.Role)
}

func (s *UserStoreSuite) TestUpdateAndCount() {
	u := s.newUser(id.RoleParticipant)
	s.Require().NoError(s.store.Create(s.ctx, u))

	u.ApplyRole(id.RoleOrganizer, time.Now())
	s.Require().NoError(s.store.Update(s.ctx, u))

	found, err := s.store.FindByID(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal(id.RoleOrganizer, found.Role)

	s.ErrorIs(s.store.Update(s.ctx, s.newUser(id.RoleJudge)), sentinel.ErrNotFound)

	n, err := s.store.Count(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, n)
}
