package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "hackhub/pkg/domain-errors"
)

func TestParseRole(t *testing.T) {
	for _, s := range []string{"PARTICIPANT", "ORGANIZER", "JUDGE", "ADMIN"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, s, r.String())
	}

	for _, s := range []string{"", "admin", "SUPERUSER"} {
		_, err := ParseRole(s)
		require.Error(t, err, s)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	}
}

func TestRoleSet_AdminIsNotImplicit(t *testing.T) {
	organizersOnly := Roles(RoleOrganizer)
	assert.True(t, organizersOnly.Allows(RoleOrganizer))
	assert.False(t, organizersOnly.Allows(RoleAdmin))

	withAdmin := Roles(RoleOrganizer, RoleAdmin)
	assert.True(t, withAdmin.Allows(RoleAdmin))
	assert.False(t, withAdmin.Allows(RoleJudge))
}

func TestActor_Gate(t *testing.T) {
	judge := Actor{ID: NewUserID(), Role: RoleJudge}

	err := judge.Gate(Roles(RoleParticipant, RoleAdmin), "register")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))

	require.NoError(t, judge.Gate(Roles(RoleJudge, RoleAdmin), "evaluate"))
}

func TestActor_Owns(t *testing.T) {
	owner := NewUserID()
	assert.True(t, Actor{ID: owner, Role: RoleOrganizer}.Owns(owner))
	assert.False(t, Actor{ID: NewUserID(), Role: RoleAdmin}.Owns(owner), "admin role is not ownership")
	assert.False(t, Actor{Role: RoleOrganizer}.Owns(UserID{}))
}
