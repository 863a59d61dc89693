package domain

import dErrors "hackhub/pkg/domain-errors"

// Role is the coarse authority level resolved for an authenticated caller.
// Invariant: the value is one of the four supported roles.
type Role string

const (
	RoleParticipant Role = "PARTICIPANT"
	RoleOrganizer   Role = "ORGANIZER"
	RoleJudge       Role = "JUDGE"
	RoleAdmin       Role = "ADMIN"
)

var validRoles = map[Role]bool{
	RoleParticipant: true,
	RoleOrganizer:   true,
	RoleJudge:       true,
	RoleAdmin:       true,
}

// ParseRole constructs a Role from external input. Unknown values are rejected,
// never coerced.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid role")
	}
	return r, nil
}

func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// RoleSet lists the roles permitted to invoke an operation.
// Admin has no implicit inheritance: every set that admits ADMIN names it.
type RoleSet []Role

// Roles builds a RoleSet.
func Roles(roles ...Role) RoleSet {
	return RoleSet(roles)
}

func (s RoleSet) Allows(r Role) bool {
	for _, allowed := range s {
		if allowed == r {
			return true
		}
	}
	return false
}

// Actor is the (user, role) pair attached to every core operation.
type Actor struct {
	ID   UserID
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Owns reports whether the actor is the given owner. Role alone never grants ownership.
func (a Actor) Owns(owner UserID) bool {
	return !a.ID.IsNil() && a.ID == owner
}

// Gate returns Forbidden when the actor's role is not in the set.
func (a Actor) Gate(allowed RoleSet, operation string) error {
	if !allowed.Allows(a.Role) {
		return dErrors.New(dErrors.CodeForbidden, "role "+string(a.Role)+" may not "+operation)
	}
	return nil
}
