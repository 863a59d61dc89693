package models

import (
	"net/mail"
	"strings"
	"time"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

const (
	maxEmailLength = 254
	maxNameLength  = 100
)

// User is an account known to the identity oracle. Only an active user
// resolves to an Actor.
type User struct {
	ID        id.UserID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      id.Role   `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser validates and constructs an active user.
func NewUser(userID id.UserID, email, name string, role id.Role, now time.Time) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || len(email) > maxEmailLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email must be 1-254 characters")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email is malformed")
	}
	if name == "" || len(name) > maxNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "name must be 1-100 characters")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "invalid role")
	}
	return &User{
		ID:        userID,
		Email:     email,
		Name:      name,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Actor projects the user onto the (id, role) pair the core operates on.
func (u *User) Actor() id.Actor {
	return id.Actor{ID: u.ID, Role: u.Role}
}

func (u *User) ApplyRole(role id.Role, now time.Time) {
	u.Role = role
	u.UpdatedAt = now
}

func (u *User) ApplyActive(active bool, now time.Time) {
	u.Active = active
	u.UpdatedAt = now
}
