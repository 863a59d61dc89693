package handler

import (
	"strings"
	"time"

	"hackhub/internal/identity/models"
	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

// UpdateRoleRequest is the body for PATCH /users/{id}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`

	role id.Role
}

func (r *UpdateRoleRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	role, err := id.ParseRole(strings.TrimSpace(r.Role))
	if err != nil {
		return err
	}
	r.role = role
	return nil
}

// SetActiveRequest is the body for PATCH /users/{id}/active.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

func (r *SetActiveRequest) Validate() error {
	if r == nil || r.Active == nil {
		return dErrors.New(dErrors.CodeValidation, "active is required")
	}
	return nil
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	}
}
