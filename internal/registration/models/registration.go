package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

const MaxTeamNameLength = 100

// Status is the lifecycle state of a registration.
type Status string

const (
	StatusRegistered   Status = "REGISTERED"
	StatusConfirmed    Status = "CONFIRMED"
	StatusCancelled    Status = "CANCELLED"
	StatusDisqualified Status = "DISQUALIFIED"
)

var transitions = map[Status][]Status{
	StatusRegistered:   {StatusConfirmed, StatusCancelled, StatusDisqualified},
	StatusConfirmed:    {StatusCancelled, StatusDisqualified},
	StatusCancelled:    nil,
	StatusDisqualified: nil,
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// HoldsSlot reports whether a registration in this state counts toward
// the event's capacity. Only cancellation frees a slot.
func (s Status) HoldsSlot() bool {
	return s.IsValid() && s != StatusCancelled
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Registration records a participant's admission to an event. Rows are
// never deleted; at most one exists per (user, event).
type Registration struct {
	ID           id.RegistrationID `json:"id"`
	UserID       id.UserID         `json:"user_id"`
	EventID      id.EventID        `json:"event_id"`
	Status       Status            `json:"status"`
	TeamName     string            `json:"team_name,omitempty"`
	RegisteredAt time.Time         `json:"registered_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// NewRegistration builds a REGISTERED registration.
func NewRegistration(regID id.RegistrationID, userID id.UserID, eventID id.EventID, teamName string, now time.Time) (*Registration, error) {
	teamName = strings.TrimSpace(teamName)
	if utf8.RuneCountInString(teamName) > MaxTeamNameLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "team name must be at most 100 characters")
	}
	if userID.IsNil() || eventID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user and event are required")
	}
	return &Registration{
		ID:           regID,
		UserID:       userID,
		EventID:      eventID,
		Status:       StatusRegistered,
		TeamName:     teamName,
		RegisteredAt: now,
		UpdatedAt:    now,
	}, nil
}

// CanTransitionTo validates a lifecycle step.
func (r *Registration) CanTransitionTo(next Status) error {
	if !r.Status.CanTransitionTo(next) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"cannot move registration from "+string(r.Status)+" to "+string(next))
	}
	return nil
}

func (r *Registration) ApplyStatus(next Status, now time.Time) {
	r.Status = next
	r.UpdatedAt = now
}

// CanSubmit reports whether the registrant may submit a project.
// Disqualification is enforced by organizers at review time, not here.
func (r *Registration) CanSubmit() bool {
	return r.Status.HoldsSlot()
}
