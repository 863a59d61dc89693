package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

const (
	MinNameLength       = 3
	MaxNameLength       = 200
	MaxLocationLength   = 200
	MaxDescriptionLen   = 2000
	MaxParticipantLimit = 100000
)

// Event is a hackathon. Only its organizer (or an admin) may mutate it;
// anyone may read it.
//
// Invariants:
//   - EndDate is not before StartDate
//   - MaxParticipants is in [1, 100000]
//   - PrizeAmount is not negative
//   - COMPLETED and CANCELLED are terminal
type Event struct {
	ID              id.EventID `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Location        string     `json:"location"`
	StartDate       time.Time  `json:"start_date"`
	EndDate         time.Time  `json:"end_date"`
	MaxParticipants int        `json:"max_participants"`
	PrizeAmount     float64    `json:"prize_amount"`
	Status          Status     `json:"status"`
	OrganizerID     id.UserID  `json:"organizer_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// Fields are the organizer-editable attributes of an event.
type Fields struct {
	Name            string
	Description     string
	Location        string
	StartDate       time.Time
	EndDate         time.Time
	MaxParticipants int
	PrizeAmount     float64
}

// Normalize trims text fields in place.
func (f *Fields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	f.Description = strings.TrimSpace(f.Description)
	f.Location = strings.TrimSpace(f.Location)
}

// Check enforces the field rules. Violations carry CodeInvariantViolation.
func (f Fields) Check() error {
	switch n := utf8.RuneCountInString(f.Name); {
	case n < MinNameLength || n > MaxNameLength:
		return invariant("name must be between 3 and 200 characters")
	}
	if f.Location == "" || utf8.RuneCountInString(f.Location) > MaxLocationLength {
		return invariant("location is required and must be at most 200 characters")
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLen {
		return invariant("description must be at most 2000 characters")
	}
	if f.StartDate.IsZero() || f.EndDate.IsZero() {
		return invariant("start and end dates are required")
	}
	if f.EndDate.Before(f.StartDate) {
		return invariant("end date must not be before start date")
	}
	if f.MaxParticipants < 1 || f.MaxParticipants > MaxParticipantLimit {
		return invariant("max participants must be between 1 and 100000")
	}
	if f.PrizeAmount < 0 {
		return invariant("prize amount must not be negative")
	}
	return nil
}

// NewEvent validates fields and builds an UPCOMING event owned by organizer.
func NewEvent(eventID id.EventID, organizer id.UserID, f Fields, now time.Time) (*Event, error) {
	f.Normalize()
	if err := f.Check(); err != nil {
		return nil, err
	}
	e := &Event{
		ID:          eventID,
		Status:      StatusUpcoming,
		OrganizerID: organizer,
		CreatedAt:   now,
	}
	e.ApplyFields(f, now)
	return e, nil
}

// ManagedBy reports whether actor may mutate the event: its organizer, or an admin.
func (e *Event) ManagedBy(actor id.Actor) bool {
	return actor.Owns(e.OrganizerID) || actor.IsAdmin()
}

// CanEdit rejects edits to terminal events.
func (e *Event) CanEdit() error {
	if e.Status.IsTerminal() {
		return invariant("event is " + string(e.Status) + " and can no longer be edited")
	}
	return nil
}

func (e *Event) ApplyFields(f Fields, now time.Time) {
	e.Name = f.Name
	e.Description = f.Description
	e.Location = f.Location
	e.StartDate = f.StartDate
	e.EndDate = f.EndDate
	e.MaxParticipants = f.MaxParticipants
	e.PrizeAmount = f.PrizeAmount
	e.UpdatedAt = now
}

// CanTransitionTo validates a lifecycle step.
func (e *Event) CanTransitionTo(next Status) error {
	if !e.Status.CanTransitionTo(next) {
		return invariant("cannot move event from " + string(e.Status) + " to " + string(next))
	}
	return nil
}

func (e *Event) ApplyStatus(next Status, now time.Time) {
	e.Status = next
	e.UpdatedAt = now
}

// AcceptsEntries reports whether registrations and submissions are open.
func (e *Event) AcceptsEntries() bool {
	return e.Status.AcceptsEntries()
}

func invariant(msg string) error {
	return dErrors.New(dErrors.CodeInvariantViolation, msg)
}

// ListFilter narrows ListEvents. Zero fields match everything.
type ListFilter struct {
	Status      Status
	OrganizerID id.UserID
}

// Matches reports whether e passes the filter.
func (f ListFilter) Matches(e *Event) bool {
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.OrganizerID.IsNil() && e.OrganizerID != f.OrganizerID {
		return false
	}
	return true
}

// Details is an event with its participation counters.
type Details struct {
	Event
	RegistrationCount int `json:"registration_count"`
	ProjectCount      int `json:"project_count"`
}
