// Package domain holds the typed identifiers and role vocabulary shared by every
// bounded context.
//
// IDs are distinct named types over uuid.UUID so a RegistrationID can never be
// passed where a ProjectID is expected. Construct them with the ParseXID
// functions at trust boundaries; the nil UUID is never a valid identifier.
package domain

import (
	"github.com/google/uuid"

	dErrors "hackhub/pkg/domain-errors"
)

type (
	UserID         uuid.UUID
	EventID        uuid.UUID
	RegistrationID uuid.UUID
	ProjectID      uuid.UUID
	AssignmentID   uuid.UUID
)

func (id UserID) String() string         { return uuid.UUID(id).String() }
func (id EventID) String() string        { return uuid.UUID(id).String() }
func (id RegistrationID) String() string { return uuid.UUID(id).String() }
func (id ProjectID) String() string      { return uuid.UUID(id).String() }
func (id AssignmentID) String() string   { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id RegistrationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id ProjectID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id AssignmentID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

// IDs encode as their canonical string form in JSON and log output.

func (id UserID) MarshalText() ([]byte, error)         { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)        { return uuid.UUID(id).MarshalText() }
func (id RegistrationID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id ProjectID) MarshalText() ([]byte, error)      { return uuid.UUID(id).MarshalText() }
func (id AssignmentID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *UserID) UnmarshalText(b []byte) error         { return unmarshalID((*uuid.UUID)(id), b) }
func (id *EventID) UnmarshalText(b []byte) error        { return unmarshalID((*uuid.UUID)(id), b) }
func (id *RegistrationID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }
func (id *ProjectID) UnmarshalText(b []byte) error      { return unmarshalID((*uuid.UUID)(id), b) }
func (id *AssignmentID) UnmarshalText(b []byte) error   { return unmarshalID((*uuid.UUID)(id), b) }

func unmarshalID(dst *uuid.UUID, b []byte) error {
	if err := dst.UnmarshalText(b); err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid identifier")
	}
	return nil
}

// ParseUserID parses external input into a UserID.
func ParseUserID(s string) (UserID, error) {
	u, err := parseID(s, "user ID")
	return UserID(u), err
}

// ParseEventID parses external input into an EventID.
func ParseEventID(s string) (EventID, error) {
	u, err := parseID(s, "event ID")
	return EventID(u), err
}

// ParseRegistrationID parses external input into a RegistrationID.
func ParseRegistrationID(s string) (RegistrationID, error) {
	u, err := parseID(s, "registration ID")
	return RegistrationID(u), err
}

// ParseProjectID parses external input into a ProjectID.
func ParseProjectID(s string) (ProjectID, error) {
	u, err := parseID(s, "project ID")
	return ProjectID(u), err
}

// ParseAssignmentID parses external input into an AssignmentID.
func ParseAssignmentID(s string) (AssignmentID, error) {
	u, err := parseID(s, "assignment ID")
	return AssignmentID(u), err
}

func parseID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return u, nil
}

// NewUserID and friends mint fresh random identifiers.
func NewUserID() UserID                 { return UserID(uuid.New()) }
func NewEventID() EventID               { return EventID(uuid.New()) }
func NewRegistrationID() RegistrationID { return RegistrationID(uuid.New()) }
func NewProjectID() ProjectID           { return ProjectID(uuid.New()) }
func NewAssignmentID() AssignmentID     { return AssignmentID(uuid.New()) }
