package models

import dErrors "hackhub/pkg/domain-errors"

// Status is the lifecycle state of an event.
type Status string

const (
	StatusUpcoming  Status = "UPCOMING"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// transitions is the single source of truth for the lifecycle graph.
var transitions = map[Status][]Status{
	StatusUpcoming:  {StatusActive, StatusCancelled},
	StatusActive:    {StatusCompleted, StatusCancelled},
	StatusCompleted: nil,
	StatusCancelled: nil,
}

// ParseStatus rejects unknown values; nothing is coerced.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeBadRequest, "invalid event status")
	}
	return st, nil
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// AcceptsEntries reports whether registrations and submissions are open.
func (s Status) AcceptsEntries() bool {
	return s == StatusUpcoming || s == StatusActive
}

// CanTransitionTo reports whether next is reachable in one step. A
// same-state transition is not.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
