package models

import (
	"strings"
	"time"
	"unicode/utf8"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

// WorkloadCap is the number of evaluations one judge may perform per event.
const WorkloadCap = 20

const MaxExpertiseLength = 200

// Assignment grants a judge the right to evaluate an event's projects and
// tracks how much of their workload is used.
//
// Invariant: 0 <= EvaluationsPerformed <= WorkloadCap.
type Assignment struct {
	ID                   id.AssignmentID `json:"id"`
	UserID               id.UserID       `json:"user_id"`
	EventID              id.EventID      `json:"event_id"`
	Expertise            string          `json:"expertise,omitempty"`
	EvaluationsPerformed int             `json:"evaluations_performed"`
	AssignedAt           time.Time       `json:"assigned_at"`
}

func NewAssignment(assignmentID id.AssignmentID, userID id.UserID, eventID id.EventID, expertise string, now time.Time) (*Assignment, error) {
	expertise = strings.TrimSpace(expertise)
	if utf8.RuneCountInString(expertise) > MaxExpertiseLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "expertise must be at most 200 characters")
	}
	return &Assignment{
		ID:         assignmentID,
		UserID:     userID,
		EventID:    eventID,
		Expertise:  expertise,
		AssignedAt: now,
	}, nil
}

// CanEvaluate reports whether the judge has workload left.
func (a *Assignment) CanEvaluate() bool {
	return a.EvaluationsPerformed < WorkloadCap
}

// Remaining is the number of evaluations left before the cap.
func (a *Assignment) Remaining() int {
	return WorkloadCap - a.EvaluationsPerformed
}

// RecordEvaluation consumes one unit of workload.
func (a *Assignment) RecordEvaluation() error {
	if !a.CanEvaluate() {
		return dErrors.New(dErrors.CodeInvariantViolation, "judge has reached the workload cap")
	}
	a.EvaluationsPerformed++
	return nil
}
