package audit

import "time"

// Action names a state change worth recording.
type Action string

const (
	ActionEventCreated              Action = "event_created"
	ActionEventUpdated              Action = "event_updated"
	ActionEventStatusChanged        Action = "event_status_changed"
	ActionRegistrationCreated       Action = "registration_created"
	ActionRegistrationStatusChanged Action = "registration_status_changed"
	ActionProjectSubmitted          Action = "project_submitted"
	ActionProjectStatusChanged      Action = "project_status_changed"
	ActionProjectEvaluated          Action = "project_evaluated"
	ActionJudgeAssigned             Action = "judge_assigned"
	ActionUserCreated               Action = "user_created"
	ActionUserRoleChanged           Action = "user_role_changed"
	ActionUserActiveChanged         Action = "user_active_changed"
)

// Event is emitted from services after a unit of work commits. Keep it
// transport-agnostic so sinks can fan out.
type Event struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	ActorID   string            `json:"actor_id,omitempty"`
	Subject   string            `json:"subject"`
	EventID   string            `json:"event_id,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Detail    map[string]string `json:"detail,omitempty"`
}
