package models

import (
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	id "hackhub/pkg/domain"
	dErrors "hackhub/pkg/domain-errors"
)

// Score bounds and the thresholds that map a score to a verdict.
const (
	MinScore        = 0
	MaxScore        = 100
	AcceptThreshold = 60
	WinnerThreshold = 80
)

const (
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
	MaxTechStackLength   = 500
	MaxURLLength         = 500
	MaxFeedbackLength    = 2000
)

// Status is the review state of a project.
type Status string

const (
	StatusSubmitted   Status = "SUBMITTED"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusAccepted    Status = "ACCEPTED"
	StatusRejected    Status = "REJECTED"
	StatusWinner      Status = "WINNER"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusSubmitted, StatusUnderReview, StatusAccepted, StatusRejected, StatusWinner:
		return true
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// StatusForScore maps a score in [MinScore, MaxScore] to its verdict.
func StatusForScore(score int) Status {
	switch {
	case score >= WinnerThreshold:
		return StatusWinner
	case score >= AcceptThreshold:
		return StatusAccepted
	default:
		return StatusRejected
	}
}

// ValidScore reports whether score is inside the scoring range.
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// Project is a submission to an event. At most one exists per
// (submitter, event).
type Project struct {
	ID          id.ProjectID `json:"id"`
	EventID     id.EventID   `json:"event_id"`
	SubmitterID id.UserID    `json:"submitter_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	TechStack   string       `json:"tech_stack"`
	GithubURL   string       `json:"github_url,omitempty"`
	DemoURL     string       `json:"demo_url,omitempty"`
	Score       int          `json:"score"`
	Status      Status       `json:"status"`
	Feedback    string       `json:"feedback,omitempty"`
	EvaluatorID id.UserID    `json:"evaluator_id,omitzero"`
	SubmittedAt time.Time    `json:"submitted_at"`
	EvaluatedAt *time.Time   `json:"evaluated_at,omitempty"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Fields are the submitter-provided attributes of a project.
type Fields struct {
	Title       string
	Description string
	TechStack   string
	GithubURL   string
	DemoURL     string
}

func (f *Fields) Normalize() {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.TechStack = strings.TrimSpace(f.TechStack)
	f.GithubURL = strings.TrimSpace(f.GithubURL)
	f.DemoURL = strings.TrimSpace(f.DemoURL)
}

// Check enforces the field rules. Violations carry CodeInvariantViolation.
func (f Fields) Check() error {
	if n := utf8.RuneCountInString(f.Title); n < MinTitleLength || n > MaxTitleLength {
		return invariant("title must be between 3 and 200 characters")
	}
	if utf8.RuneCountInString(f.Description) > MaxDescriptionLength {
		return invariant("description must be at most 2000 characters")
	}
	if utf8.RuneCountInString(f.TechStack) > MaxTechStackLength {
		return invariant("tech stack must be at most 500 characters")
	}
	if err := checkURL("github url", f.GithubURL); err != nil {
		return err
	}
	return checkURL("demo url", f.DemoURL)
}

func checkURL(field, raw string) error {
	if raw == "" {
		return nil
	}
	if len(raw) > MaxURLLength {
		return invariant(field + " must be at most 500 characters")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invariant(field + " must be an absolute http(s) URL")
	}
	return nil
}

// NewProject validates fields and builds a SUBMITTED project with score 0.
func NewProject(projectID id.ProjectID, eventID id.EventID, submitter id.UserID, f Fields, now time.Time) (*Project, error) {
	f.Normalize()
	if err := f.Check(); err != nil {
		return nil, err
	}
	return &Project{
		ID:          projectID,
		EventID:     eventID,
		SubmitterID: submitter,
		Title:       f.Title,
		Description: f.Description,
		TechStack:   f.TechStack,
		GithubURL:   f.GithubURL,
		DemoURL:     f.DemoURL,
		Score:       MinScore,
		Status:      StatusSubmitted,
		SubmittedAt: now,
		UpdatedAt:   now,
	}, nil
}

// CanMarkUnderReview only accepts fresh submissions.
func (p *Project) CanMarkUnderReview() error {
	if p.Status != StatusSubmitted {
		return invariant("only SUBMITTED projects can move to review, project is " + string(p.Status))
	}
	return nil
}

func (p *Project) ApplyStatus(next Status, now time.Time) {
	p.Status = next
	p.UpdatedAt = now
}

// ApplyEvaluation records a verdict. A later evaluation overwrites an
// earlier one.
func (p *Project) ApplyEvaluation(score int, feedback string, evaluator id.UserID, now time.Time) error {
	if !ValidScore(score) {
		return invariant("score must be between 0 and 100")
	}
	if utf8.RuneCountInString(feedback) > MaxFeedbackLength {
		return invariant("feedback must be at most 2000 characters")
	}
	p.Score = score
	p.Status = StatusForScore(score)
	p.Feedback = strings.TrimSpace(feedback)
	p.EvaluatorID = evaluator
	evaluatedAt := now
	p.EvaluatedAt = &evaluatedAt
	p.UpdatedAt = now
	return nil
}

func invariant(msg string) error {
	return dErrors.New(dErrors.CodeInvariantViolation, msg)
}
