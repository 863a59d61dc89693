package handler

import (
	"strings"
	"time"

	"hackhub/internal/event/models"
	dErrors "hackhub/pkg/domain-errors"
)

// EventRequest is the body for POST /events and PUT /events/{id}.
type EventRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Location        string    `json:"location"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	MaxParticipants int       `json:"max_participants"`
	PrizeAmount     float64   `json:"prize_amount"`

	fields models.Fields
}

func (r *EventRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "start_date and end_date are required")
	}
	r.fields = models.Fields{
		Name:            r.Name,
		Description:     r.Description,
		Location:        r.Location,
		StartDate:       r.StartDate.UTC(),
		EndDate:         r.EndDate.UTC(),
		MaxParticipants: r.MaxParticipants,
		PrizeAmount:     r.PrizeAmount,
	}
	return nil
}

// StatusRequest is the body for PUT /events/{id}/status.
type StatusRequest struct {
	Status string `json:"status"`

	status models.Status
}

func (r *StatusRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	status, err := models.ParseStatus(strings.TrimSpace(r.Status))
	if err != nil {
		return err
	}
	r.status = status
	return nil
}
