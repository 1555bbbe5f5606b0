package request

import (
	"time"

	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/usecase/commands"

	"github.com/google/uuid"
)

type WaitlistPreferences struct {
	ServiceIDs []uuid.UUID `json:"service_ids" binding:"required,min=1"`
	StaffID    *uuid.UUID  `json:"staff_id,omitempty"`
	DateFrom   *string     `json:"date_from,omitempty"`
	DateTo     *string     `json:"date_to,omitempty"`
	TimeFrom   *string     `json:"time_from,omitempty"`
	TimeTo     *string     `json:"time_to,omitempty"`
	DaysOfWeek []int       `json:"days_of_week,omitempty"`
}

type CreateWaitlistEntryRequest struct {
	BusinessID  uuid.UUID           `json:"business_id" binding:"required"`
	Preferences WaitlistPreferences `json:"preferences" binding:"required"`
	Priority    string              `json:"priority,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
}

func (r CreateWaitlistEntryRequest) ToInput(clientID uuid.UUID) commands.CreateWaitlistEntryInput {
	priority := waitlist.Priority(r.Priority)
	if r.Priority == "" {
		priority = waitlist.PriorityNormal
	}
	p := r.Preferences
	return commands.CreateWaitlistEntryInput{
		BusinessID: r.BusinessID,
		ClientID:   clientID,
		Preferences: waitlist.Preferences{
			ServiceIDs: p.ServiceIDs,
			StaffID:    p.StaffID,
			DateFrom:   p.DateFrom,
			DateTo:     p.DateTo,
			TimeFrom:   p.TimeFrom,
			TimeTo:     p.TimeTo,
			DaysOfWeek: p.DaysOfWeek,
		},
		Priority:  priority,
		ExpiresAt: r.ExpiresAt,
	}
}

type RespondToOfferRequest struct {
	Accept *bool `json:"accept" binding:"required"`
}
