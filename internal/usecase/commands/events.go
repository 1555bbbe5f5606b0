package commands

import (
	"encoding/json"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	aggregateReservation = "reservation"
	aggregateWaitlist    = "waitlist_entry"
)

type reservationEventPayload struct {
	ReservationID uuid.UUID      `json:"reservation_id"`
	BusinessID    uuid.UUID      `json:"business_id"`
	StaffID       uuid.UUID      `json:"staff_id"`
	ClientID      *uuid.UUID     `json:"client_id,omitempty"`
	Status        booking.Status `json:"status"`
	PreviousState booking.Status `json:"previous_status,omitempty"`
	StartAt       time.Time      `json:"start_at"`
	EndAt         time.Time      `json:"end_at"`
	Total         int64          `json:"total"`
	Deposit       int64          `json:"deposit"`
	RefundAmount  *int64         `json:"refund_amount,omitempty"`
	PenaltyAmount *int64         `json:"penalty_amount,omitempty"`
}

type waitlistOfferedPayload struct {
	EntryID       uuid.UUID  `json:"entry_id"`
	BusinessID    uuid.UUID  `json:"business_id"`
	ClientID      uuid.UUID  `json:"client_id"`
	ReservationID *uuid.UUID `json:"reservation_id,omitempty"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

func reservationPayload(r *booking.Reservation, previous booking.Status) reservationEventPayload {
	p := reservationEventPayload{
		ReservationID: r.ID(),
		BusinessID:    r.BusinessID(),
		StaffID:       r.Staff().ID,
		ClientID:      r.ClientID(),
		Status:        r.Status(),
		PreviousState: previous,
		StartAt:       r.Window().Start,
		EndAt:         r.Window().End,
		Total:         r.Pricing().Total,
		Deposit:       r.Pricing().Deposit,
	}
	if c := r.Cancellation(); c != nil {
		refund, penalty := c.RefundAmount, c.PenaltyAmount
		p.RefundAmount = &refund
		p.PenaltyAmount = &penalty
	}
	return p
}

func newReservationEvent(eventType string, r *booking.Reservation, previous booking.Status, now time.Time) (shared.Event, error) {
	return newEvent(eventType, aggregateReservation, r.ID(), reservationPayload(r, previous), now)
}

func newWaitlistOfferedEvent(e *waitlist.Entry, n waitlist.Notification, now time.Time) (shared.Event, error) {
	return newEvent(shared.EventWaitlistOffered, aggregateWaitlist, e.ID(), waitlistOfferedPayload{
		EntryID:       e.ID(),
		BusinessID:    e.BusinessID(),
		ClientID:      e.ClientID(),
		ReservationID: n.ReservationID,
		ExpiresAt:     n.ExpiresAt,
	}, now)
}

func newEvent(eventType, aggregateType string, aggregateID uuid.UUID, payload any, now time.Time) (shared.Event, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return shared.Event{}, errs.Wrap(err, "failed to encode event payload")
	}
	return shared.Event{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       body,
		OccurredAt:    now,
	}, nil
}
