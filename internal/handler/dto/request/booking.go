package request

import (
	"strings"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type WalkInClient struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type CreateBookingRequest struct {
	BusinessID      uuid.UUID     `json:"business_id" binding:"required"`
	ClientID        *uuid.UUID    `json:"client_id,omitempty"`
	WalkIn          *WalkInClient `json:"walk_in,omitempty"`
	StaffID         *uuid.UUID    `json:"staff_id,omitempty"`
	ServiceIDs      []uuid.UUID   `json:"service_ids" binding:"required,min=1"`
	Date            string        `json:"date" binding:"required"`
	StartTime       string        `json:"start_time" binding:"required"`
	Notes           string        `json:"notes,omitempty"`
	DiscountCode    *string       `json:"discount_code,omitempty"`
	Source          string        `json:"source,omitempty"`
	WaitlistEntryID *uuid.UUID    `json:"waitlist_entry_id,omitempty"`
}

// ToInput defaults the client to the caller when a client books without
// naming anyone.
func (r CreateBookingRequest) ToInput(actor shared.Actor) commands.CreateBookingInput {
	in := commands.CreateBookingInput{
		Actor:           actor,
		BusinessID:      r.BusinessID,
		ClientID:        r.ClientID,
		StaffID:         r.StaffID,
		ServiceIDs:      r.ServiceIDs,
		Date:            strings.TrimSpace(r.Date),
		StartTime:       strings.TrimSpace(r.StartTime),
		Notes:           strings.TrimSpace(r.Notes),
		DiscountCode:    trimCode(r.DiscountCode),
		Source:          booking.Source(r.Source),
		WaitlistEntryID: r.WaitlistEntryID,
	}
	if in.ClientID == nil && r.WalkIn == nil && actor.IsClient() {
		in.ClientID = &actor.UserID
	}
	if r.WalkIn != nil {
		in.WalkIn = &user.Contact{Name: r.WalkIn.Name, Email: r.WalkIn.Email, Phone: r.WalkIn.Phone}
	}
	return in
}

type PriceRequest struct {
	BusinessID   uuid.UUID   `json:"business_id" binding:"required"`
	ServiceIDs   []uuid.UUID `json:"service_ids" binding:"required,min=1"`
	DiscountCode *string     `json:"discount_code,omitempty"`
}

func (r PriceRequest) ToQuery(userID *uuid.UUID) queries.PriceRequest {
	return queries.PriceRequest{
		BusinessID:   r.BusinessID,
		ServiceIDs:   r.ServiceIDs,
		DiscountCode: trimCode(r.DiscountCode),
		UserID:       userID,
	}
}

type CancelBookingRequest struct {
	Reason string `json:"reason,omitempty"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Note   string `json:"note,omitempty"`
}

func trimCode(code *string) string {
	if code == nil {
		return ""
	}
	return strings.TrimSpace(*code)
}
