package commands

//go:generate mockgen -source=ports.go -destination=../../mocks/commandsmock/commands.go -package=commandsmock

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type CreateBookingInput struct {
	Actor           shared.Actor
	BusinessID      uuid.UUID
	ClientID        *uuid.UUID
	WalkIn          *user.Contact
	StaffID         *uuid.UUID
	ServiceIDs      []uuid.UUID
	Date            string
	StartTime       string
	Notes           string
	DiscountCode    string
	Source          booking.Source
	WaitlistEntryID *uuid.UUID
}

type CreateBookingResult struct {
	Reservation     *booking.Reservation
	RequiresDeposit bool
	DepositAmount   int64
	IsReplayed      bool
}

type UpdateStatusInput struct {
	Actor         shared.Actor
	ReservationID uuid.UUID
	Status        booking.Status
	Note          string
}

type CancelBookingInput struct {
	ReservationID uuid.UUID
	RequesterID   uuid.UUID
	Reason        string
}

type CancelBookingResult struct {
	Reservation    *booking.Reservation
	RefundAmount   int64
	PenaltyApplied bool
}

type BookingCommands interface {
	CreateBooking(ctx context.Context, in CreateBookingInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error)
	CancelBooking(ctx context.Context, in CancelBookingInput) (*CancelBookingResult, error)
	UpdateStatus(ctx context.Context, in UpdateStatusInput) (*booking.Reservation, error)
	RecordDepositPayment(ctx context.Context, actor shared.Actor, reservationID uuid.UUID) (*booking.Reservation, error)
}

type CreateWaitlistEntryInput struct {
	BusinessID  uuid.UUID
	ClientID    uuid.UUID
	Preferences waitlist.Preferences
	Priority    waitlist.Priority
	ExpiresAt   *time.Time
}

type WaitlistCommands interface {
	CreateWaitlistEntry(ctx context.Context, in CreateWaitlistEntryInput) (*waitlist.Entry, error)
	// NotifyNext offers a freed slot to the first client in line. It returns
	// nil when nobody is waiting.
	NotifyNext(ctx context.Context, businessID uuid.UUID, freedReservationID *uuid.UUID) (*waitlist.Entry, error)
	RespondToOffer(ctx context.Context, entryID, clientID uuid.UUID, accept bool) (*waitlist.Entry, error)
}
