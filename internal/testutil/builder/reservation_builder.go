//go:build unit || integration

package builder

import (
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/user"

	"github.com/google/uuid"
)

type ReservationBuilder struct {
	BusinessID      uuid.UUID
	ClientID        *uuid.UUID
	Client          user.Contact
	Staff           booking.StaffSnapshot
	Services        []booking.ServiceLine
	Date            string
	Slot            *booking.Slot
	StartTime       string
	BufferMinutes   int
	Location        *time.Location
	Policy          booking.Policy
	Discount        int64
	Status          booking.Status
	Source          booking.Source
	Now             time.Time
	WaitlistEntryID *uuid.UUID
}

func NewReservationBuilder() *ReservationBuilder {
	clientID := uuid.New()
	return &ReservationBuilder{
		BusinessID: uuid.New(),
		ClientID:   &clientID,
		Client:     user.Contact{Name: "Ana", Email: "ana@example.com"},
		Staff:      booking.StaffSnapshot{ID: uuid.New(), Name: "Mika"},
		Services: []booking.ServiceLine{
			{ServiceID: uuid.New(), Name: "Haircut", DurationMinutes: 50, Price: 1000},
		},
		Date:      "2026-03-10",
		StartTime: "10:00",
		Location:  time.UTC,
		Policy:    booking.DefaultPolicy(),
		Status:    booking.StatusConfirmed,
		Source:    booking.SourceClientApp,
		Now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

// BuildSlot returns the pinned Slot when set, otherwise plans one from the
// services.
func (b *ReservationBuilder) BuildSlot() (booking.Slot, error) {
	if b.Slot != nil {
		return *b.Slot, nil
	}
	return booking.PlanSlot(b.Date, b.StartTime, booking.ServiceMinutes(b.Services), b.BufferMinutes, b.Location)
}

func (b *ReservationBuilder) BuildDomain() (*booking.Reservation, error) {
	slot, err := b.BuildSlot()
	if err != nil {
		return nil, err
	}
	return booking.NewReservation(booking.NewReservationParams{
		BusinessID:      b.BusinessID,
		ClientID:        b.ClientID,
		Client:          b.Client,
		Staff:           b.Staff,
		Services:        b.Services,
		Slot:            slot,
		Pricing:         booking.Quote(b.Services, b.Discount, nil, b.Policy),
		InitialStatus:   b.Status,
		Source:          b.Source,
		WaitlistEntryID: b.WaitlistEntryID,
		CreatedBy:       b.ClientID,
		Now:             b.Now,
	})
}

// MustBuild panics on invalid builder state.
func (b *ReservationBuilder) MustBuild() *booking.Reservation {
	r, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return r
}
