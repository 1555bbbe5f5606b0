package booking

import (
	"time"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

var (
	ErrInvalidStatus     = errs.New("invalid reservation status")
	ErrInvalidTransition = errs.New("invalid status transition")
	ErrNoServices        = errs.New("reservation requires at least one service")
	ErrNotCancellable    = errs.New("reservation cannot be cancelled")
	ErrDepositNotDue     = errs.New("reservation has no deposit due")
)

type Source string

const (
	SourceClientApp   Source = "client_app"
	SourceBusinessApp Source = "business_app"
	SourceManual      Source = "manual"
	SourceWaitlist    Source = "waitlist"
	SourceAPI         Source = "api"
)

func (s Source) IsValid() bool {
	switch s {
	case SourceClientApp, SourceBusinessApp, SourceManual, SourceWaitlist, SourceAPI:
		return true
	default:
		return false
	}
}

type PaymentStatus string

const (
	PaymentUnpaid            PaymentStatus = "unpaid"
	PaymentDepositPaid       PaymentStatus = "deposit_paid"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

type Payment struct {
	Status       PaymentStatus `json:"status"`
	AmountPaid   int64         `json:"amountPaid"`
	RefundAmount int64         `json:"refundAmount"`
}

type HistoryEntry struct {
	Status Status     `json:"status"`
	At     time.Time  `json:"at"`
	By     *uuid.UUID `json:"by,omitempty"`
	Note   string     `json:"note,omitempty"`
}

type StaffSnapshot struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// Reservation is the aggregate root of a booked appointment. It is never
// deleted; cancellation is a status.
type Reservation struct {
	id              uuid.UUID
	businessID      uuid.UUID
	clientID        *uuid.UUID
	client          user.Contact
	staff           StaffSnapshot
	services        []ServiceLine
	slot            Slot
	pricing         Pricing
	status          Status
	history         []HistoryEntry
	cancellation    *Cancellation
	payment         Payment
	source          Source
	notes           string
	waitlistEntryID *uuid.UUID
	createdAt       time.Time
	updatedAt       time.Time
}

type NewReservationParams struct {
	BusinessID      uuid.UUID
	ClientID        *uuid.UUID
	Client          user.Contact
	Staff           StaffSnapshot
	Services        []ServiceLine
	Slot            Slot
	Pricing         Pricing
	InitialStatus   Status
	Source          Source
	Notes           string
	WaitlistEntryID *uuid.UUID
	CreatedBy       *uuid.UUID
	Now             time.Time
}

func NewReservation(p NewReservationParams) (*Reservation, error) {
	if len(p.Services) == 0 {
		return nil, ErrNoServices
	}
	if p.InitialStatus != StatusPending && p.InitialStatus != StatusConfirmed {
		return nil, ErrInvalidStatus
	}
	if !p.Source.IsValid() {
		p.Source = SourceAPI
	}
	services := make([]ServiceLine, len(p.Services))
	copy(services, p.Services)

	return &Reservation{
		id:              uuid.New(),
		businessID:      p.BusinessID,
		clientID:        p.ClientID,
		client:          p.Client,
		staff:           p.Staff,
		services:        services,
		slot:            p.Slot,
		pricing:         p.Pricing,
		status:          p.InitialStatus,
		history:         []HistoryEntry{{Status: p.InitialStatus, At: p.Now, By: p.CreatedBy, Note: "created"}},
		payment:         Payment{Status: PaymentUnpaid},
		source:          p.Source,
		notes:           p.Notes,
		waitlistEntryID: p.WaitlistEntryID,
		createdAt:       p.Now,
		updatedAt:       p.Now,
	}, nil
}

// State is the flat persistence form of a Reservation.
type State struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	ClientID        *uuid.UUID
	Client          user.Contact
	Staff           StaffSnapshot
	Services        []ServiceLine
	Date            string
	StartTime       string
	EndTime         string
	StartAt         time.Time
	EndAt           time.Time
	TotalDuration   int
	Pricing         Pricing
	Status          Status
	History         []HistoryEntry
	Cancellation    *Cancellation
	Payment         Payment
	Source          Source
	Notes           string
	WaitlistEntryID *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func ReconstructReservation(s State) *Reservation {
	return &Reservation{
		id:         s.ID,
		businessID: s.BusinessID,
		clientID:   s.ClientID,
		client:     s.Client,
		staff:      s.Staff,
		services:   s.Services,
		slot: Slot{
			Date:         s.Date,
			StartTime:    s.StartTime,
			EndTime:      s.EndTime,
			Window:       Window{Start: s.StartAt, End: s.EndAt},
			TotalMinutes: s.TotalDuration,
		},
		pricing:         s.Pricing,
		status:          s.Status,
		history:         s.History,
		cancellation:    s.Cancellation,
		payment:         s.Payment,
		source:          s.Source,
		notes:           s.Notes,
		waitlistEntryID: s.WaitlistEntryID,
		createdAt:       s.CreatedAt,
		updatedAt:       s.UpdatedAt,
	}
}

func (r *Reservation) State() State {
	return State{
		ID:              r.id,
		BusinessID:      r.businessID,
		ClientID:        r.clientID,
		Client:          r.client,
		Staff:           r.staff,
		Services:        r.services,
		Date:            r.slot.Date,
		StartTime:       r.slot.StartTime,
		EndTime:         r.slot.EndTime,
		StartAt:         r.slot.Window.Start,
		EndAt:           r.slot.Window.End,
		TotalDuration:   r.slot.TotalMinutes,
		Pricing:         r.pricing,
		Status:          r.status,
		History:         r.history,
		Cancellation:    r.cancellation,
		Payment:         r.payment,
		Source:          r.source,
		Notes:           r.notes,
		WaitlistEntryID: r.waitlistEntryID,
		CreatedAt:       r.createdAt,
		UpdatedAt:       r.updatedAt,
	}
}

// Transition moves the reservation forward in its lifecycle and records the
// change in the history.
func (r *Reservation) Transition(to Status, at time.Time, by *uuid.UUID, note string) error {
	if !to.IsValid() {
		return ErrInvalidStatus
	}
	if !r.status.CanTransitionTo(to) {
		return errs.Mark(
			errs.Conflict("cannot change reservation status from %s to %s", r.status, to),
			ErrInvalidTransition,
		)
	}
	r.status = to
	r.history = append(r.history, HistoryEntry{Status: to, At: at, By: by, Note: note})
	r.updatedAt = at
	return nil
}

// MarkDepositPaid records the deposit as collected.
func (r *Reservation) MarkDepositPaid(at time.Time, by *uuid.UUID) error {
	if !r.pricing.DepositRequired || r.pricing.Deposit <= 0 {
		return errs.Mark(errs.BadRequest("reservation has no deposit due"), ErrDepositNotDue)
	}
	if r.pricing.DepositPaid {
		return errs.Conflict("deposit already paid")
	}
	if r.status.IsTerminal() {
		return errs.Conflict("reservation is %s", r.status)
	}
	r.pricing.DepositPaid = true
	r.payment.Status = PaymentDepositPaid
	r.payment.AmountPaid += r.pricing.Deposit
	r.history = append(r.history, HistoryEntry{Status: r.status, At: at, By: by, Note: "deposit paid"})
	r.updatedAt = at
	return nil
}

func (r *Reservation) IsOwnedBy(userID uuid.UUID) bool {
	return r.clientID != nil && *r.clientID == userID
}

func (r *Reservation) ServiceIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(r.services))
	for i, s := range r.services {
		ids[i] = s.ServiceID
	}
	return ids
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) BusinessID() uuid.UUID       { return r.businessID }
func (r *Reservation) ClientID() *uuid.UUID        { return r.clientID }
func (r *Reservation) Client() user.Contact        { return r.client }
func (r *Reservation) Staff() StaffSnapshot        { return r.staff }
func (r *Reservation) Services() []ServiceLine     { return r.services }
func (r *Reservation) Slot() Slot                  { return r.slot }
func (r *Reservation) Window() Window              { return r.slot.Window }
func (r *Reservation) Pricing() Pricing            { return r.pricing }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) History() []HistoryEntry     { return r.history }
func (r *Reservation) Cancellation() *Cancellation { return r.cancellation }
func (r *Reservation) Payment() Payment            { return r.payment }
func (r *Reservation) Source() Source              { return r.source }
func (r *Reservation) Notes() string               { return r.notes }
func (r *Reservation) WaitlistEntryID() *uuid.UUID { return r.waitlistEntryID }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time        { return r.updatedAt }
