package booking

import (
	"math"
	"time"

	"booking-engine/internal/pkg/errs"
)

var (
	ErrTooSoon     = errs.New("booking violates minimum advance notice")
	ErrTooFarAhead = errs.New("booking violates maximum advance window")
	ErrStartInPast = errs.New("booking starts in the past")
)

type DepositType string

const (
	DepositPercentage DepositType = "percentage"
	DepositFixed      DepositType = "fixed"
)

type PenaltyType string

const (
	PenaltyNone       PenaltyType = "none"
	PenaltyPercentage PenaltyType = "percentage"
	PenaltyFixed      PenaltyType = "fixed"
)

// Amount is a percentage for DepositPercentage and minor currency units for
// DepositFixed.
type DepositPolicy struct {
	Required bool        `json:"required"`
	Type     DepositType `json:"type"`
	Amount   float64     `json:"amount"`
}

type CancellationPolicy struct {
	Allow              bool        `json:"allow"`
	PenaltyWindowHours float64     `json:"penaltyWindowHours"`
	PenaltyType        PenaltyType `json:"penaltyType"`
	PenaltyAmount      float64     `json:"penaltyAmount"`
}

// Policy is the per-business booking configuration.
type Policy struct {
	SlotDurationMinutes int                `json:"slotDuration"`
	BufferMinutes       int                `json:"bufferTime"`
	MinAdvanceHours     int                `json:"minAdvanceHours"`
	MaxAdvanceDays      int                `json:"maxAdvanceDays"`
	RequireConfirmation bool               `json:"requireConfirmation"`
	Deposit             DepositPolicy      `json:"deposit"`
	Cancellation        CancellationPolicy `json:"cancellation"`
	WaitlistAllowed     bool               `json:"waitlistAllowed"`
}

func DefaultPolicy() Policy {
	return Policy{
		SlotDurationMinutes: 15,
		Cancellation: CancellationPolicy{
			Allow:       true,
			PenaltyType: PenaltyNone,
		},
		WaitlistAllowed: true,
	}
}

func (p Policy) InitialStatus() Status {
	if p.RequireConfirmation {
		return StatusPending
	}
	return StatusConfirmed
}

// ValidateAdvance checks start against the booking window. Starting exactly
// at the minimum notice boundary is allowed.
func (p Policy) ValidateAdvance(start, now time.Time) error {
	if start.Before(now) {
		return errs.Mark(errs.BadRequest("cannot book a time in the past"), ErrStartInPast)
	}
	if p.MinAdvanceHours > 0 && start.Before(now.Add(time.Duration(p.MinAdvanceHours)*time.Hour)) {
		return errs.Mark(
			errs.BadRequest("bookings must be made at least %d hour(s) in advance", p.MinAdvanceHours),
			ErrTooSoon,
		)
	}
	if p.MaxAdvanceDays > 0 && start.After(now.AddDate(0, 0, p.MaxAdvanceDays)) {
		return errs.Mark(
			errs.BadRequest("bookings can be made at most %d day(s) in advance", p.MaxAdvanceDays),
			ErrTooFarAhead,
		)
	}
	return nil
}

// DepositFor never exceeds total.
func (p Policy) DepositFor(total int64) int64 {
	if !p.Deposit.Required || total <= 0 || p.Deposit.Amount <= 0 {
		return 0
	}
	var d int64
	switch p.Deposit.Type {
	case DepositPercentage:
		d = percentOf(total, p.Deposit.Amount)
	case DepositFixed:
		d = int64(math.Round(p.Deposit.Amount))
	default:
		return 0
	}
	return clamp(d, 0, total)
}

type RefundDecision struct {
	RefundAmount   int64
	PenaltyAmount  int64
	PenaltyApplied bool
}

// Evaluate decides the refund of a paid deposit given how many hours remain
// until the appointment starts.
func (c CancellationPolicy) Evaluate(hoursUntilStart float64, deposit int64, depositPaid bool) RefundDecision {
	if !c.Allow || !depositPaid || deposit <= 0 {
		return RefundDecision{}
	}
	if hoursUntilStart >= c.PenaltyWindowHours {
		return RefundDecision{RefundAmount: deposit}
	}

	var penalty int64
	switch c.PenaltyType {
	case PenaltyPercentage:
		penalty = percentOf(deposit, c.PenaltyAmount)
	case PenaltyFixed:
		penalty = int64(math.Round(c.PenaltyAmount))
	default:
		return RefundDecision{RefundAmount: deposit}
	}
	penalty = clamp(penalty, 0, deposit)
	return RefundDecision{
		RefundAmount:   deposit - penalty,
		PenaltyAmount:  penalty,
		PenaltyApplied: true,
	}
}

// percentOf rounds half away from zero.
func percentOf(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}

func clamp(v, lo, hi int64) int64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
