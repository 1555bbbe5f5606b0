package booking

import (
	"time"

	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

type Initiator string

const (
	InitiatorClient   Initiator = "client"
	InitiatorBusiness Initiator = "business"
	InitiatorSystem   Initiator = "system"
)

type Cancellation struct {
	At            time.Time `json:"at"`
	By            uuid.UUID `json:"by"`
	Initiator     Initiator `json:"initiator"`
	Reason        string    `json:"reason,omitempty"`
	Refunded      bool      `json:"refunded"`
	RefundAmount  int64     `json:"refundAmount"`
	PenaltyAmount int64     `json:"penaltyAmount"`
}

// RefundFor applies the cancellation policy to this reservation at now.
func (r *Reservation) RefundFor(policy CancellationPolicy, now time.Time) RefundDecision {
	hours := r.slot.Window.Start.Sub(now).Hours()
	return policy.Evaluate(hours, r.pricing.Deposit, r.pricing.DepositPaid)
}

// Cancel records the cancellation and moves the reservation to cancelled.
// Clients may only cancel pending and confirmed reservations; the business
// may cancel anything the status machine still allows.
func (r *Reservation) Cancel(at time.Time, by uuid.UUID, initiator Initiator, reason string, decision RefundDecision) error {
	allowed := r.status.CanTransitionTo(StatusCancelled)
	if initiator == InitiatorClient {
		allowed = r.status.IsCancellableByClient()
	}
	if !allowed {
		return errs.Mark(
			errs.Conflict("reservation in status %s cannot be cancelled", r.status),
			ErrNotCancellable,
		)
	}
	actor := by
	if err := r.Transition(StatusCancelled, at, &actor, reason); err != nil {
		return err
	}
	r.cancellation = &Cancellation{
		At:            at,
		By:            by,
		Initiator:     initiator,
		Reason:        reason,
		Refunded:      decision.RefundAmount > 0,
		RefundAmount:  decision.RefundAmount,
		PenaltyAmount: decision.PenaltyAmount,
	}
	if decision.RefundAmount > 0 {
		r.payment.RefundAmount = decision.RefundAmount
		if decision.RefundAmount >= r.payment.AmountPaid {
			r.payment.Status = PaymentRefunded
		} else {
			r.payment.Status = PaymentPartiallyRefunded
		}
	}
	return nil
}
