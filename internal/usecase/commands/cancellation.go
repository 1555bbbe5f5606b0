package commands

import (
	"context"
	"log/slog"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"
)

// CancelBooking cancels a client's own reservation and applies the business
// cancellation policy to any paid deposit.
func (uc *bookingUseCaseImpl) CancelBooking(ctx context.Context, in CancelBookingInput) (*CancelBookingResult, error) {
	now := uc.clock.Now()

	var (
		result   *CancelBookingResult
		business *catalog.Business
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, err := tx.Reservations().GetForUpdate(ctx, in.ReservationID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.NotFound("reservation not found")
			}
			return errs.Wrap(err, "failed to load reservation")
		}
		if !r.IsOwnedBy(in.RequesterID) {
			return errs.NotFound("reservation not found")
		}

		business, err = tx.Reads().BusinessByID(ctx, r.BusinessID())
		if err != nil {
			return errs.Wrap(err, "failed to load business")
		}

		previous := r.Status()
		decision := r.RefundFor(business.Policy().Cancellation, now)
		if err := r.Cancel(now, in.RequesterID, booking.InitiatorClient, in.Reason, decision); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return errs.Wrap(err, "failed to update reservation")
		}

		event, err := newReservationEvent(shared.EventReservationCancelled, r, previous, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, event); err != nil {
			return errs.Wrap(err, "failed to append outbox event")
		}

		result = &CancelBookingResult{
			Reservation:    r,
			RefundAmount:   decision.RefundAmount,
			PenaltyApplied: decision.PenaltyApplied,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("reservation cancelled",
		"reservation_id", result.Reservation.ID().String(),
		"refund_amount", result.RefundAmount,
		"penalty_applied", result.PenaltyApplied)

	uc.afterCancel(context.WithoutCancel(ctx), result.Reservation, business)
	return result, nil
}
