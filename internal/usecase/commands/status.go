package commands

import (
	"context"
	"fmt"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// UpdateStatus moves a reservation through its lifecycle on behalf of the
// business. Cancelling this way refunds any paid deposit in full.
func (uc *bookingUseCaseImpl) UpdateStatus(ctx context.Context, in UpdateStatusInput) (*booking.Reservation, error) {
	if !in.Status.IsValid() {
		return nil, errs.Mark(errs.BadRequest("invalid status %q", in.Status), booking.ErrInvalidStatus)
	}
	now := uc.clock.Now()

	var (
		updated  *booking.Reservation
		business *catalog.Business
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, b, err := uc.loadForBusiness(ctx, tx, in.Actor, in.ReservationID)
		if err != nil {
			return err
		}
		business = b

		previous := r.Status()
		actorID := in.Actor.UserID
		if in.Status == booking.StatusCancelled {
			decision := booking.RefundDecision{}
			if r.Pricing().DepositPaid {
				decision.RefundAmount = r.Pricing().Deposit
			}
			err = r.Cancel(now, actorID, booking.InitiatorBusiness, in.Note, decision)
		} else {
			err = r.Transition(in.Status, now, &actorID, in.Note)
		}
		if err != nil {
			return err
		}

		if err := tx.Reservations().Update(ctx, r); err != nil {
			return errs.Wrap(err, "failed to update reservation")
		}

		eventType := shared.EventReservationStatusChanged
		if in.Status == booking.StatusCancelled {
			eventType = shared.EventReservationCancelled
		}
		event, err := newReservationEvent(eventType, r, previous, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, event); err != nil {
			return errs.Wrap(err, "failed to append outbox event")
		}

		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	switch updated.Status() {
	case booking.StatusCancelled:
		uc.afterCancel(ctx, updated, business)
	case booking.StatusNoShow:
		if err := uc.dispatcher.CancelScheduled(ctx, updated.ID()); err != nil {
			logSideEffect(updated, "cancel scheduled notifications", err)
		}
	case booking.StatusConfirmed:
		uc.notifyClient(ctx, updated, shared.NotifyStatusChanged, "Booking confirmed",
			fmt.Sprintf("Your appointment at %s on %s is confirmed.", business.Name(), when(updated, business)))
	}
	return updated, nil
}

// RecordDepositPayment marks the reservation's deposit as collected.
func (uc *bookingUseCaseImpl) RecordDepositPayment(ctx context.Context, actor shared.Actor, reservationID uuid.UUID) (*booking.Reservation, error) {
	now := uc.clock.Now()
	var updated *booking.Reservation
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, _, err := uc.loadForBusiness(ctx, tx, actor, reservationID)
		if err != nil {
			return err
		}
		actorID := actor.UserID
		if err := r.MarkDepositPaid(now, &actorID); err != nil {
			return err
		}
		if err := tx.Reservations().Update(ctx, r); err != nil {
			return errs.Wrap(err, "failed to update reservation")
		}
		updated = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
