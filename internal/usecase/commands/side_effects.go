package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/pkg/timeofday"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// Post-commit work. Every step is best-effort: a failure is logged and the
// committed booking stands.

func (uc *bookingUseCaseImpl) afterCreate(ctx context.Context, r *booking.Reservation, business *catalog.Business) {
	uc.recordPromotionUsage(ctx, r)
	uc.bumpClientStats(ctx, r, shared.StatsBooked, shared.StatsDelta{
		Bookings:  1,
		Spent:     r.Pricing().Total,
		LastVisit: timePtr(r.Window().Start),
	})
	uc.notifyClientCreated(ctx, r, business)
	uc.scheduleReminders(ctx, r, business)
	uc.scheduleReviewRequest(ctx, r, business)
	uc.notifyOwner(ctx, r, business, shared.NotifyOwnerNewBooking, "New booking",
		fmt.Sprintf("%s booked %s on %s", r.Client().Name, serviceNames(r), when(r, business)))
	uc.fulfilWaitlistEntry(ctx, r)
}

func (uc *bookingUseCaseImpl) afterCancel(ctx context.Context, r *booking.Reservation, business *catalog.Business) {
	if err := uc.dispatcher.CancelScheduled(ctx, r.ID()); err != nil {
		logSideEffect(r, "cancel scheduled notifications", err)
	}
	uc.bumpClientStats(ctx, r, shared.StatsCancelled, shared.StatsDelta{Cancellations: 1})

	uc.notifyClient(ctx, r, shared.NotifyBookingCancelled, "Booking cancelled",
		fmt.Sprintf("Your appointment at %s on %s was cancelled.", business.Name(), when(r, business)))
	uc.notifyOwner(ctx, r, business, shared.NotifyOwnerCancelled, "Booking cancelled",
		fmt.Sprintf("%s cancelled the appointment on %s", r.Client().Name, when(r, business)))

	if uc.waitlist != nil && business.Policy().WaitlistAllowed {
		freed := r.ID()
		if _, err := uc.waitlist.NotifyNext(ctx, r.BusinessID(), &freed); err != nil {
			logSideEffect(r, "waitlist back-fill", err)
		}
	}
}

func (uc *bookingUseCaseImpl) recordPromotionUsage(ctx context.Context, r *booking.Reservation) {
	promo := r.Pricing().Promotion
	if promo == nil {
		return
	}
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		_, err := tx.Promotions().RecordUsage(ctx, shared.PromotionUsage{
			PromotionID:   promo.ID,
			ReservationID: r.ID(),
			UserID:        r.ClientID(),
			Discount:      r.Pricing().DiscountAmount,
			UsedAt:        uc.clock.Now(),
		})
		return err
	})
	if err != nil {
		logSideEffect(r, "record promotion usage", err)
	}
}

// bumpClientStats counts event once per reservation, so a repeated side
// effect leaves the counters unchanged.
func (uc *bookingUseCaseImpl) bumpClientStats(ctx context.Context, r *booking.Reservation, event shared.StatsEvent, d shared.StatsDelta) {
	clientID := r.ClientID()
	if clientID == nil {
		return
	}
	lifetime := d
	lifetime.LastVisit = nil

	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		stats := tx.ClientStats()
		claimed, err := stats.Claim(ctx, r.ID(), event)
		if err != nil || !claimed {
			return err
		}
		if err := stats.UpsertRelationship(ctx, r.BusinessID(), *clientID, d); err != nil {
			return err
		}
		return stats.IncrementLifetime(ctx, *clientID, lifetime)
	})
	if err != nil {
		logSideEffect(r, "update client stats", err)
	}
}

func (uc *bookingUseCaseImpl) notifyClientCreated(ctx context.Context, r *booking.Reservation, business *catalog.Business) {
	if r.Status() == booking.StatusPending {
		uc.notifyClient(ctx, r, shared.NotifyBookingPending, "Booking received",
			fmt.Sprintf("Your appointment at %s on %s is awaiting confirmation.", business.Name(), when(r, business)))
		return
	}
	uc.notifyClient(ctx, r, shared.NotifyBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your appointment at %s on %s is confirmed.", business.Name(), when(r, business)))
}

func (uc *bookingUseCaseImpl) scheduleReminders(ctx context.Context, r *booking.Reservation, business *catalog.Business) {
	clientID := r.ClientID()
	if clientID == nil {
		return
	}
	now := uc.clock.Now()
	for _, offset := range uc.cfg.ReminderOffsets {
		at := r.Window().Start.Add(-offset)
		if !at.After(now) {
			continue
		}
		n := uc.notification(r, *clientID, shared.NotifyReminder, "Upcoming appointment",
			fmt.Sprintf("Reminder: %s on %s", business.Name(), when(r, business)))
		n.Key = fmt.Sprintf("reminder:%s:%s", r.ID(), offset)
		n.SendAt = timePtr(at)
		if err := uc.dispatcher.Schedule(ctx, n); err != nil {
			logSideEffect(r, "schedule reminder", err)
		}
	}
}

func (uc *bookingUseCaseImpl) scheduleReviewRequest(ctx context.Context, r *booking.Reservation, business *catalog.Business) {
	clientID := r.ClientID()
	if clientID == nil {
		return
	}
	n := uc.notification(r, *clientID, shared.NotifyReviewRequest, "How was your visit?",
		fmt.Sprintf("Tell us about your appointment at %s.", business.Name()))
	n.Key = fmt.Sprintf("review:%s", r.ID())
	n.SendAt = timePtr(r.Window().End.Add(uc.cfg.ReviewRequestDelay))
	if err := uc.dispatcher.Schedule(ctx, n); err != nil {
		logSideEffect(r, "schedule review request", err)
	}
}

func (uc *bookingUseCaseImpl) notifyClient(ctx context.Context, r *booking.Reservation, typ shared.NotificationType, title, body string) {
	clientID := r.ClientID()
	if clientID == nil {
		return
	}
	if err := uc.dispatcher.Schedule(ctx, uc.notification(r, *clientID, typ, title, body)); err != nil {
		logSideEffect(r, "notify client", err)
	}
}

func (uc *bookingUseCaseImpl) notifyOwner(ctx context.Context, r *booking.Reservation, business *catalog.Business, typ shared.NotificationType, title, body string) {
	if err := uc.dispatcher.Schedule(ctx, uc.notification(r, business.OwnerID(), typ, title, body)); err != nil {
		logSideEffect(r, "notify owner", err)
	}
}

func (uc *bookingUseCaseImpl) fulfilWaitlistEntry(ctx context.Context, r *booking.Reservation) {
	entryID := r.WaitlistEntryID()
	if entryID == nil {
		return
	}
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		e, err := tx.Waitlist().GetForUpdate(ctx, *entryID)
		if err != nil {
			return err
		}
		if err := e.Fulfill(uc.clock.Now()); err != nil {
			return err
		}
		return tx.Waitlist().Update(ctx, e)
	})
	if err != nil {
		logSideEffect(r, "fulfil waitlist entry", err)
	}
}

func (uc *bookingUseCaseImpl) notification(r *booking.Reservation, to uuid.UUID, typ shared.NotificationType, title, body string) shared.Notification {
	id := r.ID()
	return shared.Notification{
		UserID:        to,
		Type:          typ,
		Title:         title,
		Body:          body,
		BusinessID:    r.BusinessID(),
		ReservationID: &id,
		Data: map[string]string{
			"reservation_id": id.String(),
			"business_id":    r.BusinessID().String(),
			"status":         r.Status().String(),
			"date":           r.Slot().Date,
			"start_time":     r.Slot().StartTime,
		},
	}
}

func logSideEffect(r *booking.Reservation, step string, err error) {
	slog.Warn("post-commit step failed",
		"step", step,
		"reservation_id", r.ID().String(),
		"business_id", r.BusinessID().String(),
		"error", err.Error())
}

func when(r *booking.Reservation, business *catalog.Business) string {
	return timeofday.FormatDateTime(r.Window().Start.In(business.Location()))
}

func serviceNames(r *booking.Reservation) string {
	names := make([]string, len(r.Services()))
	for i, s := range r.Services() {
		names[i] = s.Name
	}
	return strings.Join(names, ", ")
}
