package commands

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/scheduling"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

const endpointCreateBooking = "POST /api/bookings"

var (
	ErrIdempotencyInProgress = errs.New("idempotency in progress")
	ErrIdempotencyMismatch   = errs.New("idempotency key reused with a different request")
	ErrSlotLocked            = errs.New("slot is locked by another booking")
)

type bookingUseCaseImpl struct {
	uow        shared.UnitOfWork
	locker     shared.SlotLocker
	dispatcher shared.NotificationDispatcher
	waitlist   WaitlistCommands
	clock      clock.Clock
	cfg        config.BookingConfig
}

func NewBookingUseCase(
	uow shared.UnitOfWork,
	locker shared.SlotLocker,
	dispatcher shared.NotificationDispatcher,
	waitlist WaitlistCommands,
	clk clock.Clock,
	cfg config.BookingConfig,
) BookingCommands {
	return &bookingUseCaseImpl{
		uow:        uow,
		locker:     locker,
		dispatcher: dispatcher,
		waitlist:   waitlist,
		clock:      clk,
		cfg:        cfg,
	}
}

// bookingPlan is everything validated before the slot lock is taken.
type bookingPlan struct {
	business  *catalog.Business
	clientID  *uuid.UUID
	client    user.Contact
	services  []catalog.Service
	staff     *catalog.Staff
	slot      booking.Slot
	source    booking.Source
	waitEntry *waitlist.Entry
}

func (uc *bookingUseCaseImpl) CreateBooking(ctx context.Context, in CreateBookingInput, idempotencyKey *uuid.UUID) (*CreateBookingResult, error) {
	if idempotencyKey != nil {
		replay, err := uc.beginIdempotent(ctx, *idempotencyKey, in)
		if err != nil {
			return nil, err
		}
		if replay != nil {
			return replay, nil
		}
	}

	res, err := uc.createBooking(ctx, in, idempotencyKey)
	if err != nil {
		if idempotencyKey != nil {
			uc.releaseIdempotencyKey(ctx, *idempotencyKey, in.Actor.UserID)
		}
		return nil, err
	}

	business, err := uc.uow.Reads().BusinessByID(ctx, res.BusinessID())
	if err != nil {
		slog.Warn("skipping booking side effects: business lookup failed",
			"reservation_id", res.ID().String(),
			"error", err.Error())
	} else {
		uc.afterCreate(context.WithoutCancel(ctx), res, business)
	}

	return resultFor(res, false), nil
}

func resultFor(r *booking.Reservation, replayed bool) *CreateBookingResult {
	return &CreateBookingResult{
		Reservation:     r,
		RequiresDeposit: r.Pricing().DepositRequired,
		DepositAmount:   r.Pricing().Deposit,
		IsReplayed:      replayed,
	}
}

func (uc *bookingUseCaseImpl) createBooking(ctx context.Context, in CreateBookingInput, idempotencyKey *uuid.UUID) (*booking.Reservation, error) {
	plan, err := uc.plan(ctx, in)
	if err != nil {
		return nil, err
	}

	release, err := uc.locker.Lock(ctx, slotLockKey(plan.business.ID(), plan.staff.ID, plan.slot.Date))
	if err != nil {
		if errs.Is(err, shared.ErrLockNotAcquired) {
			return nil, errs.Mark(errs.Conflict("slot is being booked by someone else, please try again"), ErrSlotLocked)
		}
		return nil, errs.Wrap(err, "failed to lock slot")
	}
	defer release(context.WithoutCancel(ctx))

	now := uc.clock.Now()
	var created *booking.Reservation
	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()
		if err := scheduling.CheckAvailability(ctx, reads, plan.business.ID(), plan.staff.ID, plan.slot.Window); err != nil {
			return err
		}

		quote, err := scheduling.Price(ctx, reads, now, scheduling.PriceInput{
			Business: plan.business,
			Services: plan.services,
			Code:     in.DiscountCode,
			UserID:   plan.clientID,
		})
		if err != nil {
			return err
		}

		var waitlistEntryID *uuid.UUID
		if plan.waitEntry != nil {
			id := plan.waitEntry.ID()
			waitlistEntryID = &id
		}
		actorID := in.Actor.UserID
		r, err := booking.NewReservation(booking.NewReservationParams{
			BusinessID:      plan.business.ID(),
			ClientID:        plan.clientID,
			Client:          plan.client,
			Staff:           plan.staff.Snapshot(),
			Services:        quote.Lines,
			Slot:            plan.slot,
			Pricing:         quote.Pricing,
			InitialStatus:   plan.business.Policy().InitialStatus(),
			Source:          plan.source,
			Notes:           in.Notes,
			WaitlistEntryID: waitlistEntryID,
			CreatedBy:       &actorID,
			Now:             now,
		})
		if err != nil {
			return errs.Mark(errs.BadRequest("%s", err.Error()), err)
		}

		if err := tx.Reservations().Create(ctx, r); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return errs.Mark(errs.Conflict("slot no longer available"), scheduling.ErrSlotUnavailable)
			}
			return errs.Wrap(err, "failed to create reservation")
		}

		event, err := newReservationEvent(shared.EventReservationCreated, r, "", now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, event); err != nil {
			return errs.Wrap(err, "failed to append outbox event")
		}

		if idempotencyKey != nil {
			if err := tx.Idempotency().Complete(ctx, *idempotencyKey, in.Actor.UserID, r.ID()); err != nil {
				return errs.Wrap(err, "failed to complete idempotency key")
			}
		}

		created = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("reservation created",
		"reservation_id", created.ID().String(),
		"business_id", created.BusinessID().String(),
		"staff_id", created.Staff().ID.String(),
		"status", created.Status().String())

	return created, nil
}

// plan runs the checks that need no lock: client, business, services, staff,
// slot arithmetic and the advance window.
func (uc *bookingUseCaseImpl) plan(ctx context.Context, in CreateBookingInput) (*bookingPlan, error) {
	reads := uc.uow.Reads()
	p := &bookingPlan{source: in.Source}

	if err := uc.resolveClient(ctx, reads, in, p); err != nil {
		return nil, err
	}

	business, err := scheduling.LoadBusiness(ctx, reads, in.BusinessID)
	if err != nil {
		return nil, err
	}
	p.business = business

	if in.Actor.Role.ActsForBusiness() {
		if err := scheduling.AuthorizeBusiness(ctx, reads, in.Actor, business); err != nil {
			return nil, err
		}
	}

	services, err := scheduling.LoadServices(ctx, reads, business.ID(), in.ServiceIDs)
	if err != nil {
		return nil, err
	}
	p.services = services

	policy := business.Policy()
	slot, err := booking.PlanSlot(in.Date, in.StartTime, booking.ServiceMinutes(catalog.Lines(services)), policy.BufferMinutes, business.Location())
	if err != nil {
		return nil, err
	}
	p.slot = slot

	serviceIDs := make([]uuid.UUID, len(services))
	for i, s := range services {
		serviceIDs[i] = s.ID
	}
	staff, err := scheduling.ResolveStaff(ctx, reads, business.ID(), scheduling.SelectionFor(in.StaffID), serviceIDs, slot.Window)
	if err != nil {
		return nil, err
	}
	p.staff = staff

	if err := policy.ValidateAdvance(slot.Window.Start, uc.clock.Now()); err != nil {
		return nil, err
	}

	if in.WaitlistEntryID != nil {
		entry, err := uc.loadWaitlistEntry(ctx, reads, *in.WaitlistEntryID, business.ID(), p.clientID)
		if err != nil {
			return nil, err
		}
		p.waitEntry = entry
		p.source = booking.SourceWaitlist
	}

	if !p.source.IsValid() {
		if in.Actor.Role.ActsForBusiness() {
			p.source = booking.SourceBusinessApp
		} else {
			p.source = booking.SourceClientApp
		}
	}
	return p, nil
}

func (uc *bookingUseCaseImpl) resolveClient(ctx context.Context, reads shared.Reads, in CreateBookingInput, p *bookingPlan) error {
	if in.Actor.IsClient() && (in.ClientID == nil || *in.ClientID != in.Actor.UserID) {
		return errs.BadRequest("clients can only book for themselves")
	}

	switch {
	case in.ClientID != nil:
		u, err := reads.UserByID(ctx, *in.ClientID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.NotFound("client not found")
			}
			return errs.Wrap(err, "failed to load client")
		}
		id := u.ID()
		p.clientID = &id
		p.client = u.Contact()
	case in.WalkIn != nil:
		contact, err := user.NewWalkInContact(in.WalkIn.Name, in.WalkIn.Email, in.WalkIn.Phone)
		if err != nil {
			return errs.Mark(errs.BadRequest("%s", err.Error()), err)
		}
		p.client = contact
	default:
		return errs.BadRequest("a client id or walk-in contact is required")
	}
	return nil
}

func (uc *bookingUseCaseImpl) loadWaitlistEntry(ctx context.Context, reads shared.Reads, id, businessID uuid.UUID, clientID *uuid.UUID) (*waitlist.Entry, error) {
	entry, err := reads.WaitlistEntryByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.NotFound("waitlist entry not found")
		}
		return nil, errs.Wrap(err, "failed to load waitlist entry")
	}
	if entry.BusinessID() != businessID || clientID == nil || entry.ClientID() != *clientID {
		return nil, errs.NotFound("waitlist entry not found")
	}
	if !entry.IsOpen(uc.clock.Now()) {
		return nil, errs.BadRequest("waitlist entry is no longer active")
	}
	return entry, nil
}

func slotLockKey(businessID, staffID uuid.UUID, date string) string {
	return fmt.Sprintf("booking:slot:%s:%s:%s", businessID, staffID, date)
}

// beginIdempotent registers the key or returns the stored result of an
// earlier identical request.
func (uc *bookingUseCaseImpl) beginIdempotent(ctx context.Context, key uuid.UUID, in CreateBookingInput) (*CreateBookingResult, error) {
	hash := requestHash(in)
	now := uc.clock.Now()
	expiresAt := now.Add(uc.cfg.IdempotencyTTL)
	userID := in.Actor.UserID

	var replayID *uuid.UUID
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		replayID = nil
		inserted, err := tx.Idempotency().TryInsert(ctx, key, userID, endpointCreateBooking, hash, expiresAt)
		if err != nil {
			return errs.Wrap(err, "failed to register idempotency key")
		}
		if inserted {
			return nil
		}

		existing, err := tx.Reads().IdempotencyByKey(ctx, key, userID)
		if err != nil {
			return errs.Wrap(err, "failed to read idempotency key")
		}

		if !existing.ExpiresAt.After(now) {
			claimed, err := tx.Idempotency().ClaimExpired(ctx, key, userID, hash, expiresAt, now)
			if err != nil {
				return errs.Wrap(err, "failed to claim idempotency key")
			}
			if claimed {
				return nil
			}
		}

		if existing.RequestHash != hash {
			return errs.Mark(errs.Conflict("idempotency key was already used with a different request"), ErrIdempotencyMismatch)
		}

		switch existing.Status {
		case shared.IdempotencyCompleted:
			if existing.ResultReservationID == nil {
				return errs.New("completed request missing result reservation ID")
			}
			replayID = existing.ResultReservationID
			return nil
		case shared.IdempotencyProcessing:
			return errs.Mark(errs.Conflict("a request with this idempotency key is still being processed"), ErrIdempotencyInProgress)
		default:
			return errs.New("invalid idempotency key status")
		}
	})
	if err != nil || replayID == nil {
		return nil, err
	}

	r, err := uc.uow.Reads().ReservationByID(ctx, *replayID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load replayed reservation")
	}
	return resultFor(r, true), nil
}

func (uc *bookingUseCaseImpl) releaseIdempotencyKey(ctx context.Context, key, userID uuid.UUID) {
	err := uc.uow.Within(context.WithoutCancel(ctx), func(ctx context.Context, tx shared.Tx) error {
		return tx.Idempotency().Release(ctx, key, userID)
	})
	if err != nil {
		slog.Warn("failed to release idempotency key", "key", key.String(), "error", err.Error())
	}
}

func requestHash(in CreateBookingInput) string {
	data, _ := json.Marshal(in)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func (uc *bookingUseCaseImpl) loadForBusiness(ctx context.Context, tx shared.Tx, actor shared.Actor, id uuid.UUID) (*booking.Reservation, *catalog.Business, error) {
	r, err := tx.Reservations().GetForUpdate(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, errs.NotFound("reservation not found")
		}
		return nil, nil, errs.Wrap(err, "failed to load reservation")
	}
	business, err := tx.Reads().BusinessByID(ctx, r.BusinessID())
	if err != nil {
		return nil, nil, errs.Wrap(err, "failed to load business")
	}
	if err := scheduling.AuthorizeBusiness(ctx, tx.Reads(), actor, business); err != nil {
		return nil, nil, errs.NotFound("reservation not found")
	}
	return r, business, nil
}

func timePtr(t time.Time) *time.Time { return &t }
