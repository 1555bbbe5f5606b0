package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/config"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timeofday"
	"booking-engine/internal/usecase/scheduling"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrDuplicateWaitlistEntry = errs.New("duplicate waitlist entry")

type waitlistUseCaseImpl struct {
	uow        shared.UnitOfWork
	dispatcher shared.NotificationDispatcher
	clock      clock.Clock
	cfg        config.BookingConfig
}

func NewWaitlistUseCase(uow shared.UnitOfWork, dispatcher shared.NotificationDispatcher, clk clock.Clock, cfg config.BookingConfig) WaitlistCommands {
	return &waitlistUseCaseImpl{uow: uow, dispatcher: dispatcher, clock: clk, cfg: cfg}
}

func (uc *waitlistUseCaseImpl) CreateWaitlistEntry(ctx context.Context, in CreateWaitlistEntryInput) (*waitlist.Entry, error) {
	reads := uc.uow.Reads()

	business, err := scheduling.LoadBusiness(ctx, reads, in.BusinessID)
	if err != nil {
		return nil, err
	}
	if !business.Policy().WaitlistAllowed {
		return nil, errs.BadRequest("waitlist is not enabled for this business")
	}

	if _, err := reads.UserByID(ctx, in.ClientID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.NotFound("client not found")
		}
		return nil, errs.Wrap(err, "failed to load client")
	}

	services, err := scheduling.LoadServices(ctx, reads, business.ID(), in.Preferences.ServiceIDs)
	if err != nil {
		return nil, err
	}
	prefs := in.Preferences
	prefs.ServiceIDs = make([]uuid.UUID, len(services))
	for i, s := range services {
		prefs.ServiceIDs[i] = s.ID
	}

	entry, err := waitlist.NewEntry(business.ID(), in.ClientID, prefs, in.Priority, in.ExpiresAt, uc.clock.Now())
	if err != nil {
		return nil, errs.Mark(errs.BadRequest("%s", err.Error()), err)
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		active, err := tx.Reads().ActiveWaitlistByClient(ctx, business.ID(), in.ClientID)
		if err != nil {
			return errs.Wrap(err, "failed to list waitlist entries")
		}
		for _, e := range active {
			if e.OverlapsServices(prefs.ServiceIDs) {
				return errs.Mark(errs.Conflict("Client already has a waitlist entry for this service"), ErrDuplicateWaitlistEntry)
			}
		}
		if err := tx.Waitlist().Create(ctx, entry); err != nil {
			if infra.IsKind(err, infra.KindDuplicateKey) {
				return errs.Mark(errs.Conflict("Client already has a waitlist entry for this service"), ErrDuplicateWaitlistEntry)
			}
			return errs.Wrap(err, "failed to create waitlist entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("waitlist entry created",
		"entry_id", entry.ID().String(),
		"business_id", business.ID().String(),
		"priority", string(entry.Priority()))
	return entry, nil
}

func (uc *waitlistUseCaseImpl) NotifyNext(ctx context.Context, businessID uuid.UUID, freedReservationID *uuid.UUID) (*waitlist.Entry, error) {
	now := uc.clock.Now()

	var (
		next  *waitlist.Entry
		offer waitlist.Notification
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		next = nil
		entries, err := tx.Waitlist().ActiveForUpdate(ctx, businessID)
		if err != nil {
			return errs.Wrap(err, "failed to list waitlist entries")
		}
		candidate := waitlist.SelectNext(entries, now)
		if candidate == nil {
			return nil
		}

		n, err := candidate.Offer(now, uc.cfg.WaitlistOfferWindow, freedReservationID)
		if err != nil {
			return err
		}
		if err := tx.Waitlist().Update(ctx, candidate); err != nil {
			return errs.Wrap(err, "failed to update waitlist entry")
		}
		event, err := newWaitlistOfferedEvent(candidate, n, now)
		if err != nil {
			return err
		}
		if err := tx.Outbox().Append(ctx, event); err != nil {
			return errs.Wrap(err, "failed to append outbox event")
		}

		next, offer = candidate, n
		return nil
	})
	if err != nil || next == nil {
		return nil, err
	}

	uc.sendOffer(context.WithoutCancel(ctx), next, offer)
	return next, nil
}

func (uc *waitlistUseCaseImpl) sendOffer(ctx context.Context, e *waitlist.Entry, offer waitlist.Notification) {
	businessName := "the business"
	if b, err := uc.uow.Reads().BusinessByID(ctx, e.BusinessID()); err == nil {
		businessName = b.Name()
	}

	data := map[string]string{
		"waitlist_entry_id": e.ID().String(),
		"business_id":       e.BusinessID().String(),
		"expires_at":        offer.ExpiresAt.UTC().Format(time.RFC3339),
	}
	if offer.ReservationID != nil {
		data["reservation_id"] = offer.ReservationID.String()
	}

	err := uc.dispatcher.Schedule(ctx, shared.Notification{
		Key:        fmt.Sprintf("waitlist:%s:%d", e.ID(), len(e.Notifications())),
		UserID:     e.ClientID(),
		Type:       shared.NotifyWaitlistOffer,
		Title:      "A slot opened up",
		Body:       fmt.Sprintf("A spot is available at %s. Respond before %s.", businessName, timeofday.FormatDateTime(offer.ExpiresAt)),
		Data:       data,
		BusinessID: e.BusinessID(),
	})
	if err != nil {
		slog.Warn("failed to send waitlist offer",
			"entry_id", e.ID().String(),
			"business_id", e.BusinessID().String(),
			"error", err.Error())
	}
}

func (uc *waitlistUseCaseImpl) RespondToOffer(ctx context.Context, entryID, clientID uuid.UUID, accept bool) (*waitlist.Entry, error) {
	now := uc.clock.Now()

	var (
		entry   *waitlist.Entry
		lateErr error
	)
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		lateErr = nil
		e, err := tx.Waitlist().GetForUpdate(ctx, entryID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.NotFound("waitlist entry not found")
			}
			return errs.Wrap(err, "failed to load waitlist entry")
		}
		if e.ClientID() != clientID {
			return errs.NotFound("waitlist entry not found")
		}

		switch err := e.Respond(now, accept); {
		case err == nil:
		case errs.Is(err, waitlist.ErrOfferExpired):
			// The expiry is persisted before reporting it.
			lateErr = errs.Mark(errs.Conflict("the offer has expired"), err)
		case errs.Is(err, waitlist.ErrNoOpenOffer):
			return errs.Mark(errs.Conflict("no open offer for this waitlist entry"), err)
		case errs.Is(err, waitlist.ErrNotActive):
			return errs.Mark(errs.Conflict("waitlist entry is not active"), err)
		default:
			return err
		}

		if err := tx.Waitlist().Update(ctx, e); err != nil {
			return errs.Wrap(err, "failed to update waitlist entry")
		}
		entry = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	if lateErr != nil {
		return nil, lateErr
	}
	return entry, nil
}
