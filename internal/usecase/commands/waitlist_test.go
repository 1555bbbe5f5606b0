//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/testutil/fixture"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitlistPrefs(w *fixture.World) waitlist.Preferences {
	return waitlist.Preferences{ServiceIDs: []uuid.UUID{w.Haircut.ID}}
}

func join(t *testing.T, w *fixture.World, clientID uuid.UUID, priority waitlist.Priority) *waitlist.Entry {
	t.Helper()
	e, err := w.Waitlist.CreateWaitlistEntry(context.Background(), commands.CreateWaitlistEntryInput{
		BusinessID:  w.Business.ID(),
		ClientID:    clientID,
		Preferences: waitlistPrefs(w),
		Priority:    priority,
	})
	require.NoError(t, err)
	return e
}

func TestCreateWaitlistEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("created active", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		e := join(t, w, w.Client.ID(), "")

		assert.Equal(t, waitlist.StatusActive, e.Status())
		assert.Equal(t, waitlist.PriorityNormal, e.Priority())
		assert.Equal(t, fixture.Now, e.CreatedAt())
		assert.NotNil(t, w.Store.WaitlistEntry(e.ID()))
	})

	t.Run("second entry for the same service", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		join(t, w, w.Client.ID(), waitlist.PriorityNormal)

		_, err := w.Waitlist.CreateWaitlistEntry(ctx, commands.CreateWaitlistEntryInput{
			BusinessID: w.Business.ID(),
			ClientID:   w.Client.ID(),
			Preferences: waitlist.Preferences{
				ServiceIDs: []uuid.UUID{w.Color.ID, w.Haircut.ID},
			},
		})
		assertKind(t, err, errs.KindConflict, "Client already has a waitlist entry for this service")
		assert.True(t, errs.Is(err, commands.ErrDuplicateWaitlistEntry))
	})

	t.Run("different service is allowed", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		join(t, w, w.Client.ID(), waitlist.PriorityNormal)

		_, err := w.Waitlist.CreateWaitlistEntry(ctx, commands.CreateWaitlistEntryInput{
			BusinessID:  w.Business.ID(),
			ClientID:    w.Client.ID(),
			Preferences: waitlist.Preferences{ServiceIDs: []uuid.UUID{w.Color.ID}},
		})
		require.NoError(t, err)
	})

	t.Run("rejections", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		closed := fixture.NewWorld(func(p *booking.Policy) { p.WaitlistAllowed = false })
		from, to := "18:00", "09:00"

		testCases := []struct {
			name string
			w    *fixture.World
			in   func(*fixture.World) commands.CreateWaitlistEntryInput
			kind errs.Kind
			msg  string
		}{
			{
				name: "waitlist disabled",
				w:    closed,
				in: func(w *fixture.World) commands.CreateWaitlistEntryInput {
					return commands.CreateWaitlistEntryInput{BusinessID: w.Business.ID(), ClientID: w.Client.ID(), Preferences: waitlistPrefs(w)}
				},
				kind: errs.KindBadRequest,
				msg:  "waitlist is not enabled for this business",
			},
			{
				name: "unknown client",
				w:    w,
				in: func(w *fixture.World) commands.CreateWaitlistEntryInput {
					return commands.CreateWaitlistEntryInput{BusinessID: w.Business.ID(), ClientID: uuid.New(), Preferences: waitlistPrefs(w)}
				},
				kind: errs.KindNotFound,
				msg:  "client not found",
			},
			{
				name: "no services",
				w:    w,
				in: func(w *fixture.World) commands.CreateWaitlistEntryInput {
					return commands.CreateWaitlistEntryInput{BusinessID: w.Business.ID(), ClientID: w.Client.ID()}
				},
				kind: errs.KindBadRequest,
				msg:  "at least one service is required",
			},
			{
				name: "reversed time range",
				w:    w,
				in: func(w *fixture.World) commands.CreateWaitlistEntryInput {
					prefs := waitlistPrefs(w)
					prefs.TimeFrom, prefs.TimeTo = &from, &to
					return commands.CreateWaitlistEntryInput{BusinessID: w.Business.ID(), ClientID: w.Client.ID(), Preferences: prefs}
				},
				kind: errs.KindBadRequest,
				msg:  waitlist.ErrInvalidTimeRange.Error(),
			},
			{
				name: "unknown priority",
				w:    w,
				in: func(w *fixture.World) commands.CreateWaitlistEntryInput {
					return commands.CreateWaitlistEntryInput{BusinessID: w.Business.ID(), ClientID: w.Client.ID(), Preferences: waitlistPrefs(w), Priority: "urgent"}
				},
				kind: errs.KindBadRequest,
				msg:  waitlist.ErrInvalidPriority.Error(),
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := tc.w.Waitlist.CreateWaitlistEntry(ctx, tc.in(tc.w))
				assertKind(t, err, tc.kind, tc.msg)
			})
		}
	})
}

func TestNotifyNext(t *testing.T) {
	ctx := context.Background()

	t.Run("vip before earlier normal entries", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		first := join(t, w, w.AddClient().ID(), waitlist.PriorityNormal)
		vip := join(t, w, w.AddClient().ID(), waitlist.PriorityVIP)

		got, err := w.Waitlist.NotifyNext(ctx, w.Business.ID(), nil)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, vip.ID(), got.ID())

		notifications := w.Store.WaitlistEntry(vip.ID()).Notifications()
		require.Len(t, notifications, 1)
		assert.Equal(t, waitlist.NotificationSent, notifications[0].Status)
		assert.Equal(t, fixture.Now.Add(30*time.Minute), notifications[0].ExpiresAt)
		assert.Empty(t, w.Store.WaitlistEntry(first.ID()).Notifications())

		offers := w.Dispatcher.OfType(shared.NotifyWaitlistOffer)
		require.Len(t, offers, 1)
		assert.Equal(t, vip.ClientID(), offers[0].UserID)
		assert.Equal(t, "2026-03-01T09:30:00Z", offers[0].Data["expires_at"])
	})

	t.Run("first come first served within a priority", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		first := join(t, w, w.AddClient().ID(), waitlist.PriorityNormal)
		join(t, w, w.AddClient().ID(), waitlist.PriorityNormal)

		got, err := w.Waitlist.NotifyNext(ctx, w.Business.ID(), nil)
		require.NoError(t, err)
		assert.Equal(t, first.ID(), got.ID())
	})

	t.Run("expired entries are passed over", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		soon := fixture.Now.Add(time.Hour)
		_, err := w.Waitlist.CreateWaitlistEntry(ctx, commands.CreateWaitlistEntryInput{
			BusinessID:  w.Business.ID(),
			ClientID:    w.AddClient().ID(),
			Preferences: waitlistPrefs(w),
			Priority:    waitlist.PriorityVIP,
			ExpiresAt:   &soon,
		})
		require.NoError(t, err)
		later := join(t, w, w.AddClient().ID(), waitlist.PriorityNormal)

		w.Clock.Add(2 * time.Hour)
		got, err := w.Waitlist.NotifyNext(ctx, w.Business.ID(), nil)
		require.NoError(t, err)
		assert.Equal(t, later.ID(), got.ID())
	})

	t.Run("nobody waiting", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		got, err := w.Waitlist.NotifyNext(ctx, w.Business.ID(), nil)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, w.Store.Outbox())
	})
}

func TestRespondToOffer(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*fixture.World, *waitlist.Entry) {
		w := fixture.NewWorld(nil)
		e := join(t, w, w.Client.ID(), waitlist.PriorityNormal)
		_, err := w.Waitlist.NotifyNext(ctx, w.Business.ID(), nil)
		require.NoError(t, err)
		return w, e
	}

	t.Run("accepted in time", func(t *testing.T) {
		w, e := setup(t)
		w.Clock.Add(10 * time.Minute)

		got, err := w.Waitlist.RespondToOffer(ctx, e.ID(), w.Client.ID(), true)
		require.NoError(t, err)
		last := got.Notifications()[0]
		assert.Equal(t, waitlist.NotificationAccepted, last.Status)
		require.NotNil(t, last.RespondedAt)
		assert.Equal(t, fixture.Now.Add(10*time.Minute), *last.RespondedAt)
		assert.Equal(t, waitlist.StatusActive, got.Status())
	})

	t.Run("declined", func(t *testing.T) {
		w, e := setup(t)
		got, err := w.Waitlist.RespondToOffer(ctx, e.ID(), w.Client.ID(), false)
		require.NoError(t, err)
		assert.Equal(t, waitlist.NotificationDeclined, got.Notifications()[0].Status)
		assert.Len(t, w.Dispatcher.OfType(shared.NotifyWaitlistOffer), 1)
	})

	t.Run("too late", func(t *testing.T) {
		w, e := setup(t)
		w.Clock.Add(31 * time.Minute)

		_, err := w.Waitlist.RespondToOffer(ctx, e.ID(), w.Client.ID(), true)
		assertKind(t, err, errs.KindConflict, "the offer has expired")
		assert.True(t, errs.Is(err, waitlist.ErrOfferExpired))
		assert.Equal(t, waitlist.NotificationExpired, w.Store.WaitlistEntry(e.ID()).Notifications()[0].Status)

		_, err = w.Waitlist.RespondToOffer(ctx, e.ID(), w.Client.ID(), true)
		assertKind(t, err, errs.KindConflict, "no open offer for this waitlist entry")
	})

	t.Run("someone else's entry", func(t *testing.T) {
		w, e := setup(t)
		_, err := w.Waitlist.RespondToOffer(ctx, e.ID(), uuid.New(), true)
		assertKind(t, err, errs.KindNotFound, "waitlist entry not found")
	})

	t.Run("no offer yet", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		e := join(t, w, w.Client.ID(), waitlist.PriorityNormal)
		_, err := w.Waitlist.RespondToOffer(ctx, e.ID(), w.Client.ID(), true)
		assertKind(t, err, errs.KindConflict, "no open offer for this waitlist entry")
	})
}

func TestCreateBooking_FromWaitlist(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)
	e := join(t, w, w.Client.ID(), waitlist.PriorityNormal)

	in := w.BookingInput("10:00")
	id := e.ID()
	in.WaitlistEntryID = &id
	res, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)

	assert.Equal(t, booking.SourceWaitlist, res.Reservation.Source())
	require.NotNil(t, res.Reservation.WaitlistEntryID())
	assert.Equal(t, id, *res.Reservation.WaitlistEntryID())
	assert.Equal(t, waitlist.StatusFulfilled, w.Store.WaitlistEntry(id).Status())

	t.Run("fulfilled entry cannot be reused", func(t *testing.T) {
		in := w.BookingInput("12:00")
		in.WaitlistEntryID = &id
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		assertKind(t, err, errs.KindBadRequest, "waitlist entry is no longer active")
	})

	t.Run("another client's entry", func(t *testing.T) {
		other := join(t, w, w.AddClient().ID(), waitlist.PriorityNormal)
		in := w.BookingInput("12:00")
		otherID := other.ID()
		in.WaitlistEntryID = &otherID
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		assertKind(t, err, errs.KindNotFound, "waitlist entry not found")
	})
}
