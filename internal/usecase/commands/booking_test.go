//go:build unit

package commands_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/testutil/builder"
	"booking-engine/internal/testutil/fixture"
	"booking-engine/internal/usecase/commands"
	"booking-engine/internal/usecase/queries"
	"booking-engine/internal/usecase/scheduling"
	"booking-engine/internal/usecase/shared"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertKind(t *testing.T, err error, kind errs.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	gotKind, gotMsg := errs.KindOf(err)
	assert.Equal(t, kind, gotKind, "unexpected kind for %v", err)
	if msg != "" {
		assert.Equal(t, msg, gotMsg)
	}
}

func at(clock string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", fixture.BookingDate+" "+clock)
	if err != nil {
		panic(err)
	}
	return t
}

// =============================================================================
// CreateBooking
// =============================================================================

func TestCreateBooking_SlotArithmetic(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(func(p *booking.Policy) { p.BufferMinutes = 10 })

	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)

	r := res.Reservation
	assert.Equal(t, "10:50", r.Slot().EndTime)
	assert.Equal(t, at("10:00"), r.Window().Start)
	assert.Equal(t, at("11:00"), r.Window().End)
	assert.Equal(t, 60, r.Slot().TotalMinutes)
	assert.Equal(t, booking.StatusConfirmed, r.Status())
	assert.Equal(t, w.Staff[0].ID, r.Staff().ID)
	assert.Equal(t, booking.SourceClientApp, r.Source())
	assert.False(t, res.IsReplayed)

	t.Run("buffer blocks the next start", func(t *testing.T) {
		in := w.BookingInput("10:55")
		in.StaffID = w.StaffID(0)
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		assertKind(t, err, errs.KindConflict, "slot no longer available")
		assert.True(t, errs.Is(err, scheduling.ErrSlotUnavailable))
	})

	t.Run("back-to-back after the buffer", func(t *testing.T) {
		in := w.BookingInput("11:00")
		in.StaffID = w.StaffID(0)
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		require.NoError(t, err)
	})
}

func TestCreateBooking_InitialStatusFollowsPolicy(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(func(p *booking.Policy) { p.RequireConfirmation = true })

	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPending, res.Reservation.Status())
	assert.Len(t, w.Dispatcher.OfType(shared.NotifyBookingPending), 1)
	assert.Empty(t, w.Dispatcher.OfType(shared.NotifyBookingConfirmed))
}

func TestCreateBooking_AdvanceWindow(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name  string
		now   time.Time
		start string
		msg   string
	}{
		{name: "exactly at the minimum notice", now: at("08:00"), start: "10:00"},
		{name: "inside the minimum notice", now: at("08:00"), start: "09:45", msg: "bookings must be made at least 2 hour(s) in advance"},
		{name: "in the past", now: at("12:00"), start: "10:00", msg: "cannot book a time in the past"},
		{name: "beyond the maximum window", now: at("10:00").AddDate(0, 0, -31), start: "11:00", msg: "bookings can be made at most 30 day(s) in advance"},
		{name: "at the maximum window", now: at("10:00").AddDate(0, 0, -30), start: "10:00"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := fixture.NewWorld(func(p *booking.Policy) {
				p.MinAdvanceHours = 2
				p.MaxAdvanceDays = 30
			})
			w.Clock.Set(tc.now)

			_, err := w.Bookings.CreateBooking(ctx, w.BookingInput(tc.start), nil)
			if tc.msg == "" {
				require.NoError(t, err)
				return
			}
			assertKind(t, err, errs.KindBadRequest, tc.msg)
			assert.Empty(t, w.Store.Reservations())
		})
	}
}

func TestCreateBooking_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	testCases := []struct {
		name   string
		mutate func(*commands.CreateBookingInput)
		kind   errs.Kind
		msg    string
	}{
		{
			name:   "client booking for someone else",
			mutate: func(in *commands.CreateBookingInput) { other := uuid.New(); in.ClientID = &other },
			kind:   errs.KindBadRequest,
			msg:    "clients can only book for themselves",
		},
		{
			name:   "unknown business",
			mutate: func(in *commands.CreateBookingInput) { in.BusinessID = uuid.New() },
			kind:   errs.KindNotFound,
			msg:    "business not found",
		},
		{
			name:   "no services",
			mutate: func(in *commands.CreateBookingInput) { in.ServiceIDs = nil },
			kind:   errs.KindBadRequest,
			msg:    "at least one service is required",
		},
		{
			name:   "unknown service",
			mutate: func(in *commands.CreateBookingInput) { in.ServiceIDs = []uuid.UUID{uuid.New()} },
			kind:   errs.KindBadRequest,
			msg:    "one or more services are invalid or inactive",
		},
		{
			name:   "unknown staff",
			mutate: func(in *commands.CreateBookingInput) { id := uuid.New(); in.StaffID = &id },
			kind:   errs.KindNotFound,
			msg:    "staff member not found",
		},
		{
			name:   "malformed start time",
			mutate: func(in *commands.CreateBookingInput) { in.StartTime = "25:00" },
			kind:   errs.KindBadRequest,
			msg:    `invalid start time "25:00"`,
		},
		{
			name:   "ends after midnight",
			mutate: func(in *commands.CreateBookingInput) { in.StartTime = "23:30" },
			kind:   errs.KindBadRequest,
			msg:    "appointment starting at 23:30 would end after midnight",
		},
		{
			name:   "unknown waitlist entry",
			mutate: func(in *commands.CreateBookingInput) { id := uuid.New(); in.WaitlistEntryID = &id },
			kind:   errs.KindNotFound,
			msg:    "waitlist entry not found",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			in := w.BookingInput("10:00")
			tc.mutate(&in)
			_, err := w.Bookings.CreateBooking(ctx, in, nil)
			assertKind(t, err, tc.kind, tc.msg)
		})
	}
	assert.Empty(t, w.Store.Reservations())
}

func TestCreateBooking_AutoAssignSkipsBookedStaff(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)
	w.Seed(0, "10:00")
	w.Seed(1, "10:15")

	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:30"), nil)
	require.NoError(t, err)
	assert.Equal(t, w.Staff[2].ID, res.Reservation.Staff().ID)

	_, err = w.Bookings.CreateBooking(ctx, w.BookingInput("10:30"), nil)
	assertKind(t, err, errs.KindConflict, "no staff member is available at the requested time")
}

func TestCreateBooking_ConcurrentRequestsForOneSlot(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		failures  []error
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			in := w.BookingInput("10:00")
			in.StaffID = w.StaffID(1)
			_, err := w.Bookings.CreateBooking(ctx, in, nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	require.Len(t, failures, attempts-1)
	for _, err := range failures {
		kind, _ := errs.KindOf(err)
		assert.Equal(t, errs.KindConflict, kind, "unexpected error %v", err)
	}
	assert.Len(t, w.Store.Reservations(), 1)
}

func TestCreateBooking_WalkInByOwner(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	in := w.BookingInput("10:00")
	in.Actor = w.OwnerActor()
	in.ClientID = nil
	in.WalkIn = &user.Contact{Name: "Walk In", Phone: "+4917099999"}
	in.Source = ""

	res, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)

	r := res.Reservation
	assert.Nil(t, r.ClientID())
	assert.Equal(t, "Walk In", r.Client().Name)
	assert.Equal(t, booking.SourceBusinessApp, r.Source())

	assert.Empty(t, w.Dispatcher.OfType(shared.NotifyReminder))
	assert.Empty(t, w.Dispatcher.OfType(shared.NotifyBookingConfirmed))
	assert.Len(t, w.Dispatcher.OfType(shared.NotifyOwnerNewBooking), 1)

	t.Run("walk-in needs a name", func(t *testing.T) {
		in := w.BookingInput("12:00")
		in.Actor = w.OwnerActor()
		in.ClientID = nil
		in.WalkIn = &user.Contact{Phone: "+4917099999"}
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		assertKind(t, err, errs.KindBadRequest, "name is required")
	})

	t.Run("foreign owner sees no business", func(t *testing.T) {
		in := w.BookingInput("12:00")
		in.Actor = shared.Actor{UserID: uuid.New(), Role: user.RoleOwner}
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		assertKind(t, err, errs.KindNotFound, "business not found")
	})
}

func TestCreateBooking_SideEffects(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)
	r := res.Reservation

	confirmed := w.Dispatcher.OfType(shared.NotifyBookingConfirmed)
	require.Len(t, confirmed, 1)
	assert.Equal(t, w.Client.ID(), confirmed[0].UserID)
	assert.Equal(t, r.ID().String(), confirmed[0].Data["reservation_id"])
	assert.Equal(t, "10:00", confirmed[0].Data["start_time"])

	reminders := w.Dispatcher.OfType(shared.NotifyReminder)
	require.Len(t, reminders, 2)
	assert.Equal(t, at("10:00").Add(-24*time.Hour), *reminders[0].SendAt)
	assert.Equal(t, at("08:00"), *reminders[1].SendAt)
	assert.NotEqual(t, reminders[0].Key, reminders[1].Key)

	review := w.Dispatcher.OfType(shared.NotifyReviewRequest)
	require.Len(t, review, 1)
	assert.Equal(t, at("12:50"), *review[0].SendAt)

	owner := w.Dispatcher.OfType(shared.NotifyOwnerNewBooking)
	require.Len(t, owner, 1)
	assert.Equal(t, w.Owner.ID(), owner[0].UserID)

	rel := w.Store.Relationship(w.Business.ID(), w.Client.ID())
	assert.Equal(t, 1, rel.Bookings)
	assert.Equal(t, int64(1000), rel.Spent)
	require.NotNil(t, rel.LastVisit)
	assert.Equal(t, at("10:00"), *rel.LastVisit)
	assert.Equal(t, 1, w.Store.Lifetime(w.Client.ID()).Bookings)

	outbox := w.Store.Outbox()
	require.Len(t, outbox, 1)
	assert.Equal(t, shared.EventReservationCreated, outbox[0].EventType)
	assert.Equal(t, r.ID(), outbox[0].AggregateID)

	t.Run("reminders already due are skipped", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		w.Clock.Set(at("06:00"))
		_, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)
		reminders := w.Dispatcher.OfType(shared.NotifyReminder)
		require.Len(t, reminders, 1)
		assert.Equal(t, at("08:00"), *reminders[0].SendAt)
	})

	t.Run("dispatcher failures do not undo the booking", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		w.Dispatcher.Err = errs.New("queue down")
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)
		assert.NotNil(t, w.Store.Reservation(res.Reservation.ID()))
	})
}

// =============================================================================
// Idempotency
// =============================================================================

func TestCreateBooking_StatsCountedOncePerReservation(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)

	commands.RunAfterCreate(ctx, w.Bookings, res.Reservation, w.Business)

	rel := w.Store.Relationship(w.Business.ID(), w.Client.ID())
	assert.Equal(t, 1, rel.Bookings)
	assert.Equal(t, int64(1000), rel.Spent)
	assert.Equal(t, 1, w.Store.Lifetime(w.Client.ID()).Bookings)

	second, err := w.Bookings.CreateBooking(ctx, w.BookingInput("12:00"), nil)
	require.NoError(t, err)
	require.NotEqual(t, res.Reservation.ID(), second.Reservation.ID())
	assert.Equal(t, 2, w.Store.Lifetime(w.Client.ID()).Bookings)
}

func TestCreateBooking_Idempotency(t *testing.T) {
	ctx := context.Background()

	t.Run("replay returns the stored reservation", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		key := uuid.New()

		first, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)
		second, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)

		assert.False(t, first.IsReplayed)
		assert.True(t, second.IsReplayed)
		assert.Equal(t, first.Reservation.ID(), second.Reservation.ID())
		assert.Len(t, w.Store.Reservations(), 1)
		assert.Len(t, w.Dispatcher.OfType(shared.NotifyBookingConfirmed), 1)

		rec, ok := w.Store.Idempotency(key, w.Client.ID())
		require.True(t, ok)
		assert.Equal(t, shared.IdempotencyCompleted, rec.Status)
		assert.Equal(t, first.Reservation.ID(), *rec.ResultReservationID)
	})

	t.Run("different request with the same key", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		key := uuid.New()

		_, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)
		_, err = w.Bookings.CreateBooking(ctx, w.BookingInput("11:00"), &key)
		assertKind(t, err, errs.KindConflict, "idempotency key was already used with a different request")
		assert.True(t, errs.Is(err, commands.ErrIdempotencyMismatch))
		assert.Len(t, w.Store.Reservations(), 1)
	})

	t.Run("keys are scoped per user", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		key := uuid.New()
		other := w.AddClient()

		_, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)

		in := w.BookingInput("10:00")
		otherID := other.ID()
		in.Actor = shared.Actor{UserID: otherID, Role: user.RoleClient}
		in.ClientID = &otherID
		res, err := w.Bookings.CreateBooking(ctx, in, &key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.Len(t, w.Store.Reservations(), 2)
	})

	t.Run("failed request releases the key", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		key := uuid.New()

		in := w.BookingInput("10:00")
		in.ServiceIDs = []uuid.UUID{uuid.New()}
		_, err := w.Bookings.CreateBooking(ctx, in, &key)
		require.Error(t, err)
		_, ok := w.Store.Idempotency(key, w.Client.ID())
		assert.False(t, ok)

		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
	})

	t.Run("expired key is reusable", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		key := uuid.New()

		_, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), &key)
		require.NoError(t, err)

		w.Clock.Add(w.Config.IdempotencyTTL + time.Minute)
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("11:00"), &key)
		require.NoError(t, err)
		assert.False(t, res.IsReplayed)
		assert.Len(t, w.Store.Reservations(), 2)
	})
}

// =============================================================================
// Pricing and promotions
// =============================================================================

func TestCreateBooking_PriceMatchesPreview(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(func(p *booking.Policy) {
		p.Deposit = booking.DepositPolicy{Required: true, Type: booking.DepositPercentage, Amount: 33}
	})
	w.Store.AddPromotion(builder.NewPromotionBuilder(w.Business.ID()).With(func(p *promotion.Params) { p.Value = 15 }).Params)

	clientID := w.Client.ID()
	preview, err := w.Queries.CalculatePrice(ctx, queries.PriceRequest{
		BusinessID:   w.Business.ID(),
		ServiceIDs:   []uuid.UUID{w.Haircut.ID, w.Color.ID},
		DiscountCode: "spring10",
		UserID:       &clientID,
	})
	require.NoError(t, err)

	in := w.BookingInput("10:00")
	in.ServiceIDs = []uuid.UUID{w.Haircut.ID, w.Color.ID}
	in.DiscountCode = "spring10"
	res, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)

	p := res.Reservation.Pricing()
	want := queries.PriceView{
		Lines:           res.Reservation.Services(),
		Subtotal:        p.Subtotal,
		DiscountAmount:  p.DiscountAmount,
		PromotionCode:   &p.Promotion.Code,
		Total:           p.Total,
		DepositRequired: p.DepositRequired,
		Deposit:         p.Deposit,
		ServiceMinutes:  90,
		TotalMinutes:    90,
	}
	if diff := cmp.Diff(want, *preview); diff != "" {
		t.Errorf("preview differs from booking (-booking +preview):\n%s", diff)
	}
	assert.Equal(t, int64(525), p.DiscountAmount)
	assert.Equal(t, int64(2975), p.Total)
	assert.Equal(t, int64(982), p.Deposit)
	assert.True(t, res.RequiresDeposit)
	assert.Equal(t, p.Deposit, res.DepositAmount)
}

func TestCreateBooking_PromotionUsage(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)
	one := 1
	promo := builder.NewPromotionBuilder(w.Business.ID()).With(func(p *promotion.Params) { p.PerUserLimit = &one }).Params
	w.Store.AddPromotion(promo)

	in := w.BookingInput("10:00")
	in.DiscountCode = "SPRING10"
	first, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(100), first.Reservation.Pricing().DiscountAmount)
	assert.Equal(t, 1, w.Store.PromotionUsageCount(promo.ID))

	usages := w.Store.PromotionUsages()
	require.Len(t, usages, 1)
	assert.Equal(t, first.Reservation.ID(), usages[0].ReservationID)
	assert.Equal(t, int64(100), usages[0].Discount)

	in = w.BookingInput("12:00")
	in.DiscountCode = "SPRING10"
	second, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)
	assert.Zero(t, second.Reservation.Pricing().DiscountAmount)
	assert.Nil(t, second.Reservation.Pricing().Promotion)
	assert.Equal(t, 1, w.Store.PromotionUsageCount(promo.ID))
}

func TestCreateBooking_InapplicableCodeIsIgnored(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)

	in := w.BookingInput("10:00")
	in.DiscountCode = "DOESNOTEXIST"
	res, err := w.Bookings.CreateBooking(ctx, in, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), res.Reservation.Pricing().Total)
	assert.Empty(t, w.Store.PromotionUsages())
}

// =============================================================================
// CancelBooking
// =============================================================================

func depositWorld(mutate func(*booking.Policy)) *fixture.World {
	return fixture.NewWorld(func(p *booking.Policy) {
		p.Deposit = booking.DepositPolicy{Required: true, Type: booking.DepositPercentage, Amount: 25}
		p.Cancellation = booking.CancellationPolicy{
			Allow:              true,
			PenaltyWindowHours: 24,
			PenaltyType:        booking.PenaltyPercentage,
			PenaltyAmount:      50,
		}
		if mutate != nil {
			mutate(p)
		}
	})
}

func bookAndPay(t *testing.T, w *fixture.World) *booking.Reservation {
	t.Helper()
	ctx := context.Background()
	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)
	require.Equal(t, int64(250), res.DepositAmount)

	paid, err := w.Bookings.RecordDepositPayment(ctx, w.OwnerActor(), res.Reservation.ID())
	require.NoError(t, err)
	require.True(t, paid.Pricing().DepositPaid)
	return paid
}

func TestCancelBooking_Refunds(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name      string
		mutate    func(*booking.Policy)
		now       time.Time
		refund    int64
		penalty   bool
		payStatus booking.PaymentStatus
	}{
		{name: "outside the penalty window", now: fixture.Now, refund: 250, payStatus: booking.PaymentRefunded},
		{name: "exactly at the window edge", now: at("10:00").Add(-24 * time.Hour), refund: 250, payStatus: booking.PaymentRefunded},
		{name: "inside the penalty window", now: at("00:00"), refund: 125, penalty: true, payStatus: booking.PaymentPartiallyRefunded},
		{name: "fixed penalty", mutate: func(p *booking.Policy) {
			p.Cancellation.PenaltyType = booking.PenaltyFixed
			p.Cancellation.PenaltyAmount = 400
		}, now: at("00:00"), refund: 0, penalty: true, payStatus: booking.PaymentDepositPaid},
		{name: "cancellation not allowed", mutate: func(p *booking.Policy) { p.Cancellation.Allow = false }, now: fixture.Now, refund: 0, payStatus: booking.PaymentDepositPaid},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := depositWorld(tc.mutate)
			r := bookAndPay(t, w)
			w.Clock.Set(tc.now)

			res, err := w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{
				ReservationID: r.ID(),
				RequesterID:   w.Client.ID(),
				Reason:        "sick",
			})
			require.NoError(t, err)

			assert.Equal(t, tc.refund, res.RefundAmount)
			assert.Equal(t, tc.penalty, res.PenaltyApplied)

			stored := w.Store.Reservation(r.ID())
			assert.Equal(t, booking.StatusCancelled, stored.Status())
			assert.Equal(t, tc.payStatus, stored.Payment().Status)
			require.NotNil(t, stored.Cancellation())
			assert.Equal(t, booking.InitiatorClient, stored.Cancellation().Initiator)
			assert.Equal(t, "sick", stored.Cancellation().Reason)
		})
	}
}

func TestCancelBooking_SideEffects(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)
	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)
	id := res.Reservation.ID()

	waiting := w.AddClient()
	entry, err := w.Waitlist.CreateWaitlistEntry(ctx, commands.CreateWaitlistEntryInput{
		BusinessID:  w.Business.ID(),
		ClientID:    waiting.ID(),
		Preferences: waitlistPrefs(w),
	})
	require.NoError(t, err)

	_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: id, RequesterID: w.Client.ID()})
	require.NoError(t, err)

	assert.Contains(t, w.Dispatcher.Cancelled(), id)
	assert.Len(t, w.Dispatcher.OfType(shared.NotifyBookingCancelled), 1)
	assert.Len(t, w.Dispatcher.OfType(shared.NotifyOwnerCancelled), 1)
	assert.Equal(t, 1, w.Store.Relationship(w.Business.ID(), w.Client.ID()).Cancellations)

	offers := w.Dispatcher.OfType(shared.NotifyWaitlistOffer)
	require.Len(t, offers, 1)
	assert.Equal(t, waiting.ID(), offers[0].UserID)
	assert.Equal(t, id.String(), offers[0].Data["reservation_id"])

	stored := w.Store.WaitlistEntry(entry.ID())
	require.Len(t, stored.Notifications(), 1)
	assert.Equal(t, id, *stored.Notifications()[0].ReservationID)

	var types []string
	for _, e := range w.Store.Outbox() {
		types = append(types, e.EventType)
	}
	assert.Equal(t, []string{shared.EventReservationCreated, shared.EventReservationCancelled, shared.EventWaitlistOffered}, types)

	t.Run("slot is free again", func(t *testing.T) {
		in := w.BookingInput("10:00")
		in.StaffID = w.StaffID(0)
		_, err := w.Bookings.CreateBooking(ctx, in, nil)
		require.NoError(t, err)
	})
}

func TestCancelBooking_Errors(t *testing.T) {
	ctx := context.Background()
	w := fixture.NewWorld(nil)
	res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
	require.NoError(t, err)
	id := res.Reservation.ID()

	_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: uuid.New(), RequesterID: w.Client.ID()})
	assertKind(t, err, errs.KindNotFound, "reservation not found")

	_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: id, RequesterID: uuid.New()})
	assertKind(t, err, errs.KindNotFound, "reservation not found")

	_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: id, RequesterID: w.Client.ID()})
	require.NoError(t, err)

	_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: id, RequesterID: w.Client.ID()})
	assertKind(t, err, errs.KindConflict, "reservation in status cancelled cannot be cancelled")
	assert.True(t, errs.Is(err, booking.ErrNotCancellable))
}

// =============================================================================
// UpdateStatus and deposits
// =============================================================================

func TestUpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("owner confirms a pending booking", func(t *testing.T) {
		w := fixture.NewWorld(func(p *booking.Policy) { p.RequireConfirmation = true })
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)

		r, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{
			Actor:         w.OwnerActor(),
			ReservationID: res.Reservation.ID(),
			Status:        booking.StatusConfirmed,
			Note:          "see you",
		})
		require.NoError(t, err)
		assert.Equal(t, booking.StatusConfirmed, r.Status())

		history := r.History()
		last := history[len(history)-1]
		assert.Equal(t, booking.StatusConfirmed, last.Status)
		assert.Equal(t, "see you", last.Note)

		changed := w.Dispatcher.OfType(shared.NotifyStatusChanged)
		require.Len(t, changed, 1)
		assert.Equal(t, w.Client.ID(), changed[0].UserID)

		outbox := w.Store.Outbox()
		assert.Equal(t, shared.EventReservationStatusChanged, outbox[len(outbox)-1].EventType)
	})

	t.Run("no-show drops scheduled notifications", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)

		r, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{
			Actor:         w.OwnerActor(),
			ReservationID: res.Reservation.ID(),
			Status:        booking.StatusNoShow,
		})
		require.NoError(t, err)
		assert.Equal(t, booking.StatusNoShow, r.Status())
		assert.Equal(t, []uuid.UUID{r.ID()}, w.Dispatcher.Cancelled())
	})

	t.Run("business cancellation refunds the whole deposit", func(t *testing.T) {
		w := depositWorld(nil)
		paid := bookAndPay(t, w)
		w.Clock.Set(at("09:00"))

		r, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{
			Actor:         w.OwnerActor(),
			ReservationID: paid.ID(),
			Status:        booking.StatusCancelled,
			Note:          "staff sick",
		})
		require.NoError(t, err)
		require.NotNil(t, r.Cancellation())
		assert.Equal(t, booking.InitiatorBusiness, r.Cancellation().Initiator)
		assert.Equal(t, int64(250), r.Cancellation().RefundAmount)
		assert.Equal(t, booking.PaymentRefunded, r.Payment().Status)
		assert.Len(t, w.Dispatcher.OfType(shared.NotifyBookingCancelled), 1)
	})

	t.Run("business cancels a visit already under way", func(t *testing.T) {
		tests := []struct {
			name string
			path []booking.Status
		}{
			{name: "checked in", path: []booking.Status{booking.StatusCheckedIn}},
			{name: "in progress", path: []booking.Status{booking.StatusCheckedIn, booking.StatusInProgress}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				w := fixture.NewWorld(nil)
				res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
				require.NoError(t, err)
				id := res.Reservation.ID()

				for _, s := range tt.path {
					_, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.OwnerActor(), ReservationID: id, Status: s})
					require.NoError(t, err, "transition to %s", s)
				}

				_, err = w.Bookings.CancelBooking(ctx, commands.CancelBookingInput{ReservationID: id, RequesterID: w.Client.ID()})
				assertKind(t, err, errs.KindConflict, "")
				assert.True(t, errs.Is(err, booking.ErrNotCancellable))

				r, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{
					Actor:         w.OwnerActor(),
					ReservationID: id,
					Status:        booking.StatusCancelled,
					Note:          "power cut",
				})
				require.NoError(t, err)
				assert.Equal(t, booking.StatusCancelled, r.Status())
				require.NotNil(t, r.Cancellation())
				assert.Equal(t, booking.InitiatorBusiness, r.Cancellation().Initiator)
			})
		}
	})

	t.Run("rejections", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)
		id := res.Reservation.ID()

		_, err = w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.OwnerActor(), ReservationID: id, Status: "done"})
		assertKind(t, err, errs.KindBadRequest, `invalid status "done"`)

		_, err = w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.OwnerActor(), ReservationID: id, Status: booking.StatusCompleted})
		assertKind(t, err, errs.KindConflict, "cannot change reservation status from confirmed to completed")

		_, err = w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.ClientActor(), ReservationID: id, Status: booking.StatusCheckedIn})
		assertKind(t, err, errs.KindNotFound, "reservation not found")

		_, err = w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.OwnerActor(), ReservationID: uuid.New(), Status: booking.StatusCheckedIn})
		assertKind(t, err, errs.KindNotFound, "reservation not found")

		assert.Equal(t, booking.StatusConfirmed, w.Store.Reservation(id).Status())
	})

	t.Run("lifecycle to completion", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)

		for _, s := range []booking.Status{booking.StatusCheckedIn, booking.StatusInProgress, booking.StatusCompleted} {
			_, err := w.Bookings.UpdateStatus(ctx, commands.UpdateStatusInput{Actor: w.OwnerActor(), ReservationID: res.Reservation.ID(), Status: s})
			require.NoError(t, err, "transition to %s", s)
		}
		assert.Equal(t, booking.StatusCompleted, w.Store.Reservation(res.Reservation.ID()).Status())
	})
}

func TestRecordDepositPayment(t *testing.T) {
	ctx := context.Background()

	t.Run("no deposit due", func(t *testing.T) {
		w := fixture.NewWorld(nil)
		res, err := w.Bookings.CreateBooking(ctx, w.BookingInput("10:00"), nil)
		require.NoError(t, err)
		assert.False(t, res.RequiresDeposit)

		_, err = w.Bookings.RecordDepositPayment(ctx, w.OwnerActor(), res.Reservation.ID())
		assertKind(t, err, errs.KindBadRequest, "reservation has no deposit due")
	})

	t.Run("paid twice", func(t *testing.T) {
		w := depositWorld(nil)
		r := bookAndPay(t, w)
		assert.Equal(t, booking.PaymentDepositPaid, r.Payment().Status)
		assert.Equal(t, int64(250), r.Payment().AmountPaid)

		_, err := w.Bookings.RecordDepositPayment(ctx, w.OwnerActor(), r.ID())
		assertKind(t, err, errs.KindConflict, "deposit already paid")
	})
}
