package queries

//go:generate mockgen -source=booking.go -destination=../../mocks/queriesmock/queries.go -package=queriesmock

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/infra"
	"booking-engine/internal/pkg/clock"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timeofday"
	"booking-engine/internal/usecase/scheduling"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type PriceRequest struct {
	BusinessID   uuid.UUID
	ServiceIDs   []uuid.UUID
	DiscountCode string
	UserID       *uuid.UUID
}

type PriceView struct {
	Lines           []booking.ServiceLine
	Subtotal        int64
	DiscountAmount  int64
	PromotionCode   *string
	Total           int64
	DepositRequired bool
	Deposit         int64
	ServiceMinutes  int
	TotalMinutes    int
}

type AvailabilityRequest struct {
	BusinessID uuid.UUID
	Date       string
	ServiceIDs []uuid.UUID
	StaffID    *uuid.UUID
}

type SlotView struct {
	StartTime string
	EndTime   string
	StartAt   time.Time
	StaffIDs  []uuid.UUID
}

type AvailabilityView struct {
	Date     string
	Timezone string
	Closed   bool
	Slots    []SlotView
}

type BookingQueries interface {
	CalculatePrice(ctx context.Context, req PriceRequest) (*PriceView, error)
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityView, error)
	GetReservation(ctx context.Context, actor shared.Actor, id uuid.UUID) (*booking.Reservation, error)
	ListMine(ctx context.Context, actor shared.Actor, after string, limit int) ([]*booking.Reservation, string, error)
}

type bookingQueriesImpl struct {
	uow   shared.UnitOfWork
	clock clock.Clock
}

func NewBookingQueries(uow shared.UnitOfWork, clk clock.Clock) BookingQueries {
	return &bookingQueriesImpl{uow: uow, clock: clk}
}

// CalculatePrice previews the price a booking with the same inputs would be
// charged. The promotion is evaluated but never consumed.
func (q *bookingQueriesImpl) CalculatePrice(ctx context.Context, req PriceRequest) (*PriceView, error) {
	reads := q.uow.Reads()

	business, err := scheduling.LoadBusiness(ctx, reads, req.BusinessID)
	if err != nil {
		return nil, err
	}
	services, err := scheduling.LoadServices(ctx, reads, business.ID(), req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	quote, err := scheduling.Price(ctx, reads, q.clock.Now(), scheduling.PriceInput{
		Business: business,
		Services: services,
		Code:     req.DiscountCode,
		UserID:   req.UserID,
	})
	if err != nil {
		return nil, err
	}

	p := quote.Pricing
	view := &PriceView{
		Lines:           quote.Lines,
		Subtotal:        p.Subtotal,
		DiscountAmount:  p.DiscountAmount,
		Total:           p.Total,
		DepositRequired: p.DepositRequired,
		Deposit:         p.Deposit,
		ServiceMinutes:  booking.ServiceMinutes(quote.Lines),
	}
	view.TotalMinutes = view.ServiceMinutes + business.Policy().BufferMinutes
	if p.Promotion != nil {
		code := p.Promotion.Code
		view.PromotionCode = &code
	}
	return view, nil
}

// CheckAvailability lists the start times on a date at which at least one
// capable staff member is free. Candidates step by the business slot
// duration inside opening hours and respect the advance booking window.
func (q *bookingQueriesImpl) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityView, error) {
	reads := q.uow.Reads()

	business, err := scheduling.LoadBusiness(ctx, reads, req.BusinessID)
	if err != nil {
		return nil, err
	}
	day, err := timeofday.ParseDate(req.Date)
	if err != nil {
		return nil, errs.BadRequest("invalid date %q", req.Date)
	}
	services, err := scheduling.LoadServices(ctx, reads, business.ID(), req.ServiceIDs)
	if err != nil {
		return nil, err
	}
	serviceIDs := make([]uuid.UUID, len(services))
	serviceMinutes := 0
	for i, s := range services {
		serviceIDs[i] = s.ID
		serviceMinutes += s.DurationMinutes
	}

	view := &AvailabilityView{Date: req.Date, Timezone: business.Timezone(), Slots: []SlotView{}}

	open, closing, ok := business.HoursOn(day.Weekday())
	if !ok {
		view.Closed = true
		return view, nil
	}

	staffIDs, err := q.candidateStaff(ctx, reads, business.ID(), req.StaffID, serviceIDs)
	if err != nil {
		return nil, err
	}

	policy := business.Policy()
	loc := business.Location()
	dayStart, err := timeofday.Combine(req.Date, "00:00", loc)
	if err != nil {
		return nil, errs.BadRequest("invalid date %q", req.Date)
	}
	dayEnd := dayStart.AddDate(0, 0, 1).Add(time.Duration(policy.BufferMinutes) * time.Minute)
	existing, err := reads.OccupyingReservations(ctx, business.ID(), staffIDs, dayStart, dayEnd)
	if err != nil {
		return nil, errs.Wrap(err, "failed to load reservations")
	}
	occupancy := scheduling.NewOccupancy(existing)

	step := policy.SlotDurationMinutes
	if step <= 0 {
		step = booking.DefaultPolicy().SlotDurationMinutes
	}
	now := q.clock.Now()

	for m := open; m+serviceMinutes <= closing; m += step {
		slot, err := booking.PlanSlot(req.Date, timeofday.MinutesToTime(m), serviceMinutes, policy.BufferMinutes, loc)
		if err != nil {
			continue
		}
		if policy.ValidateAdvance(slot.Window.Start, now) != nil {
			continue
		}
		var free []uuid.UUID
		for _, id := range staffIDs {
			if occupancy.IsFree(id, slot.Window) {
				free = append(free, id)
			}
		}
		if len(free) == 0 {
			continue
		}
		view.Slots = append(view.Slots, SlotView{
			StartTime: slot.StartTime,
			EndTime:   slot.EndTime,
			StartAt:   slot.Window.Start,
			StaffIDs:  free,
		})
	}
	return view, nil
}

func (q *bookingQueriesImpl) candidateStaff(ctx context.Context, reads shared.Reads, businessID uuid.UUID, staffID *uuid.UUID, serviceIDs []uuid.UUID) ([]uuid.UUID, error) {
	sel := scheduling.SelectionFor(staffID)
	if !sel.IsAuto() {
		s, err := scheduling.ResolveStaff(ctx, reads, businessID, sel, serviceIDs, booking.Window{})
		if err != nil {
			return nil, err
		}
		return []uuid.UUID{s.ID}, nil
	}
	capable, err := scheduling.CapableStaff(ctx, reads, businessID, serviceIDs)
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(capable))
	for i, s := range capable {
		ids[i] = s.ID
	}
	return ids, nil
}

// GetReservation returns a reservation visible to the actor: its client, or
// someone acting for its business.
func (q *bookingQueriesImpl) GetReservation(ctx context.Context, actor shared.Actor, id uuid.UUID) (*booking.Reservation, error) {
	reads := q.uow.Reads()
	r, err := reads.ReservationByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.NotFound("reservation not found")
		}
		return nil, errs.Wrap(err, "failed to load reservation")
	}
	if r.IsOwnedBy(actor.UserID) || actor.Role == user.RoleAdmin {
		return r, nil
	}
	if actor.Role.ActsForBusiness() {
		business, err := reads.BusinessByID(ctx, r.BusinessID())
		if err != nil {
			return nil, errs.Wrap(err, "failed to load business")
		}
		if scheduling.AuthorizeBusiness(ctx, reads, actor, business) == nil {
			return r, nil
		}
	}
	return nil, errs.NotFound("reservation not found")
}

// ListMine pages the actor's own reservations, newest appointment first.
// The returned cursor is empty on the last page.
func (q *bookingQueriesImpl) ListMine(ctx context.Context, actor shared.Actor, after string, limit int) ([]*booking.Reservation, string, error) {
	limit = ValidateLimit(limit)

	var cursor *shared.PageCursor
	if after != "" {
		c, err := DecodeAfterCursor(after)
		if err != nil {
			return nil, "", errs.BadRequest("invalid cursor")
		}
		cursor = c
	}

	rows, err := q.uow.Reads().ReservationsByClient(ctx, actor.UserID, cursor, limit+1)
	if err != nil {
		return nil, "", errs.Wrap(err, "failed to list reservations")
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = EncodeAfterCursor(last.Window().Start, last.ID())
	}
	return rows, next, nil
}
