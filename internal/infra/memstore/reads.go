package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

// reads serves committed data, or the working copy of a transaction when d
// is set.
type reads struct {
	s *Store
	d *data
}

func (r *reads) with(fn func(d *data)) {
	if r.d != nil {
		fn(r.d)
		return
	}
	r.s.view(fn)
}

func notFound(what string) error {
	return infra.WrapRepoErr(what+" not found", nil, infra.KindNotFound)
}

func (r *reads) BusinessByID(_ context.Context, id uuid.UUID) (*catalog.Business, error) {
	var b *catalog.Business
	r.with(func(d *data) { b = d.businesses[id] })
	if b == nil {
		return nil, notFound("business")
	}
	return b, nil
}

func (r *reads) ServicesByIDs(_ context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]catalog.Service, error) {
	out := make([]catalog.Service, 0, len(ids))
	r.with(func(d *data) {
		for _, id := range ids {
			if s, ok := d.services[id]; ok && s.BusinessID == businessID {
				out = append(out, s)
			}
		}
	})
	return out, nil
}

func (r *reads) StaffByID(_ context.Context, businessID, id uuid.UUID) (*catalog.Staff, error) {
	var found *catalog.Staff
	r.with(func(d *data) {
		for i := range d.staff {
			if d.staff[i].ID == id && d.staff[i].BusinessID == businessID {
				s := d.staff[i]
				found = &s
				return
			}
		}
	})
	if found == nil {
		return nil, notFound("staff")
	}
	return found, nil
}

func (r *reads) StaffByBusiness(_ context.Context, businessID uuid.UUID) ([]catalog.Staff, error) {
	var out []catalog.Staff
	r.with(func(d *data) {
		for _, s := range d.staff {
			if s.BusinessID == businessID {
				out = append(out, s)
			}
		}
	})
	return out, nil
}

func (r *reads) UserByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	var u *user.User
	r.with(func(d *data) { u = d.users[id] })
	if u == nil {
		return nil, notFound("user")
	}
	return u, nil
}

func (r *reads) ReservationByID(_ context.Context, id uuid.UUID) (*booking.Reservation, error) {
	var (
		st booking.State
		ok bool
	)
	r.with(func(d *data) { st, ok = d.reservations[id] })
	if !ok {
		return nil, notFound("reservation")
	}
	return booking.ReconstructReservation(cloneReservation(st)), nil
}

func (r *reads) ReservationsByClient(_ context.Context, clientID uuid.UUID, after *shared.PageCursor, limit int) ([]*booking.Reservation, error) {
	var states []booking.State
	r.with(func(d *data) {
		for _, st := range d.reservations {
			if st.ClientID == nil || *st.ClientID != clientID {
				continue
			}
			if after != nil && !before(st, *after) {
				continue
			}
			states = append(states, cloneReservation(st))
		}
	})
	sort.Slice(states, func(i, j int) bool {
		return before(states[j], shared.PageCursor{StartAt: states[i].StartAt, ID: states[i].ID})
	})
	if limit > 0 && len(states) > limit {
		states = states[:limit]
	}
	return reconstructAll(states), nil
}

func (r *reads) FindConflict(_ context.Context, businessID, staffID uuid.UUID, w booking.Window) (*booking.Reservation, error) {
	var hits []booking.State
	r.with(func(d *data) {
		for _, st := range d.reservations {
			if st.BusinessID == businessID && st.Staff.ID == staffID &&
				st.Status.OccupiesSlot() && overlapsRange(st, w.Start, w.End) {
				hits = append(hits, cloneReservation(st))
			}
		}
	})
	if len(hits) == 0 {
		return nil, nil
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].StartAt.Before(hits[j].StartAt) })
	return booking.ReconstructReservation(hits[0]), nil
}

func (r *reads) OccupyingReservations(_ context.Context, businessID uuid.UUID, staffIDs []uuid.UUID, from, to time.Time) ([]*booking.Reservation, error) {
	wanted := make(map[uuid.UUID]struct{}, len(staffIDs))
	for _, id := range staffIDs {
		wanted[id] = struct{}{}
	}
	var states []booking.State
	r.with(func(d *data) {
		for _, st := range d.reservations {
			if st.BusinessID != businessID || !st.Status.OccupiesSlot() || !overlapsRange(st, from, to) {
				continue
			}
			if _, ok := wanted[st.Staff.ID]; len(wanted) > 0 && !ok {
				continue
			}
			states = append(states, cloneReservation(st))
		}
	})
	sort.Slice(states, func(i, j int) bool { return states[i].StartAt.Before(states[j].StartAt) })
	return reconstructAll(states), nil
}

func (r *reads) PromotionByCode(_ context.Context, businessID uuid.UUID, code string) (*promotion.Promotion, error) {
	var (
		p  promotion.Params
		ok bool
	)
	r.with(func(d *data) {
		for _, candidate := range d.promotions {
			c, err := promotion.NewCode(candidate.Code)
			if err == nil && candidate.BusinessID == businessID && c.String() == code {
				p, ok = candidate, true
				return
			}
		}
	})
	if !ok {
		return nil, notFound("promotion")
	}
	promo, err := promotion.NewPromotion(p)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid promotion row", err)
	}
	return promo, nil
}

func (r *reads) PromotionUsageByUser(_ context.Context, promotionID, userID uuid.UUID) (int, error) {
	n := 0
	r.with(func(d *data) {
		for _, u := range d.usages {
			if u.PromotionID == promotionID && u.UserID != nil && *u.UserID == userID {
				n++
			}
		}
	})
	return n, nil
}

func (r *reads) WaitlistEntryByID(_ context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	var (
		st waitlist.State
		ok bool
	)
	r.with(func(d *data) { st, ok = d.waitlist[id] })
	if !ok {
		return nil, notFound("waitlist entry")
	}
	return waitlist.ReconstructEntry(cloneEntry(st)), nil
}

func (r *reads) ActiveWaitlistByClient(_ context.Context, businessID, clientID uuid.UUID) ([]*waitlist.Entry, error) {
	var out []*waitlist.Entry
	r.with(func(d *data) {
		for _, st := range d.waitlist {
			if st.BusinessID == businessID && st.ClientID == clientID && st.Status == waitlist.StatusActive {
				out = append(out, waitlist.ReconstructEntry(cloneEntry(st)))
			}
		}
	})
	return out, nil
}

func (r *reads) IdempotencyByKey(_ context.Context, key, userID uuid.UUID) (*shared.IdempotencyRecord, error) {
	var (
		rec shared.IdempotencyRecord
		ok  bool
	)
	r.with(func(d *data) { rec, ok = d.idempotency[idempotencyKey{key, userID}] })
	if !ok {
		return nil, notFound("idempotency key")
	}
	return &rec, nil
}

// before reports whether st sorts after c in (start_at, id) descending order.
func before(st booking.State, c shared.PageCursor) bool {
	if !st.StartAt.Equal(c.StartAt) {
		return st.StartAt.Before(c.StartAt)
	}
	return strings.Compare(st.ID.String(), c.ID.String()) < 0
}

func reconstructAll(states []booking.State) []*booking.Reservation {
	out := make([]*booking.Reservation, len(states))
	for i, st := range states {
		out[i] = booking.ReconstructReservation(st)
	}
	return out
}
