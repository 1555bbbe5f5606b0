// Package memstore is an in-process implementation of the unit of work.
// Transactions are serialized and applied atomically; a failing callback
// leaves the store untouched.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type relationKey struct {
	businessID uuid.UUID
	clientID   uuid.UUID
}

type statsClaimKey struct {
	reservationID uuid.UUID
	event         shared.StatsEvent
}

type idempotencyKey struct {
	key    uuid.UUID
	userID uuid.UUID
}

type data struct {
	businesses    map[uuid.UUID]*catalog.Business
	services      map[uuid.UUID]catalog.Service
	staff         []catalog.Staff
	users         map[uuid.UUID]*user.User
	reservations  map[uuid.UUID]booking.State
	promotions    map[uuid.UUID]promotion.Params
	usages        []shared.PromotionUsage
	waitlist      map[uuid.UUID]waitlist.State
	waitlistSeq   int64
	relationships map[relationKey]shared.StatsDelta
	lifetime      map[uuid.UUID]shared.StatsDelta
	statsClaims   map[statsClaimKey]struct{}
	idempotency   map[idempotencyKey]shared.IdempotencyRecord
	outbox        []shared.Event
	published     map[uuid.UUID]time.Time
}

func newData() *data {
	return &data{
		businesses:    make(map[uuid.UUID]*catalog.Business),
		services:      make(map[uuid.UUID]catalog.Service),
		users:         make(map[uuid.UUID]*user.User),
		reservations:  make(map[uuid.UUID]booking.State),
		promotions:    make(map[uuid.UUID]promotion.Params),
		waitlist:      make(map[uuid.UUID]waitlist.State),
		relationships: make(map[relationKey]shared.StatsDelta),
		lifetime:      make(map[uuid.UUID]shared.StatsDelta),
		statsClaims:   make(map[statsClaimKey]struct{}),
		idempotency:   make(map[idempotencyKey]shared.IdempotencyRecord),
		published:     make(map[uuid.UUID]time.Time),
	}
}

// clone copies everything a transaction can write. Catalog data is
// read-only and shared.
func (d *data) clone() *data {
	c := &data{
		businesses:    d.businesses,
		services:      d.services,
		staff:         d.staff,
		users:         d.users,
		reservations:  make(map[uuid.UUID]booking.State, len(d.reservations)),
		promotions:    make(map[uuid.UUID]promotion.Params, len(d.promotions)),
		usages:        slices.Clone(d.usages),
		waitlist:      make(map[uuid.UUID]waitlist.State, len(d.waitlist)),
		waitlistSeq:   d.waitlistSeq,
		relationships: make(map[relationKey]shared.StatsDelta, len(d.relationships)),
		lifetime:      make(map[uuid.UUID]shared.StatsDelta, len(d.lifetime)),
		statsClaims:   maps.Clone(d.statsClaims),
		idempotency:   make(map[idempotencyKey]shared.IdempotencyRecord, len(d.idempotency)),
		outbox:        slices.Clone(d.outbox),
		published:     make(map[uuid.UUID]time.Time, len(d.published)),
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	for k, v := range d.promotions {
		c.promotions[k] = v
	}
	for k, v := range d.waitlist {
		c.waitlist[k] = v
	}
	for k, v := range d.relationships {
		c.relationships[k] = v
	}
	for k, v := range d.lifetime {
		c.lifetime[k] = v
	}
	for k, v := range d.idempotency {
		c.idempotency[k] = v
	}
	for k, v := range d.published {
		c.published[k] = v
	}
	return c
}

type Store struct {
	mu   sync.RWMutex
	data *data
}

func New() *Store {
	return &Store{data: newData()}
}

var _ shared.UnitOfWork = (*Store)(nil)

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(ctx, &memTx{d: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

// WithinOutbox runs the relay's batch with the same all-or-nothing rule as
// Within.
func (s *Store) WithinOutbox(ctx context.Context, fn func(ctx context.Context, feed shared.OutboxFeed) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	working := s.data.clone()
	if err := fn(ctx, &outboxRepo{d: working}); err != nil {
		return err
	}
	s.data = working
	return nil
}

func (s *Store) Reads() shared.Reads {
	return &reads{s: s}
}

// view runs fn against committed data.
func (s *Store) view(fn func(d *data)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// Seeding helpers.

func (s *Store) AddBusiness(b *catalog.Business) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.businesses[b.ID()] = b
}

func (s *Store) AddService(svc catalog.Service) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.services[svc.ID] = svc
}

func (s *Store) AddStaff(st catalog.Staff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	staff := append(slices.Clone(s.data.staff), st)
	sort.SliceStable(staff, func(i, j int) bool { return staff[i].DisplayOrder < staff[j].DisplayOrder })
	s.data.staff = staff
}

func (s *Store) AddUser(u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.users[u.ID()] = u
}

func (s *Store) AddPromotion(p promotion.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.data.promotions[p.ID] = p
}

func (s *Store) AddReservation(r *booking.Reservation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.reservations[r.ID()] = cloneReservation(r.State())
}

// Inspection helpers.

func (s *Store) Reservation(id uuid.UUID) *booking.Reservation {
	var r *booking.Reservation
	s.view(func(d *data) {
		if st, ok := d.reservations[id]; ok {
			r = booking.ReconstructReservation(cloneReservation(st))
		}
	})
	return r
}

func (s *Store) Reservations() []*booking.Reservation {
	var out []*booking.Reservation
	s.view(func(d *data) {
		for _, st := range d.reservations {
			out = append(out, booking.ReconstructReservation(cloneReservation(st)))
		}
	})
	return out
}

func (s *Store) WaitlistEntry(id uuid.UUID) *waitlist.Entry {
	var e *waitlist.Entry
	s.view(func(d *data) {
		if st, ok := d.waitlist[id]; ok {
			e = waitlist.ReconstructEntry(cloneEntry(st))
		}
	})
	return e
}

func (s *Store) Outbox() []shared.Event {
	var out []shared.Event
	s.view(func(d *data) { out = slices.Clone(d.outbox) })
	return out
}

func (s *Store) Published(eventID uuid.UUID) bool {
	var ok bool
	s.view(func(d *data) { _, ok = d.published[eventID] })
	return ok
}

func (s *Store) PromotionUsages() []shared.PromotionUsage {
	var out []shared.PromotionUsage
	s.view(func(d *data) { out = slices.Clone(d.usages) })
	return out
}

func (s *Store) PromotionUsageCount(id uuid.UUID) int {
	var n int
	s.view(func(d *data) { n = d.promotions[id].UsageCount })
	return n
}

func (s *Store) Relationship(businessID, clientID uuid.UUID) shared.StatsDelta {
	var out shared.StatsDelta
	s.view(func(d *data) { out = d.relationships[relationKey{businessID, clientID}] })
	return out
}

func (s *Store) Lifetime(clientID uuid.UUID) shared.StatsDelta {
	var out shared.StatsDelta
	s.view(func(d *data) { out = d.lifetime[clientID] })
	return out
}

func (s *Store) Idempotency(key, userID uuid.UUID) (shared.IdempotencyRecord, bool) {
	var (
		rec shared.IdempotencyRecord
		ok  bool
	)
	s.view(func(d *data) { rec, ok = d.idempotency[idempotencyKey{key, userID}] })
	return rec, ok
}

func cloneReservation(st booking.State) booking.State {
	st.Services = slices.Clone(st.Services)
	st.History = slices.Clone(st.History)
	if st.Cancellation != nil {
		c := *st.Cancellation
		st.Cancellation = &c
	}
	return st
}

func cloneEntry(st waitlist.State) waitlist.State {
	st.Notifications = slices.Clone(st.Notifications)
	st.Preferences.ServiceIDs = slices.Clone(st.Preferences.ServiceIDs)
	st.Preferences.DaysOfWeek = slices.Clone(st.Preferences.DaysOfWeek)
	return st
}

func addDelta(cur, d shared.StatsDelta) shared.StatsDelta {
	cur.Bookings += d.Bookings
	cur.Spent += d.Spent
	cur.Cancellations += d.Cancellations
	if d.LastVisit != nil && (cur.LastVisit == nil || d.LastVisit.After(*cur.LastVisit)) {
		t := *d.LastVisit
		cur.LastVisit = &t
	}
	return cur
}

func overlapsRange(st booking.State, from, to time.Time) bool {
	return booking.Window{Start: st.StartAt, End: st.EndAt}.Overlaps(booking.Window{Start: from, End: to})
}
