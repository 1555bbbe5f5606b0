package memstore

import (
	"context"
	"sort"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/waitlist"
	"booking-engine/internal/infra"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

type memTx struct {
	d *data
}

func (t *memTx) Reads() shared.Reads                        { return &reads{d: t.d} }
func (t *memTx) Reservations() shared.ReservationRepository { return &reservationRepo{d: t.d} }
func (t *memTx) Promotions() shared.PromotionRepository     { return &promotionRepo{d: t.d} }
func (t *memTx) Waitlist() shared.WaitlistRepository        { return &waitlistRepo{d: t.d} }
func (t *memTx) ClientStats() shared.ClientStatsRepository  { return &statsRepo{d: t.d} }
func (t *memTx) Idempotency() shared.IdempotencyRepository  { return &idempotencyRepo{d: t.d} }
func (t *memTx) Outbox() shared.OutboxRepository            { return &outboxRepo{d: t.d} }

type reservationRepo struct{ d *data }

// checkExclusion mirrors the database exclusion constraint.
func (r *reservationRepo) checkExclusion(st booking.State) error {
	if !st.Status.OccupiesSlot() {
		return nil
	}
	for id, other := range r.d.reservations {
		if id == st.ID || other.BusinessID != st.BusinessID || other.Staff.ID != st.Staff.ID {
			continue
		}
		if other.Status.OccupiesSlot() && overlapsRange(other, st.StartAt, st.EndAt) {
			return infra.WrapRepoErr("reservation overlaps an existing booking", nil, infra.KindConflict)
		}
	}
	return nil
}

func (r *reservationRepo) Create(_ context.Context, res *booking.Reservation) error {
	st := cloneReservation(res.State())
	if _, exists := r.d.reservations[st.ID]; exists {
		return infra.WrapRepoErr("reservation already exists", nil, infra.KindDuplicateKey)
	}
	if err := r.checkExclusion(st); err != nil {
		return err
	}
	r.d.reservations[st.ID] = st
	return nil
}

func (r *reservationRepo) Update(_ context.Context, res *booking.Reservation) error {
	st := cloneReservation(res.State())
	if _, exists := r.d.reservations[st.ID]; !exists {
		return notFound("reservation")
	}
	if err := r.checkExclusion(st); err != nil {
		return err
	}
	r.d.reservations[st.ID] = st
	return nil
}

func (r *reservationRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*booking.Reservation, error) {
	st, ok := r.d.reservations[id]
	if !ok {
		return nil, notFound("reservation")
	}
	return booking.ReconstructReservation(cloneReservation(st)), nil
}

type promotionRepo struct{ d *data }

func (r *promotionRepo) RecordUsage(_ context.Context, u shared.PromotionUsage) (bool, error) {
	for _, existing := range r.d.usages {
		if existing.PromotionID == u.PromotionID && existing.ReservationID == u.ReservationID {
			return false, nil
		}
	}
	p, ok := r.d.promotions[u.PromotionID]
	if !ok {
		return false, infra.WrapRepoErr("promotion missing", nil, infra.KindForeignKeyViolated)
	}
	p.UsageCount++
	r.d.promotions[u.PromotionID] = p
	r.d.usages = append(r.d.usages, u)
	return true, nil
}

type waitlistRepo struct{ d *data }

func (r *waitlistRepo) Create(_ context.Context, e *waitlist.Entry) error {
	st := cloneEntry(e.State())
	if _, exists := r.d.waitlist[st.ID]; exists {
		return infra.WrapRepoErr("waitlist entry already exists", nil, infra.KindDuplicateKey)
	}
	r.d.waitlistSeq++
	st.Seq = r.d.waitlistSeq
	r.d.waitlist[st.ID] = st
	return nil
}

func (r *waitlistRepo) Update(_ context.Context, e *waitlist.Entry) error {
	st := cloneEntry(e.State())
	prev, exists := r.d.waitlist[st.ID]
	if !exists {
		return notFound("waitlist entry")
	}
	st.Seq = prev.Seq
	r.d.waitlist[st.ID] = st
	return nil
}

func (r *waitlistRepo) GetForUpdate(_ context.Context, id uuid.UUID) (*waitlist.Entry, error) {
	st, ok := r.d.waitlist[id]
	if !ok {
		return nil, notFound("waitlist entry")
	}
	return waitlist.ReconstructEntry(cloneEntry(st)), nil
}

func (r *waitlistRepo) ActiveForUpdate(_ context.Context, businessID uuid.UUID) ([]*waitlist.Entry, error) {
	var states []waitlist.State
	for _, st := range r.d.waitlist {
		if st.BusinessID == businessID && st.Status == waitlist.StatusActive {
			states = append(states, cloneEntry(st))
		}
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Seq < states[j].Seq })
	out := make([]*waitlist.Entry, len(states))
	for i, st := range states {
		out[i] = waitlist.ReconstructEntry(st)
	}
	return out, nil
}

type statsRepo struct{ d *data }

func (r *statsRepo) Claim(_ context.Context, reservationID uuid.UUID, event shared.StatsEvent) (bool, error) {
	k := statsClaimKey{reservationID, event}
	if _, done := r.d.statsClaims[k]; done {
		return false, nil
	}
	r.d.statsClaims[k] = struct{}{}
	return true, nil
}

func (r *statsRepo) UpsertRelationship(_ context.Context, businessID, clientID uuid.UUID, d shared.StatsDelta) error {
	k := relationKey{businessID, clientID}
	r.d.relationships[k] = addDelta(r.d.relationships[k], d)
	return nil
}

func (r *statsRepo) IncrementLifetime(_ context.Context, clientID uuid.UUID, d shared.StatsDelta) error {
	r.d.lifetime[clientID] = addDelta(r.d.lifetime[clientID], d)
	return nil
}

type idempotencyRepo struct{ d *data }

func (r *idempotencyRepo) TryInsert(_ context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error) {
	k := idempotencyKey{key, userID}
	if _, exists := r.d.idempotency[k]; exists {
		return false, nil
	}
	r.d.idempotency[k] = shared.IdempotencyRecord{
		Key:         key,
		UserID:      userID,
		Endpoint:    endpoint,
		Status:      shared.IdempotencyProcessing,
		RequestHash: requestHash,
		ExpiresAt:   expiresAt,
	}
	return true, nil
}

func (r *idempotencyRepo) ClaimExpired(_ context.Context, key, userID uuid.UUID, requestHash string, expiresAt, now time.Time) (bool, error) {
	k := idempotencyKey{key, userID}
	rec, exists := r.d.idempotency[k]
	if !exists || rec.ExpiresAt.After(now) {
		return false, nil
	}
	rec.Status = shared.IdempotencyProcessing
	rec.RequestHash = requestHash
	rec.ResultReservationID = nil
	rec.ExpiresAt = expiresAt
	r.d.idempotency[k] = rec
	return true, nil
}

func (r *idempotencyRepo) Complete(_ context.Context, key, userID, reservationID uuid.UUID) error {
	k := idempotencyKey{key, userID}
	rec, exists := r.d.idempotency[k]
	if !exists {
		return notFound("idempotency key")
	}
	rec.Status = shared.IdempotencyCompleted
	rec.ResultReservationID = &reservationID
	r.d.idempotency[k] = rec
	return nil
}

func (r *idempotencyRepo) Release(_ context.Context, key, userID uuid.UUID) error {
	delete(r.d.idempotency, idempotencyKey{key, userID})
	return nil
}

type outboxRepo struct{ d *data }

func (r *outboxRepo) Append(_ context.Context, e shared.Event) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	r.d.outbox = append(r.d.outbox, e)
	return nil
}

func (r *outboxRepo) FetchUnpublished(_ context.Context, limit int) ([]shared.Event, error) {
	var out []shared.Event
	for _, e := range r.d.outbox {
		if _, done := r.d.published[e.ID]; done {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *outboxRepo) MarkPublished(_ context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		r.d.published[id] = at
	}
	return nil
}
