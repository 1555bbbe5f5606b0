package shared

import (
	"context"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
	"booking-engine/internal/domain/promotion"
	"booking-engine/internal/domain/user"
	"booking-engine/internal/domain/waitlist"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Reads: Lookups outside of a transaction (validation, previews, queries)
	Reads() Reads
}

type Tx interface {
	Reads() Reads
	Reservations() ReservationRepository
	Promotions() PromotionRepository
	Waitlist() WaitlistRepository
	ClientStats() ClientStatsRepository
	Idempotency() IdempotencyRepository
	Outbox() OutboxRepository
}

// Reads returns infra.KindNotFound repository errors for missing single
// records and empty slices for empty listings.
type Reads interface {
	BusinessByID(ctx context.Context, id uuid.UUID) (*catalog.Business, error)
	ServicesByIDs(ctx context.Context, businessID uuid.UUID, ids []uuid.UUID) ([]catalog.Service, error)
	StaffByID(ctx context.Context, businessID, id uuid.UUID) (*catalog.Staff, error)
	// StaffByBusiness lists staff in display order.
	StaffByBusiness(ctx context.Context, businessID uuid.UUID) ([]catalog.Staff, error)
	UserByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	ReservationByID(ctx context.Context, id uuid.UUID) (*booking.Reservation, error)
	// ReservationsByClient pages newest appointment first.
	ReservationsByClient(ctx context.Context, clientID uuid.UUID, after *PageCursor, limit int) ([]*booking.Reservation, error)
	// FindConflict returns the first reservation in an occupying status for
	// the staff member whose window overlaps w, or nil.
	FindConflict(ctx context.Context, businessID, staffID uuid.UUID, w booking.Window) (*booking.Reservation, error)
	// OccupyingReservations lists reservations in an occupying status that
	// overlap [from, to) for any of staffIDs.
	OccupyingReservations(ctx context.Context, businessID uuid.UUID, staffIDs []uuid.UUID, from, to time.Time) ([]*booking.Reservation, error)

	PromotionByCode(ctx context.Context, businessID uuid.UUID, code string) (*promotion.Promotion, error)
	PromotionUsageByUser(ctx context.Context, promotionID, userID uuid.UUID) (int, error)

	WaitlistEntryByID(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error)
	ActiveWaitlistByClient(ctx context.Context, businessID, clientID uuid.UUID) ([]*waitlist.Entry, error)

	IdempotencyByKey(ctx context.Context, key, userID uuid.UUID) (*IdempotencyRecord, error)
}

// PageCursor is the keyset position (start, id) of the last row returned.
type PageCursor struct {
	StartAt time.Time
	ID      uuid.UUID
}

type ReservationRepository interface {
	Create(ctx context.Context, r *booking.Reservation) error
	Update(ctx context.Context, r *booking.Reservation) error
	// GetForUpdate locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*booking.Reservation, error)
}

type PromotionUsage struct {
	PromotionID   uuid.UUID
	ReservationID uuid.UUID
	UserID        *uuid.UUID
	Discount      int64
	UsedAt        time.Time
}

type PromotionRepository interface {
	// RecordUsage is a no-op returning false when the reservation already
	// consumed the promotion.
	RecordUsage(ctx context.Context, u PromotionUsage) (bool, error)
}

type WaitlistRepository interface {
	Create(ctx context.Context, e *waitlist.Entry) error
	Update(ctx context.Context, e *waitlist.Entry) error
	GetForUpdate(ctx context.Context, id uuid.UUID) (*waitlist.Entry, error)
	// ActiveForUpdate locks the business's active entries.
	ActiveForUpdate(ctx context.Context, businessID uuid.UUID) ([]*waitlist.Entry, error)
}

type StatsDelta struct {
	Bookings      int
	Spent         int64
	Cancellations int
	LastVisit     *time.Time
}

type StatsEvent string

const (
	StatsBooked    StatsEvent = "booked"
	StatsCancelled StatsEvent = "cancelled"
)

type ClientStatsRepository interface {
	// Claim records that event has been counted for the reservation. It
	// returns false when it already was.
	Claim(ctx context.Context, reservationID uuid.UUID, event StatsEvent) (bool, error)
	UpsertRelationship(ctx context.Context, businessID, clientID uuid.UUID, d StatsDelta) error
	IncrementLifetime(ctx context.Context, clientID uuid.UUID, d StatsDelta) error
}

type IdempotencyStatus string

const (
	IdempotencyProcessing IdempotencyStatus = "processing"
	IdempotencyCompleted  IdempotencyStatus = "completed"
)

type IdempotencyRecord struct {
	Key                 uuid.UUID
	UserID              uuid.UUID
	Endpoint            string
	Status              IdempotencyStatus
	RequestHash         string
	ResultReservationID *uuid.UUID
	ExpiresAt           time.Time
}

type IdempotencyRepository interface {
	// TryInsert reports false when the key already exists.
	TryInsert(ctx context.Context, key, userID uuid.UUID, endpoint, requestHash string, expiresAt time.Time) (bool, error)
	// ClaimExpired takes over an expired key; false means someone else holds it.
	ClaimExpired(ctx context.Context, key, userID uuid.UUID, requestHash string, expiresAt time.Time, now time.Time) (bool, error)
	Complete(ctx context.Context, key, userID uuid.UUID, reservationID uuid.UUID) error
	Release(ctx context.Context, key, userID uuid.UUID) error
}

type OutboxRepository interface {
	Append(ctx context.Context, e Event) error
}
