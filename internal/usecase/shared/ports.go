package shared

import (
	"context"
	"time"

	"booking-engine/internal/domain/user"
	"booking-engine/internal/pkg/errs"

	"github.com/google/uuid"
)

// SlotLocker serializes booking attempts for one staff member and day.
type SlotLocker interface {
	Lock(ctx context.Context, key string) (release func(context.Context), err error)
}

type NotificationType string

const (
	NotifyBookingConfirmed NotificationType = "booking_confirmed"
	NotifyBookingPending   NotificationType = "booking_pending"
	NotifyReminder         NotificationType = "booking_reminder"
	NotifyReviewRequest    NotificationType = "review_request"
	NotifyOwnerNewBooking  NotificationType = "owner_new_booking"
	NotifyBookingCancelled NotificationType = "booking_cancelled"
	NotifyOwnerCancelled   NotificationType = "owner_booking_cancelled"
	NotifyStatusChanged    NotificationType = "booking_status_changed"
	NotifyWaitlistOffer    NotificationType = "waitlist_slot_available"
)

// Notification is a message to one user. SendAt nil means now. Key, when
// set, makes scheduling idempotent.
type Notification struct {
	Key           string
	UserID        uuid.UUID
	Type          NotificationType
	Title         string
	Body          string
	Data          map[string]string
	BusinessID    uuid.UUID
	ReservationID *uuid.UUID
	SendAt        *time.Time
}

type NotificationDispatcher interface {
	Schedule(ctx context.Context, n Notification) error
	// CancelScheduled drops notifications for the reservation that have not
	// been delivered yet.
	CancelScheduled(ctx context.Context, reservationID uuid.UUID) error
}

const (
	EventReservationCreated       = "booking.reservation.created.v1"
	EventReservationCancelled     = "booking.reservation.cancelled.v1"
	EventReservationStatusChanged = "booking.reservation.status_changed.v1"
	EventWaitlistOffered          = "booking.waitlist.offered.v1"
)

// Event is a domain event written to the outbox in the same transaction as
// the change it describes.
type Event struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       []byte
	OccurredAt    time.Time
}

var ErrLockNotAcquired = errs.New("slot lock not acquired")

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID uuid.UUID
	Role   user.Role
}

func (a Actor) IsClient() bool { return a.Role == user.RoleClient }

// OutboxFeed is the relay's side of the outbox.
type OutboxFeed interface {
	FetchUnpublished(ctx context.Context, limit int) ([]Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}
