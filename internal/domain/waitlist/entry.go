package waitlist

import (
	"errors"
	"sort"
	"time"

	"booking-engine/internal/pkg/timeofday"

	"github.com/google/uuid"
)

var (
	ErrNoServices       = errors.New("waitlist entry requires at least one service")
	ErrInvalidTimeRange = errors.New("preferred time range must end after it starts")
	ErrInvalidDateRange = errors.New("preferred date range must end on or after it starts")
	ErrInvalidWeekday   = errors.New("preferred weekday must be between 0 (Sunday) and 6")
	ErrInvalidPriority  = errors.New("invalid waitlist priority")
	ErrNotActive        = errors.New("waitlist entry is not active")
	ErrNoOpenOffer      = errors.New("waitlist entry has no open offer")
	ErrOfferExpired     = errors.New("waitlist offer has expired")
)

type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityVIP    Priority = "vip"
)

func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityVIP
}

func (p Priority) rank() int {
	if p == PriorityVIP {
		return 1
	}
	return 0
}

type Status string

const (
	StatusActive    Status = "active"
	StatusFulfilled Status = "fulfilled"
	StatusCancelled Status = "cancelled"
	StatusExpired   Status = "expired"
)

type NotificationStatus string

const (
	NotificationSent     NotificationStatus = "sent"
	NotificationAccepted NotificationStatus = "accepted"
	NotificationDeclined NotificationStatus = "declined"
	NotificationExpired  NotificationStatus = "expired"
)

type Preferences struct {
	ServiceIDs []uuid.UUID `json:"serviceIds"`
	StaffID    *uuid.UUID  `json:"staffId,omitempty"`
	DateFrom   *string     `json:"dateFrom,omitempty"`
	DateTo     *string     `json:"dateTo,omitempty"`
	TimeFrom   *string     `json:"timeFrom,omitempty"`
	TimeTo     *string     `json:"timeTo,omitempty"`
	DaysOfWeek []int       `json:"daysOfWeek,omitempty"`
}

func (p Preferences) Validate() error {
	if len(p.ServiceIDs) == 0 {
		return ErrNoServices
	}
	if p.TimeFrom != nil || p.TimeTo != nil {
		if p.TimeFrom == nil || p.TimeTo == nil {
			return ErrInvalidTimeRange
		}
		from, err := timeofday.TimeToMinutes(*p.TimeFrom)
		if err != nil {
			return ErrInvalidTimeRange
		}
		to, err := timeofday.TimeToMinutes(*p.TimeTo)
		if err != nil || to <= from {
			return ErrInvalidTimeRange
		}
	}
	if p.DateFrom != nil && p.DateTo != nil {
		from, err := timeofday.ParseDate(*p.DateFrom)
		if err != nil {
			return ErrInvalidDateRange
		}
		to, err := timeofday.ParseDate(*p.DateTo)
		if err != nil || to.Before(from) {
			return ErrInvalidDateRange
		}
	}
	for _, d := range p.DaysOfWeek {
		if d < 0 || d > 6 {
			return ErrInvalidWeekday
		}
	}
	return nil
}

type Notification struct {
	SentAt        time.Time          `json:"sentAt"`
	ExpiresAt     time.Time          `json:"expiresAt"`
	Status        NotificationStatus `json:"status"`
	ReservationID *uuid.UUID         `json:"reservationId,omitempty"`
	RespondedAt   *time.Time         `json:"respondedAt,omitempty"`
}

type Entry struct {
	id            uuid.UUID
	businessID    uuid.UUID
	clientID      uuid.UUID
	prefs         Preferences
	priority      Priority
	status        Status
	notifications []Notification
	expiresAt     *time.Time
	createdAt     time.Time
	updatedAt     time.Time
	seq           int64
}

func NewEntry(businessID, clientID uuid.UUID, prefs Preferences, priority Priority, expiresAt *time.Time, now time.Time) (*Entry, error) {
	if err := prefs.Validate(); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if !priority.IsValid() {
		return nil, ErrInvalidPriority
	}
	return &Entry{
		id:         uuid.New(),
		businessID: businessID,
		clientID:   clientID,
		prefs:      prefs,
		priority:   priority,
		status:     StatusActive,
		expiresAt:  expiresAt,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

type State struct {
	ID            uuid.UUID
	BusinessID    uuid.UUID
	ClientID      uuid.UUID
	Preferences   Preferences
	Priority      Priority
	Status        Status
	Notifications []Notification
	ExpiresAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Seq           int64
}

func ReconstructEntry(s State) *Entry {
	return &Entry{
		id:            s.ID,
		businessID:    s.BusinessID,
		clientID:      s.ClientID,
		prefs:         s.Preferences,
		priority:      s.Priority,
		status:        s.Status,
		notifications: s.Notifications,
		expiresAt:     s.ExpiresAt,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
		seq:           s.Seq,
	}
}

func (e *Entry) State() State {
	return State{
		ID:            e.id,
		BusinessID:    e.businessID,
		ClientID:      e.clientID,
		Preferences:   e.prefs,
		Priority:      e.priority,
		Status:        e.status,
		Notifications: e.notifications,
		ExpiresAt:     e.expiresAt,
		CreatedAt:     e.createdAt,
		UpdatedAt:     e.updatedAt,
		Seq:           e.seq,
	}
}

// IsOpen reports whether the entry can still receive offers.
func (e *Entry) IsOpen(now time.Time) bool {
	if e.status != StatusActive {
		return false
	}
	return e.expiresAt == nil || e.expiresAt.After(now)
}

func (e *Entry) OverlapsServices(ids []uuid.UUID) bool {
	for _, a := range e.prefs.ServiceIDs {
		for _, b := range ids {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Offer appends a notification that lapses after window and expires any
// offer still awaiting an answer, so at most one offer is open. The freed
// slot is not held for the client.
func (e *Entry) Offer(now time.Time, window time.Duration, reservationID *uuid.UUID) (Notification, error) {
	if !e.IsOpen(now) {
		return Notification{}, ErrNotActive
	}
	for i := range e.notifications {
		if e.notifications[i].Status == NotificationSent {
			e.notifications[i].Status = NotificationExpired
		}
	}
	n := Notification{
		SentAt:        now,
		ExpiresAt:     now.Add(window),
		Status:        NotificationSent,
		ReservationID: reservationID,
	}
	e.notifications = append(e.notifications, n)
	e.updatedAt = now
	return n, nil
}

// Respond records the client's answer to the latest offer. A late answer
// marks the offer expired and fails with ErrOfferExpired.
func (e *Entry) Respond(now time.Time, accept bool) error {
	if e.status != StatusActive {
		return ErrNotActive
	}
	if len(e.notifications) == 0 {
		return ErrNoOpenOffer
	}
	last := &e.notifications[len(e.notifications)-1]
	if last.Status != NotificationSent {
		return ErrNoOpenOffer
	}
	e.updatedAt = now
	if now.After(last.ExpiresAt) {
		last.Status = NotificationExpired
		return ErrOfferExpired
	}
	last.RespondedAt = &now
	if accept {
		last.Status = NotificationAccepted
	} else {
		last.Status = NotificationDeclined
	}
	return nil
}

func (e *Entry) Fulfill(now time.Time) error {
	if e.status != StatusActive {
		return ErrNotActive
	}
	e.status = StatusFulfilled
	e.updatedAt = now
	return nil
}

// SelectNext picks the open entry that is first in line: higher priority
// first, then earlier creation.
func SelectNext(entries []*Entry, now time.Time) *Entry {
	open := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsOpen(now) {
			open = append(open, e)
		}
	}
	if len(open) == 0 {
		return nil
	}
	sort.SliceStable(open, func(i, j int) bool {
		a, b := open[i], open[j]
		if a.priority.rank() != b.priority.rank() {
			return a.priority.rank() > b.priority.rank()
		}
		if !a.createdAt.Equal(b.createdAt) {
			return a.createdAt.Before(b.createdAt)
		}
		return a.seq < b.seq
	})
	return open[0]
}

func (e *Entry) ID() uuid.UUID                 { return e.id }
func (e *Entry) BusinessID() uuid.UUID         { return e.businessID }
func (e *Entry) ClientID() uuid.UUID           { return e.clientID }
func (e *Entry) Preferences() Preferences      { return e.prefs }
func (e *Entry) Priority() Priority            { return e.priority }
func (e *Entry) Status() Status                { return e.status }
func (e *Entry) Notifications() []Notification { return e.notifications }
func (e *Entry) ExpiresAt() *time.Time         { return e.expiresAt }
func (e *Entry) CreatedAt() time.Time          { return e.createdAt }
func (e *Entry) Seq() int64                    { return e.seq }
