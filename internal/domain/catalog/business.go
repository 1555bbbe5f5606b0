package catalog

import (
	"errors"
	"strings"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/timeofday"

	"github.com/google/uuid"
)

var (
	ErrEmptyBusinessName = errors.New("business name cannot be empty")
	ErrInvalidHours      = errors.New("opening hours must close after they open")
)

const (
	DefaultOpen  = "09:00"
	DefaultClose = "18:00"
)

type BusinessStatus string

const (
	BusinessActive    BusinessStatus = "active"
	BusinessInactive  BusinessStatus = "inactive"
	BusinessSuspended BusinessStatus = "suspended"
)

type OpeningHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

// WeeklyHours is keyed by lower-case weekday name ("monday").
type WeeklyHours map[string]OpeningHours

type Business struct {
	id        uuid.UUID
	ownerID   uuid.UUID
	name      string
	status    BusinessStatus
	timezone  string
	policy    booking.Policy
	hours     WeeklyHours
	createdAt time.Time
}

func NewBusiness(id, ownerID uuid.UUID, name string, status BusinessStatus, timezone string, policy booking.Policy, hours WeeklyHours) (*Business, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyBusinessName
	}
	for _, h := range hours {
		if h.Closed {
			continue
		}
		open, err := timeofday.TimeToMinutes(h.Open)
		if err != nil {
			return nil, err
		}
		closing, err := timeofday.TimeToMinutes(h.Close)
		if err != nil {
			return nil, err
		}
		if closing <= open {
			return nil, ErrInvalidHours
		}
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &Business{
		id:       id,
		ownerID:  ownerID,
		name:     name,
		status:   status,
		timezone: timezone,
		policy:   policy,
		hours:    hours,
	}, nil
}

func ReconstructBusiness(id, ownerID uuid.UUID, name string, status BusinessStatus, timezone string, policy booking.Policy, hours WeeklyHours, createdAt time.Time) *Business {
	return &Business{
		id:        id,
		ownerID:   ownerID,
		name:      name,
		status:    status,
		timezone:  timezone,
		policy:    policy,
		hours:     hours,
		createdAt: createdAt,
	}
}

func (b *Business) IsActive() bool {
	return b.status == BusinessActive
}

func (b *Business) Location() *time.Location {
	return timeofday.LoadLocation(b.timezone)
}

// HoursOn returns the opening window of a weekday in minutes since midnight.
// Weekdays without configuration fall back to 09:00-18:00.
func (b *Business) HoursOn(day time.Weekday) (open, closing int, ok bool) {
	h, found := b.hours[strings.ToLower(day.String())]
	if !found {
		h = OpeningHours{Open: DefaultOpen, Close: DefaultClose}
	}
	if h.Closed {
		return 0, 0, false
	}
	open, err := timeofday.TimeToMinutes(h.Open)
	if err != nil {
		return 0, 0, false
	}
	closing, err = timeofday.TimeToMinutes(h.Close)
	if err != nil || closing <= open {
		return 0, 0, false
	}
	return open, closing, true
}

func (b *Business) ID() uuid.UUID          { return b.id }
func (b *Business) OwnerID() uuid.UUID     { return b.ownerID }
func (b *Business) Name() string           { return b.name }
func (b *Business) Status() BusinessStatus { return b.status }
func (b *Business) Timezone() string       { return b.timezone }
func (b *Business) Policy() booking.Policy { return b.policy }
func (b *Business) Hours() WeeklyHours     { return b.hours }
func (b *Business) CreatedAt() time.Time   { return b.createdAt }
