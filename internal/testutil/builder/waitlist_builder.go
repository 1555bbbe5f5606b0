//go:build unit || integration

package builder

import (
	"time"

	"booking-engine/internal/domain/waitlist"

	"github.com/google/uuid"
)

type WaitlistBuilder struct {
	BusinessID  uuid.UUID
	ClientID    uuid.UUID
	Preferences waitlist.Preferences
	Priority    waitlist.Priority
	ExpiresAt   *time.Time
	Now         time.Time
}

func NewWaitlistBuilder(businessID uuid.UUID, serviceIDs ...uuid.UUID) *WaitlistBuilder {
	if len(serviceIDs) == 0 {
		serviceIDs = []uuid.UUID{uuid.New()}
	}
	return &WaitlistBuilder{
		BusinessID:  businessID,
		ClientID:    uuid.New(),
		Preferences: waitlist.Preferences{ServiceIDs: serviceIDs},
		Priority:    waitlist.PriorityNormal,
		Now:         time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (b *WaitlistBuilder) With(mutate func(*WaitlistBuilder)) *WaitlistBuilder {
	mutate(b)
	return b
}

func (b *WaitlistBuilder) BuildDomain() (*waitlist.Entry, error) {
	return waitlist.NewEntry(b.BusinessID, b.ClientID, b.Preferences, b.Priority, b.ExpiresAt, b.Now)
}

func (b *WaitlistBuilder) MustBuild() *waitlist.Entry {
	e, err := b.BuildDomain()
	if err != nil {
		panic(err)
	}
	return e
}
