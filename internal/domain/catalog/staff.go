package catalog

import (
	"booking-engine/internal/domain/booking"

	"github.com/google/uuid"
)

type Staff struct {
	ID           uuid.UUID
	BusinessID   uuid.UUID
	UserID       *uuid.UUID
	Name         string
	Active       bool
	ServiceIDs   []uuid.UUID
	DisplayOrder int
}

// CanPerform reports whether the staff member offers every requested service.
func (s Staff) CanPerform(serviceIDs []uuid.UUID) bool {
	offered := make(map[uuid.UUID]struct{}, len(s.ServiceIDs))
	for _, id := range s.ServiceIDs {
		offered[id] = struct{}{}
	}
	for _, id := range serviceIDs {
		if _, ok := offered[id]; !ok {
			return false
		}
	}
	return true
}

func (s Staff) Snapshot() booking.StaffSnapshot {
	return booking.StaffSnapshot{ID: s.ID, Name: s.Name}
}
