package scheduling

import (
	"context"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrSlotUnavailable = errs.New("slot unavailable")

// CheckAvailability returns a Conflict when the staff member already has an
// occupying reservation overlapping w.
func CheckAvailability(ctx context.Context, reads shared.Reads, businessID, staffID uuid.UUID, w booking.Window) error {
	existing, err := reads.FindConflict(ctx, businessID, staffID, w)
	if err != nil {
		return errs.Wrap(err, "failed to check availability")
	}
	if existing != nil {
		return errs.Mark(errs.Conflict("slot no longer available"), ErrSlotUnavailable)
	}
	return nil
}

// Occupancy is a per-staff snapshot of occupied windows used when many
// candidate slots are tested against the same day.
type Occupancy map[uuid.UUID][]booking.Window

func NewOccupancy(reservations []*booking.Reservation) Occupancy {
	o := make(Occupancy)
	for _, r := range reservations {
		if !r.Status().OccupiesSlot() {
			continue
		}
		staffID := r.Staff().ID
		o[staffID] = append(o[staffID], r.Window())
	}
	return o
}

func (o Occupancy) IsFree(staffID uuid.UUID, w booking.Window) bool {
	for _, taken := range o[staffID] {
		if taken.Overlaps(w) {
			return false
		}
	}
	return true
}
