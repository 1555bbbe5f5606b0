//go:build unit

package commands

import (
	"context"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/domain/catalog"
)

// RunAfterCreate repeats the post-commit steps of a created booking.
func RunAfterCreate(ctx context.Context, uc BookingCommands, r *booking.Reservation, b *catalog.Business) {
	uc.(*bookingUseCaseImpl).afterCreate(ctx, r, b)
}
