package catalog

import (
	"booking-engine/internal/domain/booking"

	"github.com/google/uuid"
)

// Service is a bookable offering of a business. DiscountedPrice, when set,
// replaces Price for the client.
type Service struct {
	ID              uuid.UUID
	BusinessID      uuid.UUID
	Name            string
	DurationMinutes int
	Price           int64
	DiscountedPrice *int64
	Active          bool
}

func (s Service) Line() booking.ServiceLine {
	return booking.NewServiceLine(s.ID, s.Name, s.DurationMinutes, s.Price, s.DiscountedPrice)
}

func Lines(services []Service) []booking.ServiceLine {
	lines := make([]booking.ServiceLine, len(services))
	for i, s := range services {
		lines[i] = s.Line()
	}
	return lines
}
