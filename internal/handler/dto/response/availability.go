package response

import (
	"time"

	"booking-engine/internal/usecase/queries"

	"github.com/google/uuid"
)

type SlotResponse struct {
	StartTime string      `json:"startTime"`
	EndTime   string      `json:"endTime"`
	StartAt   time.Time   `json:"startAt"`
	StaffIDs  []uuid.UUID `json:"staffIds"`
}

type AvailabilityResponse struct {
	Date     string         `json:"date"`
	Timezone string         `json:"timezone"`
	Closed   bool           `json:"closed"`
	Slots    []SlotResponse `json:"slots"`
}

func FromAvailabilityView(v *queries.AvailabilityView) *AvailabilityResponse {
	slots := make([]SlotResponse, len(v.Slots))
	for i, s := range v.Slots {
		slots[i] = SlotResponse{
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			StartAt:   s.StartAt,
			StaffIDs:  s.StaffIDs,
		}
	}
	return &AvailabilityResponse{
		Date:     v.Date,
		Timezone: v.Timezone,
		Closed:   v.Closed,
		Slots:    slots,
	}
}
