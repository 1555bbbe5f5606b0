package booking

import (
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timeofday"
)

// Window is a half-open [Start, End) interval of calendar occupancy.
type Window struct {
	Start time.Time
	End   time.Time
}

// Overlaps is the single overlap predicate used for every conflict decision.
// Back-to-back windows do not overlap.
func (w Window) Overlaps(other Window) bool {
	return other.Start.Before(w.End) && other.End.After(w.Start)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

// Slot is a planned appointment position: the wall-clock times shown to
// people and the occupancy window used for conflict checks.
type Slot struct {
	Date         string
	StartTime    string
	EndTime      string
	Window       Window
	TotalMinutes int
}

// PlanSlot derives a slot from a calendar date and start time. The displayed
// end time covers the services only; the window also covers the buffer.
func PlanSlot(date, startTime string, serviceMinutes, bufferMinutes int, loc *time.Location) (Slot, error) {
	if serviceMinutes <= 0 {
		return Slot{}, errs.BadRequest("selected services have no duration")
	}
	if bufferMinutes < 0 {
		bufferMinutes = 0
	}
	startMin, err := timeofday.TimeToMinutes(startTime)
	if err != nil {
		return Slot{}, errs.BadRequest("invalid start time %q", startTime)
	}
	endTime := timeofday.MinutesToTime(startMin + serviceMinutes)
	if _, err := timeofday.TimeToMinutes(endTime); err != nil {
		return Slot{}, errs.BadRequest("appointment starting at %s would end after midnight", startTime)
	}
	startAt, err := timeofday.Combine(date, startTime, loc)
	if err != nil {
		return Slot{}, errs.BadRequest("invalid date %q", date)
	}
	total := serviceMinutes + bufferMinutes
	return Slot{
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		Window:       Window{Start: startAt, End: startAt.Add(time.Duration(total) * time.Minute)},
		TotalMinutes: total,
	}, nil
}
