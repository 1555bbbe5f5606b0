//go:build unit

package booking_test

import (
	"testing"
	"time"

	"booking-engine/internal/domain/booking"
	"booking-engine/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hhmm string) time.Time {
	t, _ := time.Parse("2006-01-02 15:04", "2026-03-10 "+hhmm)
	return t
}

func TestWindow_Overlaps(t *testing.T) {
	base := booking.Window{Start: at("10:00"), End: at("11:00")}

	tests := []struct {
		name  string
		other booking.Window
		want  bool
	}{
		{name: "identical", other: base, want: true},
		{name: "contained", other: booking.Window{Start: at("10:15"), End: at("10:45")}, want: true},
		{name: "straddles start", other: booking.Window{Start: at("09:30"), End: at("10:01")}, want: true},
		{name: "straddles end", other: booking.Window{Start: at("10:59"), End: at("11:30")}, want: true},
		{name: "back to back before", other: booking.Window{Start: at("09:00"), End: at("10:00")}, want: false},
		{name: "back to back after", other: booking.Window{Start: at("11:00"), End: at("12:00")}, want: false},
		{name: "disjoint", other: booking.Window{Start: at("13:00"), End: at("14:00")}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base), "overlap must be symmetric")
		})
	}
}

func TestPlanSlot(t *testing.T) {
	t.Run("buffer extends occupancy but not displayed end", func(t *testing.T) {
		slot, err := booking.PlanSlot("2026-03-10", "10:00", 50, 10, time.UTC)
		require.NoError(t, err)

		assert.Equal(t, "10:00", slot.StartTime)
		assert.Equal(t, "10:50", slot.EndTime)
		assert.Equal(t, 60, slot.TotalMinutes)
		assert.Equal(t, at("10:00"), slot.Window.Start)
		assert.Equal(t, at("11:00"), slot.Window.End)
		assert.Equal(t, time.Duration(slot.TotalMinutes)*time.Minute, slot.Window.Duration())
	})

	t.Run("rejects appointments ending after midnight", func(t *testing.T) {
		_, err := booking.PlanSlot("2026-03-10", "23:30", 40, 0, time.UTC)
		assert.True(t, errs.IsKind(err, errs.KindBadRequest))
	})

	t.Run("rejects malformed start", func(t *testing.T) {
		_, err := booking.PlanSlot("2026-03-10", "10h", 30, 0, time.UTC)
		assert.True(t, errs.IsKind(err, errs.KindBadRequest))
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		_, err := booking.PlanSlot("10/03/2026", "10:00", 30, 0, time.UTC)
		assert.True(t, errs.IsKind(err, errs.KindBadRequest))
	})

	t.Run("rejects zero duration", func(t *testing.T) {
		_, err := booking.PlanSlot("2026-03-10", "10:00", 0, 10, time.UTC)
		assert.True(t, errs.IsKind(err, errs.KindBadRequest))
	})
}

func TestStatus_Transitions(t *testing.T) {
	forward := []booking.Status{
		booking.StatusPending, booking.StatusConfirmed, booking.StatusCheckedIn,
		booking.StatusInProgress, booking.StatusCompleted,
	}
	for i := 0; i < len(forward)-1; i++ {
		assert.True(t, forward[i].CanTransitionTo(forward[i+1]), "%s -> %s", forward[i], forward[i+1])
		assert.False(t, forward[i+1].CanTransitionTo(forward[i]), "%s -> %s must be rejected", forward[i+1], forward[i])
	}
	for _, s := range forward[:4] {
		assert.True(t, s.CanTransitionTo(booking.StatusCancelled))
		assert.True(t, s.CanTransitionTo(booking.StatusNoShow))
		assert.True(t, s.OccupiesSlot())
	}
	for _, s := range []booking.Status{booking.StatusCompleted, booking.StatusCancelled, booking.StatusNoShow} {
		assert.True(t, s.IsTerminal())
		assert.False(t, s.CanTransitionTo(booking.StatusCancelled))
	}
	assert.True(t, booking.StatusCompleted.OccupiesSlot())
	assert.False(t, booking.StatusCancelled.OccupiesSlot())
	assert.False(t, booking.StatusNoShow.OccupiesSlot())
	assert.False(t, booking.StatusPending.CanTransitionTo(booking.StatusCompleted))
}
