//go:build unit

package timeofday_test

import (
	"testing"
	"time"

	"booking-engine/internal/pkg/errs"
	"booking-engine/internal/pkg/timeofday"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeToMinutes(t *testing.T) {
	tests := []struct {
		in    string
		want  int
		errIs error
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "24:00", errIs: timeofday.ErrInvalidTime},
		{in: "24:10", errIs: timeofday.ErrInvalidTime},
		{in: "9:30", errIs: timeofday.ErrInvalidTime},
		{in: "09:60", errIs: timeofday.ErrInvalidTime},
		{in: "ab:cd", errIs: timeofday.ErrInvalidTime},
		{in: "", errIs: timeofday.ErrInvalidTime},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := timeofday.TimeToMinutes(tt.in)
			if tt.errIs != nil {
				require.Error(t, err)
				assert.True(t, errs.Is(err, tt.errIs))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMinutesToTime(t *testing.T) {
	assert.Equal(t, "00:00", timeofday.MinutesToTime(0))
	assert.Equal(t, "10:50", timeofday.MinutesToTime(650))
	assert.Equal(t, "24:10", timeofday.MinutesToTime(1450))
}

func TestRoundTrip(t *testing.T) {
	for m := 0; m < 24*60; m += 7 {
		got, err := timeofday.TimeToMinutes(timeofday.MinutesToTime(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
}

func TestCombine(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	got, err := timeofday.Combine("2026-03-10", "10:00", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), got.UTC())

	_, err = timeofday.Combine("2026-13-10", "10:00", loc)
	assert.True(t, errs.Is(err, timeofday.ErrInvalidDate))

	_, err = timeofday.Combine("2026-03-10", "25:00", loc)
	assert.True(t, errs.Is(err, timeofday.ErrInvalidTime))
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)
	assert.Equal(t, "Tue, 10 Mar 2026", timeofday.FormatDate(d))
	assert.Equal(t, "Tue, 10 Mar 2026 15:04", timeofday.FormatDateTime(d))
}
