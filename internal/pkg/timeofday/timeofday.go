// Package timeofday converts between "HH:MM" wall-clock strings, minutes
// since midnight and absolute instants in a business timezone.
package timeofday

import (
	"fmt"
	"strconv"
	"time"

	"booking-engine/internal/pkg/errs"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidTime = errs.New("invalid time of day")
	ErrInvalidDate = errs.New("invalid date")
)

// TimeToMinutes parses a zero padded "HH:MM" string.
func TimeToMinutes(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, errs.Mark(errs.New(fmt.Sprintf("invalid time %q", s)), ErrInvalidTime)
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return 0, errs.Mark(errs.New(fmt.Sprintf("invalid hour in %q", s)), ErrInvalidTime)
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return 0, errs.Mark(errs.New(fmt.Sprintf("invalid minute in %q", s)), ErrInvalidTime)
	}
	return h*60 + m, nil
}

// MinutesToTime does not wrap past midnight: 1450 becomes "24:10", which
// TimeToMinutes rejects.
func MinutesToTime(total int) string {
	if total < 0 {
		total = 0
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, errs.Mark(err, ErrInvalidDate)
	}
	return d, nil
}

// Combine resolves a calendar date and a wall-clock time in loc.
func Combine(date, hhmm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation(DateLayout, date, loc)
	if err != nil {
		return time.Time{}, errs.Mark(err, ErrInvalidDate)
	}
	mins, err := TimeToMinutes(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), mins/60, mins%60, 0, 0, loc), nil
}

func FormatDate(t time.Time) string {
	return t.Format("Mon, 2 Jan 2006")
}

func FormatDateTime(t time.Time) string {
	return t.Format("Mon, 2 Jan 2006 15:04")
}

// LoadLocation falls back to UTC for an empty or unknown zone name.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
