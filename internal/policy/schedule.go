package policy

import (
	"errors"
	"time"

	"github.com/pasuyo-app/api/internal/enum"
)

// Errors returned by ValidateSchedule. Handlers surface these to the user
// as distinct conditions.
var (
	ErrInvalidHour   = errors.New("hour must be between 1 and 12")
	ErrInvalidMinute = errors.New("minute must be between 0 and 59")
	ErrInvalidPeriod = errors.New("period must be AM or PM")
	ErrTimeInPast    = errors.New("selected time has already passed")
)

// IsPastTime reports whether an hour/minute/period selection falls at or
// before now's wall-clock time today. The current minute itself counts as
// past: "right now" is rejected.
func IsPastTime(hour, minute int, period string, now time.Time) bool {
	h24 := to24Hour(hour, period)
	if h24 < now.Hour() {
		return true
	}
	return h24 == now.Hour() && minute <= now.Minute()
}

// ValidateSchedule checks ranges first, then rejects past times. Inputs are
// the raw picker values; nothing is mutated on rejection.
func ValidateSchedule(hour, minute int, period string, now time.Time) error {
	if hour < 1 || hour > 12 {
		return ErrInvalidHour
	}
	if minute < 0 || minute > 59 {
		return ErrInvalidMinute
	}
	if period != enum.PeriodAM && period != enum.PeriodPM {
		return ErrInvalidPeriod
	}
	if IsPastTime(hour, minute, period, now) {
		return ErrTimeInPast
	}
	return nil
}

// to24Hour converts a 12-hour clock selection: 12 AM is 0, 12 PM is 12,
// any other PM hour gains 12.
func to24Hour(hour int, period string) int {
	if hour == 12 {
		if period == enum.PeriodAM {
			return 0
		}
		return 12
	}
	if period == enum.PeriodPM {
		return hour + 12
	}
	return hour
}
