// Package policy holds the clock-driven gates around an order: the
// post-creation cancellation window and the schedule-for-later time check.
// Both take an explicit now so callers control the clock.
package policy

import (
	"time"

	"github.com/pasuyo-app/api/internal/enum"
)

// CancelWindowSeconds is how long after creation a pending order stays
// cancellable by its creator.
const CancelWindowSeconds = 30

// RemainingSeconds returns how many whole seconds of the cancellation window
// are left, clamped to [0, CancelWindowSeconds]. Clamping at both ends keeps
// clock skew from producing a negative countdown or an over-long one.
func RemainingSeconds(createdAt, now time.Time) int {
	age := int(now.Sub(createdAt) / time.Second)
	if age < 0 {
		age = 0
	}
	remaining := CancelWindowSeconds - age
	if remaining < 0 {
		return 0
	}
	if remaining > CancelWindowSeconds {
		return CancelWindowSeconds
	}
	return remaining
}

// CanCancel reports whether the creator may still cancel. The status gate
// dominates: a non-pending order is never cancellable here no matter how
// young it is. The data layer re-checks the same condition atomically.
func CanCancel(status string, createdAt, now time.Time) bool {
	return status == enum.OrderStatusPending && RemainingSeconds(createdAt, now) > 0
}
