// Package billing holds the cost calculation applied when a booking is
// released. It is kept free of database concerns so the rounding rules
// can be verified in isolation.
package billing

import (
	"math"
	"time"
)

// BilledHours converts a parking duration into whole billed hours:
// the ceiling of the duration in seconds over 3600, floored at 1.
// A booking released after a single second still costs a full hour.
func BilledHours(d time.Duration) int {
	hours := int(math.Ceil(d.Seconds() / 3600))
	if hours < 1 {
		return 1
	}
	return hours
}

// Cost returns the final amount due for the given billed hours at the
// lot's hourly rate.
func Cost(hours int, pricePerHour float64) float64 {
	return float64(hours) * pricePerHour
}
