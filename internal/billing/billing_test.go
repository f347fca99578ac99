package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBilledHours(t *testing.T) {
	testCases := []struct {
		name     string
		duration time.Duration
		expected int
	}{
		{name: "one second bills a full hour", duration: time.Second, expected: 1},
		{name: "just under an hour", duration: 3599 * time.Second, expected: 1},
		{name: "exactly one hour", duration: 3600 * time.Second, expected: 1},
		{name: "one hour and one second", duration: 3601 * time.Second, expected: 2},
		{name: "ninety minutes", duration: 5400 * time.Second, expected: 2},
		{name: "exactly two hours", duration: 7200 * time.Second, expected: 2},
		{name: "zero duration floors to one hour", duration: 0, expected: 1},
		{name: "negative clock skew floors to one hour", duration: -time.Minute, expected: 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, BilledHours(tc.duration))
		})
	}
}

func TestCost(t *testing.T) {
	// 5400 seconds at 10 per hour rounds up to 2 hours -> 20.
	hours := BilledHours(5400 * time.Second)
	assert.Equal(t, 2, hours)
	assert.Equal(t, 20.0, Cost(hours, 10))

	assert.Equal(t, 7.5, Cost(1, 7.5))
	assert.Equal(t, 0.0, Cost(3, 0))
}
