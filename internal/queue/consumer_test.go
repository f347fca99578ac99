package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdirTemp switches to a fresh temp dir for the test, restoring the
// previous working directory on cleanup (t.Chdir needs Go 1.24+).
func chdirTemp(t *testing.T) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func TestHandleMessageAppendsLogLine(t *testing.T) {
	chdirTemp(t)

	customer := uint64(42)
	ev := BillingCompletedEvent{
		BookingID:     11,
		BillingID:     12,
		SpotID:        7,
		LotID:         3,
		LotName:       "Central Garage",
		CustomerID:    &customer,
		VehicleNumber: "KA-01-1234",
		FinalCost:     40,
		DurationHours: 2,
		ReleasedAt:    "2025-03-10T16:00:00Z",
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "billing.log"))
	require.NoError(t, err)
	line := string(data)
	assert.Contains(t, line, "booking_id=11")
	assert.Contains(t, line, "customer_id=42")
	assert.Contains(t, line, `lot="Central Garage"`)
	assert.Contains(t, line, "cost=40.00")
}

func TestHandleMessageAnonymousCustomer(t *testing.T) {
	chdirTemp(t)

	body, err := json.Marshal(BillingCompletedEvent{BookingID: 8, ReleasedAt: "2025-03-10T16:00:00Z"})
	require.NoError(t, err)

	require.NoError(t, handleMessage(body))

	data, err := os.ReadFile(filepath.Join("logs", "billing.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "customer_id=none")
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	chdirTemp(t)
	assert.Error(t, handleMessage([]byte("not-json")))
}
