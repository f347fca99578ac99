// Package queue defines message payloads exchanged over the message broker
// along with the publisher and the background consumer.
package queue

// BillingCompletedEvent is published when a spot is released and its
// bill finalized. It carries enough information for downstream
// consumers to log or notify without querying the primary database.
type BillingCompletedEvent struct {
	BookingID     uint64  `json:"booking_id"`
	BillingID     uint64  `json:"billing_id"`
	SpotID        uint64  `json:"spot_id"`
	LotID         uint64  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	CustomerID    *uint64 `json:"customer_id,omitempty"`
	VehicleNumber string  `json:"vehicle_number"`
	FinalCost     float64 `json:"final_cost"`
	DurationHours int     `json:"duration_hours"`
	ReleasedAt    string  `json:"released_at"`
}
