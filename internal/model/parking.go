package model

import "time"

// BookingStatus enumerates the booking lifecycle. A booking is created
// Active and transitions to Completed exactly once, at release.
type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "Active"
	BookingStatusCompleted BookingStatus = "Completed"
)

// BillingStatus enumerates the billing lifecycle. Reserved is set at
// creation, Completed at release. Paid exists in the schema for a future
// payment step; no code path sets it today.
type BillingStatus string

const (
	BillingStatusReserved  BillingStatus = "Reserved"
	BillingStatusCompleted BillingStatus = "Completed"
	BillingStatusPaid      BillingStatus = "Paid"
)

// Lot mirrors the `parking_lots` table. A lot owns exactly MaxSpots
// spot rows, numbered 1..MaxSpots, created together with the lot.
// MaxSpots is immutable once the spots exist.
type Lot struct {
	ID           uint64    // parking_lots.id
	Name         string    // parking_lots.name
	Address      string    // parking_lots.address
	Pincode      string    // parking_lots.pincode
	PricePerHour float64   // parking_lots.price_per_hour
	MaxSpots     int       // parking_lots.max_spots
	CreatedAt    time.Time // parking_lots.created_at
}

// Spot mirrors the `parking_spots` table. IsOccupied is a denormalized
// flag that must always equal "an Active booking references this spot";
// it is only ever written in the same transaction as the booking
// transition that justifies it.
type Spot struct {
	ID         uint64 // parking_spots.id
	LotID      uint64 // parking_spots.lot_id
	SpotNumber int    // parking_spots.spot_number (unique within lot)
	IsOccupied bool   // parking_spots.is_occupied
}

// Booking mirrors the `bookings` table. CustomerID is nullable so the
// booking survives deletion of the customer account.
type Booking struct {
	ID            uint64        // bookings.id
	SpotID        uint64        // bookings.spot_id
	CustomerID    *uint64       // bookings.customer_id (NULL after user deletion)
	VehicleNumber string        // bookings.vehicle_number
	StartTime     time.Time     // bookings.start_time (UTC)
	EndTime       *time.Time    // bookings.end_time (NULL until released)
	Status        BookingStatus // bookings.status
}

// Billing mirrors the `billings` table. Exactly one row exists per
// booking; FinalCost and BillingTime stay NULL until release.
type Billing struct {
	ID          uint64        // billings.id
	BookingID   uint64        // billings.booking_id (unique)
	Status      BillingStatus // billings.status
	FinalCost   *float64      // billings.final_cost
	BillingTime *time.Time    // billings.billing_time
}
