package model

import (
	"time"

	"hatbazar/internal/demand-service/core/geo"
)

const (
	StatusPending   = "pending"
	StatusAccepted  = "accepted"
	StatusDelivered = "delivered"
)

// Demand is a customer's geo-anchored service request. The status
// column is the single source of truth for the lifecycle; the vendor's
// order summary mirrors it and is eventually consistent.
type Demand struct {
	DemandId    string
	Username    string
	Email       string
	Address     string
	Origin      geo.Coordinate
	Description string
	Tags        []string
	Status      string

	// Present iff status is accepted or delivered.
	AcceptedBy   string
	AcceptedAt   time.Time
	VendorName   string
	BusinessName string

	// Present iff status is delivered.
	DeliveredAt       time.Time
	DeliveryLocation  geo.Coordinate
	DeliveryDistanceM float64

	CreatedAt time.Time
}
