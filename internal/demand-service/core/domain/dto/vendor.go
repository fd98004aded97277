package dto

import "hatbazar/internal/demand-service/core/geo"

const (
	NotificationSent      = "sent"
	NotificationFailed    = "failed"
	NotificationNoAddress = "no_address"
)

type AcceptOrderRequest struct {
	DemandId *string `json:"demand_id"`
}

type AcceptOrderResponse struct {
	Message  string `json:"message"`
	DemandId string `json:"demand_id"`
	VendorId string `json:"vendor_id"`
	Status   string `json:"status"`

	// Soft outcome of the best-effort requester notification:
	// sent, failed or no_address. Never an error.
	Notification string `json:"notification"`
}

type DeliverOrderRequest struct {
	DemandId  *string  `json:"demand_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type DeliverOrderResponse struct {
	Message                string         `json:"message"`
	DemandId               string         `json:"demand_id"`
	Status                 string         `json:"status"`
	DeliveredAt            string         `json:"delivered_at"`
	DeliveryDistanceMeters float64        `json:"delivery_distance_meters"`
	DeliveryLocation       geo.Coordinate `json:"delivery_location"`
}

// GeofenceRejection is the structured 400 body for a failed proximity
// gate. Mirrors the fields of myerrors.GeofenceError plus a human
// message.
type GeofenceRejection struct {
	Error            string         `json:"error"`
	RequiredDistance float64        `json:"required_distance"`
	YourDistance     float64        `json:"your_distance"`
	CurrentLocation  geo.Coordinate `json:"current_location"`
	TargetLocation   geo.Coordinate `json:"target_location"`
}

type VendorOrderSummary struct {
	DemandId         string  `json:"demand_id"`
	CustomerUsername string  `json:"customer_username"`
	CustomerAddress  string  `json:"customer_address"`
	Status           string  `json:"status"`
	AcceptedAt       string  `json:"accepted_at"`
	DeliveredAt      string  `json:"delivered_at,omitempty"`
	DeliveryDistance float64 `json:"delivery_distance,omitempty"`
}
