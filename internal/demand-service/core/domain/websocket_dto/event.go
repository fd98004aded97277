package websocketdto

import "encoding/json"

const TypeDemandStatusUpdate = "demand_status_update"

type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type VendorInfo struct {
	VendorId     string `json:"vendor_id"`
	Name         string `json:"name"`
	BusinessName string `json:"business_name"`
}

// DemandStatusUpdate is pushed to the requester's websocket when a
// vendor accepts or delivers their demand.
type DemandStatusUpdate struct {
	DemandId       string     `json:"demand_id"`
	Status         string     `json:"status"`
	VendorInfo     VendorInfo `json:"vendor_info"`
	DistanceMeters float64    `json:"distance_meters,omitempty"`
	Timestamp      string     `json:"timestamp"`
	CorrelationId  string     `json:"correlation_id"`
}
