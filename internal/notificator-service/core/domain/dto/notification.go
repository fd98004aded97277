package dto

const (
	TypeDemandAccepted  = "demand_accepted"
	TypeDemandDelivered = "demand_delivered"
)

// DemandNotification mirrors the payload the demand service publishes.
type DemandNotification struct {
	Type          string  `json:"type"`
	DemandId      string  `json:"demand_id"`
	Recipient     string  `json:"recipient"`
	Username      string  `json:"username"`
	VendorName    string  `json:"vendor_name"`
	BusinessName  string  `json:"business_name"`
	DistanceM     float64 `json:"distance_meters,omitempty"`
	Timestamp     string  `json:"timestamp"`
	CorrelationId string  `json:"correlation_id"`
}
