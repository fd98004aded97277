package messagebrokerdto

const (
	TypeDemandAccepted  = "demand_accepted"
	TypeDemandDelivered = "demand_delivered"
)

// DemandNotification is published on accept/deliver and consumed by
// the notificator service, which turns it into an email.
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
