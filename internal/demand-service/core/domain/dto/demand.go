package dto

// CreateDemandRequest carries everything needed to open a demand.
// Pointer fields distinguish "absent" from zero values during
// validation.
type CreateDemandRequest struct {
	Username  *string  `json:"username"`
	Email     *string  `json:"email,omitempty"`
	Address   *string  `json:"address"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Text      *string  `json:"text,omitempty"`

	// Optional base64 image forwarded to the classifier.
	Photo *string `json:"photo,omitempty"`

	// Manual tags, used as fallback when classification yields nothing.
	Tags []string `json:"tags,omitempty"`
}

type CreateDemandResponse struct {
	Message  string   `json:"message"`
	DemandId string   `json:"id"`
	Tags     []string `json:"tags"`
	Status   string   `json:"status"`
}

type NearbyDemandsRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`

	// Optional overrides for the 5000 m / 5 defaults.
	MaxRadiusMeters *float64 `json:"max_radius_meters,omitempty"`
	Limit           *int     `json:"limit,omitempty"`
}

type NearbyDemand struct {
	DemandId       string   `json:"id"`
	Username       string   `json:"username"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Status         string   `json:"status"`
	Text           string   `json:"text"`
	Tags           []string `json:"tags"`
	DistanceMeters float64  `json:"distance_meters"`
}

type DemandSummary struct {
	DemandId       string   `json:"id"`
	Address        string   `json:"address"`
	Latitude       float64  `json:"latitude"`
	Longitude      float64  `json:"longitude"`
	Status         string   `json:"status"`
	Text           string   `json:"text"`
	Tags           []string `json:"tags"`
	VendorName     string   `json:"vendor_name,omitempty"`
	BusinessName   string   `json:"business_name,omitempty"`
	CreatedAt      string   `json:"created_at"`
	DeliveredAt    string   `json:"delivered_at,omitempty"`
	DeliveryMeters float64  `json:"delivery_distance_meters,omitempty"`
}
