package myerrors

import (
	"errors"
	"fmt"

	"hatbazar/internal/demand-service/core/geo"
)

var (
	// Business-logic rejections, surfaced as distinct statuses.
	ErrDemandNotFound  = errors.New("demand not found")
	ErrAlreadyAccepted = errors.New("demand already accepted by another vendor")
	ErrVendorNotFound  = errors.New("vendor not found")

	// Creation is rejected when the classifier yields nothing and no
	// manual tags were supplied.
	ErrTaggingFailed = errors.New("could not generate tags, provide text, photo or manual tags")

	ErrEmptyField = errors.New("field is empty")
	ErrLongField  = errors.New("maximum 255 characters allowed")
)

// PersistenceError hides storage internals from the caller. The
// wrapped cause is for server-side logs only.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure in %s", e.Op)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// GeofenceError rejects a delivery attempted too far from the demand
// origin. It deliberately carries the full diagnostic payload: GPS
// inaccuracy near the boundary is common, so the caller gets the
// threshold, the measured distance and both points.
type GeofenceError struct {
	RequiredMeters float64        `json:"required_distance"`
	ActualMeters   float64        `json:"your_distance"`
	Current        geo.Coordinate `json:"current_location"`
	Target         geo.Coordinate `json:"target_location"`
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("must be within %.0f meters of the delivery location, currently %.2f meters away",
		e.RequiredMeters, e.ActualMeters)
}
