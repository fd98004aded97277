package handle

import (
	"encoding/json"
	"errors"
	"net/http"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
)

// jsonResponse writes the given data as a JSON-encoded HTTP response.
func jsonResponse(w http.ResponseWriter, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(data)
}

// JsonError writes an error response as JSON with the specified HTTP status code.
func JsonError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": err.Error(),
		"code":  code,
	})
}

// writeServiceError maps domain errors to HTTP statuses. A failed
// geofence gate gets its structured diagnostic body; everything
// unrecognized is an opaque 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var gf *myerrors.GeofenceError
	if errors.As(err, &gf) {
		jsonResponse(w, http.StatusBadRequest, dto.GeofenceRejection{
			Error:            gf.Error(),
			RequiredDistance: gf.RequiredMeters,
			YourDistance:     gf.ActualMeters,
			CurrentLocation:  gf.Current,
			TargetLocation:   gf.Target,
		})
		return
	}

	switch {
	case errors.Is(err, myerrors.ErrDemandNotFound),
		errors.Is(err, myerrors.ErrVendorNotFound):
		JsonError(w, http.StatusNotFound, err)
	case errors.Is(err, myerrors.ErrAlreadyAccepted):
		JsonError(w, http.StatusConflict, err)
	case errors.Is(err, myerrors.ErrTaggingFailed),
		errors.Is(err, myerrors.ErrEmptyField),
		errors.Is(err, myerrors.ErrLongField),
		errors.Is(err, geo.ErrInvalidLatitude),
		errors.Is(err, geo.ErrInvalidLongitude):
		JsonError(w, http.StatusBadRequest, err)
	default:
		JsonError(w, http.StatusInternalServerError, errors.New("internal server error"))
	}
}
