package services

import (
	"fmt"
	"math"

	"hatbazar/internal/demand-service/core/domain/dto"
	"hatbazar/internal/demand-service/core/geo"
	"hatbazar/internal/demand-service/core/myerrors"
)

const MaxAddressLen = 255

func validateCreateDemand(req dto.CreateDemandRequest) error {
	if req.Username == nil || *req.Username == "" {
		return fmt.Errorf("invalid username: %w", myerrors.ErrEmptyField)
	}
	if err := validateAddress(req.Address); err != nil {
		return fmt.Errorf("invalid address: %w", err)
	}
	if err := validateLatLng(req.Latitude, req.Longitude); err != nil {
		return err
	}
	for _, tag := range req.Tags {
		if tag == "" {
			return fmt.Errorf("invalid tag: %w", myerrors.ErrEmptyField)
		}
	}
	return nil
}

func validateLatLng(lat, lng *float64) error {
	if lat == nil || lng == nil {
		return fmt.Errorf("invalid coords: %w", myerrors.ErrEmptyField)
	}
	if math.Abs(*lat) > 90 {
		return geo.ErrInvalidLatitude
	}
	if math.Abs(*lng) > 180 {
		return geo.ErrInvalidLongitude
	}
	return nil
}

func validateAddress(s *string) error {
	if s == nil || *s == "" {
		return myerrors.ErrEmptyField
	}
	if len(*s) > MaxAddressLen {
		return myerrors.ErrLongField
	}
	return nil
}
