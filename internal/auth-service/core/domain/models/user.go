package models

import "time"

const (
	RoleUser   = "user"
	RoleVendor = "vendor"
)

type User struct {
	UserId       string    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash []byte    `json:"password_hash"`
	Role         string    `json:"role"`
}

// VendorProfile is the vendor row created alongside the user row at
// registration. vendor_id equals the user_id so tokens work for both.
type VendorProfile struct {
	VendorId     string  `json:"vendor_id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	BusinessName string  `json:"business_name"`
	Category     string  `json:"category"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}
