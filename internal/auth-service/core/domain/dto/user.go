package dto

type UserRegistrationRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VendorRegistrationRequest struct {
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	Password     string   `json:"password"`
	BusinessName string   `json:"business_name"`
	Category     string   `json:"category"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

type UserAuthRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
