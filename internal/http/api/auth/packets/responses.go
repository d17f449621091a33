package packets

type AuthResponse struct {
	Token string `json:"token"`
}

type ProfileResponse struct {
	ID          int      `json:"id"`
	Email       string   `json:"email"`
	Name        *string  `json:"name"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	HasLocation bool     `json:"has_location"`
}
