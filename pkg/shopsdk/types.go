package shopsdk

import "encoding/json"

type RequestOTPRequest struct {
	Email string `json:"email"`
}

// LoginRequest carries either OTPCode or Password.
type LoginRequest struct {
	Email    string `json:"email"`
	OTPCode  string `json:"otp_code,omitempty"`
	Password string `json:"password,omitempty"`
}

type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

type SetPasswordRequest struct {
	Password string `json:"password"`
}

type AddToWishlistRequest struct {
	ProductID string `json:"product_id"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginResponse struct {
	Message string `json:"message,omitempty"`
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime,omitempty"`

	// Checks maps a dependency (database, signer, lock) to "ok" or an error.
	Checks map[string]string `json:"checks,omitempty"`
}

type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type Stock struct {
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

type Image struct {
	URL string `json:"url"`
}

type Rating struct {
	ID     string  `json:"id"`
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

// Product prices are decimal strings with two places, e.g. "12.50".
type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Subtitle       string          `json:"subtitle,omitempty"`
	Description    json.RawMessage `json:"description,omitempty"`
	SellingPrice   string          `json:"selling_price"`
	MaxRetailPrice string          `json:"max_retail_price"`
	Category       string          `json:"category"`
	Stock          *Stock          `json:"stock"`
	Images         []Image         `json:"images"`
	Ratings        []Rating        `json:"ratings"`
}

type WishlistEntry struct {
	ID      string  `json:"id"`
	User    string  `json:"user"`
	Product Product `json:"product"`
}
