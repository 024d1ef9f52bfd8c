package handler

import "time"

// --- Request types ---

type loginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerRequest struct {
	Email           string `json:"email"           validate:"required,email,max=256"`
	Password        string `json:"password"        validate:"required,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	FirstName       string `json:"firstName"       validate:"required,max=50"`
	LastName        string `json:"lastName"        validate:"required,max=50"`
}

type registerFarmerRequest struct {
	registerRequest
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Location    string `json:"location"    validate:"required,max=100"`
}

type updateFarmerRequest struct {
	FirstName   string `json:"firstName"   validate:"required,max=50"`
	LastName    string `json:"lastName"    validate:"required,max=50"`
	PhoneNumber string `json:"phoneNumber" validate:"required,max=20"`
	Location    string `json:"location"    validate:"required,max=100"`
	Version     int64  `json:"version"`
}

type productRequest struct {
	Name           string  `json:"name"           validate:"required,max=100"`
	Description    string  `json:"description"    validate:"max=500"`
	Price          float64 `json:"price"          validate:"gt=0"`
	Quantity       int     `json:"quantity"       validate:"gte=0"`
	ProductionDate string  `json:"productionDate" validate:"required"`
	CategoryID     int64   `json:"categoryId"     validate:"gt=0"`
	Version        int64   `json:"version"`
}

type categoryRequest struct {
	Name    string `json:"name" validate:"required,max=50"`
	Version int64  `json:"version"`
}

// --- Response types ---

type loginResponse struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber,omitempty"`
	Location    string    `json:"location,omitempty"`
	Role        string    `json:"role"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
}

type productResponse struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Quantity       int       `json:"quantity"`
	ProductionDate string    `json:"productionDate"`
	FarmerID       string    `json:"farmerId"`
	FarmerName     string    `json:"farmerName"`
	CategoryID     int64     `json:"categoryId"`
	CategoryName   string    `json:"categoryName"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type categoryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
	Version      int64  `json:"version"`
}

// errorResponse documents the error envelope for swagger.
type errorResponse struct {
	Error  string            `json:"error"`
	Errors map[string]string `json:"errors,omitempty"`
}
