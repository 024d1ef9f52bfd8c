package apiclient

import "time"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"  validate:"required"`
	UserID    string    `json:"userId" validate:"required"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type RegisterRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Location        string `json:"location,omitempty"`
}

type UpdateFarmerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneNumber string `json:"phoneNumber"`
	Location    string `json:"location"`
	Version     int64  `json:"version,omitempty"`
}

type User struct {
	ID          string    `json:"id"    validate:"required"`
	Email       string    `json:"email" validate:"required"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Location    string    `json:"location"`
	Role        string    `json:"role"  validate:"required"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
}

// DisplayName returns "First Last", falling back to the email.
func (u User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Email
	}
	return name
}

type ProductRequest struct {
	Name           string  `json:"name"`
	Description    string  `json:"description"`
	Price          float64 `json:"price"`
	Quantity       int     `json:"quantity"`
	ProductionDate string  `json:"productionDate"`
	CategoryID     int64   `json:"categoryId"`
	Version        int64   `json:"version,omitempty"`
}

type Product struct {
	ID             int64     `json:"id"             validate:"required"`
	Name           string    `json:"name"           validate:"required"`
	Description    string    `json:"description"`
	Price          float64   `json:"price"`
	Quantity       int       `json:"quantity"`
	ProductionDate string    `json:"productionDate" validate:"required"`
	FarmerID       string    `json:"farmerId"       validate:"required"`
	FarmerName     string    `json:"farmerName"`
	CategoryID     int64     `json:"categoryId"     validate:"required"`
	CategoryName   string    `json:"categoryName"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// ProductQuery filters ListProducts. Zero values are omitted.
type ProductQuery struct {
	CategoryID int64
	FarmerID   string
	From       string
	To         string
}

type CategoryRequest struct {
	Name    string `json:"name"`
	Version int64  `json:"version,omitempty"`
}

type Category struct {
	ID           int64  `json:"id"   validate:"required"`
	Name         string `json:"name" validate:"required"`
	ProductCount int    `json:"productCount"`
	Version      int64  `json:"version"`
}
