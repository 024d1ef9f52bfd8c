package domain

import "time"

// Product is a farm product owned by exactly one farmer. Deleting the farmer
// deletes the product.
type Product struct {
	ID             int64
	Name           string
	Description    string
	Price          float64
	Quantity       int
	ProductionDate time.Time
	FarmerID       string
	CategoryID     int64
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Read-side only, filled by repositories.
	FarmerName   string
	CategoryName string
}

// ProductFilter narrows product listings. Zero values mean "no filter".
type ProductFilter struct {
	FarmerID   string
	CategoryID int64
	From       time.Time
	To         time.Time
}
