package ports

import (
	"context"
	"time"

	"github.com/agrienergy/connect/internal/core/domain"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name           string
	Description    string
	Price          float64
	Quantity       int
	ProductionDate time.Time
	CategoryID     int64
	// Version is only honoured on update; zero means last-write-wins.
	Version int64
}

type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, actor Actor, in ProductInput) (*domain.Product, error)
	Update(ctx context.Context, actor Actor, id int64, in ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, actor Actor, id int64) error
}
