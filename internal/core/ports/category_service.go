package ports

import (
	"context"

	"github.com/agrienergy/connect/internal/core/domain"
)

type CategoryService interface {
	List(ctx context.Context) ([]*domain.Category, error)
	Get(ctx context.Context, id int64) (*domain.Category, error)
	Create(ctx context.Context, name string) (*domain.Category, error)
	Rename(ctx context.Context, id int64, name string, version int64) (*domain.Category, error)
	Delete(ctx context.Context, id int64) error
}
