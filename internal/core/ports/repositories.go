package ports

import (
	"context"

	"github.com/agrienergy/connect/internal/core/domain"
)

// UserRepository persists principals.
type UserRepository interface {
	// Create stores a new user. Returns domain.ErrEmailTaken when the email is
	// already registered, ignoring case.
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)
	// Update writes profile fields and bumps the version. A non-zero
	// expectedVersion must match the stored version (domain.ErrVersionConflict).
	Update(ctx context.Context, user *domain.User, expectedVersion int64) error
	// Delete removes the user and, by cascade, every product they own.
	Delete(ctx context.Context, id string) error
}

// ProductRepository persists products. Reads are enriched with the farmer
// and category names.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, p *domain.Product, expectedVersion int64) error
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository persists categories.
type CategoryRepository interface {
	// Create returns domain.ErrCategoryExists for a case-insensitive duplicate.
	Create(ctx context.Context, c *domain.Category) error
	FindByID(ctx context.Context, id int64) (*domain.Category, error)
	// List returns every category with its product count.
	List(ctx context.Context) ([]*domain.Category, error)
	Update(ctx context.Context, c *domain.Category, expectedVersion int64) error
	// Delete returns domain.ErrCategoryInUse while products reference it.
	Delete(ctx context.Context, id int64) error
}

// LoginGuard tracks failed logins for the account lockout.
type LoginGuard interface {
	IsLocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
