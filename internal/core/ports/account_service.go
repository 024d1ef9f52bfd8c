package ports

import (
	"context"

	"github.com/agrienergy/connect/internal/core/domain"
)

// Actor is the authenticated caller, taken from the verified token.
type Actor struct {
	UserID string
	Email  string
	Role   domain.Role
}

func (a Actor) Is(role domain.Role) bool { return a.Role == role }

// RegisterInput carries registration fields for farmers and employees.
// PhoneNumber and Location are only used for farmers.
type RegisterInput struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
	Location    string
}

// UpdateFarmerInput carries editable farmer profile fields.
type UpdateFarmerInput struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Location    string
	Version     int64
}

type AccountService interface {
	Register(ctx context.Context, role domain.Role, in RegisterInput) (*domain.User, error)
	ListFarmers(ctx context.Context) ([]*domain.User, error)
	GetFarmer(ctx context.Context, actor Actor, id string) (*domain.User, error)
	UpdateFarmer(ctx context.Context, id string, in UpdateFarmerInput) (*domain.User, error)
	DeleteFarmer(ctx context.Context, id string) error
	Me(ctx context.Context, actor Actor) (*domain.User, error)
}
