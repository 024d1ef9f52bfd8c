package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

const (
	SeedEmployeeEmail = "employee@agrienergy.com"
	SeedFarmerEmail   = "farmer@agrienergy.com"
	SeedPassword      = "Password123!"
)

var seedCategories = []string{"Vegetables", "Fruits", "Dairy", "Grains", "Renewable Energy"}

// Seeder creates the demo accounts, categories and products. Running it
// again is a no-op.
type Seeder struct {
	accounts   *AccountService
	users      ports.UserRepository
	categories ports.CategoryRepository
	products   ports.ProductRepository
	log        zerolog.Logger
}

func NewSeeder(accounts *AccountService, users ports.UserRepository, categories ports.CategoryRepository, products ports.ProductRepository, log zerolog.Logger) *Seeder {
	return &Seeder{accounts: accounts, users: users, categories: categories, products: products, log: log}
}

func (s *Seeder) Seed(ctx context.Context) error {
	if _, err := s.ensureUser(ctx, domain.RoleEmployee, ports.RegisterInput{
		Email:     SeedEmployeeEmail,
		Password:  SeedPassword,
		FirstName: "Agri",
		LastName:  "Employee",
	}); err != nil {
		return err
	}

	farmer, err := s.ensureUser(ctx, domain.RoleFarmer, ports.RegisterInput{
		Email:       SeedFarmerEmail,
		Password:    SeedPassword,
		FirstName:   "Sipho",
		LastName:    "Dlamini",
		PhoneNumber: "+27 82 555 0101",
		Location:    "Stellenbosch, Western Cape",
	})
	if err != nil {
		return err
	}

	byName := map[string]int64{}
	for _, name := range seedCategories {
		c := &domain.Category{Name: name, Version: 1}
		if err := s.categories.Create(ctx, c); err != nil && !errors.Is(err, domain.ErrCategoryExists) {
			return fmt.Errorf("seed category %s: %w", name, err)
		}
	}
	all, err := s.categories.List(ctx)
	if err != nil {
		return fmt.Errorf("seed: list categories: %w", err)
	}
	for _, c := range all {
		byName[c.NormalizedName()] = c.ID
	}

	existing, err := s.products.List(ctx, domain.ProductFilter{FarmerID: farmer.ID})
	if err != nil {
		return fmt.Errorf("seed: list products: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	now := time.Now().UTC()
	today := now.Truncate(24 * time.Hour)
	samples := []domain.Product{
		{Name: "Butternut Squash", Description: "Organic, 1kg", Price: 24.99, Quantity: 120, CategoryID: byName["VEGETABLES"], ProductionDate: today.AddDate(0, 0, -5)},
		{Name: "Granny Smith Apples", Description: "Crate of 12", Price: 45.50, Quantity: 40, CategoryID: byName["FRUITS"], ProductionDate: today.AddDate(0, 0, -12)},
		{Name: "Solar Water Pump", Description: "500W irrigation pump", Price: 3899, Quantity: 3, CategoryID: byName["RENEWABLE ENERGY"], ProductionDate: today.AddDate(0, -2, 0)},
	}
	for i := range samples {
		p := samples[i]
		p.FarmerID = farmer.ID
		p.Version = 1
		p.CreatedAt, p.UpdatedAt = now, now
		if err := s.products.Create(ctx, &p); err != nil {
			return fmt.Errorf("seed product %s: %w", p.Name, err)
		}
	}

	s.log.Info().Msg("seed data created")
	return nil
}

func (s *Seeder) ensureUser(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
	u, err := s.accounts.Register(ctx, role, in)
	if errors.Is(err, domain.ErrEmailTaken) {
		return s.users.FindByEmail(ctx, in.Email)
	}
	if err != nil {
		return nil, fmt.Errorf("seed user %s: %w", in.Email, err)
	}
	return u, nil
}
