package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/api/metrics"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

type ProductService struct {
	products   ports.ProductRepository
	categories ports.CategoryRepository
	logger     zerolog.Logger
	now        func() time.Time
}

func NewProductService(products ports.ProductRepository, categories ports.CategoryRepository, logger zerolog.Logger) *ProductService {
	return &ProductService{products: products, categories: categories, logger: logger, now: time.Now}
}

func (s *ProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.products.List(ctx, filter)
}

func (s *ProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.products.FindByID(ctx, id)
}

// Create adds a product owned by the calling farmer.
func (s *ProductService) Create(ctx context.Context, actor ports.Actor, in ports.ProductInput) (*domain.Product, error) {
	if !actor.Is(domain.RoleFarmer) {
		return nil, domain.ErrForbidden
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	p := &domain.Product{
		Name:           in.Name,
		Description:    in.Description,
		Price:          in.Price,
		Quantity:       in.Quantity,
		ProductionDate: in.ProductionDate.UTC(),
		FarmerID:       actor.UserID,
		CategoryID:     in.CategoryID,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.products.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("product", "create").Inc()
	s.logger.Info().Int64("product_id", p.ID).Str("farmer_id", actor.UserID).Msg("product created")

	return s.products.FindByID(ctx, p.ID)
}

// Update edits a product. Farmers may only edit their own products;
// employees may edit any.
func (s *ProductService) Update(ctx context.Context, actor ports.Actor, id int64, in ports.ProductInput) (*domain.Product, error) {
	p, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, in); err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.ProductionDate = in.ProductionDate.UTC()
	p.CategoryID = in.CategoryID
	p.UpdatedAt = s.now().UTC()

	if err := s.products.Update(ctx, p, in.Version); err != nil {
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("product", "update").Inc()
	return s.products.FindByID(ctx, id)
}

func (s *ProductService) Delete(ctx context.Context, actor ports.Actor, id int64) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	metrics.EntityWritesTotal.WithLabelValues("product", "delete").Inc()
	s.logger.Info().Int64("product_id", id).Str("actor", actor.UserID).Msg("product deleted")
	return nil
}

func (s *ProductService) owned(ctx context.Context, actor ports.Actor, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleEmployee:
		return p, nil
	case domain.RoleFarmer:
		if p.FarmerID == actor.UserID {
			return p, nil
		}
	}
	return nil, domain.ErrForbidden
}

func (s *ProductService) validate(ctx context.Context, in ports.ProductInput) error {
	fields := map[string]string{}
	if in.ProductionDate.After(s.now()) {
		fields["productionDate"] = "productionDate cannot be in the future"
	}
	if _, err := s.categories.FindByID(ctx, in.CategoryID); err != nil {
		if !errors.Is(err, domain.ErrCategoryNotFound) {
			return err
		}
		fields["categoryId"] = "categoryId does not reference an existing category"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
