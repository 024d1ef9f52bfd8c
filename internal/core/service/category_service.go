package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/api/metrics"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

const maxCategoryName = 50

type CategoryService struct {
	repo ports.CategoryRepository
	log  zerolog.Logger
}

func NewCategoryService(repo ports.CategoryRepository, log zerolog.Logger) *CategoryService {
	return &CategoryService{repo: repo, log: log}
}

func (s *CategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidID
	}
	return s.repo.FindByID(ctx, id)
}

// Create adds a category. Names equal ignoring case are rejected with
// domain.ErrCategoryExists.
func (s *CategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}

	c := &domain.Category{Name: name, Version: 1}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("category", "create").Inc()
	s.log.Info().Int64("category_id", c.ID).Str("name", c.Name).Msg("category created")
	return c, nil
}

func (s *CategoryService) Rename(ctx context.Context, id int64, name string, version int64) (*domain.Category, error) {
	name, err := cleanCategoryName(name)
	if err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Name = name
	if err := s.repo.Update(ctx, c, version); err != nil {
		return nil, err
	}

	metrics.EntityWritesTotal.WithLabelValues("category", "update").Inc()
	return s.repo.FindByID(ctx, id)
}

// Delete removes a category. It fails with domain.ErrCategoryInUse while
// products still reference it.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return domain.ErrInvalidID
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	metrics.EntityWritesTotal.WithLabelValues("category", "delete").Inc()
	s.log.Info().Int64("category_id", id).Msg("category deleted")
	return nil
}

func cleanCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", domain.NewValidationError("name", "name is required")
	case utf8.RuneCountInString(name) > maxCategoryName:
		return "", domain.NewValidationError("name", "name must be at most 50 characters")
	}
	return name, nil
}
