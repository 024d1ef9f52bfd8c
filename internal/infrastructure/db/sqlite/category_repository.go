package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/agrienergy/connect/internal/core/domain"
)

type categoryModel struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID             int64  `bun:"id,pk,autoincrement"`
	Name           string `bun:"name,notnull"`
	NormalizedName string `bun:"normalized_name,notnull"`
	Version        int64  `bun:"version"`

	ProductCount int `bun:"product_count,scanonly"`
}

// CategoryRepository implements ports.CategoryRepository on SQLite.
type CategoryRepository struct {
	db *bun.DB
}

func NewCategoryRepository(db *bun.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	m := &categoryModel{
		Name:           c.Name,
		NormalizedName: c.NormalizedName(),
		Version:        c.Version,
	}
	res, err := r.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	if m.ID == 0 {
		if id, err := res.LastInsertId(); err == nil {
			m.ID = id
		}
	}
	c.ID = m.ID
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m categoryModel
	if err := r.counted(&m).Where("c.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return m.toCategory(), nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var models []categoryModel
	err := r.counted(&models).OrderExpr("c.name ASC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	categories := make([]*domain.Category, len(models))
	for i := range models {
		categories[i] = models[i].toCategory()
	}
	return categories, nil
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category, expectedVersion int64) error {
	q := r.db.NewUpdate().
		Table("categories").
		Set("name = ?", c.Name).
		Set("normalized_name = ?", c.NormalizedName()).
		Set("version = version + 1").
		Where("id = ?", c.ID)
	if expectedVersion != 0 {
		q = q.Where("version = ?", expectedVersion)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("update category: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return versionMiss(ctx, r.db, "categories", c.ID, domain.ErrCategoryNotFound)
	}
	return nil
}

// Delete refuses while products reference the category. The foreign key
// restriction backs up the explicit count.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		n, err := tx.NewSelect().Table("products").Where("category_id = ?", id).Count(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n > 0 {
			return domain.ErrCategoryInUse
		}

		res, err := tx.NewDelete().
			Model((*categoryModel)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrCategoryInUse
			}
			return fmt.Errorf("delete category: %w", err)
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			return domain.ErrCategoryNotFound
		}
		return nil
	})
}

func (r *CategoryRepository) counted(dest any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(dest).
		ColumnExpr("c.*").
		ColumnExpr("(SELECT COUNT(*) FROM products AS p WHERE p.category_id = c.id) AS product_count")
}

func (m *categoryModel) toCategory() *domain.Category {
	return &domain.Category{
		ID:           m.ID,
		Name:         m.Name,
		Version:      m.Version,
		ProductCount: m.ProductCount,
	}
}
