package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/agrienergy/connect/internal/core/domain"
)

type productModel struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID             int64     `bun:"id,pk,autoincrement"`
	Name           string    `bun:"name,notnull"`
	Description    string    `bun:"description"`
	Price          float64   `bun:"price"`
	Quantity       int       `bun:"quantity"`
	ProductionDate time.Time `bun:"production_date"`
	FarmerID       string    `bun:"farmer_id,notnull"`
	CategoryID     int64     `bun:"category_id,notnull"`
	Version        int64     `bun:"version"`
	CreatedAt      time.Time `bun:"created_at"`
	UpdatedAt      time.Time `bun:"updated_at"`

	FarmerFirstName string `bun:"farmer_first_name,scanonly"`
	FarmerLastName  string `bun:"farmer_last_name,scanonly"`
	FarmerEmail     string `bun:"farmer_email,scanonly"`
	CategoryName    string `bun:"category_name,scanonly"`
}

// ProductRepository implements ports.ProductRepository on SQLite.
type ProductRepository struct {
	db *bun.DB
}

func NewProductRepository(db *bun.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	m := fromProduct(p)
	res, err := r.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("categoryId", "category or farmer does not exist")
		}
		return fmt.Errorf("insert product: %w", err)
	}
	if m.ID == 0 {
		if id, err := res.LastInsertId(); err == nil {
			m.ID = id
		}
	}
	p.ID = m.ID
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var m productModel
	if err := r.enriched(&m).Where("p.id = ?", id).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return m.toProduct(), nil
}

// List returns products matching the filter, newest production date first.
// From and To bound the production date inclusively.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	var models []productModel
	q := r.enriched(&models)
	if filter.FarmerID != "" {
		q = q.Where("p.farmer_id = ?", filter.FarmerID)
	}
	if filter.CategoryID > 0 {
		q = q.Where("p.category_id = ?", filter.CategoryID)
	}
	if !filter.From.IsZero() {
		q = q.Where("p.production_date >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		q = q.Where("p.production_date <= ?", filter.To.UTC())
	}

	err := q.OrderExpr("p.production_date DESC, p.id DESC").Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("list products: %w", err)
	}

	products := make([]*domain.Product, len(models))
	for i := range models {
		products[i] = models[i].toProduct()
	}
	return products, nil
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, expectedVersion int64) error {
	q := r.db.NewUpdate().
		Table("products").
		Set("name = ?", p.Name).
		Set("description = ?", p.Description).
		Set("price = ?", p.Price).
		Set("quantity = ?", p.Quantity).
		Set("production_date = ?", p.ProductionDate.UTC()).
		Set("category_id = ?", p.CategoryID).
		Set("updated_at = ?", p.UpdatedAt.UTC()).
		Set("version = version + 1").
		Where("id = ?", p.ID)
	if expectedVersion != 0 {
		q = q.Where("version = ?", expectedVersion)
	}

	res, err := q.Exec(ctx)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewValidationError("categoryId", "category does not exist")
		}
		return fmt.Errorf("update product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return versionMiss(ctx, r.db, "products", p.ID, domain.ErrProductNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.NewDelete().
		Model((*productModel)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) enriched(dest any) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(dest).
		ColumnExpr("p.*").
		ColumnExpr("u.first_name AS farmer_first_name, u.last_name AS farmer_last_name, u.email AS farmer_email").
		ColumnExpr("c.name AS category_name").
		Join("JOIN users AS u ON u.id = p.farmer_id").
		Join("JOIN categories AS c ON c.id = p.category_id")
}

func fromProduct(p *domain.Product) *productModel {
	return &productModel{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Quantity:       p.Quantity,
		ProductionDate: p.ProductionDate.UTC(),
		FarmerID:       p.FarmerID,
		CategoryID:     p.CategoryID,
		Version:        p.Version,
		CreatedAt:      p.CreatedAt.UTC(),
		UpdatedAt:      p.UpdatedAt.UTC(),
	}
}

func (m *productModel) toProduct() *domain.Product {
	farmer := strings.TrimSpace(m.FarmerFirstName + " " + m.FarmerLastName)
	if farmer == "" {
		farmer = m.FarmerEmail
	}
	return &domain.Product{
		ID:             m.ID,
		Name:           m.Name,
		Description:    m.Description,
		Price:          m.Price,
		Quantity:       m.Quantity,
		ProductionDate: m.ProductionDate.UTC(),
		FarmerID:       m.FarmerID,
		CategoryID:     m.CategoryID,
		Version:        m.Version,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
		FarmerName:     farmer,
		CategoryName:   m.CategoryName,
	}
}
