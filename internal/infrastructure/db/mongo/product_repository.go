package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agrienergy/connect/internal/core/domain"
)

type ProductRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{db: db, col: db.Collection(collectionProducts)}
}

type mongoProduct struct {
	ID             int64     `bson:"_id"`
	Name           string    `bson:"name"`
	Description    string    `bson:"description"`
	Price          float64   `bson:"price"`
	Quantity       int       `bson:"quantity"`
	ProductionDate time.Time `bson:"production_date"`
	FarmerID       string    `bson:"farmer_id"`
	CategoryID     int64     `bson:"category_id"`
	Version        int64     `bson:"version"`
	CreatedAt      time.Time `bson:"created_at"`
	UpdatedAt      time.Time `bson:"updated_at"`

	Farmer   []mongoUser     `bson:"farmer,omitempty"`
	Category []mongoCategory `bson:"category,omitempty"`
}

// Create assigns the next product id. Referenced documents are checked first
// since MongoDB does not enforce references.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.checkRefs(ctx, p); err != nil {
		return err
	}

	id, err := nextID(ctx, r.db, collectionProducts)
	if err != nil {
		return err
	}

	doc := mongoProduct{
		ID:             id,
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
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	list, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrProductNotFound
	}
	return list[0], nil
}

func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	match := bson.M{}
	if filter.FarmerID != "" {
		match["farmer_id"] = filter.FarmerID
	}
	if filter.CategoryID > 0 {
		match["category_id"] = filter.CategoryID
	}
	dates := bson.M{}
	if !filter.From.IsZero() {
		dates["$gte"] = filter.From.UTC()
	}
	if !filter.To.IsZero() {
		dates["$lte"] = filter.To.UTC()
	}
	if len(dates) > 0 {
		match["production_date"] = dates
	}
	return r.aggregate(ctx, match)
}

func (r *ProductRepository) Update(ctx context.Context, p *domain.Product, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.checkRefs(ctx, p); err != nil {
		return err
	}

	update := bson.M{
		"$set": bson.M{
			"name":            p.Name,
			"description":     p.Description,
			"price":           p.Price,
			"quantity":        p.Quantity,
			"production_date": p.ProductionDate.UTC(),
			"category_id":     p.CategoryID,
			"updated_at":      p.UpdatedAt.UTC(),
		},
		"$inc": bson.M{"version": int64(1)},
	}

	res, err := r.col.UpdateOne(ctx, versionFilter(p.ID, expectedVersion), update)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	if res.MatchedCount == 0 {
		return versionMiss(ctx, r.col, p.ID, domain.ErrProductNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) checkRefs(ctx context.Context, p *domain.Product) error {
	n, err := r.db.Collection(collectionCategories).CountDocuments(ctx, bson.M{"_id": p.CategoryID})
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if n == 0 {
		return domain.NewValidationError("categoryId", "category does not exist")
	}
	if p.FarmerID == "" {
		return nil
	}
	n, err = r.db.Collection(collectionUsers).CountDocuments(ctx, bson.M{"_id": p.FarmerID})
	if err != nil {
		return fmt.Errorf("check farmer: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// aggregate joins farmer and category names onto matching products, newest
// production date first.
func (r *ProductRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.Product, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionUsers},
			{Key: "localField", Value: "farmer_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "farmer"},
		}}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionCategories},
			{Key: "localField", Value: "category_id"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "category"},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "production_date", Value: -1},
			{Key: "_id", Value: -1},
		}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate products: %w", err)
	}

	var docs []mongoProduct
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]*domain.Product, len(docs))
	for i := range docs {
		products[i] = docs[i].toDomain()
	}
	return products, nil
}

func (p *mongoProduct) toDomain() *domain.Product {
	out := &domain.Product{
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
	if len(p.Farmer) > 0 {
		f := p.Farmer[0]
		out.FarmerName = strings.TrimSpace(f.FirstName + " " + f.LastName)
		if out.FarmerName == "" {
			out.FarmerName = f.Email
		}
	}
	if len(p.Category) > 0 {
		out.CategoryName = p.Category[0].Name
	}
	return out
}
