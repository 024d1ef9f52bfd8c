package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/agrienergy/connect/internal/core/domain"
)

type CategoryRepository struct {
	db  *mongo.Database
	col *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{db: db, col: db.Collection(collectionCategories)}
}

type mongoCategory struct {
	ID             int64  `bson:"_id"`
	Name           string `bson:"name"`
	NormalizedName string `bson:"normalized_name"`
	Version        int64  `bson:"version"`
	ProductCount   int    `bson:"product_count,omitempty"`
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	id, err := nextID(ctx, r.db, collectionCategories)
	if err != nil {
		return err
	}

	doc := mongoCategory{
		ID:             id,
		Name:           c.Name,
		NormalizedName: c.NormalizedName(),
		Version:        c.Version,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("insert category: %w", err)
	}
	c.ID = id
	return nil
}

func (r *CategoryRepository) FindByID(ctx context.Context, id int64) (*domain.Category, error) {
	list, err := r.aggregate(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, domain.ErrCategoryNotFound
	}
	return list[0], nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.aggregate(ctx, bson.M{})
}

func (r *CategoryRepository) Update(ctx context.Context, c *domain.Category, expectedVersion int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"name":            c.Name,
			"normalized_name": c.NormalizedName(),
		},
		"$inc": bson.M{"version": int64(1)},
	}

	res, err := r.col.UpdateOne(ctx, versionFilter(c.ID, expectedVersion), update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrCategoryExists
		}
		return fmt.Errorf("update category: %w", err)
	}
	if res.MatchedCount == 0 {
		return versionMiss(ctx, r.col, c.ID, domain.ErrCategoryNotFound)
	}
	return nil
}

// Delete refuses while any product references the category.
func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	products := r.db.Collection(collectionProducts)
	if err := inUse(ctx, products, id); err != nil {
		return err
	}

	var removed mongoCategory
	if err := r.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&removed); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrCategoryNotFound
		}
		return fmt.Errorf("delete category: %w", err)
	}

	// A product may have been created against the category after the first
	// count; put the category back rather than leave it dangling.
	if err := inUse(ctx, products, id); err != nil {
		if _, rerr := r.col.InsertOne(ctx, removed); rerr != nil {
			return fmt.Errorf("restore category %d: %w", id, rerr)
		}
		return err
	}
	return nil
}

func inUse(ctx context.Context, products *mongo.Collection, categoryID int64) error {
	n, err := products.CountDocuments(ctx, bson.M{"category_id": categoryID})
	if err != nil {
		return fmt.Errorf("count products: %w", err)
	}
	if n > 0 {
		return domain.ErrCategoryInUse
	}
	return nil
}

func (r *CategoryRepository) aggregate(ctx context.Context, match bson.M) ([]*domain.Category, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: collectionProducts},
			{Key: "localField", Value: "_id"},
			{Key: "foreignField", Value: "category_id"},
			{Key: "as", Value: "products"},
		}}},
		{{Key: "$addFields", Value: bson.D{
			{Key: "product_count", Value: bson.D{{Key: "$size", Value: "$products"}}},
		}}},
		{{Key: "$project", Value: bson.D{{Key: "products", Value: 0}}}},
		{{Key: "$sort", Value: bson.D{{Key: "name", Value: 1}}}},
	}

	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate categories: %w", err)
	}

	var docs []mongoCategory
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	out := make([]*domain.Category, len(docs))
	for i, d := range docs {
		out[i] = &domain.Category{
			ID:           d.ID,
			Name:         d.Name,
			Version:      d.Version,
			ProductCount: d.ProductCount,
		}
	}
	return out, nil
}
