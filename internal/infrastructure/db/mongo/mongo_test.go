package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrienergy/connect/internal/core/domain"
)

// Runs against a live server only when MONGO_TEST_URI is set.
func TestRepositories_Integration(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}
	ctx := context.Background()

	client, db, err := Connect(ctx, Config{URI: uri, Database: "agrienergy_test_" + uuid.NewString()[:8]})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db))

	users := NewUserRepository(db)
	categories := NewCategoryRepository(db)
	products := NewProductRepository(db)

	now := time.Now().UTC().Truncate(time.Millisecond)
	farmer := &domain.User{ID: uuid.NewString(), Email: "Farmer@Example.com", FirstName: "Sipho", LastName: "Dlamini",
		PasswordHash: "hash", Role: domain.RoleFarmer, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, farmer))

	dup := *farmer
	dup.ID = uuid.NewString()
	dup.Email = "farmer@example.COM"
	assert.ErrorIs(t, users.Create(ctx, &dup), domain.ErrEmailTaken)

	veg := &domain.Category{Name: "Vegetables", Version: 1}
	require.NoError(t, categories.Create(ctx, veg))
	assert.ErrorIs(t, categories.Create(ctx, &domain.Category{Name: "vegetables", Version: 1}), domain.ErrCategoryExists)

	p := &domain.Product{Name: "Spinach", Price: 12, Quantity: 4, ProductionDate: now.AddDate(0, 0, -1),
		FarmerID: farmer.ID, CategoryID: veg.ID, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, products.Create(ctx, p))

	got, err := products.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sipho Dlamini", got.FarmerName)
	assert.Equal(t, "Vegetables", got.CategoryName)

	p.Name = "Baby Spinach"
	require.NoError(t, products.Update(ctx, p, 1))
	assert.ErrorIs(t, products.Update(ctx, p, 1), domain.ErrVersionConflict)

	listed, err := categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 1, listed[0].ProductCount)

	assert.ErrorIs(t, categories.Delete(ctx, veg.ID), domain.ErrCategoryInUse)

	other := &domain.User{ID: uuid.NewString(), Email: "other@example.com", FirstName: "Thandi", LastName: "Nkosi",
		PasswordHash: "hash", Role: domain.RoleFarmer, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, users.Create(ctx, other))
	second := &domain.Product{Name: "Kale", Price: 9, Quantity: 2, ProductionDate: now.AddDate(0, 0, -2),
		FarmerID: farmer.ID, CategoryID: veg.ID, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, products.Create(ctx, second))
	kept := &domain.Product{Name: "Carrots", Price: 5, Quantity: 8, ProductionDate: now.AddDate(0, 0, -1),
		FarmerID: other.ID, CategoryID: veg.ID, Version: 1, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, products.Create(ctx, kept))

	assert.ErrorIs(t, users.Delete(ctx, uuid.NewString()), domain.ErrUserNotFound)
	_, err = products.FindByID(ctx, kept.ID)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, farmer.ID))
	_, err = users.FindByID(ctx, farmer.ID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	left, err := products.List(ctx, domain.ProductFilter{FarmerID: farmer.ID})
	require.NoError(t, err)
	assert.Empty(t, left)
	_, err = products.FindByID(ctx, kept.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, categories.Delete(ctx, veg.ID), domain.ErrCategoryInUse)
	_, err = categories.FindByID(ctx, veg.ID)
	require.NoError(t, err)

	require.NoError(t, users.Delete(ctx, other.ID))
	require.NoError(t, categories.Delete(ctx, veg.ID))
	assert.ErrorIs(t, categories.Delete(ctx, veg.ID), domain.ErrCategoryNotFound)
}
