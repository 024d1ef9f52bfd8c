package handler

import (
	"context"

	"github.com/agrienergy/connect/internal/web/apiclient"
)

// AccountAPI is the slice of the API client used by the farmer and employee
// pages.
type AccountAPI interface {
	RegisterFarmer(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.User, error)
	RegisterEmployee(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.User, error)
	ListFarmers(ctx context.Context) ([]apiclient.User, error)
	GetFarmer(ctx context.Context, id string) (*apiclient.User, error)
	UpdateFarmer(ctx context.Context, id string, req apiclient.UpdateFarmerRequest) (*apiclient.User, error)
	DeleteFarmer(ctx context.Context, id string) error
}

type ProductAPI interface {
	ListProducts(ctx context.Context, q apiclient.ProductQuery) ([]apiclient.Product, error)
	ProductsByFarmer(ctx context.Context, farmerID string) ([]apiclient.Product, error)
	GetProduct(ctx context.Context, id int64) (*apiclient.Product, error)
	CreateProduct(ctx context.Context, req apiclient.ProductRequest) (*apiclient.Product, error)
	UpdateProduct(ctx context.Context, id int64, req apiclient.ProductRequest) (*apiclient.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
}

type CategoryAPI interface {
	ListCategories(ctx context.Context) ([]apiclient.Category, error)
	CreateCategory(ctx context.Context, name string) (*apiclient.Category, error)
	DeleteCategory(ctx context.Context, id int64) error
}

// API is everything the web tier calls on the API tier besides sign-in.
type API interface {
	AccountAPI
	ProductAPI
	CategoryAPI
}
