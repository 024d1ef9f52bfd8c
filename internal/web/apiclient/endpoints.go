package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// --- Auth ---

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/Auth/login", nil, LoginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterFarmer(ctx context.Context, req RegisterRequest) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPost, "/api/Auth/register/farmer", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RegisterEmployee(ctx context.Context, req RegisterRequest) (*User, error) {
	req.PhoneNumber, req.Location = "", ""
	var out User
	if err := c.do(ctx, http.MethodPost, "/api/Auth/register/employee", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Farmer accounts ---

func (c *Client) ListFarmers(ctx context.Context) ([]User, error) {
	var out []User
	if err := c.do(ctx, http.MethodGet, "/api/FarmerAccount/farmer/all", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetFarmer(ctx context.Context, id string) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, farmerPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFarmer(ctx context.Context, id string, req UpdateFarmerRequest) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodPut, farmerPath(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteFarmer(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, farmerPath(id), nil, nil, nil)
}

func (c *Client) Me(ctx context.Context) (*User, error) {
	var out User
	if err := c.do(ctx, http.MethodGet, "/api/FarmerAccount/me", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// --- Products ---

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) ([]Product, error) {
	query := url.Values{}
	if q.CategoryID > 0 {
		query.Set("categoryId", strconv.FormatInt(q.CategoryID, 10))
	}
	if q.FarmerID != "" {
		query.Set("farmerId", q.FarmerID)
	}
	if q.From != "" {
		query.Set("from", q.From)
	}
	if q.To != "" {
		query.Set("to", q.To)
	}

	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/Product", query, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ProductsByFarmer(ctx context.Context, farmerID string) ([]Product, error) {
	var out []Product
	if err := c.do(ctx, http.MethodGet, "/api/Product/farmer/"+farmerID, nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, id int64) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, req ProductRequest) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPost, "/api/Product", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProduct(ctx context.Context, id int64, req ProductRequest) (*Product, error) {
	var out Product
	if err := c.do(ctx, http.MethodPut, productPath(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

// --- Categories ---

func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.do(ctx, http.MethodGet, "/api/Category", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateCategory(ctx context.Context, name string) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPost, "/api/Category", nil, CategoryRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) RenameCategory(ctx context.Context, id int64, req CategoryRequest) (*Category, error) {
	var out Category
	if err := c.do(ctx, http.MethodPut, categoryPath(id), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, categoryPath(id), nil, nil, nil)
}

// Ping checks that the API tier answers its liveness probe.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func farmerPath(id string) string {
	return "/api/FarmerAccount/farmer/" + url.PathEscape(id)
}

func productPath(id int64) string {
	return "/api/Product/" + strconv.FormatInt(id, 10)
}

func categoryPath(id int64) string {
	return "/api/Category/" + strconv.FormatInt(id, 10)
}
