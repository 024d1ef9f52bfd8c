package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

func sampleProduct() *domain.Product {
	return &domain.Product{
		ID:             7,
		Name:           "Spinach",
		Price:          12.5,
		Quantity:       4,
		ProductionDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		FarmerID:       farmerActor.UserID,
		FarmerName:     "Sipho Dlamini",
		CategoryID:     2,
		CategoryName:   "Vegetables",
		Version:        1,
	}
}

func TestProductHandler_List_Filters(t *testing.T) {
	var got domain.ProductFilter
	svc := &stubProductService{
		listFn: func(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
			got = filter
			return []*domain.Product{sampleProduct()}, nil
		},
	}

	target := "/api/Product?categoryId=2&farmerId=" + farmerActor.UserID + "&from=2026-01-01&to=2026-03-31"
	c, rec := newContext(http.MethodGet, target, "", employeeActor)
	if err := NewProductHandler(svc).List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	if got.CategoryID != 2 || got.FarmerID != farmerActor.UserID {
		t.Fatalf("unexpected filter: %+v", got)
	}
	if !got.From.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)) || !got.To.Equal(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date range: %v - %v", got.From, got.To)
	}

	var resp []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp) != 1 || resp[0]["farmerName"] != "Sipho Dlamini" || resp[0]["categoryName"] != "Vegetables" || resp[0]["productionDate"] != "2026-03-01" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestProductHandler_List_BadFilters(t *testing.T) {
	svc := &stubProductService{
		listFn: func(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	c, _ := newContext(http.MethodGet, "/api/Product?categoryId=abc&from=yesterday&to=2026-01-01", "", employeeActor)
	err := NewProductHandler(svc).List(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := ve.Fields["categoryId"]; !ok {
		t.Fatalf("expected categoryId error: %+v", ve.Fields)
	}
	if _, ok := ve.Fields["from"]; !ok {
		t.Fatalf("expected from error: %+v", ve.Fields)
	}
}

func TestProductHandler_ByFarmer_InvalidID(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "", employeeActor)
	withParams(c, "farmerId", "not-a-uuid")

	if err := NewProductHandler(&stubProductService{}).ByFarmer(c); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestProductHandler_Create(t *testing.T) {
	svc := &stubProductService{
		createFn: func(ctx context.Context, actor ports.Actor, in ports.ProductInput) (*domain.Product, error) {
			if actor.UserID != farmerActor.UserID {
				t.Fatalf("owner must be the caller, got %s", actor.UserID)
			}
			if in.Name != "Spinach" || in.CategoryID != 2 || !in.ProductionDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) {
				t.Fatalf("unexpected input: %+v", in)
			}
			return sampleProduct(), nil
		},
	}

	body := `{"name":"Spinach","price":12.5,"quantity":4,"productionDate":"2026-03-01","categoryId":2}`
	c, rec := newContext(http.MethodPost, "/api/Product", body, farmerActor)
	if err := NewProductHandler(svc).Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestProductHandler_Create_FieldErrors(t *testing.T) {
	svc := &stubProductService{
		createFn: func(ctx context.Context, actor ports.Actor, in ports.ProductInput) (*domain.Product, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing name", `{"price":1,"quantity":1,"productionDate":"2026-03-01","categoryId":2}`, "name"},
		{"zero price", `{"name":"A","price":0,"quantity":1,"productionDate":"2026-03-01","categoryId":2}`, "price"},
		{"negative quantity", `{"name":"A","price":1,"quantity":-1,"productionDate":"2026-03-01","categoryId":2}`, "quantity"},
		{"bad date", `{"name":"A","price":1,"quantity":1,"productionDate":"March","categoryId":2}`, "productionDate"},
		{"no category", `{"name":"A","price":1,"quantity":1,"productionDate":"2026-03-01"}`, "categoryId"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newContext(http.MethodPost, "/api/Product", tt.body, farmerActor)
			err := NewProductHandler(svc).Create(c)

			var ve *domain.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := ve.Fields[tt.field]; !ok {
				t.Fatalf("expected %s error, got %+v", tt.field, ve.Fields)
			}
		})
	}
}

func TestProductHandler_Update_PassesVersion(t *testing.T) {
	svc := &stubProductService{
		updateFn: func(ctx context.Context, actor ports.Actor, id int64, in ports.ProductInput) (*domain.Product, error) {
			if id != 7 || in.Version != 3 {
				t.Fatalf("unexpected id/version: %d/%d", id, in.Version)
			}
			return nil, domain.ErrVersionConflict
		},
	}

	body := `{"name":"Spinach","price":12.5,"quantity":4,"productionDate":"2026-03-01","categoryId":2,"version":3}`
	c, _ := newContext(http.MethodPut, "/", body, farmerActor)
	withParams(c, "id", "7")

	if err := NewProductHandler(svc).Update(c); !errors.Is(err, domain.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}
}

func TestProductHandler_Delete(t *testing.T) {
	svc := &stubProductService{
		deleteFn: func(ctx context.Context, actor ports.Actor, id int64) error {
			if actor.Role != domain.RoleEmployee || id != 7 {
				t.Fatalf("unexpected call: %+v %d", actor, id)
			}
			return nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/", "", employeeActor)
	withParams(c, "id", "7")
	if err := NewProductHandler(svc).Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodDelete, "/", "", employeeActor)
	withParams(c, "id", "0")
	if err := NewProductHandler(svc).Delete(c); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestProductHandler_RequiresClaims(t *testing.T) {
	c, _ := newContext(http.MethodPost, "/api/Product", `{}`, nil)
	if err := NewProductHandler(&stubProductService{}).Create(c); err == nil {
		t.Fatal("expected error without claims")
	}
}
