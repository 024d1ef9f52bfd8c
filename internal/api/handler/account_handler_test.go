package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

func TestAccountHandler_ListFarmers_Empty(t *testing.T) {
	svc := &stubAccountService{
		listFarmersFn: func(ctx context.Context) ([]*domain.User, error) { return nil, nil },
	}

	c, rec := newContext(http.MethodGet, "/api/FarmerAccount/farmer/all", "", employeeActor)
	if err := NewAccountHandler(svc).ListFarmers(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := rec.Body.String(); got != "[]\n" {
		t.Fatalf("expected empty array, got %q", got)
	}
}

func TestAccountHandler_GetFarmer(t *testing.T) {
	svc := &stubAccountService{
		getFarmerFn: func(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
			if actor.Role == domain.RoleFarmer && actor.UserID != id {
				return nil, domain.ErrForbidden
			}
			return &domain.User{ID: id, Email: "farmer@example.com", Role: domain.RoleFarmer}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/", "", farmerActor)
	withParams(c, "id", farmerActor.UserID)
	if err := NewAccountHandler(svc).GetFarmer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newContext(http.MethodGet, "/", "", farmerActor)
	withParams(c, "id", employeeActor.UserID)
	if err := NewAccountHandler(svc).GetFarmer(c); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	c, _ = newContext(http.MethodGet, "/", "", employeeActor)
	withParams(c, "id", "42")
	if err := NewAccountHandler(svc).GetFarmer(c); !errors.Is(err, domain.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestAccountHandler_UpdateFarmer(t *testing.T) {
	svc := &stubAccountService{
		updateFarmerFn: func(ctx context.Context, id string, in ports.UpdateFarmerInput) (*domain.User, error) {
			if in.Location != "Franschhoek" || in.Version != 1 {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: id, Location: in.Location, Role: domain.RoleFarmer, Version: 2}, nil
		},
	}

	body := `{"firstName":"Sipho","lastName":"Dlamini","phoneNumber":"0825550101","location":"Franschhoek","version":1}`
	c, rec := newContext(http.MethodPut, "/", body, employeeActor)
	withParams(c, "id", farmerActor.UserID)
	if err := NewAccountHandler(svc).UpdateFarmer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["version"] != float64(2) {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAccountHandler_DeleteFarmer(t *testing.T) {
	deleted := ""
	svc := &stubAccountService{
		deleteFarmerFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}

	c, rec := newContext(http.MethodDelete, "/", "", employeeActor)
	withParams(c, "id", farmerActor.UserID)
	if err := NewAccountHandler(svc).DeleteFarmer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNoContent || deleted != farmerActor.UserID {
		t.Fatalf("expected 204 and delete of %s, got %d / %s", farmerActor.UserID, rec.Code, deleted)
	}
}

func TestAccountHandler_Me(t *testing.T) {
	svc := &stubAccountService{
		meFn: func(ctx context.Context, actor ports.Actor) (*domain.User, error) {
			return &domain.User{ID: actor.UserID, Email: actor.Email, Role: actor.Role}, nil
		},
	}

	c, rec := newContext(http.MethodGet, "/api/FarmerAccount/me", "", employeeActor)
	if err := NewAccountHandler(svc).Me(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["id"] != employeeActor.UserID || resp["role"] != "Employee" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}
