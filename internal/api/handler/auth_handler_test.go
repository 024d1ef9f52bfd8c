package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

const validRegistration = `{"email":"new@example.com","password":"Secret1!","confirmPassword":"Secret1!","firstName":"Lerato","lastName":"Nkosi"`

func TestAuthHandler_Login_Success(t *testing.T) {
	exp := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.LoginResult{Token: "token123", ExpiresAt: exp, User: &domain.User{ID: "u-1"}}, nil
		},
	}
	handler := NewAuthHandler(stub, nil)

	c, rec := newContext(http.MethodPost, "/api/Auth/login", `{"email":"alice@example.com","password":"secret"}`, nil)
	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" || resp["userId"] != "u-1" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestAuthHandler_Login_Failures(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		svcErr   error
		wantErr  error
		wantHTTP int
	}{
		{name: "invalid credentials", body: `{"email":"a@example.com","password":"bad"}`, svcErr: domain.ErrInvalidCredentials, wantErr: domain.ErrInvalidCredentials},
		{name: "no role", body: `{"email":"a@example.com","password":"pwd"}`, svcErr: domain.ErrNoRole, wantErr: domain.ErrNoRole},
		{name: "locked", body: `{"email":"a@example.com","password":"pwd"}`, svcErr: domain.ErrAccountLocked, wantErr: domain.ErrAccountLocked},
		{name: "malformed json", body: `{`, wantHTTP: http.StatusBadRequest},
		{name: "missing password", body: `{"email":"a@example.com"}`, wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthService{
				loginFn: func(ctx context.Context, email, password string) (*ports.LoginResult, error) {
					if tt.svcErr == nil {
						t.Fatalf("should not be called")
					}
					return nil, tt.svcErr
				},
			}
			c, _ := newContext(http.MethodPost, "/api/Auth/login", tt.body, nil)

			err := NewAuthHandler(stub, nil).Login(c)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantHTTP != 0 {
				var he *echo.HTTPError
				if !errors.As(err, &he) || he.Code != tt.wantHTTP {
					t.Fatalf("expected HTTP %d, got %v", tt.wantHTTP, err)
				}
			}
		})
	}
}

func TestAuthHandler_RegisterFarmer_Success(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
			if role != domain.RoleFarmer {
				t.Fatalf("expected farmer role, got %s", role)
			}
			if in.PhoneNumber != "082 555 0101" || in.Location != "Paarl" || in.Email != "new@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u-2", Email: in.Email, Role: role, PhoneNumber: "+27825550101", Location: in.Location}, nil
		},
	}

	body := validRegistration + `,"phoneNumber":"082 555 0101","location":"Paarl"}`
	c, rec := newContext(http.MethodPost, "/api/Auth/register/farmer", body, employeeActor)
	if err := NewAuthHandler(nil, accounts).RegisterFarmer(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["role"] != "Farmer" || resp["phoneNumber"] != "+27825550101" {
		t.Fatalf("unexpected payload: %+v", resp)
	}
	if _, leaked := resp["passwordHash"]; leaked {
		t.Fatal("password hash must not be serialized")
	}
}

func TestAuthHandler_RegisterFarmer_FieldErrors(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}

	body := `{"email":"not-an-email","password":"weak","confirmPassword":"other","firstName":"","lastName":"X"}`
	c, _ := newContext(http.MethodPost, "/api/Auth/register/farmer", body, employeeActor)
	err := NewAuthHandler(nil, accounts).RegisterFarmer(c)

	var ve *domain.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"email", "password", "confirmPassword", "firstName", "phoneNumber", "location"} {
		if _, ok := ve.Fields[field]; !ok {
			t.Fatalf("expected error for %s, got %+v", field, ve.Fields)
		}
	}
	if _, ok := ve.Fields["lastName"]; ok {
		t.Fatalf("lastName is valid, got %+v", ve.Fields)
	}
}

func TestAuthHandler_RegisterEmployee_DuplicateEmail(t *testing.T) {
	accounts := &stubAccountService{
		registerFn: func(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
			if role != domain.RoleEmployee {
				t.Fatalf("expected employee role, got %s", role)
			}
			return nil, domain.ErrEmailTaken
		},
	}

	c, _ := newContext(http.MethodPost, "/api/Auth/register/employee", validRegistration+`}`, employeeActor)
	if err := NewAuthHandler(nil, accounts).RegisterEmployee(c); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestValidPassword(t *testing.T) {
	v := NewValidator()
	type form struct {
		Password string `json:"password" validate:"password"`
	}

	tests := []struct {
		password string
		ok       bool
	}{
		{"Password123!", true},
		{"Aa1!aa", true},
		{"Aa1!a", false},
		{"password1!", false},
		{"PASSWORD1!", false},
		{"Password!!", false},
		{"Password12", false},
	}
	for _, tt := range tests {
		err := v.Validate(&form{Password: tt.password})
		if (err == nil) != tt.ok {
			t.Fatalf("%q: expected ok=%v, got %v", tt.password, tt.ok, err)
		}
	}
}
