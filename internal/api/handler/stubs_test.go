package handler

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/agrienergy/connect/internal/api/middleware"
	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/core/ports"
)

type stubAuthService struct {
	loginFn func(ctx context.Context, email, password string) (*ports.LoginResult, error)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	return s.loginFn(ctx, email, password)
}

type stubAccountService struct {
	registerFn     func(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error)
	listFarmersFn  func(ctx context.Context) ([]*domain.User, error)
	getFarmerFn    func(ctx context.Context, actor ports.Actor, id string) (*domain.User, error)
	updateFarmerFn func(ctx context.Context, id string, in ports.UpdateFarmerInput) (*domain.User, error)
	deleteFarmerFn func(ctx context.Context, id string) error
	meFn           func(ctx context.Context, actor ports.Actor) (*domain.User, error)
}

func (s *stubAccountService) Register(ctx context.Context, role domain.Role, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, role, in)
}

func (s *stubAccountService) ListFarmers(ctx context.Context) ([]*domain.User, error) {
	return s.listFarmersFn(ctx)
}

func (s *stubAccountService) GetFarmer(ctx context.Context, actor ports.Actor, id string) (*domain.User, error) {
	return s.getFarmerFn(ctx, actor, id)
}

func (s *stubAccountService) UpdateFarmer(ctx context.Context, id string, in ports.UpdateFarmerInput) (*domain.User, error) {
	return s.updateFarmerFn(ctx, id, in)
}

func (s *stubAccountService) DeleteFarmer(ctx context.Context, id string) error {
	return s.deleteFarmerFn(ctx, id)
}

func (s *stubAccountService) Me(ctx context.Context, actor ports.Actor) (*domain.User, error) {
	return s.meFn(ctx, actor)
}

type stubProductService struct {
	listFn   func(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	getFn    func(ctx context.Context, id int64) (*domain.Product, error)
	createFn func(ctx context.Context, actor ports.Actor, in ports.ProductInput) (*domain.Product, error)
	updateFn func(ctx context.Context, actor ports.Actor, id int64, in ports.ProductInput) (*domain.Product, error)
	deleteFn func(ctx context.Context, actor ports.Actor, id int64) error
}

func (s *stubProductService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	return s.listFn(ctx, filter)
}

func (s *stubProductService) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.getFn(ctx, id)
}

func (s *stubProductService) Create(ctx context.Context, actor ports.Actor, in ports.ProductInput) (*domain.Product, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubProductService) Update(ctx context.Context, actor ports.Actor, id int64, in ports.ProductInput) (*domain.Product, error) {
	return s.updateFn(ctx, actor, id, in)
}

func (s *stubProductService) Delete(ctx context.Context, actor ports.Actor, id int64) error {
	return s.deleteFn(ctx, actor, id)
}

type stubCategoryService struct {
	listFn   func(ctx context.Context) ([]*domain.Category, error)
	getFn    func(ctx context.Context, id int64) (*domain.Category, error)
	createFn func(ctx context.Context, name string) (*domain.Category, error)
	renameFn func(ctx context.Context, id int64, name string, version int64) (*domain.Category, error)
	deleteFn func(ctx context.Context, id int64) error
}

func (s *stubCategoryService) List(ctx context.Context) ([]*domain.Category, error) {
	return s.listFn(ctx)
}

func (s *stubCategoryService) Get(ctx context.Context, id int64) (*domain.Category, error) {
	return s.getFn(ctx, id)
}

func (s *stubCategoryService) Create(ctx context.Context, name string) (*domain.Category, error) {
	return s.createFn(ctx, name)
}

func (s *stubCategoryService) Rename(ctx context.Context, id int64, name string, version int64) (*domain.Category, error) {
	return s.renameFn(ctx, id, name, version)
}

func (s *stubCategoryService) Delete(ctx context.Context, id int64) error {
	return s.deleteFn(ctx, id)
}

// newContext builds an echo context with the validator installed. A non-nil
// actor is injected the way the Auth middleware would.
func newContext(method, target, body string, actor *ports.Actor) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if actor != nil {
		c.Set(middleware.CtxUserID, actor.UserID)
		c.Set(middleware.CtxUsername, actor.Email)
		c.Set(middleware.CtxRole, actor.Role)
	}
	return c, rec
}

func withParams(c echo.Context, kv ...string) echo.Context {
	var names, values []string
	for i := 0; i+1 < len(kv); i += 2 {
		names = append(names, kv[i])
		values = append(values, kv[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c
}

var (
	farmerActor   = &ports.Actor{UserID: "5b0c7e58-8c3f-4a43-9d6e-0f3f0f7f0a01", Email: "farmer@example.com", Role: domain.RoleFarmer}
	employeeActor = &ports.Actor{UserID: "5b0c7e58-8c3f-4a43-9d6e-0f3f0f7f0a02", Email: "employee@example.com", Role: domain.RoleEmployee}
)
