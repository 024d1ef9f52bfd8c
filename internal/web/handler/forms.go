package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/agrienergy/connect/internal/web/apiclient"
)

type loginForm struct {
	Email     string `form:"email"     validate:"required,email"`
	Password  string `form:"password"  validate:"required"`
	ReturnURL string `form:"returnUrl"`
}

type registerForm struct {
	Email           string `form:"email"`
	Password        string `form:"password"`
	ConfirmPassword string `form:"confirmPassword"`
	FirstName       string `form:"firstName"`
	LastName        string `form:"lastName"`
	PhoneNumber     string `form:"phoneNumber"`
	Location        string `form:"location"`
}

func (f registerForm) request() apiclient.RegisterRequest {
	return apiclient.RegisterRequest{
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		ConfirmPassword: f.ConfirmPassword,
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		PhoneNumber:     strings.TrimSpace(f.PhoneNumber),
		Location:        strings.TrimSpace(f.Location),
	}
}

type farmerForm struct {
	FirstName   string `form:"firstName"`
	LastName    string `form:"lastName"`
	PhoneNumber string `form:"phoneNumber"`
	Location    string `form:"location"`
	Version     int64  `form:"version"`
}

func farmerFormFrom(u *apiclient.User) farmerForm {
	return farmerForm{
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		PhoneNumber: u.PhoneNumber,
		Location:    u.Location,
		Version:     u.Version,
	}
}

func (f farmerForm) request() apiclient.UpdateFarmerRequest {
	return apiclient.UpdateFarmerRequest{
		FirstName:   strings.TrimSpace(f.FirstName),
		LastName:    strings.TrimSpace(f.LastName),
		PhoneNumber: strings.TrimSpace(f.PhoneNumber),
		Location:    strings.TrimSpace(f.Location),
		Version:     f.Version,
	}
}

type productForm struct {
	Name           string  `form:"name"`
	Description    string  `form:"description"`
	Price          float64 `form:"price"`
	Quantity       int     `form:"quantity"`
	ProductionDate string  `form:"productionDate"`
	CategoryID     int64   `form:"categoryId"`
	Version        int64   `form:"version"`
}

func productFormFrom(p *apiclient.Product) productForm {
	return productForm{
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price,
		Quantity:       p.Quantity,
		ProductionDate: p.ProductionDate,
		CategoryID:     p.CategoryID,
		Version:        p.Version,
	}
}

func (f productForm) request() apiclient.ProductRequest {
	return apiclient.ProductRequest{
		Name:           strings.TrimSpace(f.Name),
		Description:    strings.TrimSpace(f.Description),
		Price:          f.Price,
		Quantity:       f.Quantity,
		ProductionDate: strings.TrimSpace(f.ProductionDate),
		CategoryID:     f.CategoryID,
		Version:        f.Version,
	}
}

type categoryForm struct {
	Name string `form:"name"`
}

type productFilter struct {
	CategoryID int64  `query:"categoryId"`
	FarmerID   string `query:"farmerId"`
	From       string `query:"from"`
	To         string `query:"to"`
}

func (f productFilter) query() apiclient.ProductQuery {
	return apiclient.ProductQuery{CategoryID: f.CategoryID, FarmerID: f.FarmerID, From: f.From, To: f.To}
}

const (
	msgInvalidForm = "Please correct the highlighted fields."
	msgConflict    = "This record was changed by someone else. Reload it and try again."
)

var formValidator = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// validateForm runs the struct's validate tags and returns messages keyed by
// form field name, or nil when the form is valid.
func validateForm(form any) map[string]string {
	err := formValidator.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out[fe.Field()] = "This field is required."
		case "email":
			out[fe.Field()] = "Enter a valid email address."
		default:
			out[fe.Field()] = "This value is not valid."
		}
	}
	return out
}

// formFailure reports whether err is an API rejection that belongs on the
// form (validation, duplicates, stale version) rather than a redirect or an
// error page.
func formFailure(err error) (banner string, fields map[string]string, ok bool) {
	var apiErr *apiclient.Error
	if !errors.As(err, &apiErr) {
		return "", nil, false
	}
	switch apiErr.Status {
	case http.StatusBadRequest:
		banner = apiErr.Message
		if len(apiErr.Fields) > 0 {
			banner = msgInvalidForm
		}
		return banner, apiErr.Fields, true
	case http.StatusConflict:
		return msgConflict, nil, true
	}
	return "", nil, false
}

// safeReturnURL accepts only local absolute paths so the login form cannot be
// used as an open redirect.
func safeReturnURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return ""
	}
	// Browsers drop tab, CR and LF inside URLs, so "/\t/host" would become "//host".
	if strings.IndexFunc(raw, unicode.IsControl) >= 0 {
		return ""
	}
	return raw
}
