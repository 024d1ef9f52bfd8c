package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/pkg/token"
	"github.com/agrienergy/connect/internal/web/apiclient"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

type stubAPI struct {
	loginFn func(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	meFn    func(ctx context.Context) (*apiclient.User, error)
}

func (s *stubAPI) Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAPI) Me(ctx context.Context) (*apiclient.User, error) {
	if s.meFn == nil {
		return nil, errors.New("not stubbed")
	}
	return s.meFn(ctx)
}

func issue(t *testing.T, role domain.Role) string {
	t.Helper()
	iss := token.NewIssuer(token.Config{Key: testKey, Issuer: "iss", Audience: "aud", Lifetime: time.Hour})
	raw, _, err := iss.Issue("farmer@agrienergy.com", "u-1", role)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return raw
}

func newTestServer(b *Bridge) *echo.Echo {
	e := echo.New()
	e.Use(echosession.Middleware(NewStore(testKey, false)))
	e.Use(b.Middleware())

	e.POST("/login", func(c echo.Context) error {
		id, err := b.SignIn(c, c.FormValue("email"), c.FormValue("password"))
		if err != nil {
			return c.String(http.StatusUnauthorized, Current(c).String())
		}
		return c.String(http.StatusOK, id.Name)
	})
	e.POST("/logout", func(c echo.Context) error {
		if err := b.SignOut(c); err != nil {
			return err
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/farm", func(c echo.Context) error {
		return c.String(http.StatusOK, IdentityFrom(c).Name+"|"+apiclient.TokenFrom(c.Request().Context()))
	}, RequireRole(domain.RoleFarmer))
	e.GET("/office", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, RequireRole(domain.RoleEmployee))
	e.GET("/rejected", func(c echo.Context) error {
		return b.HandleAPIError(c, &apiclient.Error{Status: http.StatusUnauthorized})
	})
	return e
}

func serve(e *echo.Echo, method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func signedInBridge(t *testing.T) (*Bridge, string) {
	t.Helper()
	raw := issue(t, domain.RoleFarmer)
	api := &stubAPI{
		loginFn: func(ctx context.Context, email, password string) (*apiclient.LoginResponse, error) {
			return &apiclient.LoginResponse{Token: raw, UserID: "u-1"}, nil
		},
		meFn: func(ctx context.Context) (*apiclient.User, error) {
			if apiclient.TokenFrom(ctx) != raw {
				t.Errorf("Me called without the fresh token")
			}
			return &apiclient.User{ID: "u-1", Email: "farmer@agrienergy.com", FirstName: "Ana", LastName: "Lee", Role: "Farmer"}, nil
		},
	}
	return NewBridge(api, true, zerolog.Nop()), raw
}

func TestSignIn_WritesSessionAndTokenCookie(t *testing.T) {
	b, raw := signedInBridge(t)
	e := newTestServer(b)

	rec := serve(e, http.MethodPost, "/login", url.Values{"email": {"farmer@agrienergy.com"}, "password": {"x"}}, nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "Ana Lee" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	if findCookie(cookies, Name) == nil {
		t.Fatal("session cookie not written")
	}
	tc := findCookie(cookies, TokenCookie)
	if tc == nil {
		t.Fatal("AuthToken cookie not written")
	}
	if tc.Value != raw || !tc.HttpOnly || !tc.Secure || tc.SameSite != http.SameSiteStrictMode || tc.Path != "/" {
		t.Fatalf("unexpected AuthToken cookie %+v", tc)
	}
	if tc.Expires.IsZero() || time.Until(tc.Expires) > time.Hour+time.Minute {
		t.Fatalf("AuthToken expiry should follow the token, got %v", tc.Expires)
	}
}

func TestSignIn_DisplayNameFallsBackToSubject(t *testing.T) {
	raw := issue(t, domain.RoleFarmer)
	api := &stubAPI{loginFn: func(ctx context.Context, email, password string) (*apiclient.LoginResponse, error) {
		return &apiclient.LoginResponse{Token: raw, UserID: "u-1"}, nil
	}}
	e := newTestServer(NewBridge(api, false, zerolog.Nop()))

	rec := serve(e, http.MethodPost, "/login", url.Values{}, nil)
	if rec.Body.String() != "farmer@agrienergy.com" {
		t.Fatalf("expected subject as name, got %q", rec.Body.String())
	}
}

func TestSignIn_FailureStaysAnonymous(t *testing.T) {
	api := &stubAPI{loginFn: func(ctx context.Context, email, password string) (*apiclient.LoginResponse, error) {
		return nil, &apiclient.Error{Status: http.StatusUnauthorized, Message: "invalid credentials"}
	}}
	e := newTestServer(NewBridge(api, false, zerolog.Nop()))

	rec := serve(e, http.MethodPost, "/login", url.Values{}, nil)
	if rec.Code != http.StatusUnauthorized || rec.Body.String() != "anonymous" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
	if findCookie(rec.Result().Cookies(), TokenCookie) != nil {
		t.Fatal("no cookie expected on failed sign in")
	}
}

func TestSignIn_RejectsMalformedToken(t *testing.T) {
	api := &stubAPI{loginFn: func(ctx context.Context, email, password string) (*apiclient.LoginResponse, error) {
		return &apiclient.LoginResponse{Token: "not-a-jwt", UserID: "u-1"}, nil
	}}
	e := newTestServer(NewBridge(api, false, zerolog.Nop()))

	rec := serve(e, http.MethodPost, "/login", url.Values{}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected failure, got %d", rec.Code)
	}
}

func TestMiddleware_AttachesTokenAndIdentity(t *testing.T) {
	b, raw := signedInBridge(t)
	e := newTestServer(b)
	login := serve(e, http.MethodPost, "/login", url.Values{}, nil)

	rec := serve(e, http.MethodGet, "/farm", nil, login.Result().Cookies())
	if rec.Code != http.StatusOK || rec.Body.String() != "Ana Lee|"+raw {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
	}
}

func TestRequireRole_Redirects(t *testing.T) {
	b, _ := signedInBridge(t)
	e := newTestServer(b)

	rec := serve(e, http.MethodGet, "/farm?x=1", nil, nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != LoginPath+"?returnUrl="+url.QueryEscape("/farm?x=1") {
		t.Fatalf("anonymous: unexpected %d %q", rec.Code, rec.Header().Get("Location"))
	}

	login := serve(e, http.MethodPost, "/login", url.Values{}, nil)
	rec = serve(e, http.MethodGet, "/office", nil, login.Result().Cookies())
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != AccessDeniedPath {
		t.Fatalf("wrong role: unexpected %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestMiddleware_ExpiredIdentityIsCleared(t *testing.T) {
	b, _ := signedInBridge(t)
	e := newTestServer(b)
	login := serve(e, http.MethodPost, "/login", url.Values{}, nil)

	b.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	rec := serve(e, http.MethodGet, "/farm", nil, login.Result().Cookies())
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), LoginPath) {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	tc := findCookie(rec.Result().Cookies(), TokenCookie)
	if tc == nil || tc.MaxAge >= 0 {
		t.Fatalf("expected AuthToken to be deleted, got %+v", tc)
	}
}

func TestSignOut_ClearsCookies(t *testing.T) {
	b, _ := signedInBridge(t)
	e := newTestServer(b)
	login := serve(e, http.MethodPost, "/login", url.Values{}, nil)

	rec := serve(e, http.MethodPost, "/logout", url.Values{}, login.Result().Cookies())
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	for _, name := range []string{Name, TokenCookie} {
		ck := findCookie(rec.Result().Cookies(), name)
		if ck == nil || ck.MaxAge >= 0 {
			t.Fatalf("expected %s to be deleted, got %+v", name, ck)
		}
	}
}

func TestHandleAPIError_UnauthorizedSignsOut(t *testing.T) {
	b, _ := signedInBridge(t)
	e := newTestServer(b)
	login := serve(e, http.MethodPost, "/login", url.Values{}, nil)

	rec := serve(e, http.MethodGet, "/rejected", nil, login.Result().Cookies())
	if rec.Code != http.StatusFound || !strings.HasPrefix(rec.Header().Get("Location"), LoginPath) {
		t.Fatalf("expected redirect to login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	if ck := findCookie(rec.Result().Cookies(), TokenCookie); ck == nil || ck.MaxAge >= 0 {
		t.Fatalf("expected AuthToken to be deleted, got %+v", ck)
	}
}

func TestLandingPath(t *testing.T) {
	tests := map[domain.Role]string{
		domain.RoleFarmer:   "/Farmer",
		domain.RoleEmployee: "/Employee",
		"":                  "/",
	}
	for role, want := range tests {
		if got := LandingPath(role); got != want {
			t.Errorf("LandingPath(%q) = %q, want %q", role, got, want)
		}
	}
}

func TestState_String(t *testing.T) {
	if Authenticating.String() != "authenticating" || Anonymous.String() != "anonymous" || Authenticated.String() != "authenticated" {
		t.Fatal("unexpected state names")
	}
}
