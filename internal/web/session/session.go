// Package session bridges the web tier's cookie session to the API's bearer
// tokens.
//
// A principal moves Anonymous → Authenticating → Authenticated on SignIn and
// back to Anonymous on SignOut, on expiry, or when the API rejects its token.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/sessions"
	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agrienergy/connect/internal/core/domain"
	"github.com/agrienergy/connect/internal/pkg/token"
	"github.com/agrienergy/connect/internal/web/apiclient"
)

const (
	// Name is the gorilla session cookie name.
	Name = "agrienergy_session"
	// TokenCookie holds the raw bearer token and nothing else.
	TokenCookie = "AuthToken"

	LoginPath        = "/Account/Login"
	AccessDeniedPath = "/Account/AccessDenied"

	ctxIdentity = "session.identity"
	ctxState    = "session.state"
)

// session value keys
const (
	keyUserID  = "uid"
	keySubject = "sub"
	keyRole    = "role"
	keyName    = "name"
	keyToken   = "token"
	keyExpiry  = "exp"
)

type State int

const (
	Anonymous State = iota
	Authenticating
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Identity is the signed-in principal as seen by the web tier.
type Identity struct {
	UserID    string
	Subject   string
	Role      domain.Role
	Name      string
	Token     string
	ExpiresAt time.Time
}

func (i *Identity) HasRole(roles ...domain.Role) bool {
	if i == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if i.Role == r {
			return true
		}
	}
	return false
}

func (i *Identity) IsFarmer() bool   { return i.HasRole(domain.RoleFarmer) }
func (i *Identity) IsEmployee() bool { return i.HasRole(domain.RoleEmployee) }

// Authenticator is the slice of the API client the bridge needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*apiclient.LoginResponse, error)
	Me(ctx context.Context) (*apiclient.User, error)
}

type Bridge struct {
	api    Authenticator
	secure bool
	now    func() time.Time
	log    zerolog.Logger
}

// NewBridge builds a bridge. secure=false allows cookies over plain HTTP for
// local development.
func NewBridge(api Authenticator, secure bool, log zerolog.Logger) *Bridge {
	return &Bridge{api: api, secure: secure, now: time.Now, log: log}
}

// NewStore returns the cookie store backing the gorilla session.
func NewStore(key []byte, secure bool) *sessions.CookieStore {
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteStrictMode,
	}
	return store
}

// SignIn forwards the credentials to the API and, on success, establishes the
// session and the token cookie. On failure the principal stays Anonymous and
// the API error is returned unchanged.
func (b *Bridge) SignIn(c echo.Context, email, password string) (*Identity, error) {
	c.Set(ctxState, Authenticating)
	ctx := c.Request().Context()

	res, err := b.api.Login(ctx, email, password)
	if err != nil {
		c.Set(ctxState, Anonymous)
		return nil, err
	}

	claims, err := token.ParseUnverified(res.Token, b.now())
	if err != nil {
		c.Set(ctxState, Anonymous)
		return nil, fmt.Errorf("sign in: %w", err)
	}
	role, _ := claims.ParsedRole()

	id := &Identity{
		UserID:    claims.UserID,
		Subject:   claims.Subject,
		Role:      role,
		Name:      claims.Subject,
		Token:     res.Token,
		ExpiresAt: claims.Expiry(),
	}
	if me, err := b.api.Me(apiclient.WithToken(ctx, res.Token)); err == nil {
		id.Name = me.DisplayName()
	} else {
		b.log.Warn().Err(err).Str("user_id", id.UserID).Msg("display name lookup failed")
	}

	if err := b.write(c, id); err != nil {
		c.Set(ctxState, Anonymous)
		return nil, err
	}

	c.Set(ctxIdentity, id)
	c.Set(ctxState, Authenticated)
	b.log.Info().Str("user_id", id.UserID).Str("role", string(id.Role)).Msg("signed in")
	return id, nil
}

// SignOut clears the session and the token cookie.
func (b *Bridge) SignOut(c echo.Context) error {
	if id := IdentityFrom(c); id != nil {
		b.log.Info().Str("user_id", id.UserID).Msg("signed out")
	}
	c.Set(ctxIdentity, nil)
	c.Set(ctxState, Anonymous)
	return b.clear(c)
}

// Middleware loads the identity from the session and puts the AuthToken
// cookie on the request context for outbound API calls. An expired identity
// is cleared.
func (b *Bridge) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := b.read(c)
			if err != nil {
				b.log.Debug().Err(err).Msg("discarding unreadable session")
			}

			drop := err != nil || (id != nil && !b.now().Before(id.ExpiresAt))
			if drop {
				if clearErr := b.clear(c); clearErr != nil {
					return clearErr
				}
				id = nil
			}

			if id != nil {
				c.Set(ctxIdentity, id)
				c.Set(ctxState, Authenticated)
			} else {
				c.Set(ctxState, Anonymous)
			}

			if !drop {
				if ck, err := c.Cookie(TokenCookie); err == nil && ck.Value != "" {
					req := c.Request()
					c.SetRequest(req.WithContext(apiclient.WithToken(req.Context(), ck.Value)))
				}
			}
			return next(c)
		}
	}
}

// HandleAPIError turns an API rejection into the matching redirect. A 401
// signs the principal out and sends them to the login page. Errors it does
// not recognise are returned unchanged.
func (b *Bridge) HandleAPIError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, apiclient.ErrUnauthorized):
		if signOutErr := b.SignOut(c); signOutErr != nil {
			return signOutErr
		}
		return c.Redirect(http.StatusFound, loginURL(c))
	case errors.Is(err, apiclient.ErrForbidden):
		return c.Redirect(http.StatusFound, AccessDeniedPath)
	case errors.Is(err, apiclient.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	}
	return err
}

// IdentityFrom returns the signed-in principal, or nil when anonymous.
func IdentityFrom(c echo.Context) *Identity {
	id, _ := c.Get(ctxIdentity).(*Identity)
	return id
}

// Current reports the principal's position in the sign-in state machine.
func Current(c echo.Context) State {
	if s, ok := c.Get(ctxState).(State); ok {
		return s
	}
	if IdentityFrom(c) != nil {
		return Authenticated
	}
	return Anonymous
}

// RequireRole redirects anonymous users to the login page and users without
// one of roles to the access denied page. No roles means any signed-in user.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFrom(c)
			if id == nil {
				return c.Redirect(http.StatusFound, loginURL(c))
			}
			if !id.HasRole(roles...) {
				return c.Redirect(http.StatusFound, AccessDeniedPath)
			}
			return next(c)
		}
	}
}

// LandingPath is where a principal goes after signing in.
func LandingPath(role domain.Role) string {
	switch role {
	case domain.RoleFarmer:
		return "/Farmer"
	case domain.RoleEmployee:
		return "/Employee"
	default:
		return "/"
	}
}

func loginURL(c echo.Context) string {
	req := c.Request()
	if req.Method != http.MethodGet {
		return LoginPath
	}
	return LoginPath + "?returnUrl=" + url.QueryEscape(req.URL.RequestURI())
}

func (b *Bridge) write(c echo.Context, id *Identity) error {
	sess, err := echosession.Get(Name, c)
	if err != nil && sess == nil {
		return fmt.Errorf("session: %w", err)
	}

	maxAge := int(id.ExpiresAt.Sub(b.now()).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}
	opts := *sess.Options
	opts.MaxAge = maxAge
	sess.Options = &opts

	sess.Values[keyUserID] = id.UserID
	sess.Values[keySubject] = id.Subject
	sess.Values[keyRole] = string(id.Role)
	sess.Values[keyName] = id.Name
	sess.Values[keyToken] = id.Token
	sess.Values[keyExpiry] = id.ExpiresAt.Unix()
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return fmt.Errorf("session: save: %w", err)
	}

	c.SetCookie(b.tokenCookie(id.Token, id.ExpiresAt))
	return nil
}

// read returns nil without error when no session exists.
func (b *Bridge) read(c echo.Context) (*Identity, error) {
	sess, err := echosession.Get(Name, c)
	if err != nil {
		return nil, fmt.Errorf("session: %w", err)
	}
	if sess.IsNew || len(sess.Values) == 0 {
		return nil, nil
	}

	uid, _ := sess.Values[keyUserID].(string)
	sub, _ := sess.Values[keySubject].(string)
	rawRole, _ := sess.Values[keyRole].(string)
	name, _ := sess.Values[keyName].(string)
	tkn, _ := sess.Values[keyToken].(string)
	exp, _ := sess.Values[keyExpiry].(int64)

	role, err := domain.ParseRole(rawRole)
	if err != nil || uid == "" || sub == "" || exp == 0 {
		return nil, fmt.Errorf("session: incomplete identity")
	}
	return &Identity{
		UserID:    uid,
		Subject:   sub,
		Role:      role,
		Name:      name,
		Token:     tkn,
		ExpiresAt: time.Unix(exp, 0),
	}, nil
}

func (b *Bridge) clear(c echo.Context) error {
	sess, _ := echosession.Get(Name, c)
	if sess != nil && !sess.IsNew {
		opts := *sess.Options
		opts.MaxAge = -1
		sess.Options = &opts
		sess.Values = map[any]any{}
		if err := sess.Save(c.Request(), c.Response()); err != nil {
			return fmt.Errorf("session: clear: %w", err)
		}
	}

	ck := b.tokenCookie("", time.Unix(0, 0))
	ck.MaxAge = -1
	c.SetCookie(ck)
	return nil
}

func (b *Bridge) tokenCookie(value string, expires time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     TokenCookie,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   b.secure,
		SameSite: http.SameSiteStrictMode,
	}
}
