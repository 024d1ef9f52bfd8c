// Package token issues and verifies the bearer tokens exchanged between the
// web tier and the API tier.
//
// Tokens are HS256 JWTs carrying exactly three application claims (sub, uid,
// role) plus iss, aud and exp. They are stateless: there is no revocation list
// and no refresh, a token is valid until it expires.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrienergy/connect/internal/core/domain"
)

var (
	ErrInvalid = errors.New("invalid token")
	ErrExpired = errors.New("token expired")
)

// Config is built once at startup and shared read-only by the issuer and the
// verifier.
type Config struct {
	Key      []byte
	Issuer   string
	Audience string
	Lifetime time.Duration
}

func (c Config) clone() Config {
	key := make([]byte, len(c.Key))
	copy(key, c.Key)
	c.Key = key
	return c
}

// Claims is the token payload.
type Claims struct {
	UserID string `json:"uid"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParsedRole returns the role claim parsed into the closed enumeration.
func (c *Claims) ParsedRole() (domain.Role, error) {
	return domain.ParseRole(c.Role)
}

// Expiry returns the exp claim, or the zero time when absent.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

func (c *Claims) check() error {
	if c.Subject == "" {
		return fmt.Errorf("%w: missing sub", ErrInvalid)
	}
	if c.UserID == "" {
		return fmt.Errorf("%w: missing uid", ErrInvalid)
	}
	if c.ExpiresAt == nil {
		return fmt.Errorf("%w: missing exp", ErrInvalid)
	}
	if _, err := c.ParsedRole(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Issuer signs tokens for authenticated principals.
type Issuer struct {
	cfg Config
	now func() time.Time
}

func NewIssuer(cfg Config) *Issuer {
	return &Issuer{cfg: cfg.clone(), now: time.Now}
}

// Issue returns a signed token for the principal and its expiry. The caller
// is responsible for having verified the credentials.
func (i *Issuer) Issue(subject, userID string, role domain.Role) (string, time.Time, error) {
	if subject == "" || userID == "" {
		return "", time.Time{}, fmt.Errorf("issue token: subject and user id are required")
	}
	if !role.Valid() {
		return "", time.Time{}, fmt.Errorf("issue token: %w: %q", domain.ErrUnknownRole, role)
	}

	exp := i.now().Add(i.cfg.Lifetime).UTC()
	claims := &Claims{
		UserID: userID,
		Role:   string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    i.cfg.Issuer,
			Audience:  jwt.ClaimStrings{i.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.cfg.Key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, exp, nil
}

// Verifier validates inbound bearer tokens.
type Verifier struct {
	cfg    Config
	parser *jwt.Parser
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		cfg: cfg.clone(),
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithIssuer(cfg.Issuer),
			jwt.WithAudience(cfg.Audience),
			jwt.WithExpirationRequired(),
		),
	}
}

// Verify checks signature, issuer, audience and expiry, then the claim shape.
func (v *Verifier) Verify(raw string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := v.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return v.cfg.Key, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalid
	}
	if err := claims.check(); err != nil {
		return nil, err
	}
	return claims, nil
}

// ParseUnverified decodes a token payload without checking the signature.
// The web tier uses it to read claims from a token it just received from the
// API over a trusted channel; it never authorizes anything against the API
// with the result. Missing claims, unknown roles and expired tokens fail.
func ParseUnverified(raw string, now time.Time) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := claims.check(); err != nil {
		return nil, err
	}
	if !now.Before(claims.ExpiresAt.Time) {
		return nil, ErrExpired
	}
	return claims, nil
}
