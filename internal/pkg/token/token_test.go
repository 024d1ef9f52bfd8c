package token

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agrienergy/connect/internal/core/domain"
)

func testConfig() Config {
	return Config{
		Key:      []byte("test-signing-key-with-enough-bytes"),
		Issuer:   "AgriEnergyAPI",
		Audience: "AgriEnergyWeb",
		Lifetime: 3 * time.Hour,
	}
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	cfg := testConfig()
	for _, role := range []domain.Role{domain.RoleFarmer, domain.RoleEmployee} {
		raw, exp, err := NewIssuer(cfg).Issue("alice@example.com", "user-1", role)
		if err != nil {
			t.Fatalf("issue: %v", err)
		}
		if time.Until(exp) <= 2*time.Hour {
			t.Fatalf("unexpected expiry %v", exp)
		}

		claims, err := NewVerifier(cfg).Verify(raw)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		got, err := claims.ParsedRole()
		if err != nil || got != role {
			t.Fatalf("expected role %s, got %s (%v)", role, got, err)
		}
		if claims.Subject != "alice@example.com" || claims.UserID != "user-1" {
			t.Fatalf("unexpected claims: %+v", claims)
		}
	}
}

func TestIssue_PayloadHasOnlyExpectedClaims(t *testing.T) {
	raw, _, err := NewIssuer(testConfig()).Issue("bob@example.com", "user-2", domain.RoleFarmer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, mc); err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]bool{"sub": true, "uid": true, "role": true, "iss": true, "aud": true, "exp": true}
	for k := range mc {
		if !want[k] {
			t.Fatalf("unexpected claim %q in payload", k)
		}
	}
	if len(mc) != len(want) {
		t.Fatalf("expected %d claims, got %d: %v", len(want), len(mc), mc)
	}
}

func TestIssue_RejectsUnknownRole(t *testing.T) {
	_, _, err := NewIssuer(testConfig()).Issue("x@example.com", "id", domain.Role("Admin"))
	if !errors.Is(err, domain.ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	cfg := testConfig()
	iss := NewIssuer(cfg)
	iss.now = func() time.Time { return time.Now().Add(-4 * time.Hour) }

	raw, _, err := iss.Issue("alice@example.com", "user-1", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := NewVerifier(cfg).Verify(raw); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
}

func TestVerify_WrongIssuerAudienceOrKey(t *testing.T) {
	cfg := testConfig()
	raw, _, err := NewIssuer(cfg).Issue("alice@example.com", "user-1", domain.RoleEmployee)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	cases := map[string]func(c *Config){
		"issuer":   func(c *Config) { c.Issuer = "someone-else" },
		"audience": func(c *Config) { c.Audience = "other-app" },
		"key":      func(c *Config) { c.Key = []byte("another-key-of-sufficient-length") },
	}
	for name, mutate := range cases {
		vcfg := testConfig()
		mutate(&vcfg)
		if _, err := NewVerifier(vcfg).Verify(raw); !errors.Is(err, ErrInvalid) {
			t.Fatalf("%s: expected ErrInvalid, got %v", name, err)
		}
	}
}

func TestVerify_RejectsUnknownRoleClaim(t *testing.T) {
	cfg := testConfig()
	claims := &Claims{
		UserID: "user-1",
		Role:   "Admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(cfg.Key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier(cfg).Verify(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerify_RejectsNoneAlgorithm(t *testing.T) {
	cfg := testConfig()
	claims := &Claims{
		UserID: "user-1",
		Role:   string(domain.RoleEmployee),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice@example.com",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := NewVerifier(cfg).Verify(raw); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestVerify_TamperedPayload(t *testing.T) {
	cfg := testConfig()
	raw, _, _ := NewIssuer(cfg).Issue("alice@example.com", "user-1", domain.RoleFarmer)
	parts := strings.Split(raw, ".")
	other, _, _ := NewIssuer(cfg).Issue("mallory@example.com", "user-9", domain.RoleEmployee)
	parts[1] = strings.Split(other, ".")[1]

	if _, err := NewVerifier(cfg).Verify(strings.Join(parts, ".")); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestNewIssuer_CopiesKey(t *testing.T) {
	cfg := testConfig()
	iss := NewIssuer(cfg)
	ver := NewVerifier(cfg)
	cfg.Key[0] ^= 0xFF

	raw, _, err := iss.Issue("alice@example.com", "user-1", domain.RoleFarmer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := ver.Verify(raw); err != nil {
		t.Fatalf("mutating the caller's key must not affect issuer/verifier: %v", err)
	}
}

func TestParseUnverified(t *testing.T) {
	raw, exp, err := NewIssuer(testConfig()).Issue("alice@example.com", "user-1", domain.RoleFarmer)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := ParseUnverified(raw, time.Now())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "alice@example.com" || claims.Expiry().Unix() != exp.Unix() {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := ParseUnverified(raw, exp.Add(time.Second)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}
	if _, err := ParseUnverified("garbage", time.Now()); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}
