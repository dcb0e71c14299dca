package claims

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, mc jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestDecode_ValidToken(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{
		"sub":   "alice",
		"roles": []string{"user", "analyst"},
		"iat":   float64(1700000000),
		"exp":   float64(1700003600),
	})

	c, ok := Decode("Bearer " + raw)
	if !ok {
		t.Fatalf("expected claims, got absent")
	}
	if c.Subject != "alice" {
		t.Fatalf("subject = %q, want alice", c.Subject)
	}
	if len(c.Roles) != 2 || c.Roles[0] != "user" || c.Roles[1] != "analyst" {
		t.Fatalf("roles = %v", c.Roles)
	}
	if c.IssuedAt != 1700000000 {
		t.Fatalf("iat = %d", c.IssuedAt)
	}
	if c.ExpiresAt != 1700003600 {
		t.Fatalf("exp = %d", c.ExpiresAt)
	}
}

func TestDecode_MissingPrefix(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "alice"})
	if _, ok := Decode(raw); ok {
		t.Fatalf("decoded a header without the Bearer prefix")
	}
	if _, ok := Decode(""); ok {
		t.Fatalf("decoded an empty header")
	}
	if _, ok := Decode("Basic dXNlcjpwYXNz"); ok {
		t.Fatalf("decoded a Basic credential")
	}
}

func TestDecode_MalformedToken(t *testing.T) {
	for _, raw := range []string{
		"Bearer ",
		"Bearer not-a-jwt",
		"Bearer a.b",
		"Bearer a.!!!.c",
	} {
		if _, ok := Decode(raw); ok {
			t.Fatalf("decoded malformed credential %q", raw)
		}
	}
}

// Expired tokens still decode; expiry enforcement belongs to the
// decision engine, not the gateway.
func TestDecode_ExpiredTokenStillDecodes(t *testing.T) {
	raw := signedToken(t, jwt.MapClaims{"sub": "bob", "exp": float64(1)})
	c, ok := Decode("Bearer " + raw)
	if !ok {
		t.Fatalf("expected claims from expired token")
	}
	if c.Subject != "bob" || c.ExpiresAt != 1 {
		t.Fatalf("claims = %+v", c)
	}
}

func TestHasRole(t *testing.T) {
	c := &UnverifiedClaims{Roles: []string{"user", "admin"}}
	if !c.HasRole("admin") {
		t.Fatalf("expected admin role")
	}
	if c.HasRole("auditor") {
		t.Fatalf("unexpected auditor role")
	}
}
