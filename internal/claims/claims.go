package claims

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

const bearerPrefix = "Bearer "

// UnverifiedClaims holds claims read straight out of a bearer token
// without checking its signature or expiry. Values of this type are
// advisory input for the decision engine, which owns the allow/deny
// call. A future verifying decoder gets its own type, so an
// unverified value can never satisfy a verified-claims call site.
type UnverifiedClaims struct {
	Subject   string
	Roles     []string
	IssuedAt  int64
	ExpiresAt int64
}

func (c *UnverifiedClaims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Decode reads the payload of a bearer credential from a raw
// Authorization header value. A missing Bearer prefix or a token that
// does not parse as a three-part JWT yields (nil, false); that is the
// normal unauthenticated outcome, not an error.
func Decode(rawHeader string) (*UnverifiedClaims, bool) {
	if !strings.HasPrefix(rawHeader, bearerPrefix) {
		return nil, false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(rawHeader, bearerPrefix))
	if raw == "" {
		return nil, false
	}

	tok, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return nil, false
	}
	mc, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}

	out := &UnverifiedClaims{}
	if sub, ok := mc["sub"].(string); ok {
		out.Subject = sub
	}
	if roles, ok := mc["roles"].([]any); ok {
		for _, r := range roles {
			if s, ok := r.(string); ok {
				out.Roles = append(out.Roles, s)
			}
		}
	}
	if iat, ok := mc["iat"].(float64); ok {
		out.IssuedAt = int64(iat)
	}
	if exp, ok := mc["exp"].(float64); ok {
		out.ExpiresAt = int64(exp)
	}
	return out, true
}
