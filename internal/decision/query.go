package decision

import (
	"errors"
	"strings"

	"github.com/Silverbook/pep-go/internal/claims"
)

// TokenEnvelope nests decoded claims under token.payload, the shape
// the engine's rules address them by.
type TokenEnvelope struct {
	Payload TokenPayload `json:"payload"`
}

type TokenPayload struct {
	Sub   string   `json:"sub"`
	Roles []string `json:"roles"`
	Iat   int64    `json:"iat,omitempty"`
	Exp   int64    `json:"exp,omitempty"`
}

// Query is the structured input sent to the decision engine. Built
// fresh per request, never mutated afterwards. UserID duplicates the
// token subject at the top level for ease of rule authoring.
type Query struct {
	Method string        `json:"method"`
	Path   []string      `json:"path"`
	Token  TokenEnvelope `json:"token"`
	UserID string        `json:"user_id"`
}

var ErrNoClaims = errors.New("decision query requires decoded claims")

// BuildQuery maps an inbound request onto the engine's input shape.
// The path is split on "/" with the leading empty segment dropped;
// segments are passed through byte-for-byte, the engine compares them
// exactly. An absent credential never reaches the engine: nil claims
// is an error, not an empty query.
func BuildQuery(method, path string, c *claims.UnverifiedClaims) (Query, error) {
	if c == nil {
		return Query{}, ErrNoClaims
	}
	return Query{
		Method: method,
		Path:   strings.Split(strings.TrimPrefix(path, "/"), "/"),
		Token: TokenEnvelope{Payload: TokenPayload{
			Sub:   c.Subject,
			Roles: c.Roles,
			Iat:   c.IssuedAt,
			Exp:   c.ExpiresAt,
		}},
		UserID: c.Subject,
	}, nil
}
