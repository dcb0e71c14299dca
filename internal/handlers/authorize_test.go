package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/policy"
)

const methodArn = "arn:aws:execute-api:us-east-1:123456789012:abcdef123/test/GET/user/alice"

// ruleTable mimics the engine's documented rule set: self-access on
// GET user/<id>, admin elevation, default deny.
type ruleTable struct {
	lastQuery decision.Query
}

func (rt *ruleTable) Check(ctx context.Context, q decision.Query) (decision.Decision, error) {
	rt.lastQuery = q
	for _, role := range q.Token.Payload.Roles {
		if role == "admin" {
			return decision.Decision{Allowed: true}, nil
		}
	}
	if q.Method == http.MethodGet && len(q.Path) == 2 && q.Path[0] == "user" && q.Path[1] == q.Token.Payload.Sub {
		return decision.Decision{Allowed: true}, nil
	}
	return decision.Decision{Allowed: false, Reason: "policy_denied"}, nil
}

type failingAuthorizer struct{}

func (failingAuthorizer) Check(ctx context.Context, q decision.Query) (decision.Decision, error) {
	return decision.Decision{}, decision.ErrUnavailable
}

func token(t *testing.T, sub string, roles ...string) string {
	t.Helper()
	mc := jwt.MapClaims{"sub": sub, "roles": roles, "iat": float64(1700000000)}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + s
}

func invoke(t *testing.T, a decision.Authorizer, ev AuthorizeEvent) *httptest.ResponseRecorder {
	t.Helper()
	h := NewAuthorizeHandler(a, nil)
	body, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/authorize", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeDoc(t *testing.T, rr *httptest.ResponseRecorder) policy.EnforcementDocument {
	t.Helper()
	var doc policy.EnforcementDocument
	if err := json.NewDecoder(rr.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc
}

func event(auth, method, path string) AuthorizeEvent {
	return AuthorizeEvent{
		Type:       "REQUEST",
		MethodArn:  methodArn,
		HTTPMethod: method,
		Path:       path,
		Headers:    map[string]string{"authorization": auth},
	}
}

func TestAuthorize_SelfAccessAllowed(t *testing.T) {
	rt := &ruleTable{}
	rr := invoke(t, rt, event(token(t, "alice", "user"), http.MethodGet, "/user/alice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	doc := decodeDoc(t, rr)
	if doc.PrincipalID != "alice" {
		t.Fatalf("principalId = %q", doc.PrincipalID)
	}
	if doc.PolicyDocument.Statement[0].Effect != policy.Allow {
		t.Fatalf("effect = %q, want Allow", doc.PolicyDocument.Statement[0].Effect)
	}
	if doc.PolicyDocument.Statement[0].Resource != methodArn {
		t.Fatalf("resource = %q", doc.PolicyDocument.Statement[0].Resource)
	}
}

// Denial is decision content, not transport status: still a 200, but
// with a Deny statement.
func TestAuthorize_OtherUserDenied(t *testing.T) {
	rt := &ruleTable{}
	rr := invoke(t, rt, event(token(t, "bob", "user"), http.MethodGet, "/user/alice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	doc := decodeDoc(t, rr)
	if doc.PrincipalID != "bob" {
		t.Fatalf("principalId = %q", doc.PrincipalID)
	}
	if doc.PolicyDocument.Statement[0].Effect != policy.Deny {
		t.Fatalf("effect = %q, want Deny", doc.PolicyDocument.Statement[0].Effect)
	}
}

func TestAuthorize_AdminAllowedAnywhere(t *testing.T) {
	rt := &ruleTable{}
	rr := invoke(t, rt, event(token(t, "admin", "admin"), http.MethodGet, "/user/alice"))

	doc := decodeDoc(t, rr)
	if doc.PolicyDocument.Statement[0].Effect != policy.Allow {
		t.Fatalf("effect = %q, want Allow for admin", doc.PolicyDocument.Statement[0].Effect)
	}
}

func TestAuthorize_WriteMethodDeniedOnSelfPath(t *testing.T) {
	rt := &ruleTable{}
	rr := invoke(t, rt, event(token(t, "alice", "user"), http.MethodPost, "/user/alice"))

	doc := decodeDoc(t, rr)
	if doc.PolicyDocument.Statement[0].Effect != policy.Deny {
		t.Fatalf("effect = %q, want Deny for non-read method", doc.PolicyDocument.Statement[0].Effect)
	}
}

func TestAuthorize_MissingCredential(t *testing.T) {
	rt := &ruleTable{}
	cases := []struct {
		name string
		auth string
	}{
		{"no header", ""},
		{"not a bearer", "Basic abc"},
		{"garbage token", "Bearer not.a.jwt!"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ev := event(tc.auth, http.MethodGet, "/user/alice")
			if tc.auth == "" {
				ev.Headers = map[string]string{}
			}
			rr := invoke(t, rt, ev)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", rr.Code)
			}
		})
	}
}

func TestAuthorize_EngineUnavailableFailsClosed(t *testing.T) {
	rr := invoke(t, failingAuthorizer{}, event(token(t, "admin", "admin"), http.MethodGet, "/user/alice"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	doc := decodeDoc(t, rr)
	if doc.PolicyDocument.Statement[0].Effect != policy.Deny {
		t.Fatalf("unavailable engine must deny, got %q", doc.PolicyDocument.Statement[0].Effect)
	}
}

func TestAuthorize_QueryShapeTransmitted(t *testing.T) {
	rt := &ruleTable{}
	invoke(t, rt, event(token(t, "alice", "user", "analyst"), http.MethodGet, "/user/alice"))

	q := rt.lastQuery
	if q.UserID != "alice" || q.Token.Payload.Sub != "alice" {
		t.Fatalf("query = %+v", q)
	}
	if len(q.Token.Payload.Roles) != 2 {
		t.Fatalf("roles must pass through verbatim, got %v", q.Token.Payload.Roles)
	}
	if len(q.Path) != 2 || q.Path[0] != "user" {
		t.Fatalf("path = %v", q.Path)
	}
}

func TestAuthorize_BadJSON(t *testing.T) {
	h := NewAuthorizeHandler(&ruleTable{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/authorize", bytes.NewReader([]byte("{")))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestAuthorize_ErrorsAreErrUnavailable(t *testing.T) {
	_, err := failingAuthorizer{}.Check(context.Background(), decision.Query{})
	if !errors.Is(err, decision.ErrUnavailable) {
		t.Fatalf("stub must return ErrUnavailable")
	}
}
