package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Silverbook/pep-go/internal/claims"
	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/httpx"
	"github.com/Silverbook/pep-go/internal/metrics"
	"github.com/Silverbook/pep-go/internal/policy"
	"github.com/Silverbook/pep-go/internal/trace"
)

// AuthorizeEvent mirrors the invocation shape a REQUEST authorizer
// receives from the invoking gateway.
type AuthorizeEvent struct {
	Type       string            `json:"type,omitempty"`
	MethodArn  string            `json:"methodArn"`
	HTTPMethod string            `json:"httpMethod"`
	Path       string            `json:"path"`
	Headers    map[string]string `json:"headers"`
}

type AuthorizeHandler struct {
	Authorizer decision.Authorizer
	Metrics    *metrics.Metrics
}

func NewAuthorizeHandler(a decision.Authorizer, m *metrics.Metrics) *AuthorizeHandler {
	return &AuthorizeHandler{Authorizer: a, Metrics: m}
}

// ServeHTTP decodes the bearer credential, builds the decision query,
// asks the engine, and answers with an enforcement document. Denial
// is decision content: the response is 200 with a Deny statement.
// Only a missing or unparseable credential is a transport-level 401.
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var ev AuthorizeEvent
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	c, ok := claims.Decode(authHeader(ev.Headers))
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid credential")
		return
	}

	q, err := decision.BuildQuery(ev.HTTPMethod, ev.Path, c)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid credential")
		return
	}

	start := time.Now()
	d, err := h.Authorizer.Check(r.Context(), q)
	if err != nil {
		if r.Context().Err() != nil {
			// Caller went away; no enforcement document.
			return
		}
		// Fail closed: an unavailable engine is a deny.
		slog.Warn("decision_unavailable",
			"trace", trace.From(r.Context()),
			"err", httpx.SafeErrMsg(err),
		)
		d = decision.Decision{Allowed: false, Reason: "decision_unavailable"}
	}
	h.Metrics.ObserveDecision(d.Allowed, time.Since(start))

	doc := policy.Synthesize(policy.EffectFor(d.Allowed), ev.MethodArn, c.Subject)
	httpx.WriteJSON(w, http.StatusOK, doc)
}

// authHeader tolerates either header casing, matching what gateways
// actually send.
func authHeader(headers map[string]string) string {
	if v, ok := headers["authorization"]; ok {
		return v
	}
	return headers["Authorization"]
}
