package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/Silverbook/pep-go/internal/dnc"
	"github.com/Silverbook/pep-go/internal/httpx"
	"github.com/Silverbook/pep-go/internal/metrics"
)

// DNCHandler exposes the compliance evaluator under the decision
// engine's request/response contract: the input arrives under a
// single input field, the answer leaves under a single result field.
type DNCHandler struct {
	Eval    *dnc.Evaluator
	Metrics *metrics.Metrics
}

func NewDNCHandler(e *dnc.Evaluator, m *metrics.Metrics) *DNCHandler {
	return &DNCHandler{Eval: e, Metrics: m}
}

type dncRequest struct {
	Input struct {
		Expert  dnc.Expert  `json:"expert"`
		Project dnc.Project `json:"project"`
	} `json:"input"`
}

func (h *DNCHandler) decode(w http.ResponseWriter, r *http.Request) (dncRequest, bool) {
	var req dncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid JSON")
		return req, false
	}
	return req, true
}

func (h *DNCHandler) CanContact(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	v := h.Eval.Evaluate(req.Input.Expert, req.Input.Project)
	h.observe(v)
	httpx.WriteResult(w, v.CanContact)
}

func (h *DNCHandler) DecisionDetails(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	v := h.Eval.Evaluate(req.Input.Expert, req.Input.Project)
	h.observe(v)
	httpx.WriteResult(w, v)
}

func (h *DNCHandler) BlockedCompany(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if entry, hit := h.Eval.CheckCompany(req.Input.Expert); hit {
		httpx.WriteResult(w, entry)
		return
	}
	httpx.WriteResult(w, nil)
}

func (h *DNCHandler) BlockedCountry(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	if entry, hit := h.Eval.CheckCountry(req.Input.Expert); hit {
		httpx.WriteResult(w, entry)
		return
	}
	httpx.WriteResult(w, nil)
}

func (h *DNCHandler) InputIsValid(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}
	httpx.WriteResult(w, h.Eval.Validate(req.Input.Expert, req.Input.Project))
}

func (h *DNCHandler) observe(v dnc.Verdict) {
	switch {
	case v.CanContact:
		h.Metrics.ObserveEvaluation("clear")
	case !v.Checks[dnc.CheckValidityName]:
		h.Metrics.ObserveEvaluation("invalid")
	default:
		h.Metrics.ObserveEvaluation("blocked")
	}
}
