package decision

import (
	"encoding/json"

	"github.com/Silverbook/pep-go/internal/dnc"
)

type ResultKind int

const (
	ResultMalformed ResultKind = iota
	ResultBoolean
	ResultDetailed
)

// Result is the engine's loosely structured response decoded into a
// tagged value. Anything that is neither a plain bool nor a
// verdict-shaped object is Malformed, which downstream treats exactly
// like an unavailable engine.
type Result struct {
	Kind    ResultKind
	Allowed bool
	Verdict dnc.Verdict
}

// ParseResult decodes the raw result field defensively, field by
// field, without assuming a shape.
func ParseResult(raw json.RawMessage) Result {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return Result{Kind: ResultBoolean, Allowed: b}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return Result{Kind: ResultMalformed}
	}
	cc, ok := obj["can_contact"]
	if !ok {
		return Result{Kind: ResultMalformed}
	}

	v := dnc.Verdict{Reasons: []string{}, Checks: map[string]bool{}}
	if err := json.Unmarshal(cc, &v.CanContact); err != nil {
		return Result{Kind: ResultMalformed}
	}
	decodeField(obj, "evaluation_id", &v.EvaluationID)
	decodeField(obj, "dnc_reasons", &v.Reasons)
	decodeField(obj, "expert_id", &v.ExpertID)
	decodeField(obj, "project_id", &v.ProjectID)
	decodeField(obj, "project_type", &v.ProjectType)
	decodeField(obj, "checks", &v.Checks)
	decodeField(obj, "timestamp", &v.Timestamp)

	return Result{Kind: ResultDetailed, Allowed: v.CanContact, Verdict: v}
}

func decodeField(obj map[string]json.RawMessage, key string, dst any) {
	if raw, ok := obj[key]; ok {
		_ = json.Unmarshal(raw, dst)
	}
}
