package policy

import (
	"bytes"
	"encoding/json"
	"testing"
)

const arn = "arn:aws:execute-api:us-east-1:123456789012:abcdef123/test/GET/user/alice"

func TestSynthesize_Allow(t *testing.T) {
	doc := Synthesize(Allow, arn, "alice")

	if doc.PrincipalID != "alice" {
		t.Fatalf("principalId = %q, want alice", doc.PrincipalID)
	}
	if doc.PolicyDocument.Version != "2012-10-17" {
		t.Fatalf("version = %q", doc.PolicyDocument.Version)
	}
	if len(doc.PolicyDocument.Statement) != 1 {
		t.Fatalf("statements = %d, want 1", len(doc.PolicyDocument.Statement))
	}
	st := doc.PolicyDocument.Statement[0]
	if st.Effect != Allow {
		t.Fatalf("effect = %q, want Allow", st.Effect)
	}
	if st.Action != "execute-api:Invoke" {
		t.Fatalf("action = %q", st.Action)
	}
	if st.Resource != arn {
		t.Fatalf("resource = %q", st.Resource)
	}
}

func TestSynthesize_Deny(t *testing.T) {
	doc := Synthesize(Deny, arn, "bob")
	if doc.PolicyDocument.Statement[0].Effect != Deny {
		t.Fatalf("effect = %q, want Deny", doc.PolicyDocument.Statement[0].Effect)
	}
	if doc.PrincipalID != "bob" {
		t.Fatalf("principalId = %q, want bob", doc.PrincipalID)
	}
}

func TestSynthesize_Idempotent(t *testing.T) {
	a, err := json.Marshal(Synthesize(Allow, arn, "alice"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(Synthesize(Allow, arn, "alice"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("identical inputs produced different bytes:\n%s\n%s", a, b)
	}
}

func TestSynthesize_WireShape(t *testing.T) {
	raw, err := json.Marshal(Synthesize(Deny, arn, "bob"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["principalId"] != "bob" {
		t.Fatalf("principalId key missing or wrong: %v", m)
	}
	pd, ok := m["policyDocument"].(map[string]any)
	if !ok {
		t.Fatalf("policyDocument missing: %v", m)
	}
	if pd["Version"] != "2012-10-17" {
		t.Fatalf("Version = %v", pd["Version"])
	}
	sts, ok := pd["Statement"].([]any)
	if !ok || len(sts) != 1 {
		t.Fatalf("Statement = %v", pd["Statement"])
	}
	st := sts[0].(map[string]any)
	if st["Effect"] != "Deny" || st["Action"] != "execute-api:Invoke" || st["Resource"] != arn {
		t.Fatalf("statement = %v", st)
	}
}

func TestEffectFor(t *testing.T) {
	if EffectFor(true) != Allow {
		t.Fatalf("EffectFor(true) != Allow")
	}
	if EffectFor(false) != Deny {
		t.Fatalf("EffectFor(false) != Deny")
	}
}
