package policy

type Effect string

const (
	Allow Effect = "Allow"
	Deny  Effect = "Deny"
)

const (
	// DocumentVersion is the policy language version the invoking
	// gateway expects.
	DocumentVersion = "2012-10-17"

	// InvokeAction is the single action this gateway authorizes;
	// one resource per request, never multi-action batches.
	InvokeAction = "execute-api:Invoke"
)

type Statement struct {
	Effect   Effect `json:"Effect"`
	Action   string `json:"Action"`
	Resource string `json:"Resource"`
}

type Document struct {
	Version   string      `json:"Version"`
	Statement []Statement `json:"Statement"`
}

// EnforcementDocument is the artifact a gateway acts on: the
// authorized principal plus a single-statement policy document.
type EnforcementDocument struct {
	PrincipalID    string   `json:"principalId"`
	PolicyDocument Document `json:"policyDocument"`
}

func EffectFor(allowed bool) Effect {
	if allowed {
		return Allow
	}
	return Deny
}

// Synthesize builds the enforcement document for one decision. Pure
// construction: identical inputs yield byte-identical output.
func Synthesize(effect Effect, resource, subject string) EnforcementDocument {
	return EnforcementDocument{
		PrincipalID: subject,
		PolicyDocument: Document{
			Version: DocumentVersion,
			Statement: []Statement{{
				Effect:   effect,
				Action:   InvokeAction,
				Resource: resource,
			}},
		},
	}
}
