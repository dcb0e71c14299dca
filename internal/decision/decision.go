package decision

import (
	"context"
	"errors"
)

// Decision is the engine's answer for one request.
type Decision struct {
	Allowed bool
	Reason  string
}

type Authorizer interface {
	Check(ctx context.Context, q Query) (Decision, error)
}

// ErrUnavailable marks a round trip that produced no usable answer:
// engine unreachable, timed out, non-2xx status, or a body missing
// the result field. Callers must resolve it to a deny, never a
// default allow.
var ErrUnavailable = errors.New("decision engine unavailable")
