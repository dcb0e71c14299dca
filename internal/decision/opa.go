package decision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Silverbook/pep-go/internal/dnc"
)

const (
	DefaultAllowPath = "/v1/data/policies/allow"
	DefaultDNCPath   = "/v1/data/policies/dnc/decision_details"
)

type OPAConfig struct {
	Endpoint   string        // base URL, e.g. http://localhost:8181
	AllowPath  string        // boolean decision rule, defaults to DefaultAllowPath
	DNCPath    string        // detailed compliance rule, defaults to DefaultDNCPath
	Timeout    time.Duration // per round trip, defaults to 3s
	MaxRetries int           // extra attempts on transport errors; 0 means single shot
}

// OPA queries an OPA-compatible decision engine over its data API.
// Every failure path resolves to ErrUnavailable so callers can only
// fail closed.
type OPA struct {
	cfg  OPAConfig
	http *http.Client
}

func NewOPA(cfg OPAConfig) *OPA {
	if cfg.AllowPath == "" {
		cfg.AllowPath = DefaultAllowPath
	}
	if cfg.DNCPath == "" {
		cfg.DNCPath = DefaultDNCPath
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	return &OPA{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
	}
}

// envelope wraps the query in the single input field the engine
// expects.
type envelope struct {
	Input any `json:"input"`
}

func (o *OPA) Check(ctx context.Context, q Query) (Decision, error) {
	raw, err := o.post(ctx, o.cfg.AllowPath, q)
	if err != nil {
		return Decision{Allowed: false, Reason: "decision_unavailable"}, err
	}
	res := ParseResult(raw)
	if res.Kind != ResultBoolean {
		return Decision{Allowed: false, Reason: "malformed_result"},
			fmt.Errorf("%w: unexpected result shape", ErrUnavailable)
	}
	if res.Allowed {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, Reason: "policy_denied"}, nil
}

// CheckDetailed queries the compliance rule and returns its reasoned
// verdict. Unavailable or malformed responses return an error; the
// caller resolves it to a can_contact=false verdict.
func (o *OPA) CheckDetailed(ctx context.Context, input any) (dnc.Verdict, error) {
	raw, err := o.post(ctx, o.cfg.DNCPath, input)
	if err != nil {
		return dnc.Verdict{}, err
	}
	res := ParseResult(raw)
	if res.Kind != ResultDetailed {
		return dnc.Verdict{}, fmt.Errorf("%w: unexpected result shape", ErrUnavailable)
	}
	return res.Verdict, nil
}

func (o *OPA) post(ctx context.Context, path string, input any) (json.RawMessage, error) {
	body, err := json.Marshal(envelope{Input: input})
	if err != nil {
		return nil, fmt.Errorf("%w: encode input: %v", ErrUnavailable, err)
	}

	var lastErr error
	for attempt := 0; attempt <= o.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(backoff(attempt)):
			}
		}
		raw, err := o.once(ctx, path, body)
		if err == nil {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

func (o *OPA) once(ctx context.Context, path string, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("engine status %d", resp.StatusCode)
	}

	var out struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %v", err)
	}
	if len(out.Result) == 0 {
		return nil, errors.New("response missing result")
	}
	return out.Result, nil
}

// backoff grows exponentially from 100ms and caps at 2s.
func backoff(attempt int) time.Duration {
	d := 100 * time.Millisecond << (attempt - 1)
	if d > 2*time.Second {
		return 2 * time.Second
	}
	return d
}
