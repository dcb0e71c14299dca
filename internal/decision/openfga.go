package decision

import (
	"context"
	"fmt"
	"strings"

	fga "github.com/openfga/go-sdk/client"
)

// OpenFGA is an alternate decision backend for deployments that keep
// their rule table in an OpenFGA store instead of OPA. The query maps
// onto a relationship check: subject -> lowercased method -> route
// object.
type OpenFGA struct {
	c       *fga.OpenFgaClient
	modelID string
}

type OpenFGAConfig struct {
	APIURL  string
	StoreID string
	ModelID string // optional but recommended in prod
}

func NewOpenFGA(cfg OpenFGAConfig) (*OpenFGA, error) {
	conf := &fga.ClientConfiguration{
		ApiUrl:  cfg.APIURL,
		StoreId: cfg.StoreID,
	}
	if cfg.ModelID != "" {
		conf.AuthorizationModelId = cfg.ModelID
	}

	client, err := fga.NewSdkClient(conf)
	if err != nil {
		return nil, fmt.Errorf("openfga_client_init: %w", err)
	}
	return &OpenFGA{c: client, modelID: cfg.ModelID}, nil
}

func (o *OpenFGA) Check(ctx context.Context, q Query) (Decision, error) {
	checkReq := fga.ClientCheckRequest{
		User:     "user:" + q.UserID,
		Relation: strings.ToLower(q.Method),
		Object:   "route:" + strings.Join(q.Path, "/"),
	}

	resp, err := o.c.Check(ctx).Body(checkReq).Execute()
	if err != nil {
		return Decision{Allowed: false, Reason: "decision_unavailable"},
			fmt.Errorf("%w: fga check: %v", ErrUnavailable, err)
	}

	if resp.Allowed != nil && *resp.Allowed {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, Reason: "policy_denied"}, nil
}
