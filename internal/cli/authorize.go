package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Silverbook/pep-go/internal/claims"
	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/policy"
)

func cmdAuthorize() *cobra.Command {
	var token, method, path, resource string

	c := &cobra.Command{
		Use:   "authorize",
		Short: "Run one authorization decision against the configured engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			cl, ok := claims.Decode("Bearer " + token)
			if !ok {
				return fmt.Errorf("token does not decode as a JWT")
			}
			q, err := decision.BuildQuery(method, path, cl)
			if err != nil {
				return err
			}

			authorizer, err := buildAuthorizer(cfg)
			if err != nil {
				return err
			}

			d, err := authorizer.Check(cmd.Context(), q)
			if err != nil {
				// Fail closed, but show why the engine gave no answer.
				fmt.Fprintf(cmd.ErrOrStderr(), "decision engine error: %v\n", err)
				d = decision.Decision{Allowed: false, Reason: "decision_unavailable"}
			}

			doc := policy.Synthesize(policy.EffectFor(d.Allowed), resource, cl.Subject)
			return printJSON(doc)
		},
	}
	c.Flags().StringVar(&token, "token", "", "bearer token (without the Bearer prefix)")
	c.Flags().StringVarP(&method, "method", "X", "GET", "HTTP method")
	c.Flags().StringVar(&path, "path", "/", "request path")
	c.Flags().StringVar(&resource, "resource", "*", "resource identifier for the policy document")
	_ = c.MarkFlagRequired("token")
	return c
}
