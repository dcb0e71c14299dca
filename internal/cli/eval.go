package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/dnc"
)

// evalInput matches the decision-engine input envelope so the same
// fixture files work against a remote engine and the local evaluator.
type evalInput struct {
	Input struct {
		Expert  dnc.Expert  `json:"expert"`
		Project dnc.Project `json:"project"`
	} `json:"input"`
}

func cmdEval() *cobra.Command {
	var file string
	var remote bool

	c := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate a Do-Not-Contact check from a JSON input file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}

			raw, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var in evalInput
			if err := json.Unmarshal(raw, &in); err != nil {
				return fmt.Errorf("parse input: %w", err)
			}

			var v dnc.Verdict
			if remote {
				opa := decision.NewOPA(decision.OPAConfig{
					Endpoint:   cfg.OPAEndpoint,
					DNCPath:    cfg.OPADNCPath,
					Timeout:    cfg.DecisionTimeout(),
					MaxRetries: cfg.DecisionRetries,
				})
				v, err = opa.CheckDetailed(cmd.Context(), in.Input)
				if err != nil {
					// Fail closed, surface the failure as a reason.
					v = dnc.FailedVerdict(in.Input.Expert, in.Input.Project, time.Now())
				}
			} else {
				companies, countries, lerr := dnc.LoadBlocklists(cfg.BlocklistPath)
				if lerr != nil {
					return lerr
				}
				v = dnc.NewEvaluator(companies, countries).Evaluate(in.Input.Expert, in.Input.Project)
			}

			return printJSON(v)
		},
	}
	c.Flags().StringVarP(&file, "file", "f", "", "JSON file with {input: {expert, project}}")
	c.Flags().BoolVar(&remote, "remote", false, "evaluate against the remote decision engine instead of locally")
	_ = c.MarkFlagRequired("file")
	return c
}
