package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/dnc"
	"github.com/Silverbook/pep-go/internal/metrics"
	"github.com/Silverbook/pep-go/internal/prefs"
	"github.com/Silverbook/pep-go/internal/server"
)

func cmdServe() *cobra.Command {
	var listen string

	c := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway (and, when configured, the preferences listener)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgPath)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.ListenAddr = listen
			}
			setupLogging()

			deps, err := buildDeps(cfg)
			if err != nil {
				return err
			}

			env := os.Getenv("PEPGATE_ENV")
			gw := server.BuildGatewayRouter(deps, server.Options{
				EnableCORS: cfg.EnableCORS,
				DevNoStore: env == "local" || env == "dev",
			})

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			g, ctx := errgroup.WithContext(ctx)
			g.Go(func() error { return run(ctx, cfg.ListenAddr, gw, "gateway") })
			if cfg.PrefsListenAddr != "" {
				pr := server.BuildPrefsRouter(deps.Prefs)
				g.Go(func() error { return run(ctx, cfg.PrefsListenAddr, pr, "prefs") })
			}

			if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	c.Flags().StringVar(&listen, "listen", "", "gateway listen address (overrides config)")
	return c
}

// buildDeps loads the reference data and picks the decision backend.
// A data-load failure here is terminal: the gateway never starts
// without its blocklists.
func buildDeps(cfg *Config) (server.Deps, error) {
	companies, countries, err := dnc.LoadBlocklists(cfg.BlocklistPath)
	if err != nil {
		return server.Deps{}, err
	}
	store, err := prefs.LoadStore(cfg.PreferencesPath)
	if err != nil {
		return server.Deps{}, err
	}
	slog.Info("reference data loaded",
		"blocked_companies", companies.Len(),
		"blocked_countries", countries.Len(),
		"experts", len(store.IDs()),
	)

	authorizer, err := buildAuthorizer(cfg)
	if err != nil {
		return server.Deps{}, err
	}

	return server.Deps{
		Authorizer: authorizer,
		Evaluator:  dnc.NewEvaluator(companies, countries),
		Prefs:      prefs.NewHandler(store, cfg.PrefsToken),
		Metrics:    metrics.New(),
	}, nil
}

func buildAuthorizer(cfg *Config) (decision.Authorizer, error) {
	switch cfg.Backend {
	case "opa", "":
		return decision.NewOPA(decision.OPAConfig{
			Endpoint:   cfg.OPAEndpoint,
			AllowPath:  cfg.OPAAllowPath,
			DNCPath:    cfg.OPADNCPath,
			Timeout:    cfg.DecisionTimeout(),
			MaxRetries: cfg.DecisionRetries,
		}), nil
	case "openfga":
		return decision.NewOpenFGA(decision.OpenFGAConfig{
			APIURL:  cfg.FGAEndpoint,
			StoreID: cfg.FGAStoreID,
			ModelID: cfg.FGAModelID,
		})
	case "mock":
		return &decision.Mock{}, nil
	default:
		return nil, fmt.Errorf("unknown decision backend %q", cfg.Backend)
	}
}

func setupLogging() {
	if logJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}
}

func run(ctx context.Context, addr string, h http.Handler, name string) error {
	srv := &http.Server{Addr: addr, Handler: h}
	errc := make(chan error, 1)
	go func() {
		slog.Info("listening", "name", name, "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case <-ctx.Done():
		ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx2)
	case err := <-errc:
		return err
	}
}
