package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Silverbook/pep-go/internal/decision"
	"github.com/Silverbook/pep-go/internal/dnc"
	"github.com/Silverbook/pep-go/internal/handlers"
	"github.com/Silverbook/pep-go/internal/httpx"
	"github.com/Silverbook/pep-go/internal/metrics"
	mw2 "github.com/Silverbook/pep-go/internal/mw"
	"github.com/Silverbook/pep-go/internal/prefs"
	"github.com/Silverbook/pep-go/internal/version"
)

type Options struct {
	EnableCORS bool
	DevNoStore bool
}

type Deps struct {
	Authorizer decision.Authorizer
	Evaluator  *dnc.Evaluator
	Prefs      *prefs.Handler
	Metrics    *metrics.Metrics
}

// BuildGatewayRouter wires the authorizer and compliance endpoints.
// Prefs routes mount here too unless the preferences service runs on
// its own listener.
func BuildGatewayRouter(d Deps, opts Options, mw ...func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	if opts.DevNoStore {
		r.Use(mw2.NoStore)
	}

	// baseline
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if opts.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Content-Type", "Authorization"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	for _, m := range mw {
		r.Use(m)
	}

	// tracing + logger
	r.Use(mw2.Trace())
	r.Use(mw2.Logger(mw2.LogOpts{
		SkipPaths:     []string{"/healthz", "/version", "/metrics"},
		RedactHeaders: []string{"Authorization"},
	}))

	r.Get("/healthz", healthCheckHandler)
	r.Get("/version", handlers.Version)
	r.Handle("/metrics", promhttp.Handler())

	auth := handlers.NewAuthorizeHandler(d.Authorizer, d.Metrics)
	r.Post("/authorize", auth.ServeHTTP)

	dncH := handlers.NewDNCHandler(d.Evaluator, d.Metrics)
	r.Route("/v1/data/policies/dnc", func(pr chi.Router) {
		pr.Post("/can_contact", dncH.CanContact)
		pr.Post("/decision_details", dncH.DecisionDetails)
		pr.Post("/blocked_company", dncH.BlockedCompany)
		pr.Post("/blocked_country", dncH.BlockedCountry)
		pr.Post("/input_is_valid", dncH.InputIsValid)
	})

	if d.Prefs != nil {
		mountPrefs(r, d.Prefs)
	}

	return r
}

// BuildPrefsRouter serves the preference lookup on its own listener
// when the deployment keeps it separate from the gateway.
func BuildPrefsRouter(h *prefs.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw2.Trace())
	r.Use(mw2.Logger(mw2.LogOpts{
		SkipPaths:     []string{"/healthz"},
		RedactHeaders: []string{"Authorization"},
	}))

	r.Get("/healthz", healthCheckHandler)
	mountPrefs(r, h)
	return r
}

func mountPrefs(r chi.Router, h *prefs.Handler) {
	r.Get("/experts/{id}/preferences", h.Get)
	r.Get("/project-types", h.ProjectTypes)
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"version": version.Version,
	})
}
