package mw

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Silverbook/pep-go/internal/httpx"
	"github.com/Silverbook/pep-go/internal/trace"
)

type LogOpts struct {
	SkipPaths     []string
	RedactHeaders []string
}

func isPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions
}

func (o LogOpts) skip(p string) bool {
	for _, s := range o.SkipPaths {
		if p == s {
			return true
		}
	}
	return false
}

func (o LogOpts) redact(k string) bool {
	for _, h := range o.RedactHeaders {
		if strings.EqualFold(k, h) {
			return true
		}
	}
	return strings.EqualFold(k, "Authorization") || strings.HasPrefix(strings.ToLower(k), "x-api-key")
}

// Logger emits a one-line summary per request and, on error statuses,
// a detail block with redacted headers. Credential values never reach
// the log.
func Logger(opts LogOpts) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPreflight(r) || opts.skip(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			slog.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", r.URL.Path,
				"status", rec.Status,
				"ms", dur.Milliseconds(),
				"bytes", rec.Bytes,
			)

			if rec.Status >= 400 {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					vl := vv[0]
					if opts.redact(k) {
						vl = "***redacted***"
					}
					h[k] = vl
				}
				slog.Error("req_detail",
					"trace", trace.From(r.Context()),
					"m", r.Method, "path", r.URL.Path,
					"status", rec.Status, "ms", dur.Milliseconds(),
					"headers", h,
				)
			}
		})
	}
}
