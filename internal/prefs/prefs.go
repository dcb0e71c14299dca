// Package prefs serves the read-only expert preference records: a
// keyed lookup behind a static bearer token. Records load once at
// startup and are never mutated afterwards.
package prefs

import (
	"crypto/subtle"
	_ "embed"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Silverbook/pep-go/internal/httpx"
)

//go:embed data/preferences.json
var defaultPreferences []byte

// Store maps expert id to its stored preference record. Records pass
// through verbatim; the gateway does not interpret their contents.
type Store struct {
	records map[string]json.RawMessage
}

// LoadStore reads preference records from path, or from the embedded
// defaults when path is empty.
func LoadStore(path string) (*Store, error) {
	raw := defaultPreferences
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read preferences: %w", err)
		}
	}
	var records map[string]json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parse preferences: %w", err)
	}
	return &Store{records: records}, nil
}

func (s *Store) Get(id string) (json.RawMessage, bool) {
	rec, ok := s.records[id]
	return rec, ok
}

func (s *Store) IDs() []string {
	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ProjectTypes is the reference list of project types the compliance
// endpoints accept.
var ProjectTypes = []string{
	"financial_services",
	"healthcare",
	"technology",
	"manufacturing",
	"energy",
	"telecommunications",
	"automotive",
	"aerospace",
	"pharmaceuticals",
	"consulting",
}

type Handler struct {
	store *Store
	token []byte
}

func NewHandler(store *Store, token string) *Handler {
	return &Handler{store: store, token: []byte(token)}
}

// Get serves GET /experts/{id}/preferences: 401 on a missing or
// non-matching token, 404 on an unknown id, 200 with the stored
// record otherwise.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		httpx.WriteError(w, http.StatusUnauthorized, "missing or invalid authorization header")
		return
	}
	if !h.tokenMatches(strings.TrimPrefix(auth, "Bearer ")) {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid token")
		return
	}

	id := chi.URLParam(r, "id")
	rec, ok := h.store.Get(id)
	if !ok {
		httpx.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":     "expert not found",
			"expert_id": id,
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rec)
}

func (h *Handler) ProjectTypes(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, map[string][]string{"project_types": ProjectTypes})
}

// tokenMatches compares the presented token against the configured
// one in constant time. Only the length check can exit early.
func (h *Handler) tokenMatches(presented string) bool {
	b := []byte(presented)
	if len(b) != len(h.token) {
		return false
	}
	return subtle.ConstantTimeCompare(b, h.token) == 1
}
