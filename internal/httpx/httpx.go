package httpx

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Error string `json:"error"`
}

func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, code int, msg string) {
	WriteJSON(w, code, APIError{Error: msg})
}

// WriteResult wraps a value in the decision-engine response envelope:
// a single result field. Absent values serialize as result: null.
func WriteResult(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, map[string]any{"result": v})
}

func SafeErrMsg(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
