package handlers

import (
	"net/http"

	"github.com/Silverbook/pep-go/internal/httpx"
	"github.com/Silverbook/pep-go/internal/version"
)

func Version(w http.ResponseWriter, r *http.Request) {
	httpx.WriteJSON(w, http.StatusOK, version.Get())
}
