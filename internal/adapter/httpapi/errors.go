package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/wooshnp/crypto-wallet-management/internal/domain"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: message})
}

// writeDomainError maps a domain error to an HTTP status code:
// validation -> 400, not found -> 404, conflict -> 409, provider
// failure -> 502, anything else -> 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Reason)
		return
	}

	switch {
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error())
	case domain.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error())
	default:
		var providerErr *domain.ProviderError
		if errors.As(err, &providerErr) {
			writeError(w, http.StatusBadGateway, providerErr.Error())
			return
		}
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
