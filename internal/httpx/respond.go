package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/candylabs/sweetshop/internal/sweets"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps the domain error taxonomy onto status codes so clients can
// tell "try a smaller quantity" from "this item no longer exists".
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, sweets.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, sweets.ErrInvalidQuantity),
		errors.Is(err, sweets.ErrInsufficientStock),
		errors.Is(err, sweets.ErrNameTaken):
		code = http.StatusBadRequest
	}
	writeJSON(w, code, map[string]string{"error": err.Error()})
}
