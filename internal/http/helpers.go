package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"payperless/internal/core"
	"payperless/internal/log"
)

const (
	msgLoadFailed = "Could not load receipts, please try again"
	msgNotFound   = "not found"
)

type errorResponse struct {
	Error string `json:"error"`
}

// displayTotal is a KeyTotal with its formatted amount.
type displayTotal struct {
	Key     string  `json:"key"`
	Total   float64 `json:"total"`
	Display string  `json:"display"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "failed to encode response", log.FieldError, err.Error())
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, errorResponse{Error: msg})
}

func (s *Server) display(kts []core.KeyTotal) []displayTotal {
	out := make([]displayTotal, len(kts))
	for i, kt := range kts {
		out[i] = displayTotal{Key: kt.Key, Total: kt.Total, Display: core.FormatCurrency(kt.Total, s.currency)}
	}
	return out
}

// sanitizeInput drops control characters other than tab and newlines and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// requestID reuses a caller supplied X-Request-ID or mints a new one.
func requestID(r *http.Request) string {
	if id := sanitizeInput(r.Header.Get("X-Request-ID")); id != "" && len(id) <= 64 {
		return id
	}
	return uuid.NewString()
}
