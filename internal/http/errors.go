package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/movie-ticket-booking/internal/confirmation"
	"github.com/robertarktes/movie-ticket-booking/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps domain failures onto status codes. Session failures render
// the invalid-session view so clients can always route back to the catalog.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		w.WriteHeader(499)
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":   "Please fill in all required fields",
			"missing": verr.Missing,
		})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, confirmation.InvalidSession(""))
	case errors.Is(err, domain.ErrInvalidSession):
		writeJSON(w, http.StatusConflict, confirmation.InvalidSession(""))
	case errors.Is(err, domain.ErrSelectionLimitExceeded):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "You can select up to 8 seats only"})
	case errors.Is(err, domain.ErrEmptySelection):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"error": "Please select at least one seat"})
	case errors.Is(err, domain.ErrShowtimeUnavailable),
		errors.Is(err, domain.ErrShowtimeNotInTheatre),
		errors.Is(err, domain.ErrAlreadyConfirmed),
		errors.Is(err, domain.ErrStale),
		errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, map[string]interface{}{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"error": err.Error()})
	case errors.Is(err, domain.ErrBookingTimeout):
		writeJSON(w, http.StatusGatewayTimeout, map[string]interface{}{"error": "Booking failed. Please try again.", "retry": true})
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrBookingFailed):
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"error": "Something went wrong. Please try again.", "retry": true})
	default:
		loggerFrom(r).WithError(err).Error("request failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
