package handlers

import (
	"net/http"

	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

// ListServices handles GET /service (public, names only).
func (h *Handlers) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListNames(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "service list failed", "error", err)
		response.InternalError(w, "error listing services")
		return
	}
	response.JSON(w, http.StatusOK, services)
}

// Available handles GET /available?date=<label>. Only the date parameter is
// honored; anything else on the query string is ignored rather than passed
// into the store.
func (h *Handlers) Available(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		response.BadRequest(w, "date is required")
		return
	}

	services, err := h.availability.ForDate(r.Context(), date)
	if err != nil {
		logger.ErrorContext(r.Context(), "availability query failed", "error", err, "date", date)
		response.InternalError(w, "error computing availability")
		return
	}
	response.JSON(w, http.StatusOK, services)
}
