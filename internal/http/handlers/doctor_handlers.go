package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/doctors-portal/internal/domain"
	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/pkg/events"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

// ListDoctors handles GET /doctor (token + admin).
func (h *Handlers) ListDoctors(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.doctors.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "doctor list failed", "error", err)
		response.InternalError(w, "error listing doctors")
		return
	}
	response.JSON(w, http.StatusOK, doctors)
}

// AddDoctor handles POST /doctor (token + admin).
func (h *Handlers) AddDoctor(w http.ResponseWriter, r *http.Request) {
	var in domain.Doctor
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}
	if in.Email == "" || in.Name == "" {
		response.BadRequest(w, "email and name are required")
		return
	}

	doctor, err := h.doctors.Insert(r.Context(), &in)
	if err != nil {
		logger.ErrorContext(r.Context(), "doctor insert failed", "error", err, "email", in.Email)
		response.InternalError(w, "error adding doctor")
		return
	}

	if err := h.events.Publish(r.Context(), events.DoctorAdded, events.DoctorEvent{
		Email: doctor.Email,
		Name:  doctor.Name,
	}); err != nil {
		logger.WarnContext(r.Context(), "doctor.added publish failed", "error", err)
	}

	response.JSON(w, http.StatusOK, doctor)
}

// DeleteDoctor handles DELETE /doctor/{email} (token only, as shipped).
func (h *Handlers) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}

	result, err := h.doctors.DeleteByEmail(r.Context(), email)
	if err != nil {
		logger.ErrorContext(r.Context(), "doctor delete failed", "error", err, "email", email)
		response.InternalError(w, "error deleting doctor")
		return
	}

	if err := h.events.Publish(r.Context(), events.DoctorRemoved, events.DoctorEvent{Email: email}); err != nil {
		logger.WarnContext(r.Context(), "doctor.removed publish failed", "error", err)
	}

	response.JSON(w, http.StatusOK, result)
}
