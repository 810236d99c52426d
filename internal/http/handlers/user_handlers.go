package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/diagnosis/doctors-portal/internal/domain"
	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/pkg/auth"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

// UpsertUser handles PUT /user/{email}. It is the login-like interaction:
// the profile body is upserted under the path email and a fresh access
// token comes back with the write result.
func (h *Handlers) UpsertUser(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}

	doc := make(map[string]interface{})
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		response.BadRequest(w, "invalid json")
		return
	}

	result, err := h.users.Upsert(r.Context(), email, doc)
	if err != nil {
		logger.ErrorContext(r.Context(), "user upsert failed", "error", err, "email", email)
		response.InternalError(w, "error saving user")
		return
	}

	token, err := auth.NewAccessToken(email, h.jwtSecret, h.tokenTTL)
	if err != nil {
		logger.ErrorContext(r.Context(), "token signing failed", "error", err)
		response.InternalError(w, "error issuing token")
		return
	}

	response.JSON(w, http.StatusOK, domain.UpsertUserResponse{Result: result, Token: token})
}

// ListUsers handles GET /user (token required).
func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "user list failed", "error", err)
		response.InternalError(w, "error listing users")
		return
	}
	response.JSON(w, http.StatusOK, users)
}

// PromoteAdmin handles PUT /user/admin/{email} (token + admin required).
func (h *Handlers) PromoteAdmin(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")
	if email == "" {
		response.BadRequest(w, "email is required")
		return
	}

	result, err := h.users.PromoteAdmin(r.Context(), email)
	if err != nil {
		logger.ErrorContext(r.Context(), "admin promotion failed", "error", err, "email", email)
		response.InternalError(w, "error updating user")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

// AdminCheck handles GET /admin/{email}. Public: the frontend uses it to
// decide which dashboard to render. A missing user is simply not an admin.
func (h *Handlers) AdminCheck(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		logger.ErrorContext(r.Context(), "admin check failed", "error", err, "email", email)
		response.InternalError(w, "error checking user")
		return
	}

	response.JSON(w, http.StatusOK, domain.AdminCheckResponse{Admin: user.IsAdmin()})
}
