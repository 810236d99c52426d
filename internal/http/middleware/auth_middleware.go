package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diagnosis/doctors-portal/internal/http/response"
	"github.com/diagnosis/doctors-portal/internal/repo/mongodb"
	"github.com/diagnosis/doctors-portal/pkg/auth"
	"github.com/diagnosis/doctors-portal/pkg/logger"
)

type ctxKey string

const CtxEmail ctxKey = "email"

// Auth holds what the token and role gates need: the signing secret and the
// users collection for role lookups.
type Auth struct {
	Secret string
	Users  mongodb.UsersRepo
}

func NewAuth(secret string, users mongodb.UsersRepo) *Auth {
	return &Auth{Secret: secret, Users: users}
}

// RequireToken rejects requests without a valid bearer token and puts the
// token's email into the request context. Missing header is 401; a present
// but invalid or expired token is 403.
func (a *Auth) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authz := r.Header.Get("Authorization")
		if !strings.HasPrefix(authz, "Bearer ") {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		raw := strings.TrimPrefix(authz, "Bearer ")
		claims, err := auth.Parse(raw, a.Secret)
		if err != nil {
			code := response.CodeInvalidToken
			if errors.Is(err, auth.ErrExpired) {
				code = response.CodeExpiredToken
			}
			response.WriteError(w, http.StatusForbidden, "forbidden access", code)
			return
		}

		ctx := context.WithValue(r.Context(), CtxEmail, claims.Email)
		ctx = context.WithValue(ctx, logger.UserEmailKey, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin looks up the requester's user record and denies unless its
// role is admin. A missing user record is denied, not a fault.
func (a *Auth) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		email := Email(r)
		if email == "" {
			response.Unauthorized(w, "missing authorization header")
			return
		}

		user, err := a.Users.FindByEmail(r.Context(), email)
		if err != nil {
			logger.ErrorContext(r.Context(), "admin lookup failed", "error", err, "email", email)
			response.InternalError(w, "error checking permissions")
			return
		}
		if !user.IsAdmin() {
			response.Forbidden(w, "forbidden")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Email returns the authenticated email from the request context, or "".
func Email(r *http.Request) string {
	if v, ok := r.Context().Value(CtxEmail).(string); ok {
		return v
	}
	return ""
}
