package handlers

import (
	"encoding/json"
	"net/http"

	"backend/internal/auth"
	"backend/internal/middleware"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token            string   `json:"token"`
	ExpiresInSeconds int      `json:"expiresInSeconds"`
	User             UserView `json:"user"`
}

// PostLogin handles POST /api/v1/auth/login.
func (h API) PostLogin(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "auth not configured"})
		return
	}
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid json"})
		return
	}
	result, err := h.Auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	middleware.SetAuthCookie(w, r, result.Token, result.ExpiresInSeconds)

	writeJSON(w, http.StatusOK, loginResponse{
		Token:            result.Token,
		ExpiresInSeconds: result.ExpiresInSeconds,
		User:             toUserView(result.Profile),
	})
}

// PostLogout handles POST /api/v1/auth/logout. Clearing the cookie works for
// anonymous callers too; token revocation only happens for authenticated ones.
func (h API) PostLogout(w http.ResponseWriter, r *http.Request) {
	if user, ok := auth.UserFromContext(r.Context()); ok && h.Auth != nil {
		_ = h.Auth.Logout(r.Context(), user)
	}
	middleware.ClearAuthCookie(w, r)
	w.WriteHeader(http.StatusNoContent)
}

// GetMe handles GET /api/v1/auth/me.
func (h API) GetMe(w http.ResponseWriter, r *http.Request) {
	if h.Auth == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "auth not configured"})
		return
	}
	user, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Error{Code: "unauthorized", Message: "unauthorized"})
		return
	}
	profile, err := h.Auth.CurrentProfile(r.Context(), user)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(profile))
}
