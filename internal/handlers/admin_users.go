package handlers

import (
	"encoding/json"
	"net/http"

	"backend/internal/auth"
	"backend/internal/service/admin"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type userListResponse struct {
	Users  []UserView `json:"users"`
	Total  int64      `json:"total"`
	Limit  int32      `json:"limit"`
	Offset int32      `json:"offset"`
}

// GetAdminUsers handles GET /api/v1/admin/users.
func (h API) GetAdminUsers(w http.ResponseWriter, r *http.Request) {
	if h.AdminUsers == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "admin not configured"})
		return
	}
	limit, offset := parsePagination(r)
	params := admin.SearchUsersParams{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}
	if role := r.URL.Query().Get("role"); role != "" {
		params.Role = &role
	}
	if sort := r.URL.Query().Get("sort"); sort != "" {
		params.Sort = &sort
	}

	result, err := h.AdminUsers.SearchUsers(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	users := make([]UserView, 0, len(result.Users))
	for _, u := range result.Users {
		users = append(users, toUserView(u))
	}
	writeJSON(w, http.StatusOK, userListResponse{Users: users, Total: result.Total, Limit: limit, Offset: offset})
}

type createUserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

// PostAdminUsers handles POST /api/v1/admin/users.
func (h API) PostAdminUsers(w http.ResponseWriter, r *http.Request) {
	if h.AdminUsers == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "admin not configured"})
		return
	}
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Error{Code: "unauthorized", Message: "unauthorized"})
		return
	}
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid json"})
		return
	}
	profile, err := h.AdminUsers.CreateUser(r.Context(), admin.CreateUserParams{
		Email:       req.Email,
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Role:        req.Role,
		ActorID:     actor.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(profile))
}

// GetAdminUser handles GET /api/v1/admin/users/{userID}.
func (h API) GetAdminUser(w http.ResponseWriter, r *http.Request) {
	if h.AdminUsers == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "admin not configured"})
		return
	}
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	profile, err := h.AdminUsers.GetUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(profile))
}

type updateUserRequest struct {
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
}

// PatchAdminUser handles PATCH /api/v1/admin/users/{userID}.
func (h API) PatchAdminUser(w http.ResponseWriter, r *http.Request) {
	if h.AdminUsers == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "admin not configured"})
		return
	}
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Error{Code: "unauthorized", Message: "unauthorized"})
		return
	}
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid json"})
		return
	}
	profile, err := h.AdminUsers.UpdateUser(r.Context(), admin.UpdateUserParams{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
		ActorID:     actor.ID,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserView(profile))
}

// DeleteAdminUser handles DELETE /api/v1/admin/users/{userID}.
func (h API) DeleteAdminUser(w http.ResponseWriter, r *http.Request) {
	if h.AdminUsers == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "admin not configured"})
		return
	}
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, Error{Code: "unauthorized", Message: "unauthorized"})
		return
	}
	userID, ok := parseUserID(w, r)
	if !ok {
		return
	}
	if err := h.AdminUsers.DeleteUser(r.Context(), userID, actor.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseUserID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid user id"})
		return uuid.UUID{}, false
	}
	return id, true
}
