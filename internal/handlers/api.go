package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"backend/internal/config"
	"backend/internal/db/sqlc"
	"backend/internal/realtime"
	"backend/internal/service"
	"backend/internal/service/activity"
	"backend/internal/service/admin"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error is the JSON error body returned by every endpoint.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// API holds the services behind the HTTP surface.
type API struct {
	Auth           *service.AuthService
	Authz          *service.AuthzService
	AdminUsers     *admin.UsersService
	AdminAnalytics *admin.AnalyticsService
	Activity       *activity.LogsService
	Hub            *realtime.Hub

	Health HealthDeps
}

// Routes registers every endpoint on the router. The /api/v1/admin subtree
// is additionally gated by the admin-access middleware installed in main.
func (h API) Routes(r chi.Router) {
	r.Get("/healthz", h.GetHealth)
	r.Get("/healthz/live", h.GetLiveness)
	r.Get("/healthz/ready", h.GetReadiness)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", h.PostLogin)
		r.Post("/auth/logout", h.PostLogout)
		r.Get("/auth/me", h.GetMe)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", h.GetAdminUsers)
			r.Post("/users", h.PostAdminUsers)
			r.Get("/users/{userID}", h.GetAdminUser)
			r.Patch("/users/{userID}", h.PatchAdminUser)
			r.Delete("/users/{userID}", h.DeleteAdminUser)

			r.Get("/analytics", h.GetAdminAnalytics)
			r.Get("/stats", h.GetAdminStats)
			r.Get("/metrics", h.GetAdminMetrics)

			r.Get("/activity", h.GetAdminActivity)
			r.Get("/activity/stream", h.GetActivityStream())
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var se *service.Error
	if errors.As(err, &se) {
		writeJSON(w, se.Status, Error{Code: se.Code, Message: se.Message})
		return
	}
	// Surface DB schema drift (e.g. a container volume created with an older
	// schema.sql) as 503 without leaking details into the response.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42703", "42P01": // undefined_column, undefined_table
			writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "database schema out of date; apply the latest migrations"})
			return
		}
	}

	slog.Error("internal error", "error", err)
	writeJSON(w, http.StatusInternalServerError, Error{Code: "internal", Message: "internal error"})
}

// parsePagination reads limit/offset query params, clamped to the configured
// bounds. Absent or malformed values fall back to defaults.
func parsePagination(r *http.Request) (limit, offset int32) {
	cfg := config.GetGlobalConfig()
	limit = cfg.Pagination.DefaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v > 0 {
			limit = int32(v)
		}
	}
	if limit > cfg.Pagination.MaxLimit {
		limit = cfg.Pagination.MaxLimit
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil && v >= 0 {
			offset = int32(v)
		}
	}
	return limit, offset
}

// UserView is the wire form of a profile.
type UserView struct {
	ID          string     `json:"id"`
	Username    string     `json:"username"`
	DisplayName *string    `json:"displayName,omitempty"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	LastSeenAt  *time.Time `json:"lastSeenAt,omitempty"`
}

func toUserView(p sqlc.Profile) UserView {
	v := UserView{
		ID:        p.ID.String(),
		Username:  p.Username,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if p.DisplayName.Valid {
		v.DisplayName = &p.DisplayName.String
	}
	if p.LastSeenAt.Valid {
		v.LastSeenAt = &p.LastSeenAt.Time
	}
	return v
}
