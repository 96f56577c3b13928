package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"backend/internal/cache"
	"backend/internal/config"
	"backend/internal/db/sqlc"
	"backend/internal/metrics"
	"backend/internal/repository"
	"backend/internal/service"
)

const statsCacheKey = "analytics:dashboard_stats"

// AnalyticsService aggregates usage data for the admin dashboard
type AnalyticsService struct {
	store *repository.Store
	cache cache.Cache
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(store *repository.Store, c cache.Cache) *AnalyticsService {
	if c == nil {
		c = cache.NewNoOpCache()
	}
	return &AnalyticsService{store: store, cache: c}
}

// SignupPoint is one day of the signup series. Days without signups are
// present with a zero count so charts get a continuous axis.
type SignupPoint struct {
	Day     string `json:"day"` // YYYY-MM-DD, UTC
	Signups int64  `json:"signups"`
}

// Analytics is the full analytics view.
type Analytics struct {
	WindowDays    int              `json:"windowDays"`
	Signups       []SignupPoint    `json:"signups"`
	ActiveLastDay int64            `json:"activeLastDay"`
	ActiveLast7d  int64            `json:"activeLast7d"`
	UsersByRole   map[string]int64 `json:"usersByRole"`
}

// GetAnalytics returns the signup series and activity aggregates for the
// requested window. Days outside 1..MaxWindowDays are clamped, and zero
// selects the configured default.
func (s *AnalyticsService) GetAnalytics(ctx context.Context, days int) (Analytics, error) {
	if s.store == nil {
		return Analytics{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}

	cfg := config.GetGlobalConfig()
	if days <= 0 {
		days = cfg.Analytics.DefaultWindowDays
	}
	if days > cfg.Analytics.MaxWindowDays {
		days = cfg.Analytics.MaxWindowDays
	}

	now := time.Now().UTC()
	since := now.AddDate(0, 0, -(days - 1)).Truncate(24 * time.Hour)

	start := time.Now()
	rows, err := s.store.Q.SignupsByDay(ctx, since)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to load signup series: %w", err)
	}
	metrics.RecordDBQuery("signups_by_day", time.Since(start))

	byDay := make(map[string]int64, len(rows))
	for _, row := range rows {
		byDay[row.Day.UTC().Format("2006-01-02")] = row.Signups
	}
	series := make([]SignupPoint, 0, days)
	for d := 0; d < days; d++ {
		day := since.AddDate(0, 0, d).Format("2006-01-02")
		series = append(series, SignupPoint{Day: day, Signups: byDay[day]})
	}

	activeDay, err := s.store.Q.CountActiveSince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to count active users: %w", err)
	}
	active7d, err := s.store.Q.CountActiveSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to count active users: %w", err)
	}

	roleRows, err := s.store.Q.CountProfilesByRole(ctx)
	if err != nil {
		return Analytics{}, fmt.Errorf("failed to count users by role: %w", err)
	}
	byRole := make(map[string]int64, len(roleRows))
	for _, row := range roleRows {
		byRole[row.Role] = row.Total
	}

	return Analytics{
		WindowDays:    days,
		Signups:       series,
		ActiveLastDay: activeDay,
		ActiveLast7d:  active7d,
		UsersByRole:   byRole,
	}, nil
}

// DashboardStats is the headline-number view shown on every dashboard load.
type DashboardStats struct {
	TotalUsers  int64     `json:"totalUsers"`
	TotalAdmins int64     `json:"totalAdmins"`
	Signups7d   int64     `json:"signups7d"`
	Activity24h int64     `json:"activity24h"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// GetDashboardStats returns headline counts, cached briefly since the
// dashboard polls this on every page load.
func (s *AnalyticsService) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	if s.store == nil {
		return DashboardStats{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}

	if raw, err := s.cache.Get(ctx, statsCacheKey); err == nil {
		var stats DashboardStats
		if err := json.Unmarshal([]byte(raw), &stats); err == nil {
			return stats, nil
		}
	}

	now := time.Now().UTC()

	start := time.Now()
	total, err := s.store.Q.CountProfiles(ctx, sqlc.CountProfilesParams{})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("failed to count users: %w", err)
	}
	admins, err := s.store.Q.CountAdmins(ctx)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("failed to count admins: %w", err)
	}
	signups, err := s.store.Q.CountSignupsSince(ctx, now.AddDate(0, 0, -7))
	if err != nil {
		return DashboardStats{}, fmt.Errorf("failed to count signups: %w", err)
	}
	activity, err := s.store.Q.CountActivitySince(ctx, now.Add(-24*time.Hour))
	if err != nil {
		return DashboardStats{}, fmt.Errorf("failed to count activity: %w", err)
	}
	metrics.RecordDBQuery("dashboard_stats", time.Since(start))

	stats := DashboardStats{
		TotalUsers:  total,
		TotalAdmins: admins,
		Signups7d:   signups,
		Activity24h: activity,
		GeneratedAt: now,
	}

	ttl := time.Duration(config.GetGlobalConfig().Analytics.StatsCacheTTLSeconds) * time.Second
	if ttl > 0 {
		if raw, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, statsCacheKey, string(raw), ttl); err != nil {
				slog.Warn("failed to cache dashboard stats", "error", err)
			}
		}
	}

	return stats, nil
}
