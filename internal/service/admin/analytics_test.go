package admin_test

import (
	"context"
	"testing"
	"time"

	"backend/internal/cache"
	"backend/internal/repository"
	"backend/internal/service/admin"

	"github.com/DATA-DOG/go-sqlmock"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newAnalyticsService(t *testing.T, c cache.Cache) (*admin.AnalyticsService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := repository.NewStore(db)
	return admin.NewAnalyticsService(store, c), mock
}

func TestGetAnalytics_FillsMissingDays(t *testing.T) {
	svc, mock := newAnalyticsService(t, nil)

	today := time.Now().UTC().Truncate(24 * time.Hour)
	mock.ExpectQuery(`SELECT date_trunc`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "signups"}).
			AddRow(today, int64(3)))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE last_seen_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE last_seen_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT role, count\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "total"}).
			AddRow("admin", int64(2)).
			AddRow("user", int64(40)))

	analytics, err := svc.GetAnalytics(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}

	assert.Equal(t, 7, analytics.WindowDays)
	if assert.Len(t, analytics.Signups, 7) {
		// Today is the last point of the series; the rest are zero-filled.
		last := analytics.Signups[len(analytics.Signups)-1]
		assert.Equal(t, today.Format("2006-01-02"), last.Day)
		assert.Equal(t, int64(3), last.Signups)
		assert.Equal(t, int64(0), analytics.Signups[0].Signups)
	}
	assert.Equal(t, int64(5), analytics.ActiveLastDay)
	assert.Equal(t, int64(12), analytics.ActiveLast7d)
	assert.Equal(t, int64(2), analytics.UsersByRole["admin"])
	assert.Equal(t, int64(40), analytics.UsersByRole["user"])

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetAnalytics_ClampsWindow(t *testing.T) {
	svc, mock := newAnalyticsService(t, nil)

	mock.ExpectQuery(`SELECT date_trunc`).
		WillReturnRows(sqlmock.NewRows([]string{"day", "signups"}))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE last_seen_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE last_seen_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`SELECT role, count\(\*\) AS total`).
		WillReturnRows(sqlmock.NewRows([]string{"role", "total"}))

	analytics, err := svc.GetAnalytics(context.Background(), 100000)
	if err != nil {
		t.Fatalf("GetAnalytics() error = %v", err)
	}
	assert.Equal(t, 365, analytics.WindowDays)
	assert.Len(t, analytics.Signups, 365)
}

func expectStatsQueries(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT count\(\*\)\s+FROM profiles\s+WHERE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE role = 'admin'`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT count\(\*\) FROM profiles WHERE created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(`SELECT count\(\*\) FROM activity_logs WHERE created_at`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(19))
}

func TestGetDashboardStats_CachesResult(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	svc, mock := newAnalyticsService(t, cache.NewRedisCache(rdb))
	expectStatsQueries(mock)

	stats, err := svc.GetDashboardStats(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardStats() error = %v", err)
	}
	assert.Equal(t, int64(42), stats.TotalUsers)
	assert.Equal(t, int64(2), stats.TotalAdmins)
	assert.Equal(t, int64(7), stats.Signups7d)
	assert.Equal(t, int64(19), stats.Activity24h)

	// Second call comes from the cache; no further queries expected.
	cached, err := svc.GetDashboardStats(context.Background())
	if err != nil {
		t.Fatalf("GetDashboardStats() cached error = %v", err)
	}
	assert.Equal(t, stats.TotalUsers, cached.TotalUsers)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetDashboardStats_NoCacheFallsBackToDB(t *testing.T) {
	svc, mock := newAnalyticsService(t, nil)
	expectStatsQueries(mock)
	expectStatsQueries(mock)

	if _, err := svc.GetDashboardStats(context.Background()); err != nil {
		t.Fatalf("GetDashboardStats() error = %v", err)
	}
	if _, err := svc.GetDashboardStats(context.Background()); err != nil {
		t.Fatalf("GetDashboardStats() second error = %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
