package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"runtime"
	"time"

	"backend/internal/db"

	"github.com/redis/go-redis/v9"
)

const readinessTimeout = 2 * time.Second

// HealthDeps carries the process-level state the health endpoints report on.
type HealthDeps struct {
	DB        *sql.DB
	Redis     *redis.Client
	StartedAt time.Time
	Version   string
}

type healthCheck struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type healthResponse struct {
	Status        string                 `json:"status"`
	Version       string                 `json:"version,omitempty"`
	GoVersion     string                 `json:"goVersion"`
	UptimeSeconds int64                  `json:"uptimeSeconds"`
	Goroutines    int                    `json:"goroutines"`
	MemAllocBytes uint64                 `json:"memAllocBytes"`
	MemSysBytes   uint64                 `json:"memSysBytes"`
	Checks        map[string]healthCheck `json:"checks"`
}

// GetHealth handles GET /healthz: a full health report with dependency
// checks. Degraded dependencies turn the top-level status "degraded" but the
// endpoint still answers 200 so load balancers keep routing.
func (h API) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	checks := make(map[string]healthCheck, 2)
	status := "ok"

	if h.Health.DB != nil {
		start := time.Now()
		if err := db.Ping(ctx, h.Health.DB, readinessTimeout); err != nil {
			checks["database"] = healthCheck{Status: "down", Error: err.Error()}
			status = "degraded"
		} else {
			checks["database"] = healthCheck{Status: "up", Latency: time.Since(start).String()}
		}
	} else {
		checks["database"] = healthCheck{Status: "disabled"}
	}

	if h.Health.Redis != nil {
		start := time.Now()
		pingCtx, cancel := context.WithTimeout(ctx, readinessTimeout)
		err := h.Health.Redis.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			checks["redis"] = healthCheck{Status: "down", Error: err.Error()}
			status = "degraded"
		} else {
			checks["redis"] = healthCheck{Status: "up", Latency: time.Since(start).String()}
		}
	} else {
		checks["redis"] = healthCheck{Status: "disabled"}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	writeJSON(w, http.StatusOK, healthResponse{
		Status:        status,
		Version:       h.Health.Version,
		GoVersion:     runtime.Version(),
		UptimeSeconds: int64(time.Since(h.Health.StartedAt).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		MemAllocBytes: mem.Alloc,
		MemSysBytes:   mem.Sys,
		Checks:        checks,
	})
}

// GetLiveness handles GET /healthz/live. Answering at all means the process
// is alive; no dependency checks here so a broken database never triggers a
// restart loop.
func (h API) GetLiveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"uptimeSeconds": int64(time.Since(h.Health.StartedAt).Seconds()),
	})
}

// GetReadiness handles GET /healthz/ready. Not ready until the database
// answers, so orchestrators hold traffic during startup and outages.
func (h API) GetReadiness(w http.ResponseWriter, r *http.Request) {
	if h.Health.DB == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": "database not configured"})
		return
	}
	if err := db.Ping(r.Context(), h.Health.DB, readinessTimeout); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": "database unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
