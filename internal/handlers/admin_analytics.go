package handlers

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GetAdminAnalytics handles GET /api/v1/admin/analytics.
func (h API) GetAdminAnalytics(w http.ResponseWriter, r *http.Request) {
	if h.AdminAnalytics == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "analytics not configured"})
		return
	}
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid days"})
			return
		}
		days = v
	}
	analytics, err := h.AdminAnalytics.GetAnalytics(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics)
}

// GetAdminStats handles GET /api/v1/admin/stats.
func (h API) GetAdminStats(w http.ResponseWriter, r *http.Request) {
	if h.AdminAnalytics == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "analytics not configured"})
		return
	}
	stats, err := h.AdminAnalytics.GetDashboardStats(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type runtimeMetrics struct {
	UptimeSeconds  int64   `json:"uptimeSeconds"`
	Goroutines     int     `json:"goroutines"`
	HeapAllocBytes uint64  `json:"heapAllocBytes"`
	HeapSysBytes   uint64  `json:"heapSysBytes"`
	NumGC          uint32  `json:"numGC"`
	GoVersion      string  `json:"goVersion"`
	RequestsTotal  float64 `json:"requestsTotal"`
}

// GetAdminMetrics handles GET /api/v1/admin/metrics: a JSON snapshot of
// process runtime state for the dashboard. Prometheus scrapes /metrics
// instead.
func (h API) GetAdminMetrics(w http.ResponseWriter, r *http.Request) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	writeJSON(w, http.StatusOK, runtimeMetrics{
		UptimeSeconds:  int64(time.Since(h.Health.StartedAt).Seconds()),
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: mem.HeapAlloc,
		HeapSysBytes:   mem.HeapSys,
		NumGC:          mem.NumGC,
		GoVersion:      runtime.Version(),
		RequestsTotal:  requestsTotal(),
	})
}

// requestsTotal sums the http_requests_total counter across its label sets.
func requestsTotal() float64 {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return 0
	}
	var total float64
	for _, fam := range families {
		if fam.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range fam.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}
