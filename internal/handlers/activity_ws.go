package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"

	"backend/internal/auth"
	"backend/internal/realtime"

	"github.com/gorilla/websocket"
)

const (
	defaultMaxConnections      = 200
	defaultMaxConnectionsPerIP = 10
)

// GetActivityStream returns the handler for GET /api/v1/admin/activity/stream.
// The admin middleware has already authenticated the caller; this only
// upgrades the connection and attaches it to the hub.
func (h API) GetActivityStream() http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     allowOrigin,
	}
	maxTotal := resolveLimit("ACTIVITY_WS_MAX_CONNECTIONS", defaultMaxConnections)
	maxPerIP := resolveLimit("ACTIVITY_WS_MAX_CONNECTIONS_PER_IP", defaultMaxConnectionsPerIP)
	limiter := newWSLimiter(maxTotal, maxPerIP)
	return func(w http.ResponseWriter, r *http.Request) {
		if h.Hub == nil {
			writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "realtime not configured"})
			return
		}
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, Error{Code: "unauthorized", Message: "unauthorized"})
			return
		}

		ip := clientHost(r)
		if !limiter.acquire(ip) {
			writeJSON(w, http.StatusTooManyRequests, Error{Code: "rate_limited", Message: "too many stream connections"})
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			limiter.release(ip)
			slog.Warn("websocket upgrade failed", "error", err, "origin", r.Header.Get("Origin"), "remote", r.RemoteAddr)
			// Upgrade() already wrote the error response
			return
		}

		slog.Info("activity stream connected", "user_id", user.ID.String(), "username", user.Username, "remote", r.RemoteAddr)

		realtime.NewClient(h.Hub, conn, func() {
			limiter.release(ip)
		}).Run()
	}
}

func clientHost(r *http.Request) string {
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}

func allowOrigin(r *http.Request) bool {
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		// Browsers always send Origin on websocket upgrades; non-browser
		// clients must set it explicitly.
		return false
	}

	for _, allowed := range allowedStreamOrigins() {
		// Exact match only, so "http://localhost:3000.evil.example" fails.
		if allowed == origin {
			return true
		}
	}

	base := strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL"))
	if base != "" {
		baseURL, err := parseBaseURL(base)
		if err != nil {
			return false
		}
		originURL, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if baseURL.Scheme == originURL.Scheme &&
			strings.EqualFold(baseURL.Host, originURL.Host) {
			return true
		}
	}

	return false
}

// allowedStreamOrigins reads ALLOWED_ORIGINS (comma-separated) and falls
// back to localhost origins for development.
func allowedStreamOrigins() []string {
	if customOrigins := os.Getenv("ALLOWED_ORIGINS"); customOrigins != "" {
		origins := strings.Split(customOrigins, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	return []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"https://localhost:3000",
		"https://127.0.0.1:3000",
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty base url")
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if parsed.Host == "" {
		parsed, err = url.Parse("https://" + strings.TrimPrefix(raw, "//"))
		if err != nil {
			return nil, err
		}
	}
	if parsed.Host == "" {
		return nil, errors.New("invalid base url")
	}
	return parsed, nil
}

type wsLimiter struct {
	mu       sync.Mutex
	byIP     map[string]int
	total    int
	maxTotal int
	maxPerIP int
}

func newWSLimiter(maxTotal, maxPerIP int) *wsLimiter {
	return &wsLimiter{
		byIP:     make(map[string]int),
		maxTotal: maxTotal,
		maxPerIP: maxPerIP,
	}
}

func (l *wsLimiter) acquire(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.maxTotal > 0 && l.total >= l.maxTotal {
		return false
	}
	if l.maxPerIP > 0 && l.byIP[ip] >= l.maxPerIP {
		return false
	}
	l.total++
	l.byIP[ip]++
	return true
}

func (l *wsLimiter) release(ip string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.total > 0 {
		l.total--
	}
	if l.byIP[ip] > 0 {
		l.byIP[ip]--
		if l.byIP[ip] == 0 {
			delete(l.byIP, ip)
		}
	}
}

func resolveLimit(env string, fallback int) int {
	if raw := strings.TrimSpace(os.Getenv(env)); raw != "" {
		if val, err := strconv.Atoi(raw); err == nil && val > 0 {
			return val
		}
	}
	return fallback
}
