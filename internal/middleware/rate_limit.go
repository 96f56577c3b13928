package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"backend/internal/auth"

	"github.com/redis/go-redis/v9"
)

type RateLimitOptions struct {
	TrustProxy bool
	Now        func() time.Time
}

type rateRule struct {
	routeKey string
	limit    int64
	window   time.Duration
	subject  subjectKind
}

type subjectKind int

const (
	subjectIP subjectKind = iota
	subjectUser
)

var incrExpireScript = redis.NewScript(`
local v = redis.call('INCR', KEYS[1])
if v == 1 then
  redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {v, ttl}
`)

// RateLimit applies Redis-backed fixed-window rate limiting.
// If Redis is unavailable (rdb == nil), it becomes a no-op.
func RateLimit(rdb *redis.Client, opt RateLimitOptions) func(http.Handler) http.Handler {
	if opt.Now == nil {
		opt.Now = time.Now
	}

	// Rules are intentionally conservative defaults.
	rules := []rateRule{
		// Login: strict, per-IP. The main brute-force surface.
		{routeKey: "auth_login", limit: 10, window: 1 * time.Minute, subject: subjectIP},
		{routeKey: "auth_login", limit: 50, window: 1 * time.Hour, subject: subjectIP},
		// Admin mutations: per-user.
		{routeKey: "admin_users_write", limit: 30, window: 1 * time.Minute, subject: subjectUser},
		// Admin reads: per-user, looser.
		{routeKey: "admin_read", limit: 240, window: 1 * time.Minute, subject: subjectUser},
		// Activity stream upgrades: per-IP.
		{routeKey: "activity_stream", limit: 10, window: 1 * time.Minute, subject: subjectIP},
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rdb == nil {
				next.ServeHTTP(w, r)
				return
			}

			route := classifyRoute(r)
			if route == "" {
				next.ServeHTTP(w, r)
				return
			}

			now := opt.Now()
			ip := ClientIP(r, opt.TrustProxy)
			user, hasUser := auth.UserFromContext(r.Context())

			var applicable []rateRule
			for _, rr := range rules {
				if rr.routeKey == route {
					applicable = append(applicable, rr)
				}
			}
			if len(applicable) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			// Evaluate rules; block immediately on exceed.
			for _, rr := range applicable {
				subject := subjectFor(rr.subject, ip, hasUser, user.ID.String())
				if subject == "" {
					// Cannot identify; fail open to avoid accidental lockouts.
					continue
				}
				count, ttl, resetUnix, err := hitFixedWindow(r.Context(), rdb, rr.routeKey, subject, rr.window, now)
				if err != nil {
					// Redis error: fail open.
					continue
				}
				remaining := rr.limit - count
				if remaining < 0 {
					remaining = 0
				}

				// Always emit informative headers (best-effort).
				w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(rr.limit, 10))
				w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetUnix, 10))

				if count > rr.limit {
					retryAfter := ttl
					if retryAfter <= 0 {
						retryAfter = int64(rr.window.Seconds())
					}
					w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
					writeRateLimited(w)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeRateLimited(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_ = json.NewEncoder(w).Encode(map[string]any{"code": "rate_limited", "message": "too many requests"})
}

func subjectFor(kind subjectKind, ip string, hasUser bool, userID string) string {
	switch kind {
	case subjectUser:
		if hasUser && strings.TrimSpace(userID) != "" {
			return "user:" + userID
		}
		// If unauthenticated, fall back to IP.
		if strings.TrimSpace(ip) != "" {
			return "ip:" + ip
		}
		return ""
	case subjectIP:
		if strings.TrimSpace(ip) != "" {
			return "ip:" + ip
		}
		return ""
	default:
		return ""
	}
}

func hitFixedWindow(ctx context.Context, rdb *redis.Client, routeKey string, subject string, window time.Duration, now time.Time) (count int64, ttlSeconds int64, resetUnix int64, err error) {
	windowSeconds := int64(window.Seconds())
	if windowSeconds <= 0 {
		return 0, 0, 0, nil
	}

	start := (now.Unix() / windowSeconds) * windowSeconds
	resetUnix = start + windowSeconds
	key := "rl:" + routeKey + ":" + subject + ":" + strconv.FormatInt(windowSeconds, 10) + ":" + strconv.FormatInt(start, 10)

	// Keep this fast; do not let Redis stalls block the API.
	ctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
	defer cancel()

	res, err := incrExpireScript.Run(ctx, rdb, []string{key}, windowSeconds).Result()
	if err != nil {
		return 0, 0, resetUnix, err
	}

	arr, ok := res.([]any)
	if !ok || len(arr) < 2 {
		return 0, 0, resetUnix, nil
	}

	// go-redis returns int64 for integers.
	if v, ok := arr[0].(int64); ok {
		count = v
	}
	if v, ok := arr[1].(int64); ok {
		ttlSeconds = v
	}
	return count, ttlSeconds, resetUnix, nil
}

// classifyRoute maps request paths to stable route keys for rate limiting.
// Intentionally simple matching so it works in global chi middlewares.
func classifyRoute(r *http.Request) string {
	path := r.URL.Path
	method := r.Method

	// Probes and scrapes are never limited.
	if strings.HasPrefix(path, "/healthz") || path == "/metrics" {
		return ""
	}

	if method == http.MethodPost && path == "/api/v1/auth/login" {
		return "auth_login"
	}

	if path == "/api/v1/admin/activity/stream" {
		return "activity_stream"
	}

	if strings.HasPrefix(path, "/api/v1/admin") {
		switch method {
		case http.MethodGet:
			return "admin_read"
		case http.MethodPost, http.MethodPatch, http.MethodPut, http.MethodDelete:
			return "admin_users_write"
		}
	}

	return ""
}
