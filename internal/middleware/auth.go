package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"backend/internal/auth"
)

// SessionCookie is the httpOnly cookie carrying the session JWT.
const SessionCookie = "admin_session"

func OptionalAuth(tokenManager *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip auth for probe and scrape endpoints
			if strings.HasPrefix(r.URL.Path, "/healthz") || r.URL.Path == "/metrics" {
				next.ServeHTTP(w, r)
				return
			}

			// Try to get token from cookie first
			var token string
			var isCookieAuth bool
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				token = cookie.Value
				isCookieAuth = true
			} else {
				// Fallback to Authorization header
				authz := r.Header.Get("Authorization")
				if authz == "" {
					next.ServeHTTP(w, r)
					return
				}
				if !strings.HasPrefix(authz, "Bearer ") {
					logUnauthorized(r, "invalid_auth_header", "bearer", nil)
					writeUnauthorized(w)
					return
				}
				token = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			}

			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			user, err := tokenManager.Parse(token)
			if err != nil {
				authSource := "bearer"
				if isCookieAuth {
					authSource = "cookie"
				}
				logUnauthorized(r, "token_parse_failed", authSource, err)
				writeUnauthorized(w)
				return
			}

			// Refresh cookie to extend session (only for cookie-based auth)
			if isCookieAuth {
				refreshAuthCookie(w, r, user, tokenManager)
			}

			r = r.WithContext(auth.WithUser(r.Context(), user))
			next.ServeHTTP(w, r)
		})
	}
}

func RequireAuth(tokenManager *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenManager == nil {
				logUnauthorized(r, "token_manager_missing", "", nil)
				writeUnauthorized(w)
				return
			}
			if user, ok := auth.UserFromContext(r.Context()); ok {
				r = r.WithContext(auth.WithUser(r.Context(), user))
				next.ServeHTTP(w, r)
				return
			}

			// Try to get token from cookie first
			var token string
			var isCookieAuth bool
			if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
				token = cookie.Value
				isCookieAuth = true
			} else {
				// Fallback to Authorization header
				authz := r.Header.Get("Authorization")
				if authz == "" {
					logUnauthorized(r, "missing_cookie_and_header", "", nil)
					writeUnauthorized(w)
					return
				}
				if !strings.HasPrefix(authz, "Bearer ") {
					logUnauthorized(r, "invalid_auth_header", "bearer", nil)
					writeUnauthorized(w)
					return
				}
				token = strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
			}

			if token == "" {
				authSource := "bearer"
				if isCookieAuth {
					authSource = "cookie"
				}
				logUnauthorized(r, "empty_token", authSource, nil)
				writeUnauthorized(w)
				return
			}

			user, err := tokenManager.Parse(token)
			if err != nil {
				authSource := "bearer"
				if isCookieAuth {
					authSource = "cookie"
				}
				logUnauthorized(r, "token_parse_failed", authSource, err)
				writeUnauthorized(w)
				return
			}

			// Refresh cookie to extend session (only for cookie-based auth)
			if isCookieAuth {
				refreshAuthCookie(w, r, user, tokenManager)
			}

			r = r.WithContext(auth.WithUser(r.Context(), user))
			next.ServeHTTP(w, r)
		})
	}
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"code":    "unauthorized",
		"message": "unauthorized",
	})
}

func logUnauthorized(r *http.Request, reason string, authSource string, err error) {
	attrs := []any{
		slog.String("reason", reason),
		slog.String("path", r.URL.Path),
		slog.String("method", r.Method),
		slog.String("remote", r.RemoteAddr),
	}
	if ua := r.UserAgent(); ua != "" {
		attrs = append(attrs, slog.String("user_agent", ua))
	}
	if authSource != "" {
		attrs = append(attrs, slog.String("auth_source", authSource))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	slog.Warn("unauthorized request", attrs...)
}

// refreshAuthCookie generates a new JWT token and updates the session cookie.
// This extends the user's session automatically on each authenticated request.
func refreshAuthCookie(w http.ResponseWriter, r *http.Request, user auth.User, tokenManager *auth.TokenManager) {
	// Skip cookie refresh for logout endpoint to prevent re-issuing auth cookie
	if r.URL.Path == "/api/v1/auth/logout" {
		return
	}

	newToken, expiresInSeconds, err := tokenManager.Issue(user)
	if err != nil {
		// The old token is still valid; keep serving the request.
		return
	}

	SetAuthCookie(w, r, newToken, expiresInSeconds)
}

// SetAuthCookie creates and sets a secure session cookie with proper security attributes
func SetAuthCookie(w http.ResponseWriter, r *http.Request, token string, maxAge int) {
	// Check multiple headers for HTTPS detection behind reverse proxies
	isSecure := r.TLS != nil ||
		r.Header.Get("X-Forwarded-Proto") == "https" ||
		r.Header.Get("X-Forwarded-Ssl") == "on" ||
		r.Header.Get("X-Forwarded-Scheme") == "https"

	// Cookie domain from environment, e.g. "example.com" or ".example.com"
	cookieDomain := os.Getenv("COOKIE_DOMAIN")

	cookie := &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Domain:   cookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	}

	http.SetCookie(w, cookie)
}

// ClearAuthCookie deletes the session cookie. Domain, Path, Secure and
// SameSite must match the attributes used when setting it or browsers keep
// the old cookie.
func ClearAuthCookie(w http.ResponseWriter, r *http.Request) {
	isSecure := r.TLS != nil ||
		r.Header.Get("X-Forwarded-Proto") == "https" ||
		r.Header.Get("X-Forwarded-Ssl") == "on" ||
		r.Header.Get("X-Forwarded-Scheme") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		Domain:   os.Getenv("COOKIE_DOMAIN"),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
