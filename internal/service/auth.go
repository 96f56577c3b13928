package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/internal/db/sqlc"
	"backend/internal/logging"
	"backend/internal/metrics"
	"backend/internal/repository"
)

type AuthService struct {
	store  *repository.Store
	tokens *auth.TokenManager
}

func NewAuthService(store *repository.Store, tokens *auth.TokenManager) *AuthService {
	return &AuthService{store: store, tokens: tokens}
}

// LoginResult carries the session token and the authenticated profile.
type LoginResult struct {
	Token            string
	ExpiresInSeconds int
	Profile          sqlc.Profile
}

// Login verifies email+password against the account store and issues a JWT.
// Failures are deliberately indistinguishable (unknown email vs bad password).
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	if s.store == nil {
		return LoginResult{}, NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, NewError(http.StatusBadRequest, "invalid_request", "email and password required")
	}

	account, err := s.store.Q.GetAuthUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
			logging.Audit(ctx, "login", "failure", logging.RequestAttrs(ctx)...)
			return LoginResult{}, NewError(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		}
		return LoginResult{}, err
	}
	if !auth.VerifyPassword(account.PasswordHash, password) {
		metrics.LoginAttemptsTotal.WithLabelValues("failure").Inc()
		logging.Audit(ctx, "login", "failure", append(logging.RequestAttrs(ctx), slog.String("user_id", account.ID.String()))...)
		return LoginResult{}, NewError(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
	}

	profile, err := s.store.Q.GetProfileByID(ctx, account.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Orphaned account (profile insert failed and rollback did not finish).
			slog.Error("auth account has no profile", "user_id", account.ID.String())
			return LoginResult{}, NewError(http.StatusUnauthorized, "invalid_credentials", "invalid email or password")
		}
		return LoginResult{}, err
	}

	token, expires, err := s.tokens.Issue(auth.User{ID: profile.ID, Username: profile.Username, Role: profile.Role})
	if err != nil {
		return LoginResult{}, err
	}

	if err := s.store.Q.TouchProfileLastSeen(ctx, profile.ID); err != nil {
		slog.Warn("failed to touch last_seen_at", "user_id", profile.ID.String(), "error", err)
	}

	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()
	logging.Audit(ctx, "login", "success", append(logging.RequestAttrs(ctx), slog.String("user_id", profile.ID.String()))...)
	return LoginResult{Token: token, ExpiresInSeconds: expires, Profile: profile}, nil
}

// Logout records a revocation marker so outstanding tokens stop validating.
func (s *AuthService) Logout(ctx context.Context, user auth.User) error {
	if err := s.tokens.InvalidateUserTokens(ctx, user.ID.String()); err != nil {
		slog.Warn("token revocation failed", "user_id", user.ID.String(), "error", err)
	}
	logging.Audit(ctx, "logout", "success", append(logging.RequestAttrs(ctx), slog.String("user_id", user.ID.String()))...)
	return nil
}

// CurrentProfile returns the caller's profile and touches last_seen_at.
func (s *AuthService) CurrentProfile(ctx context.Context, user auth.User) (sqlc.Profile, error) {
	if s.store == nil {
		return sqlc.Profile{}, NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	profile, err := s.store.Q.GetProfileByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sqlc.Profile{}, NewError(http.StatusUnauthorized, "unauthorized", "profile not found")
		}
		return sqlc.Profile{}, err
	}
	if err := s.store.Q.TouchProfileLastSeen(ctx, profile.ID); err != nil {
		slog.Warn("failed to touch last_seen_at", "user_id", profile.ID.String(), "error", err)
	}
	return profile, nil
}
