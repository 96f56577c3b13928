package service

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"backend/internal/repository"

	"github.com/google/uuid"
)

type AuthzService struct {
	store *repository.Store
}

func NewAuthzService(store *repository.Store) *AuthzService {
	return &AuthzService{store: store}
}

// IsAdmin reports whether the user's profile carries the admin role.
func (s *AuthzService) IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error) {
	if s.store == nil {
		return false, NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	profile, err := s.store.Q.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Session for a deleted profile; treat as not authorized.
			return false, nil
		}
		return false, err
	}
	return profile.Role == "admin", nil
}

// RequireAdmin checks the admin role and returns a 403 service error if absent.
func (s *AuthzService) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	isAdmin, err := s.IsAdmin(ctx, userID)
	if err != nil {
		return err
	}
	if !isAdmin {
		return NewError(http.StatusForbidden, "forbidden", "admin access required")
	}
	return nil
}
