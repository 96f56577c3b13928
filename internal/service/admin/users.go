package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/internal/db/sqlc"
	"backend/internal/repository"
	"backend/internal/service"
	"backend/internal/service/activity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// UsersService handles admin user management operations
type UsersService struct {
	store    *repository.Store
	activity *activity.LogsService
}

// NewUsersService creates a new UsersService
func NewUsersService(store *repository.Store, activitySvc *activity.LogsService) *UsersService {
	return &UsersService{store: store, activity: activitySvc}
}

// SearchUsersParams contains parameters for searching users
type SearchUsersParams struct {
	Search string  // Search term for username or display name
	Role   *string // Role filter: admin, user
	Sort   *string // Sort order: created_asc, created_desc, username_asc, username_desc
	Limit  int32
	Offset int32
}

// SearchUsersResult contains search results with pagination info
type SearchUsersResult struct {
	Users []sqlc.Profile
	Total int64
}

// SearchUsers searches users by username or display name with pagination
func (s *UsersService) SearchUsers(ctx context.Context, params SearchUsersParams) (SearchUsersResult, error) {
	if s.store == nil {
		return SearchUsersResult{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}

	var search sql.NullString
	if params.Search != "" {
		search = sql.NullString{String: params.Search, Valid: true}
	}

	var role sql.NullString
	if params.Role != nil {
		if err := auth.ValidateRole(*params.Role); err != nil {
			return SearchUsersResult{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
		}
		role = sql.NullString{String: *params.Role, Valid: true}
	}

	var sort sql.NullString
	if params.Sort != nil {
		switch *params.Sort {
		case "created_asc", "created_desc", "username_asc", "username_desc":
			sort = sql.NullString{String: *params.Sort, Valid: true}
		default:
			return SearchUsersResult{}, service.NewError(http.StatusBadRequest, "invalid_request", "invalid sort")
		}
	}

	users, err := s.store.Q.ListProfiles(ctx, sqlc.ListProfilesParams{
		Search: search,
		Role:   role,
		Sort:   sort,
		Limit:  params.Limit,
		Offset: params.Offset,
	})
	if err != nil {
		return SearchUsersResult{}, fmt.Errorf("failed to search users: %w", err)
	}

	total, err := s.store.Q.CountProfiles(ctx, sqlc.CountProfilesParams{Search: search, Role: role})
	if err != nil {
		return SearchUsersResult{}, fmt.Errorf("failed to count users: %w", err)
	}

	return SearchUsersResult{Users: users, Total: total}, nil
}

// GetUser fetches a single profile by id
func (s *UsersService) GetUser(ctx context.Context, userID uuid.UUID) (sqlc.Profile, error) {
	if s.store == nil {
		return sqlc.Profile{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	profile, err := s.store.Q.GetProfileByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return sqlc.Profile{}, service.NewError(http.StatusNotFound, "not_found", "user not found")
		}
		return sqlc.Profile{}, fmt.Errorf("failed to get user: %w", err)
	}
	return profile, nil
}

// CreateUserParams contains parameters for creating a user
type CreateUserParams struct {
	Email       string
	Username    string
	DisplayName string
	Password    string
	Role        string
	ActorID     uuid.UUID
}

// CreateUser creates an auth account and its profile.
//
// The two inserts are intentionally not one transaction: the account store
// models a hosted auth provider, where account creation is a separate call.
// If the profile insert fails, the account is deleted best-effort; a failed
// rollback leaves an orphaned account, which is logged with its id so a
// retry or sweep can finish the cleanup (DeleteAuthUser is idempotent).
func (s *UsersService) CreateUser(ctx context.Context, params CreateUserParams) (sqlc.Profile, error) {
	if s.store == nil {
		return sqlc.Profile{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if err := auth.ValidateEmail(email); err != nil {
		return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := auth.ValidateUsername(params.Username); err != nil {
		return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
	}
	if err := auth.ValidatePassword(params.Password); err != nil {
		return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
	}
	role := params.Role
	if role == "" {
		role = auth.RoleUser
	}
	if err := auth.ValidateRole(role); err != nil {
		return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
	}

	hash, err := auth.HashPassword(params.Password)
	if err != nil {
		return sqlc.Profile{}, fmt.Errorf("failed to hash password: %w", err)
	}

	account, err := s.store.Q.CreateAuthUser(ctx, sqlc.CreateAuthUserParams{
		Email:        email,
		PasswordHash: hash,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return sqlc.Profile{}, service.NewError(http.StatusConflict, "conflict", "email already in use")
		}
		return sqlc.Profile{}, fmt.Errorf("failed to create auth account: %w", err)
	}

	var displayName sql.NullString
	if params.DisplayName != "" {
		displayName = sql.NullString{String: params.DisplayName, Valid: true}
	}

	profile, err := s.store.Q.CreateProfile(ctx, sqlc.CreateProfileParams{
		ID:          account.ID,
		Username:    params.Username,
		DisplayName: displayName,
		Role:        role,
	})
	if err != nil {
		// Compensating rollback: remove the account so the email can be
		// retried. Not atomic with the creation above.
		if rbErr := s.store.Q.DeleteAuthUser(ctx, account.ID); rbErr != nil {
			slog.Error("rollback of auth account failed; account orphaned",
				"user_id", account.ID.String(), "error", rbErr)
		}
		if isUniqueViolation(err) {
			return sqlc.Profile{}, service.NewError(http.StatusConflict, "conflict", "username already in use")
		}
		return sqlc.Profile{}, fmt.Errorf("failed to create profile: %w", err)
	}

	s.activity.RecordBestEffort(ctx, activity.RecordParams{
		ActorID:    params.ActorID,
		Action:     "user.create",
		TargetType: "user",
		TargetID:   profile.ID.String(),
		Details:    map[string]any{"username": profile.Username, "role": profile.Role},
	})

	return profile, nil
}

// UpdateUserParams contains parameters for updating a user
type UpdateUserParams struct {
	UserID      uuid.UUID
	DisplayName *string
	Role        *string
	ActorID     uuid.UUID
}

// UpdateUser updates display name and/or role.
func (s *UsersService) UpdateUser(ctx context.Context, params UpdateUserParams) (sqlc.Profile, error) {
	if s.store == nil {
		return sqlc.Profile{}, service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	if params.DisplayName == nil && params.Role == nil {
		return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", "nothing to update")
	}

	current, err := s.GetUser(ctx, params.UserID)
	if err != nil {
		return sqlc.Profile{}, err
	}

	var role sql.NullString
	if params.Role != nil {
		if err := auth.ValidateRole(*params.Role); err != nil {
			return sqlc.Profile{}, service.NewError(http.StatusBadRequest, "invalid_request", err.Error())
		}
		// Demoting the final admin would lock everyone out of this API.
		if current.Role == auth.RoleAdmin && *params.Role != auth.RoleAdmin {
			if params.UserID == params.ActorID {
				return sqlc.Profile{}, service.NewError(http.StatusConflict, "self_demotion", "admins cannot demote themselves")
			}
			admins, err := s.store.Q.CountAdmins(ctx)
			if err != nil {
				return sqlc.Profile{}, fmt.Errorf("failed to count admins: %w", err)
			}
			if admins <= 1 {
				return sqlc.Profile{}, service.NewError(http.StatusConflict, "last_admin", "cannot demote the last admin")
			}
		}
		role = sql.NullString{String: *params.Role, Valid: true}
	}

	var displayName sql.NullString
	if params.DisplayName != nil {
		displayName = sql.NullString{String: *params.DisplayName, Valid: true}
	}

	profile, err := s.store.Q.UpdateProfile(ctx, sqlc.UpdateProfileParams{
		ID:          params.UserID,
		DisplayName: displayName,
		Role:        role,
	})
	if err != nil {
		return sqlc.Profile{}, fmt.Errorf("failed to update user: %w", err)
	}

	details := map[string]any{}
	if params.DisplayName != nil {
		details["displayName"] = *params.DisplayName
	}
	if params.Role != nil {
		details["role"] = *params.Role
	}
	s.activity.RecordBestEffort(ctx, activity.RecordParams{
		ActorID:    params.ActorID,
		Action:     "user.update",
		TargetType: "user",
		TargetID:   profile.ID.String(),
		Details:    details,
	})

	return profile, nil
}

// DeleteUser removes the profile and its auth account in one transaction.
func (s *UsersService) DeleteUser(ctx context.Context, userID, actorID uuid.UUID) error {
	if s.store == nil {
		return service.NewError(http.StatusServiceUnavailable, "service_unavailable", "database not configured")
	}
	if userID == actorID {
		return service.NewError(http.StatusConflict, "self_deletion", "admins cannot delete themselves")
	}

	current, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if current.Role == auth.RoleAdmin {
		admins, err := s.store.Q.CountAdmins(ctx)
		if err != nil {
			return fmt.Errorf("failed to count admins: %w", err)
		}
		if admins <= 1 {
			return service.NewError(http.StatusConflict, "last_admin", "cannot delete the last admin")
		}
	}

	err = s.store.WithTx(ctx, func(q *sqlc.Queries) error {
		if err := q.DeleteProfile(ctx, userID); err != nil {
			return err
		}
		return q.DeleteAuthUser(ctx, userID)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.activity.RecordBestEffort(ctx, activity.RecordParams{
		ActorID:    actorID,
		Action:     "user.delete",
		TargetType: "user",
		TargetID:   userID.String(),
		Details:    map[string]any{"username": current.Username},
	})

	return nil
}

// isUniqueViolation reports a Postgres unique constraint error (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
