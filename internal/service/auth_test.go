package service_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"backend/internal/auth"
	"backend/internal/repository"
	"backend/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newAuthService(t *testing.T) (*service.AuthService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store := repository.NewStore(db)
	tokens := auth.NewTokenManager([]byte("test-secret"), time.Hour)
	return service.NewAuthService(store, tokens), mock
}

func TestLogin_Success(t *testing.T) {
	svc, mock := newAuthService(t)

	userID := uuid.New()
	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}

	now := time.Now()
	mock.ExpectQuery(`SELECT id, email, password_hash, created_at\s+FROM auth_users\s+WHERE email`).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(userID, "alice@example.com", hash, now))
	mock.ExpectQuery(`SELECT id, username, display_name, role, created_at, updated_at, last_seen_at\s+FROM profiles\s+WHERE id`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "display_name", "role", "created_at", "updated_at", "last_seen_at"}).
			AddRow(userID, "alice", nil, "admin", now, now, nil))
	mock.ExpectExec(`UPDATE profiles SET last_seen_at`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// Email is normalized before lookup.
	result, err := svc.Login(context.Background(), "  Alice@Example.COM ", "Sup3rSecret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, 3600, result.ExpiresInSeconds)
	assert.Equal(t, "alice", result.Profile.Username)

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLogin_UnknownEmailIndistinguishable(t *testing.T) {
	svc, mock := newAuthService(t)

	mock.ExpectQuery(`SELECT id, email, password_hash, created_at\s+FROM auth_users\s+WHERE email`).
		WillReturnError(sql.ErrNoRows)

	_, err := svc.Login(context.Background(), "nobody@example.com", "Sup3rSecret")
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "invalid_credentials", se.Code)
}

func TestLogin_WrongPasswordIndistinguishable(t *testing.T) {
	svc, mock := newAuthService(t)

	userID := uuid.New()
	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	mock.ExpectQuery(`SELECT id, email, password_hash, created_at\s+FROM auth_users\s+WHERE email`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(userID, "alice@example.com", hash, time.Now()))

	_, err = svc.Login(context.Background(), "alice@example.com", "WrongPass1")
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, http.StatusUnauthorized, se.Status)
	assert.Equal(t, "invalid_credentials", se.Code)
}

func TestLogin_OrphanedAccountRejected(t *testing.T) {
	svc, mock := newAuthService(t)

	userID := uuid.New()
	hash, err := auth.HashPassword("Sup3rSecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	mock.ExpectQuery(`SELECT id, email, password_hash, created_at\s+FROM auth_users\s+WHERE email`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "created_at"}).
			AddRow(userID, "alice@example.com", hash, time.Now()))
	mock.ExpectQuery(`SELECT id, username, display_name, role, created_at, updated_at, last_seen_at\s+FROM profiles\s+WHERE id`).
		WithArgs(userID).
		WillReturnError(sql.ErrNoRows)

	_, err = svc.Login(context.Background(), "alice@example.com", "Sup3rSecret")
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, "invalid_credentials", se.Code)
}

func TestLogin_EmptyInputRejected(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Login(context.Background(), "", "")
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, http.StatusBadRequest, se.Status)
}
