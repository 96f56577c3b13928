package service_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"backend/internal/repository"
	"backend/internal/service"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func newAuthzService(t *testing.T) (*service.AuthzService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return service.NewAuthzService(repository.NewStore(db)), mock
}

func expectProfileRole(mock sqlmock.Sqlmock, id uuid.UUID, role string) {
	now := time.Now()
	mock.ExpectQuery(`SELECT id, username, display_name, role, created_at, updated_at, last_seen_at\s+FROM profiles\s+WHERE id`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "display_name", "role", "created_at", "updated_at", "last_seen_at"}).
			AddRow(id, "someone", nil, role, now, now, nil))
}

func TestIsAdmin(t *testing.T) {
	svc, mock := newAuthzService(t)

	adminID := uuid.New()
	expectProfileRole(mock, adminID, "admin")
	isAdmin, err := svc.IsAdmin(context.Background(), adminID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	assert.True(t, isAdmin)

	userID := uuid.New()
	expectProfileRole(mock, userID, "user")
	isAdmin, err = svc.IsAdmin(context.Background(), userID)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	assert.False(t, isAdmin)
}

func TestIsAdmin_DeletedProfileIsNotAdmin(t *testing.T) {
	svc, mock := newAuthzService(t)

	id := uuid.New()
	mock.ExpectQuery(`SELECT id, username, display_name, role, created_at, updated_at, last_seen_at\s+FROM profiles\s+WHERE id`).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	isAdmin, err := svc.IsAdmin(context.Background(), id)
	if err != nil {
		t.Fatalf("IsAdmin() error = %v", err)
	}
	assert.False(t, isAdmin)
}

func TestRequireAdmin_ForbiddenForUserRole(t *testing.T) {
	svc, mock := newAuthzService(t)

	id := uuid.New()
	expectProfileRole(mock, id, "user")

	err := svc.RequireAdmin(context.Background(), id)
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, http.StatusForbidden, se.Status)
	assert.Equal(t, "forbidden", se.Code)
}

func TestRequireAdmin_NoStoreUnavailable(t *testing.T) {
	svc := service.NewAuthzService(nil)

	err := svc.RequireAdmin(context.Background(), uuid.New())
	var se *service.Error
	if !assert.ErrorAs(t, err, &se) {
		return
	}
	assert.Equal(t, http.StatusServiceUnavailable, se.Status)
}
