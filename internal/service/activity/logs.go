package activity

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"backend/internal/db/sqlc"
	"backend/internal/metrics"
	"backend/internal/realtime"
	"backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

// LogsService records and queries the activity log. Recording is a side
// effect of admin mutations: a write failure is logged but never fails the
// mutation that triggered it.
type LogsService struct {
	store     *repository.Store
	publisher realtime.Publisher
}

// NewLogsService creates a new LogsService.
func NewLogsService(store *repository.Store, publisher realtime.Publisher) *LogsService {
	return &LogsService{store: store, publisher: publisher}
}

// RecordParams contains parameters for one activity entry.
type RecordParams struct {
	ActorID    uuid.UUID
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]any
}

// Record writes an activity entry and pushes it to the live stream.
func (s *LogsService) Record(ctx context.Context, params RecordParams) (sqlc.ActivityLog, error) {
	var details pqtype.NullRawMessage
	if len(params.Details) > 0 {
		raw, err := json.Marshal(params.Details)
		if err != nil {
			return sqlc.ActivityLog{}, fmt.Errorf("failed to marshal details: %w", err)
		}
		details = pqtype.NullRawMessage{RawMessage: raw, Valid: true}
	}

	entry, err := s.store.Q.CreateActivityLog(ctx, sqlc.CreateActivityLogParams{
		ActorID:    params.ActorID,
		Action:     params.Action,
		TargetType: params.TargetType,
		TargetID:   params.TargetID,
		Details:    details,
	})
	if err != nil {
		return sqlc.ActivityLog{}, fmt.Errorf("failed to create activity log: %w", err)
	}

	metrics.ActivityEventsTotal.WithLabelValues(entry.Action).Inc()

	if s.publisher != nil {
		event := realtime.Event{
			Type: realtime.EventActivityRecorded,
			Activity: &realtime.Activity{
				ID:         entry.ID.String(),
				ActorID:    entry.ActorID.String(),
				Action:     entry.Action,
				TargetType: entry.TargetType,
				TargetID:   entry.TargetID,
				CreatedAt:  entry.CreatedAt,
			},
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			slog.Warn("failed to publish activity event", "action", entry.Action, "error", err)
		}
	}

	return entry, nil
}

// RecordBestEffort is Record for side-effect call sites: failures are logged
// and swallowed.
func (s *LogsService) RecordBestEffort(ctx context.Context, params RecordParams) {
	if _, err := s.Record(ctx, params); err != nil {
		slog.Warn("failed to record activity", "action", params.Action, "target_id", params.TargetID, "error", err)
	}
}

// ListParams contains parameters for listing activity entries.
type ListParams struct {
	ActorID    *uuid.UUID
	Action     *string
	TargetType *string
	Limit      int32
	Offset     int32
}

// ListResult contains activity entries with actor information.
type ListResult struct {
	Entries []sqlc.ListActivityLogsRow
	Total   int64
}

// List returns a paginated, filtered view of the activity log, newest first.
func (s *LogsService) List(ctx context.Context, params ListParams) (ListResult, error) {
	var actorID uuid.NullUUID
	if params.ActorID != nil {
		actorID = uuid.NullUUID{UUID: *params.ActorID, Valid: true}
	}

	var action sql.NullString
	if params.Action != nil {
		action = sql.NullString{String: *params.Action, Valid: true}
	}

	var targetType sql.NullString
	if params.TargetType != nil {
		targetType = sql.NullString{String: *params.TargetType, Valid: true}
	}

	entries, err := s.store.Q.ListActivityLogs(ctx, sqlc.ListActivityLogsParams{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to list activity logs: %w", err)
	}

	total, err := s.store.Q.CountActivityLogs(ctx, sqlc.CountActivityLogsParams{
		ActorID:    actorID,
		Action:     action,
		TargetType: targetType,
	})
	if err != nil {
		return ListResult{}, fmt.Errorf("failed to count activity logs: %w", err)
	}

	return ListResult{Entries: entries, Total: total}, nil
}
