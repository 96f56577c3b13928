package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"backend/internal/db/sqlc"
	"backend/internal/service/activity"

	"github.com/google/uuid"
)

// ActivityView is the wire form of an activity log entry.
type ActivityView struct {
	ID            string          `json:"id"`
	ActorID       string          `json:"actorId"`
	ActorUsername *string         `json:"actorUsername,omitempty"`
	Action        string          `json:"action"`
	TargetType    string          `json:"targetType"`
	TargetID      string          `json:"targetId"`
	Details       json.RawMessage `json:"details,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func toActivityView(row sqlc.ListActivityLogsRow) ActivityView {
	v := ActivityView{
		ID:         row.ID.String(),
		ActorID:    row.ActorID.String(),
		Action:     row.Action,
		TargetType: row.TargetType,
		TargetID:   row.TargetID,
		CreatedAt:  row.CreatedAt,
	}
	if row.ActorUsername.Valid {
		v.ActorUsername = &row.ActorUsername.String
	}
	if row.Details.Valid {
		v.Details = row.Details.RawMessage
	}
	return v
}

type activityListResponse struct {
	Entries []ActivityView `json:"entries"`
	Total   int64          `json:"total"`
	Limit   int32          `json:"limit"`
	Offset  int32          `json:"offset"`
}

// GetAdminActivity handles GET /api/v1/admin/activity.
func (h API) GetAdminActivity(w http.ResponseWriter, r *http.Request) {
	if h.Activity == nil {
		writeJSON(w, http.StatusServiceUnavailable, Error{Code: "service_unavailable", Message: "activity not configured"})
		return
	}
	limit, offset := parsePagination(r)
	params := activity.ListParams{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("actorId"); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, Error{Code: "invalid_request", Message: "invalid actor id"})
			return
		}
		params.ActorID = &actorID
	}
	if action := r.URL.Query().Get("action"); action != "" {
		params.Action = &action
	}
	if targetType := r.URL.Query().Get("targetType"); targetType != "" {
		params.TargetType = &targetType
	}

	result, err := h.Activity.List(r.Context(), params)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	entries := make([]ActivityView, 0, len(result.Entries))
	for _, row := range result.Entries {
		entries = append(entries, toActivityView(row))
	}
	writeJSON(w, http.StatusOK, activityListResponse{Entries: entries, Total: result.Total, Limit: limit, Offset: offset})
}
