package realtime

import (
	"errors"
	"strings"
	"time"
)

// EventType identifies the kind of realtime update.
type EventType string

const (
	EventActivityRecorded EventType = "activity_recorded"
)

// Activity is the wire form of an activity log entry pushed to dashboards.
type Activity struct {
	ID            string    `json:"id"`
	ActorID       string    `json:"actorId"`
	ActorUsername string    `json:"actorUsername,omitempty"`
	Action        string    `json:"action"`
	TargetType    string    `json:"targetType"`
	TargetID      string    `json:"targetId"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Event is the payload delivered over realtime channels.
type Event struct {
	Type     EventType `json:"type"`
	Activity *Activity `json:"activity,omitempty"`
}

// Validate ensures required fields for each event type.
func (e Event) Validate() error {
	switch e.Type {
	case EventActivityRecorded:
		if e.Activity == nil {
			return errors.New("activity required")
		}
		if strings.TrimSpace(e.Activity.Action) == "" {
			return errors.New("action required")
		}
	default:
		return errors.New("invalid event type")
	}
	return nil
}
