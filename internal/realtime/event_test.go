package realtime_test

import (
	"testing"

	"backend/internal/realtime"
)

func TestEventValidate(t *testing.T) {
	cases := []struct {
		name    string
		event   realtime.Event
		wantErr bool
	}{
		{
			name: "valid activity",
			event: realtime.Event{
				Type:     realtime.EventActivityRecorded,
				Activity: &realtime.Activity{Action: "user.create"},
			},
		},
		{
			name:    "missing activity",
			event:   realtime.Event{Type: realtime.EventActivityRecorded},
			wantErr: true,
		},
		{
			name: "blank action",
			event: realtime.Event{
				Type:     realtime.EventActivityRecorded,
				Activity: &realtime.Activity{Action: "   "},
			},
			wantErr: true,
		},
		{
			name:    "unknown type",
			event:   realtime.Event{Type: "something_else"},
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.event.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
