package realtime_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"backend/internal/realtime"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func TestHubPublish_RedisPubSubDelivers(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := realtime.NewHub(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	readyCtx, readyCancel := context.WithTimeout(context.Background(), time.Second)
	defer readyCancel()
	if !hub.WaitReady(readyCtx) {
		t.Fatalf("hub subscription not ready")
	}

	client := realtime.NewClient(hub, nil, nil)
	hub.Register(client)

	entryID := uuid.New().String()
	event := realtime.Event{
		Type: realtime.EventActivityRecorded,
		Activity: &realtime.Activity{
			ID:         entryID,
			ActorID:    uuid.New().String(),
			Action:     "user.create",
			TargetType: "user",
			TargetID:   uuid.New().String(),
			CreatedAt:  time.Now().UTC(),
		},
	}
	if err := hub.Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case payload := <-client.SendChan():
		var got realtime.Event
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Type != realtime.EventActivityRecorded || got.Activity == nil || got.Activity.ID != entryID {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
	}
}

func TestHubPublish_NoRedisBroadcastsLocally(t *testing.T) {
	hub := realtime.NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	client := realtime.NewClient(hub, nil, nil)
	hub.Register(client)

	event := realtime.Event{
		Type: realtime.EventActivityRecorded,
		Activity: &realtime.Activity{
			ID:      uuid.New().String(),
			ActorID: uuid.New().String(),
			Action:  "user.delete",
		},
	}
	if err := hub.Publish(ctx, event); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case payload := <-client.SendChan():
		var got realtime.Event
		if err := json.Unmarshal(payload, &got); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if got.Activity == nil || got.Activity.Action != "user.delete" {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for payload")
	}
}

func TestHubPublish_InvalidEventRejected(t *testing.T) {
	hub := realtime.NewHub(nil)
	if err := hub.Publish(context.Background(), realtime.Event{Type: "bogus"}); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := hub.Publish(context.Background(), realtime.Event{Type: realtime.EventActivityRecorded}); err == nil {
		t.Fatalf("expected missing activity error")
	}
}
