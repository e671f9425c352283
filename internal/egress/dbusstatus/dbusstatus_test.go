package dbusstatus

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/houneteam/occusensor/internal/snapshot"
)

func TestStatusReturnsLatestUpdatedSnapshot(t *testing.T) {
	svc := &Service{}
	snap := snapshot.Snapshot{
		GeneratedAt: time.Unix(1000, 0),
		Metadata:    snapshot.Metadata{ScaleFactor: 1.5},
	}
	svc.Update(snap)

	body, dbusErr := svc.Status()
	if dbusErr != nil {
		t.Fatalf("Status() error: %v", dbusErr)
	}

	var got snapshot.Snapshot
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("unmarshal Status() output: %v", err)
	}
	if got.Metadata.ScaleFactor != 1.5 {
		t.Fatalf("ScaleFactor = %v, want 1.5", got.Metadata.ScaleFactor)
	}
}

func TestSendUpdatesCache(t *testing.T) {
	svc := &Service{}
	snap := snapshot.Snapshot{GeneratedAt: time.Unix(2000, 0)}

	if err := svc.Send(context.Background(), snap); err != nil {
		t.Fatalf("Send() error: %v", err)
	}

	body, _ := svc.Status()
	var got snapshot.Snapshot
	if err := json.Unmarshal([]byte(body), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.GeneratedAt.Equal(snap.GeneratedAt) {
		t.Fatalf("GeneratedAt = %v, want %v", got.GeneratedAt, snap.GeneratedAt)
	}
}
