package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"triage-service/internal/app"
	"triage-service/internal/domain"
)

func TestSessionStoreSetsAndClearsKeys(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	ctx := context.Background()

	session := &app.Session{
		ID:        "session-1",
		Specialty: "dona",
		State:     app.StateAwaitingBranch,
		Current:   "dona_branch",
		Answers: []domain.AnsweredQuestion{
			{QuestionID: "dona_info", Response: "34"},
		},
		CreatedAt: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("triage:session:session-1") {
		t.Fatalf("expected redis key to be set")
	}
	if ttl := mr.TTL("triage:session:session-1"); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %v", ttl)
	}

	got, err := store.Get(ctx, "session-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.State != app.StateAwaitingBranch || got.Current != "dona_branch" || len(got.Answers) != 1 {
		t.Fatalf("unexpected session %+v", got)
	}

	if err := store.Delete(ctx, "session-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if mr.Exists("triage:session:session-1") {
		t.Fatalf("expected redis key to be removed")
	}
}

func TestSessionStoreExpiredSessionIsNotFound(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	store := NewSessionStore(newClient(mr), time.Minute)
	ctx := context.Background()
	if err := store.Save(ctx, &app.Session{ID: "session-1", Specialty: "adults"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if _, err := store.Get(ctx, "session-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.Delete(ctx, "session-1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on delete, got %v", err)
	}
}
