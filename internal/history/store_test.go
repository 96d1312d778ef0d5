package history_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"ytsync/internal/history"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "state", "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndListRuns(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, playlist := range []string{"PLone", "PLtwo", "PLthree"} {
		id, err := store.RecordRun(ctx, history.Run{
			PlaylistID: playlist,
			Location:   "/srv/music/" + playlist,
			Format:     "audio",
			Total:      10,
			Present:    7,
			Fetched:    2,
			Failed:     1,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		})
		if err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
		if id == "" {
			t.Fatal("expected generated run id")
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Most recently finished first.
	if runs[0].PlaylistID != "PLthree" || runs[1].PlaylistID != "PLtwo" {
		t.Fatalf("unexpected order: %s, %s", runs[0].PlaylistID, runs[1].PlaylistID)
	}
	if runs[0].Fetched != 2 || runs[0].Failed != 1 || runs[0].Total != 10 {
		t.Fatalf("unexpected counts: %+v", runs[0])
	}
	if !runs[0].FinishedAt.After(runs[0].StartedAt) {
		t.Fatalf("timestamps not preserved: %+v", runs[0])
	}
}

func TestRecentRunsEmptyStore(t *testing.T) {
	store := openStore(t)
	runs, err := store.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 0 {
		t.Fatalf("expected no runs, got %d", len(runs))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	first, err := history.Open(path)
	if err != nil {
		t.Fatalf("first Open: %v", err)
	}
	if _, err := first.RecordRun(context.Background(), history.Run{
		PlaylistID: "PLabc",
		Location:   "/srv/music",
		Format:     "audio",
		StartedAt:  time.Now(),
		FinishedAt: time.Now(),
	}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	second, err := history.Open(path)
	if err != nil {
		t.Fatalf("second Open: %v", err)
	}
	defer second.Close()

	runs, err := second.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected persisted run, got %d", len(runs))
	}
}
