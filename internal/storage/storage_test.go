package storage

import (
	"path/filepath"
	"testing"
	"time"

	"eapassist/internal/core"
)

func TestFileStorage_SaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stats.json")
	fs := NewFileStorage(path)

	saved := &core.RequestStats{
		TotalRequests:      3,
		SuccessfulRequests: 2,
		FailedRequests:     1,
		TotalResponseTime:  450,
		LastRequestTime:    time.Now().Truncate(time.Second),
		RequestHistory: []core.RequestRecord{
			{Timestamp: time.Now().Truncate(time.Second), Success: true, ResponseTime: 150, Route: "chat", Provider: core.ProviderDeepSeek},
		},
	}
	if err := fs.SaveStats(saved); err != nil {
		t.Fatalf("SaveStats failed: %v", err)
	}

	loaded, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("LoadStats failed: %v", err)
	}
	if loaded.TotalRequests != 3 || loaded.SuccessfulRequests != 2 || loaded.FailedRequests != 1 {
		t.Errorf("counters not round-tripped: %+v", loaded)
	}
	if len(loaded.RequestHistory) != 1 || loaded.RequestHistory[0].Provider != core.ProviderDeepSeek {
		t.Errorf("history not round-tripped: %+v", loaded.RequestHistory)
	}
}

func TestFileStorage_LoadMissingFile(t *testing.T) {
	fs := NewFileStorage(filepath.Join(t.TempDir(), "never-written.json"))

	stats, err := fs.LoadStats()
	if err != nil {
		t.Fatalf("missing file must not be an error: %v", err)
	}
	if stats.TotalRequests != 0 || stats.RequestHistory == nil {
		t.Errorf("expected zero stats with empty history, got %+v", stats)
	}
}

func TestInitStorage_DefaultsToFile(t *testing.T) {
	t.Setenv("REDIS_URL", "")

	store, err := InitStorage(&core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage failed: %v", err)
	}
	if _, ok := store.(*FileStorage); !ok {
		t.Errorf("expected file storage without REDIS_URL, got %T", store)
	}
}

func TestInitStorage_BadRedisFallsBackToFile(t *testing.T) {
	t.Setenv("REDIS_URL", "redis://127.0.0.1:1/0")

	store, err := InitStorage(&core.NopLogger{})
	if err != nil {
		t.Fatalf("InitStorage must fall back, not fail: %v", err)
	}
	if _, ok := store.(*FileStorage); !ok {
		t.Errorf("expected file storage fallback on unreachable Redis, got %T", store)
	}
}
