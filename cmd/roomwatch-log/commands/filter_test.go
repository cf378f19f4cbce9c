package commands

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roomwatch/roomwatch-go/pkg/log"
)

func readAll(t *testing.T, path string) []log.Event {
	t.Helper()
	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer reader.Close()

	events, err := reader.ReadAll()
	if err != nil {
		t.Fatalf("failed to read events: %v", err)
	}
	return events
}

func TestFilterByRequester(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 15, 32, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Requester: "u1", Category: log.CategoryNotification},
		{Timestamp: ts, Requester: "u2", Category: log.CategoryNotification},
		{Timestamp: ts, Requester: "u1", Category: log.CategorySubscription},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.cbor")

	n, err := RunFilter(path, FilterOptions{Output: outPath, Requester: "u1"})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 events, got %d", n)
	}

	for _, e := range readAll(t, outPath) {
		if e.Requester != "u1" {
			t.Errorf("expected u1, got %s", e.Requester)
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, Category: log.CategoryPresence},
		{Timestamp: base.Add(30 * time.Minute), Category: log.CategoryPresence},
		{Timestamp: base.Add(2 * time.Hour), Category: log.CategoryPresence},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.cbor")

	n, err := RunFilter(path, FilterOptions{
		Output:    outPath,
		TimeStart: "2026-01-28T10:15:00Z",
		TimeEnd:   "2026-01-28T11:00:00Z",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 event, got %d", n)
	}
	got := readAll(t, outPath)
	if !got[0].Timestamp.Equal(base.Add(30 * time.Minute)) {
		t.Errorf("wrong event kept: %v", got[0].Timestamp)
	}
}

func TestFilterByCategoryAndDestination(t *testing.T) {
	ts := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: ts, Category: log.CategoryNotification, Destination: "general"},
		{Timestamp: ts, Category: log.CategoryNotification, Destination: "voice"},
		{Timestamp: ts, Category: log.CategoryError, Destination: "general"},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.cbor")

	n, err := RunFilter(path, FilterOptions{
		Output:      outPath,
		Category:    "notification",
		Destination: "general",
	})
	if err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 event, got %d", n)
	}
}

func TestFilterInvalidOptions(t *testing.T) {
	path := createTestLogFile(t, nil)
	outPath := filepath.Join(t.TempDir(), "filtered.cbor")

	tests := []struct {
		name string
		opts FilterOptions
	}{
		{"bad time-start", FilterOptions{Output: outPath, TimeStart: "yesterday"}},
		{"bad time-end", FilterOptions{Output: outPath, TimeEnd: "10:00"}},
		{"bad category", FilterOptions{Output: outPath, Category: "frames"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := RunFilter(path, tt.opts); err == nil {
				t.Error("expected error")
			}
		})
	}
}
