package watcher

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParseActions(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{"todo marker", "TODO: wire the retry budget into the client", []string{"wire the retry budget into the client"}},
		{"checkbox", "- [ ] rotate the staging credentials", []string{"rotate the staging credentials", "rotate the staging credentials"}},
		{"intent phrase stops at period", "I'll update the migration script. Then done", []string{"update the migration script"}},
		{"too short", "TODO: fix it", nil},
		{"too long", "ACTION: " + strings.Repeat("a", 210), nil},
		{"nothing", "just chatting about the weather", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseActions(tt.content, "chat.md", now)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d actions, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, action := range got {
				if action.Text != tt.want[i] || action.Source != "chat.md" || !action.FoundAt.Equal(now) {
					t.Errorf("action %d = %+v, want text %q", i, action, tt.want[i])
				}
			}
		})
	}
}

func TestPendingActionsBufferDrain(t *testing.T) {
	buffer := NewPendingActionsBuffer()
	if got := buffer.Drain(); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v", got)
	}

	buffer.Add(Action{Text: "one"}, Action{Text: "two"})
	buffer.Add()
	if got := buffer.Drain(); len(got) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(got))
	}
	if got := buffer.Drain(); len(got) != 0 {
		t.Errorf("drain should clear the buffer, got %d", len(got))
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	write := func(name, content string, age time.Duration) {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		mtime := now.Add(-age)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			t.Fatal(err)
		}
	}
	write("a.md", "TODO: document the hook installer", time.Hour)
	write("b.txt", "TODO: document the hook installer\nNEXT STEP: tag the release build", time.Hour)
	write("old.json", "TODO: this file is far too old to count", 8*24*time.Hour)
	write("image.png", "TODO: not a chat file at all here", time.Hour)

	actions, err := ScanDirectory(dir, now)
	if err != nil {
		t.Fatalf("ScanDirectory failed: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("expected 2 unique actions, got %d: %+v", len(actions), actions)
	}
	if actions[0].Source != "a.md" || actions[1].Text != "tag the release build" {
		t.Errorf("unexpected actions %+v", actions)
	}

	if _, err := ScanDirectory(filepath.Join(dir, "missing"), now); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestChatWatcherCollectsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.md")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	buffer := NewPendingActionsBuffer()
	w := NewChatWatcher(buffer)
	if err := w.Watch(dir); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("TODO: add the container health badge\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(3 * time.Second)
	var got []Action
	for time.Now().Before(deadline) {
		got = append(got, buffer.Drain()...)
		if len(got) > 0 {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(got) == 0 {
		t.Fatal("no actions collected from the write")
	}
	if got[0].Text != "add the container health badge" || got[0].Source != "session.md" {
		t.Errorf("unexpected action %+v", got[0])
	}
}

func TestChatWatcherReplacesPreviousWatch(t *testing.T) {
	first, second := t.TempDir(), t.TempDir()
	w := NewChatWatcher(NewPendingActionsBuffer())

	if err := w.Watch(first); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if err := w.Watch(second); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}
	if w.Path() != second {
		t.Errorf("expected %s, got %s", second, w.Path())
	}
	if err := w.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if w.Path() != "" {
		t.Error("expected no path after Close")
	}
	if err := w.Watch(filepath.Join(first, "missing")); err == nil {
		t.Error("expected error watching a missing path")
	}
}
