package logging

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"
)

func receiveEntry(t *testing.T, client *Client) LogEntry {
	t.Helper()
	select {
	case raw := <-client.Channel:
		var entry LogEntry
		if err := json.Unmarshal(raw, &entry); err != nil {
			t.Fatalf("failed to unmarshal delivered entry: %v", err)
		}
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("no log entry delivered")
		return LogEntry{}
	}
}

func TestBroadcasterDeliversToMatchingClient(t *testing.T) {
	b := GetBroadcaster()

	client := b.NewClient(AppliedFilters{Channel: "all", Level: slog.LevelInfo})
	b.RegisterClient(client)
	defer b.UnregisterClient(client)

	// Registration goes through the run loop; give it a beat.
	time.Sleep(10 * time.Millisecond)

	b.SubmitLog(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Channel:   string(ChannelEngagement),
		Level:     "INFO",
		Message:   "points awarded",
	})

	entry := receiveEntry(t, client)
	if entry.Channel != string(ChannelEngagement) {
		t.Fatalf("entry.Channel = %q, want %q", entry.Channel, ChannelEngagement)
	}
	if entry.Message != "points awarded" {
		t.Fatalf("entry.Message = %q, want %q", entry.Message, "points awarded")
	}
}

func TestBroadcasterFiltersByChannel(t *testing.T) {
	b := GetBroadcaster()

	client := b.NewClient(AppliedFilters{Channel: ChannelAuth, Level: slog.LevelInfo})
	b.RegisterClient(client)
	defer b.UnregisterClient(client)

	time.Sleep(10 * time.Millisecond)

	b.SubmitLog(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Channel:   string(ChannelCache),
		Level:     "INFO",
		Message:   "sweep finished",
	})
	b.SubmitLog(LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Channel:   string(ChannelAuth),
		Level:     "INFO",
		Message:   "member logged in",
	})

	entry := receiveEntry(t, client)
	if entry.Channel != string(ChannelAuth) {
		t.Fatalf("entry.Channel = %q, a %q entry leaked past the filter", entry.Channel, ChannelCache)
	}

	select {
	case raw := <-client.Channel:
		t.Fatalf("unexpected second delivery: %s", raw)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSSEWriterForwardsStructuredLogs(t *testing.T) {
	b := GetBroadcaster()

	client := b.NewClient(AppliedFilters{Channel: "all", Level: slog.LevelInfo})
	b.RegisterClient(client)
	defer b.UnregisterClient(client)

	time.Sleep(10 * time.Millisecond)

	w := NewSSEWriter()
	line := map[string]any{
		"time":    time.Now().UTC().Format(time.RFC3339),
		"level":   "INFO",
		"channel": string(ChannelContent),
		"msg":     "story published",
	}
	raw, err := json.Marshal(line)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := w.Write(raw); err != nil {
		t.Fatalf("Write: %v", err)
	}

	entry := receiveEntry(t, client)
	if entry.Channel != string(ChannelContent) {
		t.Fatalf("entry.Channel = %q, want %q", entry.Channel, ChannelContent)
	}
	if entry.Message != "story published" {
		t.Fatalf("entry.Message = %q, want %q", entry.Message, "story published")
	}
	if entry.Level != "INFO" {
		t.Fatalf("entry.Level = %q, want INFO", entry.Level)
	}
}
