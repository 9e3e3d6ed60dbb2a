package hermes

import (
	"encoding/json"
	"testing"
)

func TestChannelCommittedEncoding(t *testing.T) {
	ev := ChannelCommitted{
		RunID:     "run-1",
		ChannelID: 123456789012345678,
		Channel:   "c123456789012345678",
		Messages:  42,
		Timestamp: "2026-01-02T03:04:05Z",
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	// Snowflakes exceed float64 precision, so they travel as strings.
	if raw["channel_id"] != "123456789012345678" {
		t.Errorf("expected channel_id as string, got %v", raw["channel_id"])
	}
	if raw["run_id"] != "run-1" {
		t.Errorf("expected run_id run-1, got %v", raw["run_id"])
	}
	if raw["messages"] != float64(42) {
		t.Errorf("expected messages 42, got %v", raw["messages"])
	}
}

func TestImportCompletedEncoding(t *testing.T) {
	data, err := json.Marshal(ImportCompleted{RunID: "run-2", Channels: 3, Messages: 10, StoredRows: 12, Seconds: 1.5})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var got ImportCompleted
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if got.Channels != 3 || got.Messages != 10 || got.StoredRows != 12 || got.Seconds != 1.5 {
		t.Errorf("unexpected decoded event: %+v", got)
	}
}
