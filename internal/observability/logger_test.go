package observability

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogLLMWritesToSink(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "logs", "llm.jsonl")
	logger := NewLoggerWithSink(sink)

	logger.LogLLM("run-1", "the prompt", "the reply")

	data, err := os.ReadFile(sink)
	if err != nil {
		t.Fatalf("sink file not written: %v", err)
	}

	var evt Event
	if err := json.Unmarshal(data, &evt); err != nil {
		t.Fatalf("sink line is not valid JSON: %v", err)
	}
	if evt.Type != EventTypeLLM {
		t.Errorf("event type = %q, want %q", evt.Type, EventTypeLLM)
	}
	if evt.RunID != "run-1" {
		t.Errorf("run id = %q, want %q", evt.RunID, "run-1")
	}
	if evt.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
	if !strings.Contains(string(data), "the prompt") || !strings.Contains(string(data), "the reply") {
		t.Errorf("sink line missing exchange: %s", data)
	}
}

func TestOnlyLLMEventsReachSink(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "llm.jsonl")
	logger := NewLoggerWithSink(sink)

	logger.LogPlan("run-1", "query", []string{"a step"})
	logger.LogStep("run-1", 0, "fetch", "a step")

	if _, err := os.Stat(sink); !os.IsNotExist(err) {
		t.Error("non-llm events must not be written to the llm sink")
	}
}

func TestLogRotation(t *testing.T) {
	sink := filepath.Join(t.TempDir(), "llm.jsonl")
	logger := NewLoggerWithSink(sink)
	logger.maxSize = 1 // force rotation on the second write

	logger.LogLLM("run-1", "first prompt", "first reply")
	logger.LogLLM("run-2", "second prompt", "second reply")

	old, err := os.ReadFile(sink + ".old")
	if err != nil {
		t.Fatalf("rotated file missing: %v", err)
	}
	if !strings.Contains(string(old), "first prompt") {
		t.Errorf("rotated file should hold the first event: %s", old)
	}

	current, err := os.ReadFile(sink)
	if err != nil {
		t.Fatalf("current sink missing after rotation: %v", err)
	}
	if !strings.Contains(string(current), "second prompt") {
		t.Errorf("current sink should hold the second event: %s", current)
	}
}
