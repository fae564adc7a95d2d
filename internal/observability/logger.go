package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan        EventType = "plan"
	EventTypeStep        EventType = "step"
	EventTypeGenre       EventType = "genre"
	EventTypeCatalog     EventType = "catalog"
	EventTypePolicyCheck EventType = "policy_check"
	EventTypeRun         EventType = "run"
	EventTypeLLM         EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return NewLoggerWithSink(filepath.Join("logs", "llm.jsonl"))
}

// NewLoggerWithSink places the llm jsonl sink at the given path.
func NewLoggerWithSink(path string) *Logger {
	return &Logger{
		llmLogPath: path,
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlan(runID string, query string, steps []string) {
	l.Log(Event{
		Type:  EventTypePlan,
		RunID: runID,
		Data: map[string]any{
			"query": query,
			"steps": steps,
		},
	})
}

func (l *Logger) LogStep(runID string, index int, kind string, task string) {
	l.Log(Event{
		Type:  EventTypeStep,
		RunID: runID,
		Data: map[string]any{
			"index": index,
			"kind":  kind,
			"task":  task,
		},
	})
}

func (l *Logger) LogGenre(runID string, query string, label string) {
	l.Log(Event{
		Type:  EventTypeGenre,
		RunID: runID,
		Data: map[string]string{
			"query": query,
			"label": label,
		},
	})
}

func (l *Logger) LogCatalog(runID string, subject string, count int) {
	l.Log(Event{
		Type:  EventTypeCatalog,
		RunID: runID,
		Data: map[string]any{
			"subject": subject,
			"count":   count,
		},
	})
}

func (l *Logger) LogPolicyCheck(runID string, task string, allowed bool, reason string) {
	l.Log(Event{
		Type:  EventTypePolicyCheck,
		RunID: runID,
		Data: map[string]any{
			"task":    task,
			"allowed": allowed,
			"reason":  reason,
		},
	})
}

func (l *Logger) LogRun(runID string, query string, genre string, titles []string) {
	l.Log(Event{
		Type:  EventTypeRun,
		RunID: runID,
		Data: map[string]any{
			"query":  query,
			"genre":  genre,
			"titles": titles,
		},
	})
}

func (l *Logger) LogLLM(runID string, prompt string, response string) {
	l.Log(Event{
		Type:  EventTypeLLM,
		RunID: runID,
		Data: map[string]string{
			"prompt":   prompt,
			"response": response,
		},
	})
}
