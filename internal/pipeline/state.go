package pipeline

import (
	"encoding/json"
	"fmt"
)

// Step is one descriptor in a model-generated plan. The task text is the
// only field the executor reads; any extra keys the model emits are kept
// for diagnostics but never interpreted.
type Step struct {
	Task  string
	Extra map[string]any
}

func (s *Step) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if task, ok := raw["task"].(string); ok {
		s.Task = task
	}
	delete(raw, "task")
	if len(raw) > 0 {
		s.Extra = raw
	}
	return nil
}

func (s Step) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Extra)+1)
	for k, v := range s.Extra {
		out[k] = v
	}
	out["task"] = s.Task
	return json.Marshal(out)
}

// Plan is an ordered sequence of steps. It is produced once per run and
// only ever indexed, never mutated.
type Plan []Step

// BookSummary is the projection stored by a fetch step.
type BookSummary struct {
	Title         string   `json:"title"`
	Authors       []string `json:"authors"`
	AverageRating float64  `json:"averageRating"`
}

// BookPick is the projection stored by a filter step.
type BookPick struct {
	Title   string   `json:"title"`
	Authors []string `json:"authors"`
}

// RunState is the mutable accumulator threaded through step execution for
// one request. It is owned by a single Runner and discarded after the run.
type RunState struct {
	Query         string
	Genre         string
	Plan          Plan
	CurrentStep   int
	Done          bool
	Books         []BookSummary
	FilteredBooks []BookPick
	TopBook       BookPick
	Presentation  []string
}

// PlanParseError reports a model reply that could not be turned into a
// plan. It is not recovered inside the pipeline; malformed model output
// fails the run rather than silently yielding an empty plan.
type PlanParseError struct {
	Raw string
	Err error
}

func (e *PlanParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not parse plan from model reply: %v", e.Err)
	}
	return "could not parse plan from model reply: no bracketed list found"
}

func (e *PlanParseError) Unwrap() error { return e.Err }
