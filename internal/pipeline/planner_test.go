package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel returns a canned reply and records the prompt it was given.
type fakeModel struct {
	reply      string
	err        error
	lastPrompt string
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	if len(messages) > 0 && len(messages[0].Parts) > 0 {
		if text, ok := messages[0].Parts[0].(llms.TextContent); ok {
			f.lastPrompt = text.Text
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: f.reply}},
	}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	f.lastPrompt = prompt
	return f.reply, f.err
}

const wellFormedReply = `Here is your plan:
[
  {"task": "Query a book database or API for horror books."},
  {"task": "Filter the results to identify books with high ratings."},
  {"task": "Present the top rated book.", "limit": 5}
]
Let me know if you need anything else.`

func TestParsePlan(t *testing.T) {
	plan, err := ParsePlan(wellFormedReply)
	if err != nil {
		t.Fatalf("ParsePlan failed: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(plan))
	}
	if plan[0].Task != "Query a book database or API for horror books." {
		t.Errorf("unexpected first task: %q", plan[0].Task)
	}
	if plan[2].Extra["limit"] != float64(5) {
		t.Errorf("extra key not preserved: %v", plan[2].Extra)
	}
}

func TestParsePlanNoBrackets(t *testing.T) {
	_, err := ParsePlan("I cannot help with that request.")
	if err == nil {
		t.Fatal("expected error for reply without a bracketed list")
	}
	var parseErr *PlanParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *PlanParseError, got %T", err)
	}
}

func TestParsePlanMalformedList(t *testing.T) {
	_, err := ParsePlan(`[{'task': 'python style quoting'}]`)
	if err == nil {
		t.Fatal("expected error for undecodable list")
	}
	var parseErr *PlanParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *PlanParseError, got %T", err)
	}
	if parseErr.Err == nil {
		t.Error("expected decode error to be retained")
	}
}

func TestParsePlanMissingTask(t *testing.T) {
	// A step without a task is tolerated at parse time; it classifies as
	// unknown later and no-ops.
	plan, err := ParsePlan(`[{"note": "no task here"}]`)
	if err != nil {
		t.Fatalf("ParsePlan failed: %v", err)
	}
	if plan[0].Task != "" {
		t.Errorf("expected empty task, got %q", plan[0].Task)
	}
}

func TestGeneratePlan(t *testing.T) {
	model := &fakeModel{reply: wellFormedReply}
	plan, err := GeneratePlan(context.Background(), model, "a scary ghost story", nil, "")
	if err != nil {
		t.Fatalf("GeneratePlan failed: %v", err)
	}
	if len(plan) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(plan))
	}
	if !strings.Contains(model.lastPrompt, `User request: "a scary ghost story"`) {
		t.Errorf("prompt missing user request: %q", model.lastPrompt)
	}
	if !strings.Contains(model.lastPrompt, "AI workflow planner") {
		t.Errorf("prompt missing instruction header")
	}
}

func TestGeneratePlanModelError(t *testing.T) {
	model := &fakeModel{err: errors.New("boom")}
	_, err := GeneratePlan(context.Background(), model, "anything", nil, "")
	if err == nil {
		t.Fatal("expected model error to propagate")
	}
	var parseErr *PlanParseError
	if errors.As(err, &parseErr) {
		t.Error("model transport failure must not be reported as a parse error")
	}
}
