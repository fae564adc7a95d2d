package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smehra/bookwise/internal/catalog"
	"github.com/smehra/bookwise/internal/observability"
)

func TestRunnerConsumesExactlyOneStepPerNext(t *testing.T) {
	exec := &Executor{}
	plan := Plan{
		{Task: "do something unrecognized"},
		{Task: "another mystery step about nothing"},
		{Task: "a third unmatched instruction"},
	}
	runner := NewRunner(exec, "anything", plan)

	ctx := context.Background()
	for i := 1; i <= len(plan); i++ {
		status, err := runner.Next(ctx)
		if err != nil {
			t.Fatalf("Next %d failed: %v", i, err)
		}
		if runner.State().CurrentStep != i {
			t.Errorf("after Next %d, index = %d", i, runner.State().CurrentStep)
		}
		wantDone := i == len(plan)
		if (status == StatusDone) != wantDone {
			t.Errorf("after Next %d, status = %v", i, status)
		}
	}

	// Further invocations are no-ops.
	status, err := runner.Next(ctx)
	if err != nil {
		t.Fatalf("Next after done failed: %v", err)
	}
	if status != StatusDone || runner.State().CurrentStep != len(plan) {
		t.Errorf("Next after done must not advance: status=%v index=%d", status, runner.State().CurrentStep)
	}
}

func TestRunnerEmptyPlan(t *testing.T) {
	runner := NewRunner(&Executor{}, "anything", Plan{})
	status, err := runner.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if status != StatusDone {
		t.Errorf("empty plan should complete immediately, got %v", status)
	}
}

const planReply = `[
  {"task": "Query a book database or API for science fiction books."},
  {"task": "Filter the results to identify books with high ratings."},
  {"task": "Present the book with the highest overall score."}
]`

func TestPipelineRunEndToEnd(t *testing.T) {
	_, client := newCatalogServer(t, catalogFixture)
	p := &Pipeline{
		Model:   &fakeModel{reply: planReply},
		Catalog: client,
	}

	state, err := p.Run(context.Background(), "Suggest the best science fiction book")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !state.Done {
		t.Error("run did not reach done")
	}
	if state.Genre != "science fiction" {
		t.Errorf("genre = %q", state.Genre)
	}
	want := []string{"B", "A", "C"}
	if len(state.Presentation) != 3 {
		t.Fatalf("presentation = %v", state.Presentation)
	}
	for i, title := range want {
		if state.Presentation[i] != title {
			t.Errorf("presentation[%d] = %q, want %q", i, state.Presentation[i], title)
		}
	}
	if state.TopBook.Title != "B" {
		t.Errorf("top book = %q, want B", state.TopBook.Title)
	}
}

func TestPipelineRunLogsModelExchange(t *testing.T) {
	_, client := newCatalogServer(t, catalogFixture)
	sink := filepath.Join(t.TempDir(), "llm.jsonl")
	p := &Pipeline{
		Model:   &fakeModel{reply: planReply},
		Catalog: client,
		Logger:  observability.NewLoggerWithSink(sink),
	}

	if _, err := p.Run(context.Background(), "Suggest the best science fiction book"); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	data, err := os.ReadFile(sink)
	if err != nil {
		t.Fatalf("llm sink not written: %v", err)
	}
	if !strings.Contains(string(data), `"type":"llm"`) {
		t.Errorf("sink missing llm event: %s", data)
	}
	if !strings.Contains(string(data), "AI workflow planner") {
		t.Errorf("sink missing prompt text: %s", data)
	}
	if !strings.Contains(string(data), "Query a book database") {
		t.Errorf("sink missing model reply: %s", data)
	}
}

func TestPipelineRunEmptyCatalog(t *testing.T) {
	_, client := newCatalogServer(t, `{}`)
	p := &Pipeline{
		Model:   &fakeModel{reply: planReply},
		Catalog: client,
	}

	state, err := p.Run(context.Background(), "Suggest the best science fiction book")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(state.Presentation) != 0 {
		t.Errorf("expected no recommendations, got %v", state.Presentation)
	}
}

func TestPipelineRunMalformedPlan(t *testing.T) {
	_, client := newCatalogServer(t, catalogFixture)
	p := &Pipeline{
		Model:   &fakeModel{reply: "Sorry, I can't produce a plan."},
		Catalog: client,
	}

	_, err := p.Run(context.Background(), "anything at all")
	if err == nil {
		t.Fatal("expected malformed plan to fail the run")
	}
	var parseErr *PlanParseError
	if !errors.As(err, &parseErr) {
		t.Errorf("expected *PlanParseError, got %T", err)
	}
}

func TestPipelineRunCatalogFailureAborts(t *testing.T) {
	srv, _ := newCatalogServer(t, catalogFixture)
	srv.Close()
	p := &Pipeline{
		Model:   &fakeModel{reply: planReply},
		Catalog: catalog.NewClient(srv.URL),
	}

	_, err := p.Run(context.Background(), "a fantasy book")
	if err == nil {
		t.Fatal("expected catalog failure to abort the run")
	}
	var reqErr *catalog.RequestError
	if !errors.As(err, &reqErr) {
		t.Errorf("expected *catalog.RequestError, got %T", err)
	}
}
