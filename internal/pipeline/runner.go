package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/smehra/bookwise/internal/catalog"
	"github.com/smehra/bookwise/internal/governance"
	"github.com/smehra/bookwise/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Status is the runner's state machine position.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// Runner walks one plan, one step per Next invocation. The step index is
// monotonically non-decreasing and bounded by the plan length; the runner
// reaches StatusDone exactly when the index reaches the plan length. The
// re-entrant shape lets a poll-style driver own the loop.
type Runner struct {
	exec  *Executor
	state *RunState
}

func NewRunner(exec *Executor, query string, plan Plan) *Runner {
	return &Runner{
		exec: exec,
		state: &RunState{
			Query:       query,
			Plan:        plan,
			CurrentStep: 0,
			Done:        false,
		},
	}
}

// State exposes the run state. It is owned by the runner until the run
// completes and must not be retained across runs.
func (r *Runner) State() *RunState { return r.state }

// Status reports whether the plan is exhausted.
func (r *Runner) Status() Status {
	if r.state.Done {
		return StatusDone
	}
	return StatusRunning
}

// Next executes exactly one plan step. Calling Next on a finished runner
// is a no-op returning StatusDone.
func (r *Runner) Next(ctx context.Context) (Status, error) {
	if r.state.CurrentStep >= len(r.state.Plan) {
		r.state.Done = true
		return StatusDone, nil
	}

	step := r.state.Plan[r.state.CurrentStep]
	if err := r.exec.Dispatch(ctx, step, r.state); err != nil {
		return StatusRunning, err
	}

	r.state.CurrentStep++
	r.state.Done = r.state.CurrentStep >= len(r.state.Plan)
	return r.Status(), nil
}

// Pipeline ties the planner, executor and runner into one request flow.
// The model handle is injected per run, so concurrent pipelines never share
// mutable model state.
type Pipeline struct {
	Model      llms.Model
	Catalog    *catalog.Client
	Policy     governance.PolicyEngine
	Logger     *observability.Logger
	MaxResults int
}

// Run plans the request and drives the runner to completion. Plan parse
// failures and catalog failures terminate the run; both propagate to the
// caller untouched.
func (p *Pipeline) Run(ctx context.Context, query string) (*RunState, error) {
	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())

	observability.SetStatus(observability.PhasePlanning, query)
	defer observability.SetStatus(observability.PhaseIdle, "")

	plan, err := GeneratePlan(ctx, p.Model, query, p.Logger, runID)
	if err != nil {
		return nil, err
	}

	if p.Logger != nil {
		tasks := make([]string, 0, len(plan))
		for _, s := range plan {
			tasks = append(tasks, s.Task)
		}
		p.Logger.LogPlan(runID, query, tasks)
	}

	exec := &Executor{
		Catalog:    p.Catalog,
		Policy:     p.Policy,
		Logger:     p.Logger,
		MaxResults: p.MaxResults,
		RunID:      runID,
	}
	runner := NewRunner(exec, query, plan)

	observability.SetStatus(observability.PhaseExecuting, query)
	for runner.Status() == StatusRunning {
		if _, err := runner.Next(ctx); err != nil {
			return nil, err
		}
	}

	state := runner.State()
	if p.Logger != nil {
		p.Logger.LogRun(runID, query, state.Genre, state.Presentation)
	}
	return state, nil
}
