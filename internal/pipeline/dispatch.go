package pipeline

import (
	"context"
	"sort"
	"strings"

	"github.com/smehra/bookwise/internal/catalog"
	"github.com/smehra/bookwise/internal/genre"
	"github.com/smehra/bookwise/internal/governance"
	"github.com/smehra/bookwise/internal/observability"
)

// StepKind is the classified behavior of one plan step.
type StepKind string

const (
	StepFetch   StepKind = "fetch"
	StepFilter  StepKind = "filter"
	StepPresent StepKind = "present"
	StepUnknown StepKind = "unknown"
)

// Classify maps a step's task text to a StepKind. Matching is on lowercased
// text, first keyword group wins. Unmatched text classifies as StepUnknown,
// which dispatches to a no-op rather than an error: plans are model
// generated and unexpected wording must never crash the run.
func Classify(task string) StepKind {
	task = strings.ToLower(task)

	switch {
	case strings.Contains(task, "query"),
		strings.Contains(task, "search"),
		strings.Contains(task, "find books"):
		return StepFetch
	case strings.Contains(task, "filter"),
		strings.Contains(task, "rating"),
		strings.Contains(task, "top rated"):
		return StepFilter
	case strings.Contains(task, "present"),
		strings.Contains(task, "suggest"),
		strings.Contains(task, "recommend"):
		return StepPresent
	default:
		return StepUnknown
	}
}

// presentationLimit caps how many titles a present step surfaces.
const presentationLimit = 5

// Executor dispatches classified plan steps against the run state. All
// collaborators are injected so a run can be driven with fakes in tests.
type Executor struct {
	Catalog    *catalog.Client
	Policy     governance.PolicyEngine
	Logger     *observability.Logger
	MaxResults int
	RunID      string
}

// Dispatch classifies one step and applies it to the state. Step ordering
// is never validated: a filter or present step with no prior fetch operates
// on empty input and succeeds. The only error path is a failed catalog
// request during a fetch step, which is fatal for the run.
func (e *Executor) Dispatch(ctx context.Context, step Step, state *RunState) error {
	kind := Classify(step.Task)

	if e.Policy != nil {
		res, err := e.Policy.Evaluate(ctx, governance.Request{Task: step.Task, RunID: e.RunID})
		if err != nil {
			return err
		}
		if e.Logger != nil {
			e.Logger.LogPolicyCheck(e.RunID, step.Task, res.Effect == governance.EffectAllow, res.Reason)
		}
		if res.Effect == governance.EffectDeny {
			return nil
		}
	}

	if e.Logger != nil {
		e.Logger.LogStep(e.RunID, state.CurrentStep, string(kind), step.Task)
	}

	switch kind {
	case StepFetch:
		return e.fetch(ctx, state)
	case StepFilter:
		e.filter(state)
	case StepPresent:
		e.present(state)
	case StepUnknown:
		// Designed fallback: state unchanged.
	}
	return nil
}

// fetch derives the genre from the original request, queries the catalog
// and stores a trimmed projection of each result.
func (e *Executor) fetch(ctx context.Context, state *RunState) error {
	subject := genre.Extract(state.Query)
	state.Genre = subject
	if e.Logger != nil {
		e.Logger.LogGenre(e.RunID, state.Query, subject)
	}

	books, err := e.Catalog.Search(ctx, subject, e.MaxResults)
	if err != nil {
		return err
	}
	if e.Logger != nil {
		e.Logger.LogCatalog(e.RunID, subject, len(books))
	}

	state.Books = make([]BookSummary, 0, len(books))
	for _, b := range books {
		state.Books = append(state.Books, BookSummary{
			Title:         b.Title,
			Authors:       b.Authors,
			AverageRating: b.AverageRating,
		})
	}
	return nil
}

// filter sorts the fetched books by rating, highest first. The sort is
// stable so equal ratings keep their source (relevance) order.
func (e *Executor) filter(state *RunState) {
	books := make([]BookSummary, len(state.Books))
	copy(books, state.Books)

	sort.SliceStable(books, func(i, j int) bool {
		return books[i].AverageRating > books[j].AverageRating
	})

	state.FilteredBooks = make([]BookPick, 0, len(books))
	for _, b := range books {
		state.FilteredBooks = append(state.FilteredBooks, BookPick{
			Title:   b.Title,
			Authors: b.Authors,
		})
	}
}

// present stores up to presentationLimit titles and the top pick. An empty
// filtered list yields an empty presentation and a zero TopBook.
func (e *Executor) present(state *RunState) {
	limit := len(state.FilteredBooks)
	if limit > presentationLimit {
		limit = presentationLimit
	}

	state.Presentation = make([]string, 0, limit)
	for _, b := range state.FilteredBooks[:limit] {
		state.Presentation = append(state.Presentation, b.Title)
	}

	if len(state.FilteredBooks) > 0 {
		state.TopBook = state.FilteredBooks[0]
	} else {
		state.TopBook = BookPick{}
	}
}
