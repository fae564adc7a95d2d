package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tmc/langchaingo/llms"

	"github.com/smehra/bookwise/internal/observability"
)

// plannerPrompt anchors the expected reply shape with a worked example.
// The model is asked for a JSON array of objects, each with a "task" key.
const plannerPrompt = `You are an AI workflow planner.
Given a user's request, break it down into an ordered list of steps.
Each step should be an object with a single "task" key, and only include extra keys if absolutely required for that specific step.
Do NOT add redundant references (like "book": "found_book") if there's clearly only one book or one main object in the workflow.
Example:
[
  {"task": "Query a book database or API for science fiction books."},
  {"task": "Filter the results to identify books with high ratings."},
  {"task": "Present the book with the highest overall score based on the ranking criteria as the suggested best science fiction book."}
]
Output your response strictly as a JSON array of objects.
User request: "%s"
Tasks:`

// bracketedList grabs the first [...] span in the reply, guarding against
// leading or trailing commentary the model may add.
var bracketedList = regexp.MustCompile(`(?s)\[.*\]`)

// GeneratePlan asks the model to decompose the request into an ordered
// plan. The model reply is untrusted text; a reply with no bracketed list,
// or a bracketed list that does not decode as a JSON array of objects,
// yields a *PlanParseError. There is no retry on malformed output.
// The prompt/reply exchange is logged as an llm event when a logger is
// supplied, before parsing, so malformed replies are still captured.
func GeneratePlan(ctx context.Context, model llms.Model, query string, logger *observability.Logger, runID string) (Plan, error) {
	prompt := fmt.Sprintf(plannerPrompt, query)

	reply, err := llms.GenerateFromSinglePrompt(ctx, model, prompt)
	if err != nil {
		return nil, fmt.Errorf("planner model call: %w", err)
	}

	if logger != nil {
		logger.LogLLM(runID, prompt, reply)
	}

	return ParsePlan(reply)
}

// ParsePlan extracts and decodes the plan from raw model output.
func ParsePlan(reply string) (Plan, error) {
	reply = strings.TrimSpace(reply)

	match := bracketedList.FindString(reply)
	if match == "" {
		return nil, &PlanParseError{Raw: reply}
	}

	var plan Plan
	if err := json.Unmarshal([]byte(match), &plan); err != nil {
		return nil, &PlanParseError{Raw: reply, Err: err}
	}

	return plan, nil
}
