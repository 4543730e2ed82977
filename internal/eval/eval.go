// Package eval scores pipeline output against ground truth. Evaluators are
// pure functions that never fail: malformed input produces a zero, failing
// result with a diagnostic reason instead of an error.
package eval

import (
	"fmt"
	"math"
	"strings"

	"github.com/modfin/henry/slicez"

	"triage/internal/agent"
	"triage/internal/dataset"
)

const (
	NameRouting     = "routing_accuracy"
	NameKeywords    = "keyword_coverage"
	NameActionSteps = "has_action_steps"
	NameFormat      = "format_structure"
	NameSafety      = "safety_flags"
	NameComposite   = "composite"
)

// Result is one evaluator's score for one ticket.
type Result struct {
	Name      string         `json:"name"`
	Score     float64        `json:"score"`
	Passed    bool           `json:"passed"`
	Reasoning string         `json:"reasoning"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type Evaluator interface {
	Name() string
	Evaluate(dp dataset.Datapoint, res agent.TicketResult) Result
}

func failed(name, reason string) Result {
	return Result{Name: name, Score: 0, Passed: false, Reasoning: reason}
}

// Routing scores 1 when the predicted category matches ground truth.
type Routing struct{}

func (Routing) Name() string { return NameRouting }

func (Routing) Evaluate(dp dataset.Datapoint, res agent.TicketResult) Result {
	expected := dp.Truth.Category
	predicted := res.Routing.Category
	if expected == "" || predicted == "" {
		return failed(NameRouting, "missing expected or predicted category")
	}

	var score float64
	if expected == predicted {
		score = 1
	}
	return Result{
		Name:      NameRouting,
		Score:     score,
		Passed:    score == 1,
		Reasoning: fmt.Sprintf("expected=%s, predicted=%s", expected, predicted),
		Metadata: map[string]any{
			"expected":   expected,
			"predicted":  predicted,
			"confidence": res.Routing.Confidence,
			"reasoning":  res.Routing.Reasoning,
		},
	}
}

// Keywords scores the percentage of expected keywords found in the response
// text, case-insensitively. Passes at 50% coverage.
type Keywords struct{}

func (Keywords) Name() string { return NameKeywords }

func (Keywords) Evaluate(dp dataset.Datapoint, res agent.TicketResult) Result {
	expected := dp.Truth.Keywords
	if len(expected) == 0 {
		return Result{
			Name:      NameKeywords,
			Score:     100,
			Passed:    true,
			Reasoning: "no expected keywords",
		}
	}
	if res.Response.Text == "" {
		return failed(NameKeywords, "empty response text")
	}

	text := strings.ToLower(res.Response.Text)
	found := slicez.Filter(expected, func(kw string) bool {
		return strings.Contains(text, strings.ToLower(kw))
	})
	missing := slicez.Filter(expected, func(kw string) bool {
		return !strings.Contains(text, strings.ToLower(kw))
	})

	score := math.Round(100 * float64(len(found)) / float64(len(expected)))
	return Result{
		Name:      NameKeywords,
		Score:     score,
		Passed:    score >= 50,
		Reasoning: fmt.Sprintf("matched %d of %d expected keywords", len(found), len(expected)),
		Metadata: map[string]any{
			"found":    found,
			"missing":  missing,
			"matched":  fmt.Sprintf("%d/%d", len(found), len(expected)),
			"coverage": fmt.Sprintf("%.0f%%", score),
		},
	}
}

// ActionSteps checks that the response carries numbered action steps. Needs
// no ground truth.
type ActionSteps struct{}

func (ActionSteps) Name() string { return NameActionSteps }

func (ActionSteps) Evaluate(_ dataset.Datapoint, res agent.TicketResult) Result {
	steps := res.Response.StepNumbers
	var score float64
	reasoning := "no numbered steps detected"
	if len(steps) > 0 {
		score = 1
		reasoning = "found numbered steps"
	}
	return Result{
		Name:      NameActionSteps,
		Score:     score,
		Passed:    score == 1,
		Reasoning: reasoning,
		Metadata: map[string]any{
			"step_count":   len(steps),
			"step_numbers": steps,
		},
	}
}

// Format checks the response is structurally sound: non-empty text and a
// step list consistent with the step count.
type Format struct{}

func (Format) Name() string { return NameFormat }

func (Format) Evaluate(_ dataset.Datapoint, res agent.TicketResult) Result {
	if res.Response.Text == "" {
		return failed(NameFormat, "missing response text")
	}
	if res.Response.StepCount != len(res.Response.StepNumbers) {
		return failed(NameFormat, "step count does not match parsed step numbers")
	}
	return Result{
		Name:      NameFormat,
		Score:     1,
		Passed:    true,
		Reasoning: "response text present and step list well-formed",
	}
}

// Compose ANDs routing, keyword coverage and action steps into one verdict.
// The score is the mean of the sub-scores with binary ones scaled to 0-100.
// Fails closed: a missing or failing sub-result fails the composite.
func Compose(results map[string]Result) Result {
	routing, okRouting := results[NameRouting]
	keywords, okKeywords := results[NameKeywords]
	steps, okSteps := results[NameActionSteps]
	if !okRouting || !okKeywords || !okSteps {
		return failed(NameComposite, "missing sub-evaluator results")
	}

	passed := routing.Passed && keywords.Passed && steps.Passed
	score := math.Round((routing.Score*100+keywords.Score+steps.Score*100)/3*100) / 100
	return Result{
		Name:   NameComposite,
		Score:  score,
		Passed: passed,
		Reasoning: fmt.Sprintf("routing_ok=%t, keyword_score=%.0f, action_steps=%t",
			routing.Passed, keywords.Score, steps.Passed),
	}
}

// Suite returns the default evaluators, excluding the composite which is
// derived from their results.
func Suite() []Evaluator {
	return []Evaluator{Routing{}, Keywords{}, ActionSteps{}, Format{}, Safety{}}
}

// Run applies every evaluator and appends the composite verdict.
func Run(evaluators []Evaluator, dp dataset.Datapoint, res agent.TicketResult) map[string]Result {
	out := make(map[string]Result, len(evaluators)+1)
	for _, e := range evaluators {
		out[e.Name()] = e.Evaluate(dp, res)
	}
	out[NameComposite] = Compose(out)
	return out
}
