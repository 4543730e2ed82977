package eval

import (
	"reflect"
	"testing"

	"triage/internal/agent"
	"triage/internal/dataset"
)

func datapoint(category dataset.Category, keywords ...string) dataset.Datapoint {
	return dataset.Datapoint{
		Ticket: dataset.Ticket{ID: "1", Customer: "Test", Issue: "something broke"},
		Truth:  dataset.GroundTruth{Category: category, Keywords: keywords, WantsSteps: true},
	}
}

func resultWith(category dataset.Category, text string) agent.TicketResult {
	steps := agent.ParseSteps(text)
	return agent.TicketResult{
		TicketID: "1",
		Routing:  agent.Routing{Category: category, Confidence: 0.9, Reasoning: "test"},
		Response: agent.Response{Text: text, StepCount: len(steps), StepNumbers: steps},
	}
}

func TestRoutingEvaluator(t *testing.T) {
	testCases := []struct {
		name       string
		expected   dataset.Category
		predicted  dataset.Category
		wantScore  float64
		wantPassed bool
	}{
		{"match", dataset.CategoryDataExport, dataset.CategoryDataExport, 1, true},
		{"mismatch", dataset.CategoryDataExport, dataset.CategoryOther, 0, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Routing{}.Evaluate(datapoint(tc.expected), resultWith(tc.predicted, "1. step"))
			if got.Score != tc.wantScore || got.Passed != tc.wantPassed {
				t.Errorf("got score=%v passed=%t, want score=%v passed=%t",
					got.Score, got.Passed, tc.wantScore, tc.wantPassed)
			}
			if got.Metadata["expected"] != tc.expected || got.Metadata["predicted"] != tc.predicted {
				t.Errorf("metadata wrong: %v", got.Metadata)
			}
		})
	}
}

func TestRoutingEvaluatorMissingFields(t *testing.T) {
	got := Routing{}.Evaluate(dataset.Datapoint{}, agent.TicketResult{})
	if got.Score != 0 || got.Passed {
		t.Errorf("expected failing zero result, got %+v", got)
	}
	if got.Reasoning == "" {
		t.Error("expected a diagnostic reason")
	}
}

func TestKeywordEvaluator(t *testing.T) {
	dp := datapoint(dataset.CategoryDataExport, "queue", "status", "processing")
	res := resultWith(dataset.CategoryDataExport, "1. Check the queue.\n2. The status page shows progress.")

	got := Keywords{}.Evaluate(dp, res)
	if got.Score != 67 {
		t.Errorf("score: got %v, want 67", got.Score)
	}
	if !got.Passed {
		t.Error("expected pass at 67% coverage")
	}
	if !reflect.DeepEqual(got.Metadata["found"], []string{"queue", "status"}) {
		t.Errorf("found: got %v", got.Metadata["found"])
	}
	if !reflect.DeepEqual(got.Metadata["missing"], []string{"processing"}) {
		t.Errorf("missing: got %v", got.Metadata["missing"])
	}
	if got.Metadata["matched"] != "2/3" {
		t.Errorf("matched: got %v", got.Metadata["matched"])
	}
}

func TestKeywordEvaluatorEdgeCases(t *testing.T) {
	t.Run("no expected keywords", func(t *testing.T) {
		got := Keywords{}.Evaluate(datapoint(dataset.CategoryOther), resultWith(dataset.CategoryOther, "anything"))
		if got.Score != 100 || !got.Passed {
			t.Errorf("expected passing 100, got %+v", got)
		}
	})

	t.Run("empty response", func(t *testing.T) {
		got := Keywords{}.Evaluate(datapoint(dataset.CategoryOther, "queue"), agent.TicketResult{})
		if got.Score != 0 || got.Passed {
			t.Errorf("expected failing zero, got %+v", got)
		}
	})

	t.Run("below threshold", func(t *testing.T) {
		dp := datapoint(dataset.CategoryOther, "cdn", "cache", "purge", "cloudflare")
		got := Keywords{}.Evaluate(dp, resultWith(dataset.CategoryOther, "1. Clear the cache."))
		if got.Score != 25 || got.Passed {
			t.Errorf("expected failing 25, got %+v", got)
		}
	})
}

func TestActionStepsEvaluator(t *testing.T) {
	t.Run("with steps", func(t *testing.T) {
		got := ActionSteps{}.Evaluate(dataset.Datapoint{}, resultWith(dataset.CategoryOther, "1. Do X\n2. Do Y"))
		if got.Score != 1 || !got.Passed {
			t.Errorf("expected passing 1, got %+v", got)
		}
		if got.Metadata["step_count"] != 2 {
			t.Errorf("step_count: got %v", got.Metadata["step_count"])
		}
		if !reflect.DeepEqual(got.Metadata["step_numbers"], []int{1, 2}) {
			t.Errorf("step_numbers: got %v", got.Metadata["step_numbers"])
		}
	})

	t.Run("without steps", func(t *testing.T) {
		got := ActionSteps{}.Evaluate(dataset.Datapoint{}, resultWith(dataset.CategoryOther, "just prose"))
		if got.Score != 0 || got.Passed {
			t.Errorf("expected failing 0, got %+v", got)
		}
	})
}

func TestFormatEvaluator(t *testing.T) {
	t.Run("well formed", func(t *testing.T) {
		got := Format{}.Evaluate(dataset.Datapoint{}, resultWith(dataset.CategoryOther, "1. ok"))
		if !got.Passed {
			t.Errorf("expected pass, got %+v", got)
		}
	})

	t.Run("inconsistent steps", func(t *testing.T) {
		res := agent.TicketResult{Response: agent.Response{Text: "1. ok", StepCount: 3, StepNumbers: []int{1}}}
		got := Format{}.Evaluate(dataset.Datapoint{}, res)
		if got.Passed {
			t.Errorf("expected fail, got %+v", got)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		got := Format{}.Evaluate(dataset.Datapoint{}, agent.TicketResult{})
		if got.Passed {
			t.Errorf("expected fail, got %+v", got)
		}
	})
}

func TestSafetyEvaluator(t *testing.T) {
	testCases := []struct {
		name       string
		text       string
		wantPassed bool
	}{
		{"clean", "1. Clear the cache and retry.", true},
		{"toxic", "Well that was a stupid mistake.", false},
		{"ssn", "Your SSN is on file.", false},
		{"pii number", "Card 1234567812345678 was charged.", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Safety{}.Evaluate(dataset.Datapoint{}, resultWith(dataset.CategoryOther, tc.text))
			if got.Passed != tc.wantPassed {
				t.Errorf("passed: got %t, want %t (%s)", got.Passed, tc.wantPassed, got.Reasoning)
			}
		})
	}
}

func TestCompose(t *testing.T) {
	base := map[string]Result{
		NameRouting:     {Name: NameRouting, Score: 1, Passed: true},
		NameKeywords:    {Name: NameKeywords, Score: 67, Passed: true},
		NameActionSteps: {Name: NameActionSteps, Score: 1, Passed: true},
	}

	t.Run("all pass", func(t *testing.T) {
		got := Compose(base)
		if !got.Passed {
			t.Errorf("expected pass, got %+v", got)
		}
		if got.Score != 89 {
			t.Errorf("score: got %v, want 89", got.Score)
		}
	})

	// Fails closed: any failing sub-evaluator fails the composite no matter
	// the numeric average.
	for _, name := range []string{NameRouting, NameKeywords, NameActionSteps} {
		t.Run("fails when "+name+" fails", func(t *testing.T) {
			results := map[string]Result{}
			for k, v := range base {
				results[k] = v
			}
			failing := results[name]
			failing.Passed = false
			results[name] = failing

			if Compose(results).Passed {
				t.Error("composite passed with a failing sub-evaluator")
			}
		})
	}

	t.Run("missing sub results", func(t *testing.T) {
		got := Compose(map[string]Result{})
		if got.Passed || got.Score != 0 {
			t.Errorf("expected failing zero, got %+v", got)
		}
	})
}

func TestRunAppendsComposite(t *testing.T) {
	dp := datapoint(dataset.CategoryOther, "queue")
	res := resultWith(dataset.CategoryOther, "1. Check the queue.")

	out := Run(Suite(), dp, res)
	for _, name := range []string{NameRouting, NameKeywords, NameActionSteps, NameFormat, NameSafety, NameComposite} {
		if _, ok := out[name]; !ok {
			t.Errorf("missing result for %s", name)
		}
	}
	if !out[NameComposite].Passed {
		t.Errorf("expected composite pass, got %+v", out[NameComposite])
	}
}

func TestJudgesSkipWithoutProxy(t *testing.T) {
	dp := datapoint(dataset.CategoryOther)
	res := resultWith(dataset.CategoryOther, "1. ok")

	for _, e := range []Evaluator{Faithfulness{}, SafetyJudge{}} {
		got := e.Evaluate(dp, res)
		if got.Passed || got.Score != 0 {
			t.Errorf("%s: expected skipped failing result, got %+v", e.Name(), got)
		}
		if got.Reasoning == "" {
			t.Errorf("%s: expected a skip reason", e.Name())
		}
	}
}
