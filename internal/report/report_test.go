package report

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"triage/internal/agent"
	"triage/internal/dataset"
	"triage/internal/eval"
	"triage/internal/trace"
)

// offlineRecords runs the deterministic pipeline over the mock dataset and
// evaluates every ticket, the same way the run command does.
func offlineRecords(t *testing.T) []Record {
	t.Helper()

	points, err := dataset.Load("mock")
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}

	a := agent.New(
		agent.NewHeuristicRouter(dataset.RoutingRules()),
		agent.NewKnowledgeBase(dataset.KnowledgeBase()),
		agent.NewTemplateGenerator(),
		trace.NewRecorder(),
		"v1",
		nil,
	)

	results, err := a.RunAll(context.Background(), points, "run-test")
	if err != nil {
		t.Fatalf("RunAll failed: %v", err)
	}

	records := make([]Record, 0, len(results))
	for i, res := range results {
		records = append(records, Record{
			TicketResult: res,
			Evaluations:  eval.Run(eval.Suite(), points[i], res),
		})
	}
	return records
}

func TestSummarizeOfflineRun(t *testing.T) {
	records := offlineRecords(t)
	s := Summarize(records)

	// The two designed routing failures (#3 and #8) are the only composite
	// failures on the deterministic path.
	if s.Total != 10 || s.Passed != 8 || s.Failed != 2 {
		t.Errorf("counts: got passed=%d failed=%d total=%d, want 8/2/10", s.Passed, s.Failed, s.Total)
	}

	if got := s.Metrics[eval.NameRouting]; got != 80 {
		t.Errorf("routing mean: got %v, want 80", got)
	}
	if got := s.Metrics[eval.NameActionSteps]; got != 100 {
		t.Errorf("action steps mean: got %v, want 100", got)
	}
	if got := s.Metrics[eval.NameKeywords]; got != 66.8 {
		t.Errorf("keyword mean: got %v, want 66.8", got)
	}

	if s.Bottleneck != eval.NameKeywords {
		t.Errorf("bottleneck: got %s, want %s", s.Bottleneck, eval.NameKeywords)
	}
}

func TestSummarizeFailedTickets(t *testing.T) {
	records := offlineRecords(t)

	failed := map[string]bool{}
	for _, r := range records {
		if !r.Evaluations[eval.NameComposite].Passed {
			failed[r.TicketID] = true
		}
	}

	want := map[string]bool{"3": true, "8": true}
	if len(failed) != len(want) {
		t.Fatalf("failed tickets: got %v, want %v", failed, want)
	}
	for id := range want {
		if !failed[id] {
			t.Errorf("expected ticket %s to fail composite", id)
		}
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	records := offlineRecords(t)
	run := Run{
		RunID:     "run-test",
		Version:   "v1",
		Dataset:   "mock",
		Mode:      "offline",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Results:   records,
		Summary:   Summarize(records),
	}

	path := filepath.Join(t.TempDir(), "results.json")
	if err := WriteFile(path, run); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	if got.RunID != run.RunID || got.Mode != run.Mode || got.Dataset != run.Dataset {
		t.Errorf("run header differs: %+v", got)
	}
	if got.Summary.Passed != run.Summary.Passed || got.Summary.Failed != run.Summary.Failed || got.Summary.Bottleneck != run.Summary.Bottleneck {
		t.Errorf("summary differs: got %+v, want %+v", got.Summary, run.Summary)
	}
	if len(got.Results) != len(run.Results) {
		t.Errorf("results length: got %d, want %d", len(got.Results), len(run.Results))
	}
	if got.Results[0].Response.Text != run.Results[0].Response.Text {
		t.Error("response text did not round-trip")
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestCompareText(t *testing.T) {
	a := Run{Summary: Summary{Passed: 7, Failed: 3, Total: 10, Metrics: map[string]float64{"routing_accuracy": 70}}}
	b := Run{Summary: Summary{Passed: 8, Failed: 2, Total: 10, Metrics: map[string]float64{"routing_accuracy": 80}}}

	out := CompareText(a, b)
	for _, want := range []string{
		"passed: 7 -> 8",
		"failed: 3 -> 2",
		"routing_accuracy: 70.0 -> 80.0",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("comparison missing %q:\n%s", want, out)
		}
	}
}
