// Package report aggregates per-ticket results into run summaries, exports
// runs as JSON, and compares exported runs.
package report

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/modfin/henry/slicez"

	"triage/internal/agent"
	"triage/internal/eval"
)

// Record is one ticket's pipeline output plus its evaluation scores.
type Record struct {
	agent.TicketResult
	Evaluations map[string]eval.Result `json:"evaluations"`
}

// Summary aggregates one run: composite pass/fail counts, mean score per
// evaluator (normalized to 0-100), and the weakest core metric.
type Summary struct {
	Passed     int                `json:"passed"`
	Failed     int                `json:"failed"`
	Total      int                `json:"total"`
	Metrics    map[string]float64 `json:"metrics"`
	Bottleneck string             `json:"bottleneck,omitempty"`
}

// Run is the exported payload for one pipeline invocation.
type Run struct {
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	Dataset   string    `json:"dataset"`
	Mode      string    `json:"mode"`
	CreatedAt time.Time `json:"created_at"`
	Results   []Record  `json:"results"`
	Summary   Summary   `json:"summary"`
}

// normalize puts every evaluator score on a 0-100 scale. Keyword coverage
// and the composite already are; the binary evaluators score 0 or 1.
func normalize(name string, score float64) float64 {
	switch name {
	case eval.NameKeywords, eval.NameComposite:
		return score
	default:
		return score * 100
	}
}

// Summarize computes the run summary from the evaluated records.
func Summarize(records []Record) Summary {
	s := Summary{
		Total:   len(records),
		Metrics: map[string]float64{},
	}

	sums := map[string]float64{}
	counts := map[string]int{}
	for _, r := range records {
		if r.Evaluations[eval.NameComposite].Passed {
			s.Passed++
		}
		for name, result := range r.Evaluations {
			sums[name] += normalize(name, result.Score)
			counts[name]++
		}
	}
	s.Failed = s.Total - s.Passed

	for name, sum := range sums {
		s.Metrics[name] = math.Round(sum/float64(counts[name])*10) / 10
	}

	// The bottleneck is the weakest of the three core metrics.
	core := []string{eval.NameRouting, eval.NameKeywords, eval.NameActionSteps}
	core = slicez.Filter(core, func(name string) bool {
		_, ok := s.Metrics[name]
		return ok
	})
	if len(core) > 0 {
		sort.SliceStable(core, func(i, j int) bool {
			return s.Metrics[core[i]] < s.Metrics[core[j]]
		})
		s.Bottleneck = core[0]
	}

	return s
}

// WriteFile exports the run as indented JSON.
func WriteFile(path string, run Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}
	err = os.WriteFile(path, data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a previously exported run.
func ReadFile(path string) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Run{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var run Run
	err = json.Unmarshal(data, &run)
	if err != nil {
		return Run{}, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return run, nil
}

// CompareText renders an A/B comparison of two run summaries.
func CompareText(a, b Run) string {
	var sb strings.Builder
	sb.WriteString("Comparison (A -> B):\n")
	fmt.Fprintf(&sb, "passed: %d -> %d\n", a.Summary.Passed, b.Summary.Passed)
	fmt.Fprintf(&sb, "failed: %d -> %d\n", a.Summary.Failed, b.Summary.Failed)

	names := make([]string, 0, len(b.Summary.Metrics))
	for name := range b.Summary.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&sb, "%s: %.1f -> %.1f\n", name, a.Summary.Metrics[name], b.Summary.Metrics[name])
	}
	return sb.String()
}
