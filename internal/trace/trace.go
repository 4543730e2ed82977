// Package trace is a passive in-process recorder of pipeline steps. It keeps
// wall-clock timings and the input/output payloads of every step so a run can
// be exported or shipped to an observability backend as plain data.
package trace

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Span is one recorded pipeline step.
type Span struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	Output    map[string]any `json:"output"`
	Start     time.Time      `json:"start_time"`
	End       time.Time      `json:"end_time"`
	LatencyMS float64        `json:"latency_ms"`
}

// Trace covers one ticket's trip through the pipeline.
type Trace struct {
	ID          string    `json:"trace_id"`
	TicketID    string    `json:"ticket_id"`
	Version     string    `json:"version,omitempty"`
	RunID       string    `json:"run_id,omitempty"`
	DatapointID string    `json:"datapoint_id,omitempty"`
	Start       time.Time `json:"start_time"`
	End         time.Time `json:"end_time"`
	LatencyMS   float64   `json:"latency_ms"`
	Spans       []Span    `json:"steps"`
	GroundTruth any       `json:"ground_truth,omitempty"`
	Evaluations any       `json:"evaluations,omitempty"`
}

// Meta is the run-level context attached to every trace.
type Meta struct {
	Version     string
	RunID       string
	DatapointID string
	GroundTruth any
}

// Recorder collects spans for one trace at a time. It is not safe for
// concurrent use; the pipeline is strictly sequential.
type Recorder struct {
	current Trace
	spans   []Span
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin opens a new trace, discarding any unfinished one.
func (r *Recorder) Begin(ticketID string, meta Meta) {
	r.current = Trace{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		Version:     meta.Version,
		RunID:       meta.RunID,
		DatapointID: meta.DatapointID,
		Start:       time.Now(),
		GroundTruth: meta.GroundTruth,
	}
	r.spans = nil
}

// Record appends a span with explicit start and end times, so the caller can
// wrap the actual step execution.
func (r *Recorder) Record(name string, input, output map[string]any, start, end time.Time) {
	r.spans = append(r.spans, Span{
		Name:      name,
		Input:     input,
		Output:    output,
		Start:     start,
		End:       end,
		LatencyMS: millis(end.Sub(start)),
	})
}

// Finish closes the current trace and returns it.
func (r *Recorder) Finish() Trace {
	t := r.current
	t.End = time.Now()
	t.LatencyMS = millis(t.End.Sub(t.Start))
	t.Spans = r.spans
	r.current = Trace{}
	r.spans = nil
	return t
}

func millis(d time.Duration) float64 {
	return math.Round(float64(d)/float64(time.Millisecond)*100) / 100
}
