package trace

import (
	"testing"
	"time"
)

func TestRecorderLifecycle(t *testing.T) {
	r := NewRecorder()
	r.Begin("1", Meta{Version: "v1", RunID: "run-1", DatapointID: "1", GroundTruth: map[string]any{"expected_category": "other"}})

	start := time.Now()
	end := start.Add(5 * time.Millisecond)
	r.Record("route_to_category",
		map[string]any{"issue": "it broke"},
		map[string]any{"category": "other"},
		start, end)

	tr := r.Finish()

	if tr.ID == "" {
		t.Error("trace id is empty")
	}
	if tr.TicketID != "1" || tr.Version != "v1" || tr.RunID != "run-1" || tr.DatapointID != "1" {
		t.Errorf("trace meta wrong: %+v", tr)
	}
	if tr.GroundTruth == nil {
		t.Error("ground truth not attached")
	}
	if len(tr.Spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(tr.Spans))
	}

	span := tr.Spans[0]
	if span.Name != "route_to_category" {
		t.Errorf("span name: got %s", span.Name)
	}
	if span.LatencyMS != 5 {
		t.Errorf("span latency: got %v, want 5", span.LatencyMS)
	}
	if tr.End.Before(tr.Start) {
		t.Error("trace ends before it starts")
	}
}

func TestRecorderResetsBetweenTraces(t *testing.T) {
	r := NewRecorder()

	r.Begin("1", Meta{})
	r.Record("step", nil, nil, time.Now(), time.Now())
	first := r.Finish()

	r.Begin("2", Meta{})
	second := r.Finish()

	if first.ID == second.ID {
		t.Error("trace ids are not unique")
	}
	if len(second.Spans) != 0 {
		t.Errorf("spans leaked into second trace: %d", len(second.Spans))
	}
	if second.TicketID != "2" {
		t.Errorf("second trace ticket id: got %s", second.TicketID)
	}
}
