// Package agent implements the three-step support pipeline: route the ticket
// to a category, retrieve knowledge base docs for it, and generate a reply.
// Both an LLM-backed and a deterministic heuristic variant exist for the
// routing and generation steps; they satisfy the same contracts.
package agent

import (
	"context"
	"log/slog"
	"time"

	"triage/internal/dataset"
	"triage/internal/trace"
)

// Routing is the outcome of the categorization step.
type Routing struct {
	Category   dataset.Category `json:"category"`
	Confidence float64          `json:"confidence"`
	Reasoning  string           `json:"reasoning"`
}

// Response is the outcome of the generation step. StepNumbers holds the
// numbered action steps found in the text, in order of appearance.
type Response struct {
	Text        string `json:"response"`
	StepCount   int    `json:"step_count"`
	StepNumbers []int  `json:"step_numbers"`
}

// Router categorizes a ticket's issue text. Implementations never fail;
// anything unrecognizable lands on dataset.CategoryOther.
type Router interface {
	Route(issue string) Routing
}

// Generator drafts a reply from the issue, the retrieved docs and the
// routed category.
type Generator interface {
	Generate(issue string, docs []string, category dataset.Category) Response
}

// TicketResult carries everything one ticket produced.
type TicketResult struct {
	TicketID string           `json:"ticket_id"`
	Input    dataset.Ticket   `json:"input"`
	Routing  Routing          `json:"routing"`
	Docs     []string         `json:"docs"`
	Response Response         `json:"response"`
	Trace    trace.Trace      `json:"trace"`
	Category dataset.Category `json:"category"`
	Version  string           `json:"version"`
}

// Agent sequences the pipeline and records a span per step.
type Agent struct {
	router   Router
	kb       KnowledgeBase
	gen      Generator
	recorder *trace.Recorder
	version  string
	log      *slog.Logger
}

func New(router Router, kb KnowledgeBase, gen Generator, recorder *trace.Recorder, version string, logger *slog.Logger) *Agent {
	if logger == nil {
		logger = slog.Default()
	}
	return &Agent{
		router:   router,
		kb:       kb,
		gen:      gen,
		recorder: recorder,
		version:  version,
		log:      logger,
	}
}

// RunTicket runs route, retrieve and generate strictly in sequence for one
// ticket, recording wall-clock timings per step.
func (a *Agent) RunTicket(ticket dataset.Ticket, meta trace.Meta) TicketResult {
	a.recorder.Begin(ticket.ID, meta)

	start := time.Now()
	routing := a.router.Route(ticket.Issue)
	a.recorder.Record("route_to_category",
		map[string]any{"issue": ticket.Issue},
		map[string]any{
			"category":   routing.Category,
			"confidence": routing.Confidence,
			"reasoning":  routing.Reasoning,
		},
		start, time.Now())

	start = time.Now()
	docs := a.kb.Docs(routing.Category)
	a.recorder.Record("retrieve_docs",
		map[string]any{"category": routing.Category},
		map[string]any{
			"docs":   docs,
			"count":  len(docs),
			"source": "knowledge_base",
		},
		start, time.Now())

	start = time.Now()
	response := a.gen.Generate(ticket.Issue, docs, routing.Category)
	a.recorder.Record("generate_response",
		map[string]any{"issue": ticket.Issue, "docs": docs},
		map[string]any{
			"response":   response.Text,
			"step_count": response.StepCount,
		},
		start, time.Now())

	t := a.recorder.Finish()
	a.log.Debug("processed ticket",
		"ticket", ticket.ID,
		"category", routing.Category,
		"steps", response.StepCount,
		"latency_ms", t.LatencyMS,
	)

	return TicketResult{
		TicketID: ticket.ID,
		Input:    ticket,
		Routing:  routing,
		Docs:     docs,
		Response: response,
		Trace:    t,
		Category: routing.Category,
		Version:  a.version,
	}
}

// RunAll processes the datapoints independently and in input order. There is
// no state shared between tickets beyond the read-only tables.
func (a *Agent) RunAll(ctx context.Context, points []dataset.Datapoint, runID string) ([]TicketResult, error) {
	results := make([]TicketResult, 0, len(points))
	for _, dp := range points {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, a.RunTicket(dp.Ticket, trace.Meta{
			Version:     a.version,
			RunID:       runID,
			DatapointID: dp.ID,
			GroundTruth: dp.Truth,
		}))
	}
	return results, nil
}
