package agent

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/modfin/bellman/models/gen"
	"github.com/modfin/bellman/prompt"
	"github.com/modfin/bellman/schema"
	"github.com/modfin/henry/slicez"

	"triage/internal/ai"
	"triage/internal/dataset"
)

const routeSystemPrompt = "You are a support ticket classifier. " +
	"Categorize the customer issue into one of: upload_errors, account_access, data_export, other. " +
	"upload_errors covers file upload failures, 404s, CDN and HTTPS problems. " +
	"account_access covers login, SSO, password reset, 2FA and lockout issues. " +
	"data_export covers export failures, CSV/JSON downloads and export queues. " +
	"Anything else is other."

const generateSystemPrompt = "You are a concise, friendly technical support agent. " +
	"Use the provided docs to craft a numbered, actionable response. Include 2-4 steps."

// llmState is shared between the LLM router and generator of one run. After
// the first provider error, every later call goes straight to the fallback.
type llmState struct {
	disabled bool
}

// NewLLMPath returns router and generator variants that call the configured
// model and degrade to the given deterministic implementations on any error.
func NewLLMPath(proxy *ai.Proxy, model gen.Model, fallbackRouter Router, fallbackGen Generator, logger *slog.Logger) (Router, Generator) {
	if logger == nil {
		logger = slog.Default()
	}
	st := &llmState{}
	return &LLMRouter{proxy: proxy, model: model, fallback: fallbackRouter, state: st, log: logger},
		&LLMGenerator{proxy: proxy, model: model, fallback: fallbackGen, state: st, log: logger}
}

type LLMRouter struct {
	proxy    *ai.Proxy
	model    gen.Model
	fallback Router
	state    *llmState
	log      *slog.Logger
}

func (r *LLMRouter) Route(issue string) Routing {
	if r.state.disabled {
		return r.fallback.Route(issue)
	}

	verdict, err := r.route(issue)
	if err != nil {
		r.log.Warn("llm routing failed, using heuristics for the rest of the run", "err", err)
		r.state.disabled = true
		return r.fallback.Route(issue)
	}

	category := dataset.Category(verdict.Category)
	if !category.Valid() {
		category = dataset.CategoryOther
	}
	return Routing{
		Category:   category,
		Confidence: verdict.Confidence,
		Reasoning:  verdict.Reasoning,
	}
}

func (r *LLMRouter) route(issue string) (ai.RouteVerdict, error) {
	llm, err := r.proxy.Gen(r.model)
	if err != nil {
		return ai.RouteVerdict{}, fmt.Errorf("failed to create llm: %w", err)
	}

	res, err := llm.
		System(routeSystemPrompt).
		Output(schema.From(ai.RouteVerdict{})).
		Prompt(prompt.Prompt{
			Role: prompt.UserRole,
			Text: fmt.Sprintf("<customer-issue> %s </customer-issue>", issue),
		})
	if err != nil {
		return ai.RouteVerdict{}, fmt.Errorf("failed to generate verdict: %w", err)
	}

	var verdict ai.RouteVerdict
	err = res.Unmarshal(&verdict)
	if err != nil {
		return ai.RouteVerdict{}, fmt.Errorf("failed to unmarshal verdict: %w", err)
	}
	verdict.Metadata = res.Metadata

	r.log.Debug("llm routing",
		"category", verdict.Category,
		"input-tokens", res.Metadata.InputTokens,
		"output-tokens", res.Metadata.OutputTokens,
	)
	return verdict, nil
}

type LLMGenerator struct {
	proxy    *ai.Proxy
	model    gen.Model
	fallback Generator
	state    *llmState
	log      *slog.Logger
}

func (g *LLMGenerator) Generate(issue string, docs []string, category dataset.Category) Response {
	if g.state.disabled {
		return g.fallback.Generate(issue, docs, category)
	}

	draft, err := g.generate(issue, docs)
	if err != nil {
		g.log.Warn("llm generation failed, using template for the rest of the run", "err", err)
		g.state.disabled = true
		return g.fallback.Generate(issue, docs, category)
	}

	steps := ParseSteps(draft.Answer)
	return Response{
		Text:        draft.Answer,
		StepCount:   len(steps),
		StepNumbers: steps,
	}
}

func (g *LLMGenerator) generate(issue string, docs []string) (ai.Draft, error) {
	llm, err := g.proxy.Gen(g.model)
	if err != nil {
		return ai.Draft{}, fmt.Errorf("failed to create llm: %w", err)
	}

	prompts := slicez.Map(docs, func(doc string) prompt.Prompt {
		return prompt.Prompt{
			Role: prompt.UserRole,
			Text: fmt.Sprintf("<doc> %s </doc>", doc),
		}
	})

	res, err := llm.
		System(generateSystemPrompt).
		Output(schema.From(ai.Draft{})).
		Prompt(append(prompts, prompt.Prompt{
			Role: prompt.UserRole,
			Text: fmt.Sprintf("<customer-issue> %s </customer-issue>", issue),
		})...)
	if err != nil {
		return ai.Draft{}, fmt.Errorf("failed to generate response: %w", err)
	}

	var draft ai.Draft
	err = res.Unmarshal(&draft)
	if err != nil {
		return ai.Draft{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	draft.Metadata = res.Metadata

	if strings.TrimSpace(draft.Answer) == "" {
		return ai.Draft{}, fmt.Errorf("llm returned an empty answer")
	}
	return draft, nil
}
