package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/MatusOllah/slogcolor"
	"github.com/google/uuid"
	"github.com/modfin/clix"
	"github.com/urfave/cli/v3"

	"triage/internal/agent"
	"triage/internal/ai"
	"triage/internal/dataset"
	"triage/internal/db"
	"triage/internal/eval"
	"triage/internal/report"
	"triage/internal/trace"
)

func main() {

	cmd := &cli.Command{
		Name:  "triage",
		Usage: "a customer support agent demo that routes, answers and scores mock tickets",
		Action: func(context.Context, *cli.Command) error {
			fmt.Println("Nothing to do here, try `triage run`")
			return nil
		},

		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Value:   "./triage.db",
				Sources: cli.EnvVars("TRIAGE_DB"),
			},

			&cli.StringFlag{
				Name:    "bellman-url",
				Sources: cli.EnvVars("TRIAGE_BELLMAN_URL"),
			},
			&cli.StringFlag{
				Name:    "bellman-key",
				Sources: cli.EnvVars("TRIAGE_BELLMAN_KEY"),
			},
			&cli.StringFlag{
				Name:    "bellman-key-name",
				Value:   "triage",
				Sources: cli.EnvVars("TRIAGE_BELLMAN_KEY_NAME"),
			},

			&cli.StringFlag{
				Name:    "vertexai-credential",
				Sources: cli.EnvVars("TRIAGE_VERTEXAI_CREDENTIAL"),
			},
			&cli.StringFlag{
				Name:    "vertexai-project",
				Sources: cli.EnvVars("TRIAGE_VERTEXAI_PROJECT"),
			},
			&cli.StringFlag{
				Name:    "vertexai-region",
				Sources: cli.EnvVars("TRIAGE_VERTEXAI_REGION"),
			},

			&cli.StringFlag{
				Name:    "openai-key",
				Sources: cli.EnvVars("TRIAGE_OPENAI_KEY"),
			},
			&cli.StringFlag{
				Name:    "anthropic-key",
				Sources: cli.EnvVars("TRIAGE_ANTHROPIC_KEY"),
			},

			&cli.StringFlag{
				Name:    "llm-model",
				Value:   "Anthropic/claude-3-7-sonnet-20250219",
				Sources: cli.EnvVars("TRIAGE_LLM_MODEL"),
			},
			&cli.StringFlag{
				Name:    "judge-model",
				Usage:   "model used by the llm judge evaluators, empty disables them",
				Sources: cli.EnvVars("TRIAGE_JUDGE_MODEL"),
			},

			&cli.BoolFlag{
				Name:    "verbose",
				Sources: cli.EnvVars("TRIAGE_VERBOSE"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {

			opts := *slogcolor.DefaultOptions
			if cmd.Bool("verbose") {
				opts.Level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slogcolor.NewHandler(os.Stderr, &opts)))

			return ctx, nil
		},

		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the pipeline over a ticket dataset and score the results",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "offline",
						Usage:   "force the deterministic heuristic path, no llm calls",
						Sources: cli.EnvVars("TRIAGE_OFFLINE"),
					},
					&cli.StringFlag{
						Name:    "version",
						Value:   "v1",
						Usage:   "version tag for the run",
						Sources: cli.EnvVars("TRIAGE_VERSION"),
					},
					&cli.StringFlag{
						Name:    "dataset",
						Value:   "mock",
						Sources: cli.EnvVars("TRIAGE_DATASET"),
					},
					&cli.StringFlag{
						Name:  "run-id",
						Usage: "run identifier, generated when empty",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "export the run to a JSON file",
					},
				},
				Action: runAction,
			},

			{
				Name:      "evaluate",
				Usage:     "summarize an exported run file or a stored run id",
				ArgsUsage: "<results.json | run-id>",
				Action:    evaluateAction,
			},

			{
				Name:      "compare",
				Usage:     "compare two exported run files for A/B testing",
				ArgsUsage: "<old.json> <new.json>",
				Action:    compareAction,
			},

			{
				Name:  "history",
				Usage: "list stored runs",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Value: 20,
					},
				},
				Action: historyAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Default().Error("got error running triage", "err", err)
		os.Exit(1)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {

	creds := clix.ParseCommand[ai.Credentials](cmd)
	proxy, err := ai.New(creds, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create proxy: %w", err)
	}

	points, err := dataset.Load(cmd.String("dataset"))
	if err != nil {
		return fmt.Errorf("failed to load dataset: %w", err)
	}

	runID := cmd.String("run-id")
	if runID == "" {
		runID = uuid.NewString()
	}

	kb := agent.NewKnowledgeBase(dataset.KnowledgeBase())
	var router agent.Router = agent.NewHeuristicRouter(dataset.RoutingRules())
	var generator agent.Generator = agent.NewTemplateGenerator()

	mode := "offline"
	model := ai.ParseModel(cmd.String("llm-model"))
	if !cmd.Bool("offline") {
		if proxy.HasGen(model.Provider) {
			router, generator = agent.NewLLMPath(proxy, model, router, generator, slog.Default())
			mode = model.Provider
			slog.Default().Debug("llm path enabled", "provider", model.Provider, "model", model.Name)
		} else {
			slog.Default().Warn("no credentials for llm provider, running heuristics only", "provider", model.Provider)
		}
	}

	evaluators := eval.Suite()
	if judge := cmd.String("judge-model"); judge != "" {
		judgeModel := ai.ParseModel(judge)
		if proxy.HasGen(judgeModel.Provider) {
			evaluators = append(evaluators,
				eval.Faithfulness{Proxy: proxy, Model: judgeModel},
				eval.SafetyJudge{Proxy: proxy, Model: judgeModel},
			)
		} else {
			slog.Default().Warn("no credentials for judge provider, skipping llm judges", "provider", judgeModel.Provider)
		}
	}

	a := agent.New(router, kb, generator, trace.NewRecorder(), cmd.String("version"), slog.Default())
	results, err := a.RunAll(ctx, points, runID)
	if err != nil {
		return fmt.Errorf("failed to run pipeline: %w", err)
	}

	records := make([]report.Record, 0, len(results))
	for i, res := range results {
		evaluations := eval.Run(evaluators, points[i], res)
		res.Trace.Evaluations = evaluations
		records = append(records, report.Record{TicketResult: res, Evaluations: evaluations})
	}

	run := report.Run{
		RunID:     runID,
		Version:   cmd.String("version"),
		Dataset:   cmd.String("dataset"),
		Mode:      mode,
		CreatedAt: time.Now(),
		Results:   records,
		Summary:   report.Summarize(records),
	}

	printSummary(run)

	queries, err := db.Open(ctx, cmd.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer queries.Close()

	row, err := queries.SaveRun(ctx, run)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	slog.Default().Debug("saved run", "id", row.ID, "run_id", row.RunID)

	if out := cmd.String("out"); out != "" {
		err = report.WriteFile(out, run)
		if err != nil {
			return fmt.Errorf("failed to export run: %w", err)
		}
		fmt.Printf("Exported results to %s\n", out)
	}

	return nil
}

func evaluateAction(ctx context.Context, cmd *cli.Command) error {

	target := cmd.Args().First()
	if target == "" {
		return fmt.Errorf("expected a results file or run id")
	}

	if _, err := os.Stat(target); err == nil {
		run, err := report.ReadFile(target)
		if err != nil {
			return err
		}
		printSummary(run)
		return nil
	}

	queries, err := db.Open(ctx, cmd.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer queries.Close()

	run, err := queries.GetRun(ctx, target)
	if err != nil {
		return fmt.Errorf("no file or stored run matches %q: %w", target, err)
	}
	printSummary(run)
	return nil
}

func compareAction(_ context.Context, cmd *cli.Command) error {

	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected two results files")
	}

	a, err := report.ReadFile(cmd.Args().Get(0))
	if err != nil {
		return err
	}
	b, err := report.ReadFile(cmd.Args().Get(1))
	if err != nil {
		return err
	}

	fmt.Print(report.CompareText(a, b))
	return nil
}

func historyAction(ctx context.Context, cmd *cli.Command) error {

	queries, err := db.Open(ctx, cmd.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open run store: %w", err)
	}
	defer queries.Close()

	rows, err := queries.ListRuns(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	for _, row := range rows {
		fmt.Printf("%s  %s  %s/%s  mode=%s  passed %d/%d\n",
			time.Unix(row.CreatedAt, 0).Format(time.RFC3339),
			row.RunID,
			row.Dataset,
			row.Version,
			row.Mode,
			row.Passed,
			row.Total,
		)
	}
	return nil
}

func printSummary(run report.Run) {
	s := run.Summary
	fmt.Printf("Processed %d tickets | passed: %d | failed: %d\n", s.Total, s.Passed, s.Failed)

	names := make([]string, 0, len(s.Metrics))
	for name := range s.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.1f\n", name, s.Metrics[name])
	}
	if s.Bottleneck != "" {
		fmt.Printf("  bottleneck: %s\n", s.Bottleneck)
	}
}
