package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ppiankov/memodraft/internal/evidence"
	"github.com/ppiankov/memodraft/internal/llm"
	"github.com/ppiankov/memodraft/internal/model"
	"github.com/ppiankov/memodraft/internal/preference"
	"github.com/ppiankov/memodraft/internal/render"
	"github.com/ppiankov/memodraft/internal/review"
	"github.com/ppiankov/memodraft/internal/store"
	"github.com/ppiankov/memodraft/internal/worker"
	"github.com/ppiankov/memodraft/internal/workflow"
)

var (
	noFeedback bool
	noExport   bool
	noFooter   bool
	plainUI    bool
)

// draftCmd represents the draft command
var draftCmd = &cobra.Command{
	Use:   "draft <topic>",
	Short: "Draft a memo for a topic and review it interactively",
	Long: `Draft retrieves evidence for the topic, writes a memo and asks you to
approve it or request edits:
- Requests for missing information trigger a fresh retrieval
- Requests about tone or length are stored as style feedback
- The run ends on approval, on quit, or after the revision cap

Example:
  memodraft draft "Q3 budget freeze"
  memodraft draft "Vendor onboarding" --provider openai --model gpt-4o-mini
  memodraft draft "Hiring plan" --no-feedback --output-dir ./memos`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDraft,
}

func init() {
	rootCmd.AddCommand(draftCmd)

	// Workflow flags
	draftCmd.Flags().Int("max-cycles", 0, "maximum revision cycles (default from config)")
	draftCmd.Flags().BoolVar(&noFeedback, "no-feedback", false, "skip the post-run rating prompt")

	// Output flags
	draftCmd.Flags().String("output-dir", "", "directory for exported memo files")
	draftCmd.Flags().BoolVar(&noExport, "no-export", false, "do not write JSON/Markdown/HTML files")
	draftCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable run footer in Markdown/HTML memos")
	draftCmd.Flags().BoolVar(&plainUI, "plain", false, "render drafts without terminal styling")

	// LLM flags
	draftCmd.Flags().String("provider", "", "LLM provider (openai, deepseek, anthropic, ollama, offline)")
	draftCmd.Flags().String("model", "", "LLM model name")

	_ = viper.BindPFlag("workflow.max_cycles", draftCmd.Flags().Lookup("max-cycles"))
	_ = viper.BindPFlag("output.dir", draftCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("llm.provider", draftCmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("llm.model", draftCmd.Flags().Lookup("model"))
}

func runDraft(cmd *cobra.Command, args []string) error {
	topic := strings.TrimSpace(strings.Join(args, " "))
	if topic == "" {
		return fmt.Errorf("topic must not be empty")
	}

	ctx := context.Background()

	index := evidence.OpenIndex(cfg.Corpus.Path, cfg.Corpus.TopK, logger)
	logger.Debug("Evidence index ready", zap.Int("cases", index.Len()))

	st, err := store.Open(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	gen, err := buildGenerator(ctx, cfg.LLM)
	if err != nil {
		return err
	}

	tracker := preference.NewTracker(st)
	console := review.NewConsole(os.Stdin, os.Stdout, logger)
	if plainUI {
		console = console.Plain()
	}

	drafter := &lastDraft{next: llm.NewDrafter(gen, logger)}

	wf := workflow.New(workflow.Deps{
		Retriever:   index,
		Drafter:     drafter,
		Reviewer:    console,
		Preferences: tracker,
		RunLogger:   st,
		Logger:      logger,
		Observer:    logTransition,
	}, workflow.ConfigFromModel(cfg))

	outcome, runErr := wf.Run(ctx, topic)
	if runErr != nil && outcome.RunID == "" {
		return fmt.Errorf("draft failed: %w", runErr)
	}

	fmt.Fprintf(os.Stderr, "\n✓ Run %s finished: %s after %d revision cycle(s) (grounded: %t)\n",
		outcome.RunID, outcome.FinalDecision, outcome.CycleCount, outcome.Grounded)

	if cfg.Workflow.CollectFeedback && !noFeedback {
		collectFeedback(ctx, console, tracker, outcome)
	}

	if !noExport {
		req, draft := drafter.snapshot()
		report := &render.MemoReport{
			Outcome:     outcome,
			Draft:       draft,
			Evidence:    req.Evidence,
			GeneratedAt: time.Now().UTC(),
		}
		paths, err := render.NewRenderer(!noFooter).WriteAll(report, cfg.Output.Dir)
		if err != nil {
			return fmt.Errorf("export memo: %w", err)
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", p)
		}
	}

	if runErr != nil {
		return fmt.Errorf("record outcome: %w", runErr)
	}
	return nil
}

// buildGenerator creates the configured generator, fills API keys from the
// provider's environment variable and throttles remote providers
func buildGenerator(ctx context.Context, c model.LLMConfig) (llm.Generator, error) {
	genCfg := llm.ConfigFromModel(c)
	if genCfg.APIKey == "" {
		if env := llm.APIKeyEnv(genCfg.Provider); env != "" {
			genCfg.APIKey = os.Getenv(env)
		}
	}
	if genCfg.BaseURL == "" && strings.EqualFold(genCfg.Provider, "ollama") {
		genCfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	gen, err := llm.NewGenerator(genCfg)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}

	switch strings.ToLower(genCfg.Provider) {
	case "", "offline":
		return gen, nil
	}

	if !reachable(ctx, gen, pingTimeout) {
		return llm.NewOfflineGenerator(), nil
	}

	logger.Info("Using LLM provider",
		zap.String("provider", gen.Name()),
		zap.String("model", genCfg.Model),
		zap.Float64("rps", c.RequestsPerSecond))
	return llm.NewThrottled(gen, worker.NewLimiter(c.RequestsPerSecond, c.Burst)), nil
}

const pingTimeout = 10 * time.Second

// reachable pings gen and warns when the provider cannot be used, in which
// case the caller drafts offline instead.
func reachable(ctx context.Context, gen llm.Generator, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := gen.Ping(ctx); err != nil {
		logger.Warn("LLM provider unavailable, falling back to offline drafting",
			zap.String("provider", gen.Name()),
			zap.Error(err))
		return false
	}
	return true
}

// collectFeedback asks for an optional review and stores it. Failures are
// logged; the run outcome is already persisted.
func collectFeedback(ctx context.Context, console *review.Console, tracker *preference.Tracker, outcome model.RunOutcome) {
	rec, ok, err := console.CollectFeedback(ctx, outcome.Topic, outcome.CycleCount)
	if err != nil {
		if !errors.Is(err, review.ErrNoDecision) {
			logger.Warn("Feedback collection failed", zap.Error(err))
		}
		return
	}
	if !ok {
		return
	}
	if err := tracker.AppendFeedback(ctx, rec); err != nil {
		logger.Warn("Failed to store feedback", zap.Error(err))
		return
	}
	fmt.Fprintln(os.Stderr, "✓ Feedback saved")
}

func logTransition(ev workflow.Event) {
	fields := []zap.Field{
		zap.String("run_id", ev.RunID),
		zap.String("state", string(ev.State)),
		zap.Int("cycle", ev.Cycle),
		zap.Int("evidence", ev.Evidence),
	}
	if ev.EditKind != "" {
		fields = append(fields, zap.String("edit_kind", ev.EditKind))
	}
	if ev.State.Terminal() {
		logger.Info("Workflow finished", fields...)
		return
	}
	logger.Debug("Workflow transition", fields...)
}

// lastDraft remembers the most recent request and draft for export
type lastDraft struct {
	next workflow.Drafter

	mu    sync.Mutex
	req   model.DraftRequest
	draft *model.DraftResult
}

func (d *lastDraft) Draft(ctx context.Context, req model.DraftRequest) (model.DraftResult, error) {
	result, err := d.next.Draft(ctx, req)
	if err != nil {
		return result, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.req = req
	d.draft = &result
	return result, nil
}

func (d *lastDraft) snapshot() (model.DraftRequest, *model.DraftResult) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.req, d.draft
}
