package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/memodraft/internal/model"
)

// Drafter turns a draft request into a memo: it builds the prompt, calls
// the generator and cleans the output.
type Drafter struct {
	gen    Generator
	logger *zap.Logger
	now    func() time.Time
}

// NewDrafter creates a drafter over gen
func NewDrafter(gen Generator, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Drafter{
		gen:    gen,
		logger: logger,
		now:    time.Now,
	}
}

// Draft produces the memo for one cycle
func (d *Drafter) Draft(ctx context.Context, req model.DraftRequest) (model.DraftResult, error) {
	prompt := BuildDraftPrompt(req, d.now().Format(DateLayout))

	d.logger.Debug("generating draft",
		zap.String("provider", d.gen.Name()),
		zap.String("topic", req.Topic),
		zap.Int("cycle", req.Cycle),
		zap.Int("evidence", len(req.Evidence)),
	)

	raw, err := d.gen.Generate(ctx, prompt)
	if err != nil {
		return model.DraftResult{}, fmt.Errorf("generate draft (cycle %d): %w", req.Cycle, err)
	}

	sources := make([]string, 0, len(req.Evidence))
	for src := range req.Evidence.Sources() {
		sources = append(sources, src)
	}

	body := PostProcess(raw, sources)
	if body == "" {
		d.logger.Warn("generator returned an empty draft",
			zap.String("provider", d.gen.Name()),
			zap.Int("cycle", req.Cycle),
		)
	}

	return model.DraftResult{
		Subject: Subject(req.Topic, req.Cycle),
		Body:    body,
		Cycle:   req.Cycle,
	}, nil
}
