package review

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/ppiankov/memodraft/internal/model"
)

// ErrNoDecision is returned when input ends before a decision is made
var ErrNoDecision = errors.New("no decision: input closed")

// DecisionAbandon is what Decide returns when the reviewer quits. The
// workflow does not recognize it, so the run ends as unknown.
const DecisionAbandon model.DecisionKind = "abandon"

var (
	subjectStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#5B8DEF"))
	bodyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("#444444")).
	Padding(0, 1)

// Console is a line-oriented reviewer reading decisions from in and
// writing drafts and prompts to out
type Console struct {
	in     *bufio.Reader
	out    io.Writer
	plain  bool
	logger *zap.Logger
}

// NewConsole creates a console reviewer
func NewConsole(in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Console{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
	}
}

// Plain disables box rendering of drafts
func (c *Console) Plain() *Console {
	c.plain = true
	return c
}

// RenderDraft formats a draft for the terminal
func (c *Console) RenderDraft(draft model.DraftResult) string {
	if c.plain {
		return fmt.Sprintf("===== EMAIL DRAFT =====\n%s\n\n%s\n=======================", draft.Subject, draft.Body)
	}
	return boxStyle.Render(subjectStyle.Render(draft.Subject) + "\n\n" + bodyStyle.Render(draft.Body))
}

// Decide shows the draft and blocks until the reviewer approves, asks for
// edits or quits. Invalid input is re-prompted.
func (c *Console) Decide(ctx context.Context, draft model.DraftResult) (model.Decision, error) {
	_, _ = fmt.Fprintf(c.out, "\n%s\n\n", c.RenderDraft(draft))

	for {
		if err := ctx.Err(); err != nil {
			return model.Decision{}, err
		}

		choice, err := c.ask("Type 'a' = approve, 'e' = edit_request, 'q' = quit: ")
		if err != nil {
			return model.Decision{}, err
		}

		switch strings.ToLower(choice) {
		case "a", "approve":
			return model.Approve(), nil

		case "e", "edit", "edit_request":
			text, err := c.ask("Describe the edits you want: ")
			if err != nil {
				return model.Decision{}, err
			}
			return model.EditRequest(text), nil

		case "q", "quit":
			return model.Decision{Kind: DecisionAbandon}, nil

		default:
			_, _ = fmt.Fprintln(c.out, c.hint("Invalid input. Please type 'a', 'e' or 'q'."))
		}
	}
}

// CollectFeedback asks for an optional rating and free-text comment after a
// run. ok is false when the reviewer skipped both.
func (c *Console) CollectFeedback(ctx context.Context, topic string, cycles int) (rec model.FeedbackRecord, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return model.FeedbackRecord{}, false, err
	}

	_, _ = fmt.Fprintln(c.out, "\n--- Feedback on this memo (optional) ---")

	raw, err := c.ask("Rating [1-5, or Enter to skip]: ")
	if err != nil {
		return model.FeedbackRecord{}, false, err
	}
	rating, perr := ParseRating(raw)
	if perr != nil {
		c.logger.Warn("ignoring rating", zap.String("input", raw), zap.Error(perr))
		_, _ = fmt.Fprintln(c.out, c.hint("Could not use that rating. Skipping numeric rating."))
	}

	text, err := c.ask("Any comments for future drafts? (Enter to skip): ")
	if err != nil && !errors.Is(err, ErrNoDecision) {
		return model.FeedbackRecord{}, false, err
	}

	if rating == nil && text == "" {
		return model.FeedbackRecord{}, false, nil
	}

	return model.FeedbackRecord{
		Topic:     topic,
		Cycle:     cycles,
		Rating:    rating,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}, true, nil
}

// ask prints prompt and returns the trimmed reply. A final line without a
// newline is still returned; EOF with nothing read is ErrNoDecision.
func (c *Console) ask(prompt string) (string, error) {
	_, _ = fmt.Fprint(c.out, prompt)

	line, err := c.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			if line != "" {
				return strings.TrimSpace(line), nil
			}
			return "", ErrNoDecision
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) hint(s string) string {
	if c.plain {
		return s
	}
	return hintStyle.Render(s)
}
