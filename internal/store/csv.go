package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/ppiankov/memodraft/internal/model"
	"go.uber.org/zap"
)

var (
	feedbackHeader = []string{"timestamp", "topic", "cycle_count", "rating", "feedback_text"}
	outcomeHeader  = []string{"timestamp", "topic", "cycle_count", "grounded", "final_decision", "run_id"}
)

// CSV stores feedback and outcomes in two append-only CSV files.
// The header row is written when a file is first created.
type CSV struct {
	feedbackPath string
	outcomesPath string
	logger       *zap.Logger
	mu           sync.Mutex
}

// NewCSV creates a CSV store. Files are created on first append.
func NewCSV(feedbackPath, outcomesPath string, logger *zap.Logger) *CSV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSV{
		feedbackPath: feedbackPath,
		outcomesPath: outcomesPath,
		logger:       logger,
	}
}

// Close is a no-op; files are opened per operation
func (c *CSV) Close() error {
	return nil
}

func (c *CSV) appendRow(path string, header, row []string) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if err := w.Write(row); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	return w.Error()
}

func (c *CSV) readRows(path string) ([]map[string]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	var rows []map[string]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// AppendFeedback appends one feedback row
func (c *CSV) AppendFeedback(_ context.Context, rec model.FeedbackRecord) error {
	rating := ""
	if rec.Rating != nil {
		rating = strconv.Itoa(*rec.Rating)
	}
	row := []string{formatTime(rec.Timestamp), rec.Topic, strconv.Itoa(rec.Cycle), rating, rec.Text}
	if err := c.appendRow(c.feedbackPath, feedbackHeader, row); err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// ListFeedback returns all feedback rows. Unparseable ratings are treated
// as absent.
func (c *CSV) ListFeedback(_ context.Context) ([]model.FeedbackRecord, error) {
	rows, err := c.readRows(c.feedbackPath)
	if err != nil {
		return nil, fmt.Errorf("list feedback: %w", err)
	}

	records := make([]model.FeedbackRecord, 0, len(rows))
	for _, row := range rows {
		rec := model.FeedbackRecord{
			Topic:     row["topic"],
			Cycle:     atoiOrZero(row["cycle_count"]),
			Text:      row["feedback_text"],
			Timestamp: parseTime(row["timestamp"]),
		}
		if raw := row["rating"]; raw != "" {
			if r, err := strconv.Atoi(raw); err == nil && r >= 1 && r <= 5 {
				rec.Rating = &r
			} else {
				c.logger.Warn("Ignoring malformed feedback rating",
					zap.String("path", c.feedbackPath), zap.String("rating", raw))
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// AppendOutcome appends one run outcome row
func (c *CSV) AppendOutcome(_ context.Context, outcome model.RunOutcome) error {
	row := []string{
		formatTime(outcome.Timestamp),
		outcome.Topic,
		strconv.Itoa(outcome.CycleCount),
		strconv.FormatBool(outcome.Grounded),
		string(outcome.FinalDecision),
		outcome.RunID,
	}
	if err := c.appendRow(c.outcomesPath, outcomeHeader, row); err != nil {
		return fmt.Errorf("append outcome: %w", err)
	}
	return nil
}

// ListOutcomes returns all run outcomes
func (c *CSV) ListOutcomes(_ context.Context) ([]model.RunOutcome, error) {
	rows, err := c.readRows(c.outcomesPath)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}

	outcomes := make([]model.RunOutcome, 0, len(rows))
	for _, row := range rows {
		grounded, _ := strconv.ParseBool(row["grounded"])
		outcomes = append(outcomes, model.RunOutcome{
			RunID:         row["run_id"],
			Topic:         row["topic"],
			CycleCount:    atoiOrZero(row["cycle_count"]),
			FinalDecision: model.FinalDecision(row["final_decision"]),
			Grounded:      grounded,
			Timestamp:     parseTime(row["timestamp"]),
		})
	}
	return outcomes, nil
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
