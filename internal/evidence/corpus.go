package evidence

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
)

// ErrCorpusUnavailable is returned when the corpus file is missing or unreadable
var ErrCorpusUnavailable = errors.New("corpus unavailable")

// GoldPointDelimiter separates individual facts in the gold_data_points column
const GoldPointDelimiter = "|"

// Corpus column names
const (
	colCaseID     = "case_id"
	colTopic      = "topic"
	colAudience   = "audience"
	colTone       = "tone"
	colEvidence   = "evidence_pack"
	colGoldPoints = "gold_data_points"
)

// LoadCases reads the case corpus from a CSV file with a header row
func LoadCases(path string) ([]model.Case, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorpusUnavailable, err)
	}
	defer func() { _ = file.Close() }()

	cases, err := ReadCases(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorpusUnavailable, path, err)
	}
	return cases, nil
}

// ReadCases parses corpus rows from r. Columns are matched by header name;
// absent columns read as empty strings.
func ReadCases(r io.Reader) ([]model.Case, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Tolerate ragged rows

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}

	field := func(row []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var cases []model.Case
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(cases)+2, err)
		}

		caseID := strings.TrimSpace(field(row, colCaseID))
		if caseID == "" {
			caseID = model.UnknownCaseID
		}

		cases = append(cases, model.Case{
			CaseID:       caseID,
			Topic:        field(row, colTopic),
			Audience:     field(row, colAudience),
			Tone:         field(row, colTone),
			EvidencePack: field(row, colEvidence),
			GoldPoints:   SplitGoldPoints(field(row, colGoldPoints)),
		})
	}

	return cases, nil
}

// SplitGoldPoints splits a pipe-delimited field into trimmed, non-empty facts
func SplitGoldPoints(raw string) []string {
	var points []string
	for _, part := range strings.Split(raw, GoldPointDelimiter) {
		part = strings.TrimSpace(part)
		if part != "" {
			points = append(points, part)
		}
	}
	return points
}
