package evidence

import (
	"errors"
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
	"go.uber.org/zap"
)

const (
	// DefaultTopK is the number of cases kept per retrieval
	DefaultTopK = 3

	// MaxPoints caps the evidence points returned by a single retrieval
	MaxPoints = 8
)

var tokenPattern = regexp.MustCompile(`[a-z0-9]+`)

// Index answers lexical-overlap retrieval queries over a fixed case corpus.
// It is read-only after construction and safe for concurrent use.
type Index struct {
	cases []indexedCase
	topK  int
}

type indexedCase struct {
	c      model.Case
	tokens map[string]bool
}

type scoredCase struct {
	idx   int
	score int
}

// NewIndex builds an index over cases, tokenizing each once
func NewIndex(cases []model.Case, topK int) *Index {
	if topK <= 0 {
		topK = DefaultTopK
	}

	indexed := make([]indexedCase, 0, len(cases))
	for _, c := range cases {
		text := strings.Join([]string{
			c.Topic,
			c.Audience,
			c.Tone,
			c.EvidencePack,
			strings.Join(c.GoldPoints, GoldPointDelimiter),
		}, " ")
		indexed = append(indexed, indexedCase{c: c, tokens: Tokenize(text)})
	}

	return &Index{cases: indexed, topK: topK}
}

// OpenIndex loads the corpus at path. A missing or unreadable corpus is not
// fatal: it is logged and an empty index is returned.
func OpenIndex(path string, topK int, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	cases, err := LoadCases(path)
	if err != nil {
		if errors.Is(err, ErrCorpusUnavailable) {
			logger.Warn("Evidence corpus unavailable, retrieval will return no evidence",
				zap.String("path", path), zap.Error(err))
		}
		return NewIndex(nil, topK)
	}

	logger.Debug("Loaded evidence corpus", zap.String("path", path), zap.Int("cases", len(cases)))
	return NewIndex(cases, topK)
}

// Len returns the number of cases in the index
func (ix *Index) Len() int {
	return len(ix.cases)
}

// Retrieve returns up to MaxPoints evidence points for query, skipping any
// case whose ID is in exclude. Cases are ranked by token overlap; only the
// top-K cases with an overlap of at least model.RelevanceFloor contribute.
func (ix *Index) Retrieve(query string, exclude map[string]bool) []model.EvidencePoint {
	if len(ix.cases) == 0 {
		return nil
	}

	queryTokens := Tokenize(query)
	scored := make([]scoredCase, 0, len(ix.cases))
	for i, ic := range ix.cases {
		if exclude[ic.c.CaseID] {
			continue
		}
		scored = append(scored, scoredCase{idx: i, score: overlap(queryTokens, ic.tokens)})
	}

	// Stable: ties keep corpus order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > ix.topK {
		scored = scored[:ix.topK]
	}

	var points []model.EvidencePoint
	for _, sc := range scored {
		if sc.score < model.RelevanceFloor {
			continue
		}
		c := ix.cases[sc.idx].c
		for _, text := range c.GoldPoints {
			points = append(points, model.EvidencePoint{Text: text, Source: c.CaseID})
		}
	}

	if len(points) > MaxPoints {
		points = points[:MaxPoints]
	}
	return points
}

// Tokenize lower-cases text and returns its set of alphanumeric tokens
func Tokenize(text string) map[string]bool {
	tokens := make(map[string]bool)
	for _, tok := range tokenPattern.FindAllString(strings.ToLower(text), -1) {
		tokens[tok] = true
	}
	return tokens
}

func overlap(a, b map[string]bool) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for tok := range a {
		if b[tok] {
			n++
		}
	}
	return n
}
