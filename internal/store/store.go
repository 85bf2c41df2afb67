package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
	"go.uber.org/zap"
)

// FeedbackStore is the append-only feedback history
type FeedbackStore interface {
	AppendFeedback(ctx context.Context, rec model.FeedbackRecord) error
	ListFeedback(ctx context.Context) ([]model.FeedbackRecord, error)
}

// OutcomeStore is the append-only run log
type OutcomeStore interface {
	AppendOutcome(ctx context.Context, outcome model.RunOutcome) error
	ListOutcomes(ctx context.Context) ([]model.RunOutcome, error)
}

// Store persists both feedback and run outcomes
type Store interface {
	FeedbackStore
	OutcomeStore
	Close() error
}

// Open creates the backend selected by cfg.Backend
func Open(cfg model.StoreConfig, logger *zap.Logger) (Store, error) {
	backend := strings.ToLower(cfg.Backend)

	switch backend {
	case "sqlite", "":
		return OpenSQLite(cfg.Path)

	case "csv":
		return NewCSV(cfg.FeedbackCSV, cfg.OutcomesCSV, logger), nil

	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: sqlite, csv)", cfg.Backend)
	}
}
