package model

import (
	"fmt"
	"time"
)

// RelevanceFloor is the minimum token overlap for a case to count as evidence
const RelevanceFloor = 2

// Config holds all memodraft configuration
type Config struct {
	Corpus   CorpusConfig   `yaml:"corpus" mapstructure:"corpus"`
	Evidence EvidenceConfig `yaml:"evidence" mapstructure:"evidence"`
	Workflow WorkflowConfig `yaml:"workflow" mapstructure:"workflow"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	LLM      LLMConfig      `yaml:"llm" mapstructure:"llm"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Output   OutputConfig   `yaml:"output" mapstructure:"output"`
}

// CorpusConfig controls where evidence comes from
type CorpusConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`               // CSV corpus path
	TopK        int    `yaml:"top_k" mapstructure:"top_k"`             // Cases kept per retrieval
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"` // Workers for batch retrieval
}

// EvidenceConfig controls evidence accumulation caps
type EvidenceConfig struct {
	MergeLimit   int `yaml:"merge_limit" mapstructure:"merge_limit"`     // Cap when merging multi-query CLI results
	RequeryLimit int `yaml:"requery_limit" mapstructure:"requery_limit"` // Cap after a content-request re-query
}

// WorkflowConfig controls the revision loop
type WorkflowConfig struct {
	MaxCycles          int    `yaml:"max_cycles" mapstructure:"max_cycles"`
	DefaultEditRequest string `yaml:"default_edit_request" mapstructure:"default_edit_request"`
	CollectFeedback    bool   `yaml:"collect_feedback" mapstructure:"collect_feedback"` // Ask for a rating after each run
}

// StoreConfig selects the persistence backend
type StoreConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`           // sqlite or csv
	Path        string `yaml:"path" mapstructure:"path"`                 // SQLite database file
	FeedbackCSV string `yaml:"feedback_csv" mapstructure:"feedback_csv"` // CSV backend feedback file
	OutcomesCSV string `yaml:"outcomes_csv" mapstructure:"outcomes_csv"` // CSV backend outcomes file
}

// LLMConfig configures the draft generator
type LLMConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, offline
	Model             string  `yaml:"model" mapstructure:"model"`
	APIKey            string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL           string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout           int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens         int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
	HTTPProxy         string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy        string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy           string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // console or json
}

// OutputConfig controls exported memo files
type OutputConfig struct {
	Dir     string `yaml:"dir" mapstructure:"dir"`
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Corpus: CorpusConfig{
			Path:        "business_memo_cases.csv",
			TopK:        3,
			Concurrency: 4,
		},
		Evidence: EvidenceConfig{
			MergeLimit:   12,
			RequeryLimit: 16,
		},
		Workflow: WorkflowConfig{
			MaxCycles:          10,
			DefaultEditRequest: "Please improve clarity and conciseness.",
			CollectFeedback:    true,
		},
		Store: StoreConfig{
			Backend:     "sqlite",
			Path:        "memo_system.db",
			FeedbackCSV: "feedback_log.csv",
			OutcomesCSV: "evaluation_log.csv",
		},
		LLM: LLMConfig{
			Provider:          "offline",
			Timeout:           60,
			MaxTokens:         800,
			RequestsPerSecond: 1,
			Burst:             2,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Output: OutputConfig{
			Dir: "./memodraft-out",
		},
	}
}

// Validate rejects configurations the workflow cannot run with
func (c *Config) Validate() error {
	if c.Corpus.TopK <= 0 {
		return fmt.Errorf("corpus.top_k must be positive, got %d", c.Corpus.TopK)
	}
	if c.Evidence.MergeLimit <= 0 {
		return fmt.Errorf("evidence.merge_limit must be positive, got %d", c.Evidence.MergeLimit)
	}
	if c.Evidence.RequeryLimit <= 0 {
		return fmt.Errorf("evidence.requery_limit must be positive, got %d", c.Evidence.RequeryLimit)
	}
	if c.Workflow.MaxCycles <= 0 {
		return fmt.Errorf("workflow.max_cycles must be positive, got %d", c.Workflow.MaxCycles)
	}
	switch c.Store.Backend {
	case "sqlite", "csv":
	default:
		return fmt.Errorf("store.backend must be sqlite or csv, got %q", c.Store.Backend)
	}
	return nil
}

// LLMTimeout returns the generator timeout as a duration
func (c *Config) LLMTimeout() time.Duration {
	if c.LLM.Timeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.LLM.Timeout) * time.Second
}
