package classify

import (
	"regexp"
	"strings"
)

// Kind is the verdict for an edit request
type Kind string

const (
	// ContentRequest asks for missing facts and triggers re-retrieval
	ContentRequest Kind = "content"
	// StyleRequest is about tone, length or phrasing only
	StyleRequest Kind = "style"
)

// Rule maps a lexical pattern to a verdict
type Rule struct {
	Tag     string
	Pattern *regexp.Regexp
	Verdict Kind
}

// Classifier decides whether an edit request needs new evidence.
// Rules are evaluated in order and the first match wins; no match means style.
type Classifier struct {
	rules []Rule
}

// NewClassifier creates a classifier with the default missing-information rules
func NewClassifier() *Classifier {
	return NewClassifierWithRules(DefaultRules())
}

// NewClassifierWithRules creates a classifier with a custom rule list
func NewClassifierWithRules(rules []Rule) *Classifier {
	return &Classifier{rules: rules}
}

// DefaultRules returns the fixed rule list for requests asking for more data
func DefaultRules() []Rule {
	patterns := []struct {
		tag     string
		pattern string
	}{
		{"missing", `\bmissing\b`},
		{"add", `\badd(itional)?\b`},
		{"more-info", `\bmore info\b`},
		{"more-details", `\bmore details\b`},
		{"more-information", `\bmore information\b`},
		{"need-more", `\bneed more\b`},
		{"i-need-more", `\bi need more\b`},
		{"incomplete", `\bincomplete\b`},
		{"not-enough", `\bnot enough\b`},
		{"expand", `\bexpand\b`},
		{"include-all", `\binclude all\b`},
		{"data", `\bdata\b`},
		{"numbers", `\bnumbers\b`},
		{"kpi", `\bkpi(s)?\b`},
		{"metrics", `\bmetrics\b`},
		{"provide-details", `\bprovide\b.*\bdetails\b`},
		{"additional-information", `\badditional\b.*\binformation\b`},
	}

	rules := make([]Rule, 0, len(patterns))
	for _, p := range patterns {
		rules = append(rules, Rule{
			Tag:     p.tag,
			Pattern: regexp.MustCompile(p.pattern),
			Verdict: ContentRequest,
		})
	}
	return rules
}

// Classify returns the verdict for an edit request
func (c *Classifier) Classify(text string) Kind {
	kind, _ := c.Explain(text)
	return kind
}

// Explain returns the verdict together with the tag of the rule that matched
// (empty when no rule matched)
func (c *Classifier) Explain(text string) (Kind, string) {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return StyleRequest, ""
	}

	for _, rule := range c.rules {
		if rule.Pattern.MatchString(t) {
			return rule.Verdict, rule.Tag
		}
	}
	return StyleRequest, ""
}
