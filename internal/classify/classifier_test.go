package classify

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_ContentRequests(t *testing.T) {
	c := NewClassifier()

	cases := map[string]string{
		"please add more KPIs":                       "add",
		"The memo is missing the Q3 figures":         "missing",
		"I need more information on churn":           "more-information",
		"this feels incomplete":                      "incomplete",
		"Not enough evidence here":                   "not-enough",
		"expand on the budget":                       "expand",
		"include all regions":                        "include-all",
		"show the data":                              "data",
		"where are the numbers?":                     "numbers",
		"what about the kpi":                         "kpi",
		"list the metrics":                           "metrics",
		"can you provide some more specific details": "provide-details",
		"some additional context and information":    "add",
		"we need more context":                       "need-more",
		"give me more info":                          "more-info",
	}

	for text, wantTag := range cases {
		kind, tag := c.Explain(text)
		assert.Equal(t, ContentRequest, kind, "text %q", text)
		assert.Equal(t, wantTag, tag, "text %q", text)
	}
}

func TestClassifier_StyleRequests(t *testing.T) {
	c := NewClassifier()

	for _, text := range []string{
		"make it shorter",
		"more formal tone please",
		"too long",
		"fix the greeting",
		"database", // word boundary: not "data"
		"address the team directly",
		"",
		"   ",
	} {
		assert.Equal(t, StyleRequest, c.Classify(text), "text %q", text)
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewClassifier()
	for i := 0; i < 5; i++ {
		assert.Equal(t, ContentRequest, c.Classify("please add more KPIs"))
		assert.Equal(t, StyleRequest, c.Classify("make it shorter"))
	}
}

func TestClassifier_RuleOrder(t *testing.T) {
	c := NewClassifierWithRules([]Rule{
		{Tag: "first", Pattern: regexp.MustCompile(`\bnumbers\b`), Verdict: StyleRequest},
		{Tag: "second", Pattern: regexp.MustCompile(`\bnumbers\b`), Verdict: ContentRequest},
	})

	kind, tag := c.Explain("more numbers")
	assert.Equal(t, StyleRequest, kind)
	assert.Equal(t, "first", tag)
}
