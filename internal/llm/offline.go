package llm

import (
	"context"
	"strconv"
	"strings"
	"time"
)

// OfflineGenerator assembles a memo locally from the prompt's data points.
// It never calls a model, so drafts are deterministic for a given prompt.
type OfflineGenerator struct{}

// NewOfflineGenerator creates an offline generator
func NewOfflineGenerator() *OfflineGenerator {
	return &OfflineGenerator{}
}

// Name returns the provider name
func (g *OfflineGenerator) Name() string {
	return "offline"
}

// Ping never fails
func (g *OfflineGenerator) Ping(_ context.Context) error {
	return nil
}

// offlinePrompt is what the offline generator recovers from a drafting prompt
type offlinePrompt struct {
	topic  string
	date   string
	points []string
	length string
	formal bool
}

// Generate renders the memo layout filled with the prompt's data points
func (g *OfflineGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p := parseOfflinePrompt(prompt)
	if p.topic == "" {
		p.topic = "the current topic"
	}
	if p.date == "" {
		p.date = time.Now().Format(DateLayout)
	}

	greeting := "Dear Colleagues,"
	closing := "Please reach out if further clarification is required."
	if p.formal {
		closing = "Please do not hesitate to contact Sales Operations should further clarification be required."
	}

	var sb strings.Builder
	sb.WriteString("Subject: Update on " + p.topic + "\n\n")
	sb.WriteString("To: Sales & Marketing Teams\n")
	sb.WriteString("From: [Your Name], Sales Operations\n")
	sb.WriteString(dateLabel + p.date + "\n\n")
	sb.WriteString(greeting + "\n\n")

	for _, para := range p.paragraphs() {
		sb.WriteString(para + "\n\n")
	}

	sb.WriteString("Key Action Items:\n")
	sb.WriteString("- Review the figures summarised above with your team\n")
	sb.WriteString("- Flag any figure that needs validation to Sales Operations\n")
	sb.WriteString("- Align upcoming plans with the points in this memo\n\n")
	sb.WriteString(closing + "\n\n")
	sb.WriteString("Kind regards,\n")
	sb.WriteString("[Your Name]")

	return sb.String(), nil
}

// paragraphs builds the memo body according to the length instruction
func (p offlinePrompt) paragraphs() []string {
	intro := "This memo summarises the current position on " + p.topic + "."
	facts := make([]string, 0, len(p.points))
	for _, pt := range p.points {
		facts = append(facts, sentence(pt))
	}
	implication := "These points should guide our next steps; some figures require validation (TBD)."
	if len(facts) == 0 {
		implication = "No verified figures are available yet, so some figures require validation (TBD)."
	}

	switch {
	case strings.Contains(p.length, "EXACTLY 3 sentences"):
		middle := "Key figures are still being confirmed."
		if len(facts) > 0 {
			middle = facts[0]
		}
		return []string{intro + " " + middle + " " + implication}
	case strings.Contains(p.length, "3-5 sentences"):
		if len(facts) > 3 {
			facts = facts[:3]
		}
		return []string{strings.TrimSpace(intro + " " + strings.Join(facts, " ")), implication}
	default:
		first := intro
		if len(facts) > 0 {
			first += " " + strings.Join(facts, " ")
		}
		return []string{first, implication}
	}
}

// parseOfflinePrompt recovers the drafting inputs from a prompt built by BuildDraftPrompt
func parseOfflinePrompt(prompt string) offlinePrompt {
	var p offlinePrompt
	lines := strings.Split(prompt, "\n")

	section := ""
	for _, raw := range lines {
		line := strings.TrimSpace(raw)

		switch {
		case strings.HasPrefix(line, topicLabel) && p.topic == "":
			topic := strings.TrimPrefix(line, topicLabel)
			if unquoted, err := strconv.Unquote(topic); err == nil {
				topic = unquoted
			}
			p.topic = topic
			section = ""
			continue
		case strings.HasPrefix(line, dateLabel):
			p.date = strings.TrimPrefix(line, dateLabel)
			continue
		case line == dataPointsLabel:
			section = "points"
			continue
		case line == editLabel:
			section = "edit"
			continue
		case strings.HasPrefix(line, "Length: "):
			p.length = line
			continue
		case strings.HasPrefix(line, "- Length: "):
			p.length = strings.TrimPrefix(line, "- ")
			continue
		case strings.HasPrefix(line, "- Tone preference"):
			p.formal = true
			continue
		case line == "":
			section = ""
			continue
		}

		if section == "points" && line != noDataPoints && strings.HasPrefix(line, "- ") {
			p.points = append(p.points, strings.TrimPrefix(line, "- "))
		}
	}

	return p
}

// sentence ensures text ends with terminal punctuation
func sentence(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return text
	}
	switch text[len(text)-1] {
	case '.', '!', '?':
		return text
	}
	return text + "."
}
