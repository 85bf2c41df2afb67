package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/memodraft/internal/model"
)

// Section headers shared by the prompt builder and the offline generator
const (
	topicLabel      = "Topic: "
	dataPointsLabel = "DATA POINTS (facts you may use):"
	editLabel       = "User edit request (highest priority if present):"
	noDataPoints    = "- [no data points provided]"
	noEditRequest   = "[no specific edit request]"
	noPreferences   = "- No learned preferences yet."
	dateLabel       = "Date: "
)

// DateLayout is the memo date format, e.g. "02 January 2006"
const DateLayout = "02 January 2006"

// LengthInstruction derives the body length rule from the edit request
func LengthInstruction(editRequest string) string {
	req := strings.ToLower(editRequest)
	switch {
	case strings.Contains(req, "3 lines") || strings.Contains(req, "three lines"):
		return "Length: EXACTLY 3 sentences total in the body (excluding headers and closing)."
	case strings.Contains(req, "shorter") || strings.Contains(req, "concise") || strings.Contains(req, "summary"):
		return "Length: 3-5 sentences total in the body (excluding headers and closing)."
	default:
		return "Length: 2 short paragraphs + action items. Keep under ~180 words."
	}
}

// PreferenceLines renders learned preferences as prompt directives.
// snap must already have edit-request overrides applied.
func PreferenceLines(snap model.PreferenceSnapshot) []string {
	var lines []string
	if snap.PreferFormal {
		lines = append(lines, "- Tone preference (learned): Use a more professional/formal tone. Avoid casual phrasing.")
	}
	if snap.PreferShort {
		lines = append(lines, "- Length preference (learned): Keep it shorter than usual.")
	} else if snap.PreferLong {
		lines = append(lines, "- Length preference (learned): Add slightly more detail than usual.")
	}
	return lines
}

// BuildDraftPrompt renders the full drafting prompt for one cycle
func BuildDraftPrompt(req model.DraftRequest, today string) string {
	var sb strings.Builder

	sb.WriteString("You are an assistant that writes REAL corporate email memos in English.\n\n")
	sb.WriteString("HARD RULES:\n")
	sb.WriteString("- Use ONLY the DATA POINTS below as factual content. Do NOT invent facts.\n")
	sb.WriteString("- Do NOT include sources, CASE IDs, or the word \"source\" anywhere in the memo.\n")
	sb.WriteString("- Do NOT include a section called \"Key evidence\".\n")
	sb.WriteString("- Do NOT claim comparisons (vs Q2, increase/decrease, trends) unless explicitly stated in the data points.\n")
	sb.WriteString("- Keep writing executive-friendly: short paragraphs, clear actions, no meta commentary.\n\n")

	sb.WriteString(fmt.Sprintf("%s%q\n\n", topicLabel, req.Topic))

	sb.WriteString(dataPointsLabel + "\n")
	if len(req.Evidence) == 0 {
		sb.WriteString(noDataPoints + "\n")
	}
	for _, p := range req.Evidence {
		sb.WriteString("- " + p.Text + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(editLabel + "\n")
	if strings.TrimSpace(req.EditRequest) == "" {
		sb.WriteString(noEditRequest + "\n\n")
	} else {
		sb.WriteString(req.EditRequest + "\n\n")
	}

	sb.WriteString("Learned preferences from past feedback (apply unless they conflict with the user's edit request):\n")
	prefs := PreferenceLines(req.Preferences)
	if len(prefs) == 0 {
		sb.WriteString(noPreferences + "\n")
	}
	for _, line := range prefs {
		sb.WriteString(line + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString("Length constraint:\n")
	sb.WriteString("- " + LengthInstruction(req.EditRequest) + "\n\n")

	sb.WriteString("WRITE EXACTLY THIS FORMAT:\n\n")
	sb.WriteString(fmt.Sprintf("Subject: <short subject line about %s>\n\n", req.Topic))
	sb.WriteString("To: Sales & Marketing Teams\n")
	sb.WriteString("From: [Your Name], Sales Operations\n")
	sb.WriteString(dateLabel + today + "\n\n")
	sb.WriteString("Dear Colleagues,\n\n")
	sb.WriteString("<Paragraph 1: what this memo is + factual summary using the data points.>\n\n")
	sb.WriteString("<Paragraph 2: brief implications based only on the data points. If anything is unclear, write: \"Some figures require validation (TBD).\">\n\n")
	sb.WriteString("Key Action Items:\n")
	sb.WriteString("- 3 short bullets (no numbers, no dates, no meetings)\n\n")
	sb.WriteString("Please reach out if further clarification is required.\n\n")
	sb.WriteString("Kind regards,\n")
	sb.WriteString("[Your Name]\n\n")
	sb.WriteString("Return ONLY the memo text in this exact format.")

	return sb.String()
}

// Subject returns the memo subject line for a cycle
func Subject(topic string, cycle int) string {
	return fmt.Sprintf("Business memo regarding %s (v%d)", topic, cycle)
}
