package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/ppiankov/memodraft/internal/model"
)

// MemoReport is the exported record of one workflow run
type MemoReport struct {
	Outcome     model.RunOutcome   `json:"outcome"`
	Draft       *model.DraftResult `json:"draft,omitempty"`    // Last draft shown to the reviewer
	Evidence    model.EvidenceSet  `json:"evidence,omitempty"` // Working evidence at the last draft
	GeneratedAt time.Time          `json:"generated_at"`
}

// Renderer writes memo reports as JSON, Markdown and HTML
type Renderer struct {
	includeFooter bool
	md            goldmark.Markdown
}

// NewRenderer creates a renderer; includeFooter appends run metadata to
// Markdown and HTML output
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{
		includeFooter: includeFooter,
		md:            goldmark.New(),
	}
}

// RenderJSON writes the full report as indented JSON
func (r *Renderer) RenderJSON(report *MemoReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the memo as Markdown
func (r *Renderer) RenderMarkdown(report *MemoReport, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderHTML writes the memo as a standalone HTML page
func (r *Renderer) RenderHTML(report *MemoReport, path string) error {
	page, err := r.HTML(report)
	if err != nil {
		return err
	}
	return writeFile(path, []byte(page))
}

// Markdown formats the memo. Line breaks inside the memo body are kept as
// hard breaks so the header block and sign-off stay on separate lines.
func (r *Renderer) Markdown(report *MemoReport) string {
	var sb strings.Builder

	subject := report.Outcome.Topic
	body := ""
	if report.Draft != nil {
		subject = report.Draft.Subject
		body = report.Draft.Body
	}

	sb.WriteString("# " + subject + "\n\n")
	if body != "" {
		sb.WriteString(hardBreaks(body))
		sb.WriteString("\n")
	} else {
		sb.WriteString("_No draft was produced._\n")
	}

	if r.includeFooter {
		o := report.Outcome
		sb.WriteString("\n---\n\n")
		sb.WriteString(fmt.Sprintf("_Run %s: %s after %d revision cycle(s); grounded: %t._\n",
			o.RunID, o.FinalDecision, o.CycleCount, o.Grounded))
	}

	return sb.String()
}

// HTML converts the Markdown memo with goldmark and wraps it in a page
func (r *Renderer) HTML(report *MemoReport) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(r.Markdown(report)), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}

	title := report.Outcome.Topic
	if report.Draft != nil {
		title = report.Draft.Subject
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(title) + "</title>\n</head>\n<body>\n")
	page.Write(buf.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// WriteAll writes the JSON, Markdown and HTML files for report into dir and
// returns their paths
func (r *Renderer) WriteAll(report *MemoReport, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	base := filepath.Join(dir, FileStem(report.Outcome))
	paths := []string{base + ".json", base + ".md", base + ".html"}

	if err := r.RenderJSON(report, paths[0]); err != nil {
		return nil, fmt.Errorf("render JSON: %w", err)
	}
	if err := r.RenderMarkdown(report, paths[1]); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	if err := r.RenderHTML(report, paths[2]); err != nil {
		return nil, fmt.Errorf("render HTML: %w", err)
	}
	return paths, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug turns a topic into a file-name fragment
func Slug(topic string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(topic), "-"), "-")
	if len(s) > 48 {
		s = strings.TrimRight(s[:48], "-")
	}
	if s == "" {
		s = "memo"
	}
	return s
}

// FileStem names export files after the topic and the first run id segment
func FileStem(o model.RunOutcome) string {
	id := o.RunID
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	}
	if id == "" {
		return Slug(o.Topic)
	}
	return Slug(o.Topic) + "-" + id
}

func hardBreaks(body string) string {
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines)-1; i++ {
		cur := strings.TrimRight(lines[i], " ")
		next := strings.TrimSpace(lines[i+1])
		if cur == "" || next == "" || strings.HasPrefix(next, "- ") {
			lines[i] = cur
			continue
		}
		lines[i] = cur + "\\"
	}
	return strings.Join(lines, "\n")
}

func writeFile(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
