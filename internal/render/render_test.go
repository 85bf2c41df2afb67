package render

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/memodraft/internal/model"
)

func sampleReport() *MemoReport {
	return &MemoReport{
		Outcome: model.RunOutcome{
			RunID:         "3f2a9c10-7b1e-4d8a-9c55-0e7f1b2a3c4d",
			Topic:         "Q3 Revenue & Margin",
			CycleCount:    1,
			FinalDecision: model.FinalApproved,
			Grounded:      true,
			Timestamp:     time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
		},
		Draft: &model.DraftResult{
			Subject: "Business memo regarding Q3 Revenue & Margin (v2)",
			Body:    "To: Sales & Marketing Teams\nFrom: [Your Name], Sales Operations\n\nDear Colleagues,\n\nRevenue rose 5%.\n\nKey Action Items:\n- Review figures\n- Flag gaps",
			Cycle:   2,
		},
		Evidence: model.EvidenceSet{{Text: "Revenue rose 5%", Source: "C1"}},
	}
}

func TestMarkdown_KeepsHeaderLines(t *testing.T) {
	md := NewRenderer(false).Markdown(sampleReport())

	assert.True(t, strings.HasPrefix(md, "# Business memo regarding Q3 Revenue & Margin (v2)\n\n"))
	assert.Contains(t, md, "To: Sales & Marketing Teams\\\nFrom:")
	assert.Contains(t, md, "Key Action Items:\n- Review figures\n- Flag gaps")
	assert.NotContains(t, md, "---")
}

func TestMarkdown_Footer(t *testing.T) {
	md := NewRenderer(true).Markdown(sampleReport())
	assert.Contains(t, md, "approved after 1 revision cycle(s); grounded: true")
}

func TestMarkdown_NoDraft(t *testing.T) {
	report := sampleReport()
	report.Draft = nil
	md := NewRenderer(false).Markdown(report)
	assert.True(t, strings.HasPrefix(md, "# Q3 Revenue & Margin\n"))
	assert.Contains(t, md, "No draft was produced")
}

func TestHTML(t *testing.T) {
	page, err := NewRenderer(false).HTML(sampleReport())
	require.NoError(t, err)

	assert.Contains(t, page, "<title>Business memo regarding Q3 Revenue &amp; Margin (v2)</title>")
	assert.Contains(t, page, "<h1>Business memo regarding Q3 Revenue &amp; Margin (v2)</h1>")
	assert.Contains(t, page, "<li>Review figures</li>")
	assert.Contains(t, page, "<br")
}

func TestWriteAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	paths, err := NewRenderer(true).WriteAll(sampleReport(), dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)

	assert.Equal(t, filepath.Join(dir, "q3-revenue-margin-3f2a9c10.json"), paths[0])
	for _, p := range paths {
		_, err := os.Stat(p)
		require.NoError(t, err, p)
	}

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	var got MemoReport
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, model.FinalApproved, got.Outcome.FinalDecision)
	assert.Equal(t, "C1", got.Evidence[0].Source)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "q3-revenue-margin", Slug("  Q3 Revenue & Margin! "))
	assert.Equal(t, "memo", Slug("???"))
	assert.LessOrEqual(t, len(Slug(strings.Repeat("long topic ", 20))), 48)
}

func TestFileStem(t *testing.T) {
	assert.Equal(t, "hiring", FileStem(model.RunOutcome{Topic: "Hiring"}))
	assert.Equal(t, "hiring-abc", FileStem(model.RunOutcome{Topic: "Hiring", RunID: "abc"}))
}
