package llm

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

var (
	markupPattern      = regexp.MustCompile(`</?[a-zA-Z][a-zA-Z0-9]*(\s[^>]*)?/?>`)
	keyEvidencePattern = regexp.MustCompile(`(?is)\n\s*Key evidence\s*:\s*\n.*?\n(\s*(?:Key Action Items|Action items|Kind regards|Best regards)\s*:?)`)
	caseIDPattern      = regexp.MustCompile(`\bCASE_[A-Z0-9]+\b`)
	sourceLabelPattern = regexp.MustCompile(`(?i)\bsource\s*:\s*`)
	blankRunPattern    = regexp.MustCompile(`[ \t]{2,}`)
	newlineRunPattern  = regexp.MustCompile(`\n{3,}`)
)

// PostProcess cleans raw model output into a memo body: it drops markup,
// any "Key evidence" section, case ids, the given source ids and
// "source:" labels, then collapses redundant whitespace.
func PostProcess(text string, sources []string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	if markupPattern.MatchString(text) {
		text = stripMarkup(text)
	}

	text = keyEvidencePattern.ReplaceAllString(text, "\n\n$1")

	// Longest first so an id never leaves a suffix of a longer one behind
	ids := make([]string, 0, len(sources))
	for _, s := range sources {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, s)
		}
	}
	sort.SliceStable(ids, func(i, j int) bool { return len(ids[i]) > len(ids[j]) })
	for _, id := range ids {
		text = sourceIDPattern(id).ReplaceAllString(text, "")
	}

	text = caseIDPattern.ReplaceAllString(text, "")
	text = sourceLabelPattern.ReplaceAllString(text, "")

	text = blankRunPattern.ReplaceAllString(text, " ")
	text = newlineRunPattern.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// sourceIDPattern matches id as a whole token in any case, so "C1" is
// removed from "Ref c1" but not from "EC12" and "1" leaves "15%" alone.
func sourceIDPattern(id string) *regexp.Regexp {
	expr := regexp.QuoteMeta(id)
	if isWordByte(id[0]) {
		expr = `\b` + expr
	}
	if isWordByte(id[len(id)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(`(?i)` + expr)
}

func isWordByte(b byte) bool {
	return b == '_' || '0' <= b && b <= '9' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

// stripMarkup returns the visible text of an HTML fragment, keeping line
// breaks at block boundaries. Unparseable input is returned unchanged.
func stripMarkup(text string) string {
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return text
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			case "br":
				buf.WriteString("\n")
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			buf.WriteString("\n")
		}
	}

	walk(doc)
	return buf.String()
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "tr", "table", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "pre":
		return true
	}
	return false
}
