package services

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Shapes the processed-content formatter can resolve to. Dispatch order is
// load-bearing: the first matching shape wins and later candidates are
// ignored even when present.
const (
	ContentShapeSummary   = "summary"
	ContentShapeKeyPoints = "key_points"
	ContentShapeMarkdown  = "markdown"
	ContentShapeObject    = "object"
	ContentShapeText      = "text"
	ContentShapeRaw       = "raw"
)

type ContentSection struct {
	Heading  string   `json:"heading,omitempty"`
	Text     string   `json:"text,omitempty"`
	Items    []string `json:"items,omitempty"`
	Markdown bool     `json:"markdown,omitempty"`
}

type FormattedContent struct {
	Shape    string           `json:"shape"`
	Sections []ContentSection `json:"sections"`
	// Error carries a parse failure inline; the payload still renders as a
	// raw block, never as a hard failure of the view.
	Error string `json:"error,omitempty"`
}

var (
	mdHeadingRe  = regexp.MustCompile(`(?m)^\s{0,3}#`)
	mdFenceRe    = regexp.MustCompile("```")
	mdLinkRe     = regexp.MustCompile(`\[[^\]]+\]\([^)]+\)`)
	mdEmphasisRe = regexp.MustCompile(`(\*\*[^*]+\*\*|__[^_]+__|\*[^*\s][^*]*\*|_[^_\s][^_]*_)`)
	mdBulletRe   = regexp.MustCompile(`(?m)^\s*[-*+]\s+\S`)
	mdNumberedRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+\S`)
)

// LooksLikeMarkdown is a best-effort heuristic, not a parser. False
// positives and negatives are acceptable; known sample strings are pinned
// by tests.
func LooksLikeMarkdown(s string) bool {
	if s == "" {
		return false
	}
	if mdHeadingRe.MatchString(s) {
		return true
	}
	if strings.Contains(s, "==") {
		return true
	}
	if mdFenceRe.MatchString(s) {
		return true
	}
	if mdLinkRe.MatchString(s) {
		return true
	}
	if mdEmphasisRe.MatchString(s) {
		return true
	}
	if mdBulletRe.MatchString(s) {
		return true
	}
	if mdNumberedRe.MatchString(s) {
		return true
	}
	return false
}

var summaryFields = []string{"summary", "overview"}
var keyPointFields = []string{"key_points", "highlights", "key_insights"}

// FormatProcessedContent renders an expert document's processed_content
// payload into ordered sections. The shape fallback chain is: explicit
// summary/overview field → key-point array → markdown field → generic
// key-by-key dump → plain text split on blank lines.
func FormatProcessedContent(raw []byte) FormattedContent {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return FormattedContent{Shape: ContentShapeText}
	}

	var parsed any
	if err := json.Unmarshal([]byte(trimmed), &parsed); err != nil {
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			// Meant to be JSON but broken: show it raw with the error inline.
			return FormattedContent{
				Shape:    ContentShapeRaw,
				Sections: []ContentSection{{Text: trimmed}},
				Error:    err.Error(),
			}
		}
		return formatPlainText(trimmed)
	}

	switch v := parsed.(type) {
	case string:
		return formatPlainText(v)
	case map[string]any:
		return formatObject(v)
	case []any:
		if items, ok := stringItems(v); ok {
			return FormattedContent{
				Shape:    ContentShapeKeyPoints,
				Sections: []ContentSection{{Items: items}},
			}
		}
		return FormattedContent{
			Shape:    ContentShapeRaw,
			Sections: []ContentSection{{Text: trimmed}},
		}
	default:
		return FormattedContent{
			Shape:    ContentShapeText,
			Sections: []ContentSection{{Text: fmt.Sprintf("%v", v)}},
		}
	}
}

func formatObject(obj map[string]any) FormattedContent {
	// 1) explicit summary/overview
	for _, field := range summaryFields {
		if text, ok := obj[field].(string); ok && strings.TrimSpace(text) != "" {
			sections := []ContentSection{}
			if title, ok := obj["title"].(string); ok && title != "" {
				sections = append(sections, ContentSection{Heading: title})
			}
			sections = append(sections, ContentSection{
				Heading:  headingFor(field),
				Text:     text,
				Markdown: LooksLikeMarkdown(text),
			})
			// A summary document commonly carries its key points too; render
			// them under the summary rather than switching shape.
			for _, kp := range keyPointFields {
				if items, ok := stringItemsAny(obj[kp]); ok && len(items) > 0 {
					sections = append(sections, ContentSection{Heading: headingFor(kp), Items: items})
					break
				}
			}
			return FormattedContent{Shape: ContentShapeSummary, Sections: sections}
		}
	}

	// 2) key-point style arrays
	for _, field := range keyPointFields {
		if items, ok := stringItemsAny(obj[field]); ok && len(items) > 0 {
			return FormattedContent{
				Shape:    ContentShapeKeyPoints,
				Sections: []ContentSection{{Heading: headingFor(field), Items: items}},
			}
		}
	}

	// 3) embedded markdown
	if md, ok := obj["markdown"].(string); ok && strings.TrimSpace(md) != "" {
		return FormattedContent{
			Shape:    ContentShapeMarkdown,
			Sections: []ContentSection{{Text: md, Markdown: true}},
		}
	}

	// 4) generic key-by-key dump, one level deep
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sections := make([]ContentSection, 0, len(keys))
	for _, k := range keys {
		section := ContentSection{Heading: headingFor(k)}
		switch val := obj[k].(type) {
		case string:
			section.Text = val
			section.Markdown = LooksLikeMarkdown(val)
		case []any:
			if items, ok := stringItems(val); ok {
				section.Items = items
			} else {
				section.Text = compactJSON(val)
			}
		case map[string]any:
			section.Text = compactJSON(val)
		case nil:
			continue
		default:
			section.Text = fmt.Sprintf("%v", val)
		}
		sections = append(sections, section)
	}
	return FormattedContent{Shape: ContentShapeObject, Sections: sections}
}

func formatPlainText(text string) FormattedContent {
	if LooksLikeMarkdown(text) {
		return FormattedContent{
			Shape:    ContentShapeMarkdown,
			Sections: []ContentSection{{Text: text, Markdown: true}},
		}
	}
	paragraphs := strings.Split(text, "\n\n")
	sections := make([]ContentSection, 0, len(paragraphs))
	for _, p := range paragraphs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		sections = append(sections, ContentSection{Text: p})
	}
	return FormattedContent{Shape: ContentShapeText, Sections: sections}
}

func stringItems(arr []any) ([]string, bool) {
	items := make([]string, 0, len(arr))
	for _, el := range arr {
		s, ok := el.(string)
		if !ok {
			return nil, false
		}
		items = append(items, s)
	}
	return items, true
}

func stringItemsAny(v any) ([]string, bool) {
	arr, ok := v.([]any)
	if !ok {
		return nil, false
	}
	return stringItems(arr)
}

func compactJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func headingFor(key string) string {
	words := strings.Split(strings.ReplaceAll(key, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// BuildPreviewURL constructs the embedded drive preview frame URL for a
// stored file identifier.
func BuildPreviewURL(driveID string) string {
	driveID = strings.TrimSpace(driveID)
	if driveID == "" {
		return ""
	}
	return fmt.Sprintf("https://drive.google.com/file/d/%s/preview", driveID)
}
