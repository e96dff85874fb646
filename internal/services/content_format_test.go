package services

import (
	"strings"
	"testing"
)

func TestLooksLikeMarkdown(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"empty", "", false},
		{"plain sentence", "plain sentence.", false},
		{"heading", "# Title", true},
		{"bullet", "- item one", true},
		{"bold", "**bold**", true},
		{"fence", "```go\nfmt.Println()\n```", true},
		{"link", "see [docs](https://example.com)", true},
		{"numbered list", "1. first\n2. second", true},
		{"setext underline", "Title\n==", true},
		{"hyphenated word is not a bullet", "well-known fact", false},
		{"asterisk with spaces is not emphasis", "2 * 3 = 6", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := LooksLikeMarkdown(tc.input); got != tc.want {
				t.Fatalf("LooksLikeMarkdown(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFormatProcessedContentSummaryWinsOverMarkdown(t *testing.T) {
	raw := []byte(`{"summary": "A talk about sleep.", "markdown": "# ignored", "key_points": ["point one", "point two"]}`)
	got := FormatProcessedContent(raw)
	if got.Shape != ContentShapeSummary {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeSummary)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("expected summary + key points sections, got %d", len(got.Sections))
	}
	if got.Sections[0].Text != "A talk about sleep." {
		t.Fatalf("summary text = %q", got.Sections[0].Text)
	}
	if len(got.Sections[1].Items) != 2 {
		t.Fatalf("key point items = %v", got.Sections[1].Items)
	}
}

func TestFormatProcessedContentKeyPointsOnly(t *testing.T) {
	raw := []byte(`{"highlights": ["a", "b", "c"]}`)
	got := FormatProcessedContent(raw)
	if got.Shape != ContentShapeKeyPoints {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeKeyPoints)
	}
	if len(got.Sections) != 1 || len(got.Sections[0].Items) != 3 {
		t.Fatalf("sections = %+v", got.Sections)
	}
}

func TestFormatProcessedContentMarkdownField(t *testing.T) {
	raw := []byte(`{"markdown": "# Heading\n\nBody text."}`)
	got := FormatProcessedContent(raw)
	if got.Shape != ContentShapeMarkdown {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeMarkdown)
	}
	if !got.Sections[0].Markdown {
		t.Fatalf("markdown flag not set")
	}
}

func TestFormatProcessedContentObjectDump(t *testing.T) {
	raw := []byte(`{"methods": "survey", "cohort_size": 120}`)
	got := FormatProcessedContent(raw)
	if got.Shape != ContentShapeObject {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeObject)
	}
	// Keys are sorted for deterministic section order.
	if got.Sections[0].Heading != "Cohort Size" || got.Sections[1].Heading != "Methods" {
		t.Fatalf("section headings = %q, %q", got.Sections[0].Heading, got.Sections[1].Heading)
	}
}

func TestFormatProcessedContentPlainTextParagraphs(t *testing.T) {
	got := FormatProcessedContent([]byte("first paragraph.\n\nsecond paragraph."))
	if got.Shape != ContentShapeText {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeText)
	}
	if len(got.Sections) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d", len(got.Sections))
	}
}

func TestFormatProcessedContentBrokenJSONFallsBackToRaw(t *testing.T) {
	got := FormatProcessedContent([]byte(`{"summary": "unterminated`))
	if got.Shape != ContentShapeRaw {
		t.Fatalf("shape = %q, want %q", got.Shape, ContentShapeRaw)
	}
	if got.Error == "" {
		t.Fatalf("expected inline parse error")
	}
	if !strings.Contains(got.Sections[0].Text, "unterminated") {
		t.Fatalf("raw payload not preserved: %q", got.Sections[0].Text)
	}
}

func TestFormatProcessedContentEmpty(t *testing.T) {
	got := FormatProcessedContent(nil)
	if got.Shape != ContentShapeText || len(got.Sections) != 0 {
		t.Fatalf("empty payload: %+v", got)
	}
}

func TestBuildPreviewURL(t *testing.T) {
	if got := BuildPreviewURL("abc123"); got != "https://drive.google.com/file/d/abc123/preview" {
		t.Fatalf("BuildPreviewURL = %q", got)
	}
	if got := BuildPreviewURL("  "); got != "" {
		t.Fatalf("blank drive id should produce empty url, got %q", got)
	}
}
