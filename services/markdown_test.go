package services

import (
	"strings"
	"testing"
)

func TestRenderMarkdownSanitizes(t *testing.T) {
	out, err := RenderMarkdown("# Admissions\n\nApply **now**.\n\n<script>alert(1)</script>\n\n[link](javascript:alert(1))")
	if err != nil {
		t.Fatalf("RenderMarkdown: %v", err)
	}
	if !strings.Contains(out, "<h1") || !strings.Contains(out, "<strong>now</strong>") {
		t.Errorf("markdown not rendered: %s", out)
	}
	if strings.Contains(out, "<script") || strings.Contains(out, "javascript:") {
		t.Errorf("unsafe content survived: %s", out)
	}
}

func TestExcerpt(t *testing.T) {
	html := "<h1>Study MBBS</h1><p>Kyrgyzstan offers <em>affordable</em> medical education.</p>"

	if got := Excerpt(html, 200); got != "Study MBBS Kyrgyzstan offers affordable medical education." {
		t.Errorf("Excerpt = %q", got)
	}

	got := Excerpt(html, 25)
	if !strings.HasSuffix(got, "…") || strings.Contains(got, "<") {
		t.Errorf("Excerpt truncated = %q", got)
	}
	if len([]rune(got)) > 26 {
		t.Errorf("Excerpt too long: %q", got)
	}
}
