package charts

import (
	"strings"
	"testing"
)

func TestPromptIncludesInputsVerbatim(t *testing.T) {
	b := NewPromptBuilder(nil)
	summary := `{"columns": ["region", "sales"], "rows": 42}`
	instruction := "show sales per region as a bar chart"

	prompt := b.Build(summary, instruction, nil)

	if !strings.Contains(prompt, summary) {
		t.Fatal("data summary not embedded verbatim")
	}
	if !strings.Contains(prompt, "User Request: "+instruction) {
		t.Fatal("user instruction not embedded verbatim")
	}
	if !strings.Contains(prompt, "ONLY valid JSON") {
		t.Fatal("JSON-only directive missing")
	}
	for _, ct := range AllTypes() {
		if !strings.Contains(prompt, string(ct)) {
			t.Fatalf("type %q not offered", ct)
		}
	}
}

func TestPromptRestrictsAllowedTypes(t *testing.T) {
	b := NewPromptBuilder(nil)
	prompt := b.Build("{}", "plot it", []ChartType{TypeBar, TypeLine})

	if !strings.Contains(prompt, `"type": "bar|line"`) {
		t.Fatalf("type alternatives wrong:\n%s", prompt)
	}
	if strings.Contains(prompt, `Use "pie"`) {
		t.Fatal("disallowed type offered in guidance")
	}
	if strings.Contains(prompt, `"scatter" use data points`) {
		t.Fatal("coordinate guidance emitted without coordinate types")
	}
}

func TestPromptTruncatesLongSummary(t *testing.T) {
	rules := DefaultRules()
	rules.SummaryByteLimit = 32
	b := NewPromptBuilder(&rules)

	summary := strings.Repeat("x", 100)
	prompt := b.Build(summary, "plot", nil)

	if strings.Contains(prompt, summary) {
		t.Fatal("summary not truncated")
	}
	if !strings.Contains(prompt, rules.TruncationMarker) {
		t.Fatal("truncation marker missing")
	}
	if !strings.Contains(prompt, strings.Repeat("x", 32)+rules.TruncationMarker) {
		t.Fatal("summary not cut at the byte limit")
	}
}

func TestPromptTruncationRespectsRuneBoundary(t *testing.T) {
	rules := DefaultRules()
	rules.SummaryByteLimit = 5
	b := NewPromptBuilder(&rules)

	// Four two-byte runes; a cut at byte 5 would split the third.
	prompt := b.Build("éééé", "plot", nil)
	if strings.Contains(prompt, "\xc3\n") || strings.Contains(prompt, "\xa9\xc3"+rules.TruncationMarker) {
		t.Fatalf("summary cut mid-rune:\n%q", prompt)
	}
	if !strings.Contains(prompt, "éé"+rules.TruncationMarker) {
		t.Fatalf("expected two whole runes before the marker:\n%q", prompt)
	}
}

func TestPromptShortSummaryUntouched(t *testing.T) {
	b := NewPromptBuilder(nil)
	prompt := b.Build("small", "plot", nil)
	if strings.Contains(prompt, DefaultRules().TruncationMarker) {
		t.Fatal("marker added to short summary")
	}
}
