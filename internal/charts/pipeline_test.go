package charts

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/vizboard-backend/internal/pkg/logger"
)

type completerFunc func(ctx context.Context, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

func static(response string) Completer {
	return completerFunc(func(context.Context, string) (string, error) {
		return response, nil
	})
}

func newTestPipeline(t *testing.T, llm Completer) *Pipeline {
	t.Helper()
	log, err := logger.New("dev")
	if err != nil {
		t.Fatal(err)
	}
	return NewPipeline(llm, DefaultConfig(), log)
}

func asFailure(t *testing.T, err error) *Failure {
	t.Helper()
	var f *Failure
	if !errors.As(err, &f) {
		t.Fatalf("error is %T, want *Failure: %v", err, err)
	}
	return f
}

func TestPipelineHappyPath(t *testing.T) {
	raw := `{
		"explanation": "Sales by quarter and share by region.",
		"charts": [
			{
				"type": "bar",
				"title": "Sales",
				"data": {"labels": ["Q1", "Q2"], "datasets": [{"label": "Sales", "data": [10, 20]}]},
				"options": {}
			},
			{
				"type": "pie",
				"title": "Share",
				"data": {"labels": ["EU", "US"], "datasets": [{"label": "Share", "data": [40, 60]}]},
				"options": {}
			}
		]
	}`
	p := newTestPipeline(t, static(raw))

	res, err := p.Generate(context.Background(), `{"rows": 4}`, "chart my sales")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Charts) != 2 || len(res.Dropped) != 0 {
		t.Fatalf("charts = %d, dropped = %d", len(res.Charts), len(res.Dropped))
	}
	if res.Explanation != "Sales by quarter and share by region." {
		t.Fatalf("explanation = %q", res.Explanation)
	}
	// Theming happened.
	if res.Charts[0].Data.Datasets[0].BackgroundColor == nil {
		t.Fatal("first chart not themed")
	}
	if _, ok := res.Charts[1].Data.Datasets[0].BackgroundColor.([]string); !ok {
		t.Fatal("pie chart should have per-slice colors")
	}
}

func TestPipelineRepairsFencedSynonymChart(t *testing.T) {
	raw := "```json\n" + `{
		"type": "column",
		"title": "Hits",
		"data": {"labels": ["a", "b", "c"], "datasets": [{"label": "Hits", "data": [1, "2", 3]}]}
	}` + "\n```"
	p := newTestPipeline(t, static(raw))

	res, err := p.Generate(context.Background(), "{}", "plot hits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Charts) != 1 {
		t.Fatalf("charts = %d", len(res.Charts))
	}
	cfg := res.Charts[0]
	if cfg.Type != TypeBar {
		t.Fatalf("type = %q, want bar", cfg.Type)
	}
	if cfg.Data.Datasets[0].Data[1].Value != 2 {
		t.Fatalf("numeric string not coerced: %+v", cfg.Data.Datasets[0].Data)
	}
	if len(cfg.Options) == 0 {
		t.Fatal("options not inserted and themed")
	}
}

func TestPipelineModelErrorIsModelUnavailable(t *testing.T) {
	boom := errors.New("connection refused")
	p := newTestPipeline(t, completerFunc(func(context.Context, string) (string, error) {
		return "", boom
	}))

	_, err := p.Generate(context.Background(), "{}", "plot")
	f := asFailure(t, err)
	if f.Code != FailModelUnavailable {
		t.Fatalf("code = %q", f.Code)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause not wrapped")
	}
}

func TestPipelineProseOnlyIsUnparsable(t *testing.T) {
	p := newTestPipeline(t, static("Sorry, I can only describe the data in words."))

	_, err := p.Generate(context.Background(), "{}", "plot")
	f := asFailure(t, err)
	if f.Code != FailUnparsable {
		t.Fatalf("code = %q", f.Code)
	}
	if f.Snippet == "" {
		t.Fatal("snippet missing from unparsable failure")
	}
}

func TestPipelineSnippetIsBounded(t *testing.T) {
	p := newTestPipeline(t, static(strings.Repeat("no json here ", 200)))

	_, err := p.Generate(context.Background(), "{}", "plot")
	f := asFailure(t, err)
	if len(f.Snippet) > snippetLimit+3 {
		t.Fatalf("snippet length = %d", len(f.Snippet))
	}
}

func TestPipelineAllInvalidIsNoValidCharts(t *testing.T) {
	raw := `{"charts": [
		{"type": "treemap", "data": {"labels": [], "datasets": [{"label": "x", "data": []}]}, "options": {}},
		{"type": "bar", "options": {}}
	]}`
	p := newTestPipeline(t, static(raw))

	_, err := p.Generate(context.Background(), "{}", "plot")
	f := asFailure(t, err)
	if f.Code != FailNoValidCharts {
		t.Fatalf("code = %q", f.Code)
	}
	if len(f.Dropped) != 2 {
		t.Fatalf("dropped = %d", len(f.Dropped))
	}
	if f.Dropped[0].Index != 0 || f.Dropped[1].Index != 1 {
		t.Fatalf("dropped indices = %+v", f.Dropped)
	}
	if len(f.Dropped[0].Violations) == 0 {
		t.Fatal("dropped candidate carries no diagnostics")
	}
}

func TestPipelinePartialSuccessKeepsGoodCharts(t *testing.T) {
	raw := `{"charts": [
		{"type": "bar", "title": "ok", "data": {"labels": ["a"], "datasets": [{"label": "x", "data": [1]}]}, "options": {}},
		{"type": "treemap", "data": {"labels": [], "datasets": [{"label": "y", "data": []}]}, "options": {}}
	]}`
	p := newTestPipeline(t, static(raw))

	res, err := p.Generate(context.Background(), "{}", "plot")
	if err != nil {
		t.Fatalf("partial success must not be an error: %v", err)
	}
	if len(res.Charts) != 1 || len(res.Dropped) != 1 {
		t.Fatalf("charts = %d, dropped = %d", len(res.Charts), len(res.Dropped))
	}
	if res.Dropped[0].Index != 1 {
		t.Fatalf("dropped index = %d", res.Dropped[0].Index)
	}
}

func TestPipelineCapsCandidateCount(t *testing.T) {
	chart := `{"type": "bar", "data": {"labels": ["a"], "datasets": [{"label": "x", "data": [1]}]}, "options": {}}`
	parts := make([]string, 15)
	for i := range parts {
		parts[i] = chart
	}
	p := newTestPipeline(t, static("["+strings.Join(parts, ",")+"]"))

	res, err := p.Generate(context.Background(), "{}", "plot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Charts) != DefaultRules().MaxCharts {
		t.Fatalf("charts = %d, want %d", len(res.Charts), DefaultRules().MaxCharts)
	}
}

func TestPipelineProcessReusesStoredOutput(t *testing.T) {
	p := newTestPipeline(t, nil)
	res, err := p.Process(`{"charts": [{"type": "line", "data": {"labels": ["a"], "datasets": [{"label": "x", "data": [1]}]}, "options": {}}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Charts) != 1 || res.Charts[0].Type != TypeLine {
		t.Fatalf("result = %+v", res)
	}
}
