package charts

import (
	"encoding/json"
	"strings"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}
	return v
}

func validBar() string {
	return `{
		"type": "bar",
		"title": "Revenue by Quarter",
		"data": {
			"labels": ["Q1", "Q2", "Q3"],
			"datasets": [{"label": "Revenue", "data": [10, 20, 30]}]
		},
		"options": {}
	}`
}

func TestValidateAcceptsWellFormedChart(t *testing.T) {
	v := NewValidator()
	res := v.Validate(decode(t, validBar()))
	if !res.Valid() {
		t.Fatalf("expected valid, got violations: %v", res.Violations)
	}
	cfg := res.Config
	if cfg.Type != TypeBar {
		t.Fatalf("type = %q, want bar", cfg.Type)
	}
	if cfg.Title != "Revenue by Quarter" {
		t.Fatalf("title = %q", cfg.Title)
	}
	if len(cfg.Data.Labels) != 3 || cfg.Data.Labels[1] != "Q2" {
		t.Fatalf("labels = %v", cfg.Data.Labels)
	}
	ds := cfg.Data.Datasets[0]
	if ds.Label != "Revenue" || len(ds.Data) != 3 || ds.Data[2].Value != 30 {
		t.Fatalf("dataset = %+v", ds)
	}
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind ViolationKind
		wantPath string
	}{
		{
			name:     "missing type",
			raw:      `{"data":{"labels":[],"datasets":[{"label":"a","data":[]}]},"options":{}}`,
			wantKind: KindMissingField,
			wantPath: "type",
		},
		{
			name:     "unknown type",
			raw:      `{"type":"treemap","data":{"labels":[],"datasets":[{"label":"a","data":[]}]},"options":{}}`,
			wantKind: KindUnsupportedType,
			wantPath: "type",
		},
		{
			name:     "type wrong json type",
			raw:      `{"type":3,"data":{},"options":{}}`,
			wantKind: KindWrongType,
			wantPath: "type",
		},
		{
			name:     "missing options",
			raw:      `{"type":"bar","data":{"labels":["a"],"datasets":[{"label":"x","data":[1]}]}}`,
			wantKind: KindMissingField,
			wantPath: "options",
		},
		{
			name:     "missing data",
			raw:      `{"type":"bar","options":{}}`,
			wantKind: KindMissingField,
			wantPath: "data",
		},
		{
			name:     "missing labels on labeled type",
			raw:      `{"type":"bar","data":{"datasets":[{"label":"x","data":[1]}]},"options":{}}`,
			wantKind: KindMissingField,
			wantPath: "data.labels",
		},
		{
			name:     "datasets not an array",
			raw:      `{"type":"bar","data":{"labels":[],"datasets":{}},"options":{}}`,
			wantKind: KindWrongType,
			wantPath: "data.datasets",
		},
		{
			name:     "empty datasets",
			raw:      `{"type":"bar","data":{"labels":[],"datasets":[]},"options":{}}`,
			wantKind: KindMissingField,
			wantPath: "data.datasets",
		},
		{
			name:     "dataset missing label",
			raw:      `{"type":"bar","data":{"labels":["a"],"datasets":[{"data":[1]}]},"options":{}}`,
			wantKind: KindMissingField,
			wantPath: "data.datasets[0].label",
		},
		{
			name:     "string element in numeric data",
			raw:      `{"type":"bar","data":{"labels":["a"],"datasets":[{"label":"x","data":["12"]}]},"options":{}}`,
			wantKind: KindWrongType,
			wantPath: "data.datasets[0].data[0]",
		},
		{
			name:     "length mismatch",
			raw:      `{"type":"line","data":{"labels":["a","b","c"],"datasets":[{"label":"x","data":[1,2]}]},"options":{}}`,
			wantKind: KindLengthMismatch,
			wantPath: "data.datasets[0].data",
		},
		{
			name:     "scatter element not a coordinate",
			raw:      `{"type":"scatter","data":{"datasets":[{"label":"x","data":[5]}]},"options":{}}`,
			wantKind: KindWrongType,
			wantPath: "data.datasets[0].data[0]",
		},
		{
			name:     "bubble missing radius",
			raw:      `{"type":"bubble","data":{"datasets":[{"label":"x","data":[{"x":1,"y":2}]}]},"options":{}}`,
			wantKind: KindMissingField,
			wantPath: "data.datasets[0].data[0].r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewValidator().Validate(decode(t, tt.raw))
			if res.Valid() {
				t.Fatalf("expected invalid")
			}
			for _, v := range res.Violations {
				if v.Kind == tt.wantKind && v.Path == tt.wantPath {
					return
				}
			}
			t.Fatalf("no violation %s at %s in %v", tt.wantKind, tt.wantPath, res.Violations)
		})
	}
}

func TestValidateUnsupportedTypeReason(t *testing.T) {
	res := NewValidator().Validate(decode(t, `{"type":"treemap","data":{},"options":{}}`))
	if len(res.Violations) != 1 {
		t.Fatalf("violations = %v", res.Violations)
	}
	if got := res.Violations[0].Reason; got != "unsupported chart type: treemap" {
		t.Fatalf("reason = %q", got)
	}
}

func TestValidateTypeCategoryShortCircuits(t *testing.T) {
	// Broken data must not be reported when the type is already unknown.
	res := NewValidator().Validate(decode(t, `{"type":"treemap","data":"nope"}`))
	for _, v := range res.Violations {
		if strings.HasPrefix(v.Path, "data") || v.Path == "options" {
			t.Fatalf("post-type violation leaked: %v", v)
		}
	}
}

func TestValidateNumericLabelsStringified(t *testing.T) {
	raw := `{"type":"bar","data":{"labels":[2021,2022,2023],"datasets":[{"label":"x","data":[1,2,3]}]},"options":{}}`
	res := NewValidator().Validate(decode(t, raw))
	if !res.Valid() {
		t.Fatalf("violations: %v", res.Violations)
	}
	if got := res.Config.Data.Labels; got[0] != "2021" || got[2] != "2023" {
		t.Fatalf("labels = %v", got)
	}
}

func TestValidateScatterWithoutLabels(t *testing.T) {
	raw := `{"type":"scatter","data":{"datasets":[{"label":"pts","data":[{"x":1,"y":2},{"x":3,"y":4}]}]},"options":{}}`
	res := NewValidator().Validate(decode(t, raw))
	if !res.Valid() {
		t.Fatalf("violations: %v", res.Violations)
	}
	p := res.Config.Data.Datasets[0].Data[1]
	if !p.IsCoordinate() || p.Coord.X != 3 || p.Coord.Y != 4 {
		t.Fatalf("point = %+v", p)
	}
}

func TestValidateColorShapeIsAdvisory(t *testing.T) {
	raw := `{
		"type": "bar",
		"data": {
			"labels": ["a", "b"],
			"datasets": [{"label": "x", "data": [1, 2], "backgroundColor": ["#d4af37"]}]
		},
		"options": {}
	}`
	res := NewValidator().Validate(decode(t, raw))
	if !res.Valid() {
		t.Fatalf("color mismatch must not invalidate: %v", res.Violations)
	}
	if len(res.Violations) == 0 {
		t.Fatal("expected an advisory violation")
	}
	v := res.Violations[0]
	if v.Kind != KindColorShape || !v.Advisory {
		t.Fatalf("violation = %+v", v)
	}
	if res.Config == nil {
		t.Fatal("config missing despite advisory-only violations")
	}
}

func TestValidateNonObjectCandidate(t *testing.T) {
	res := NewValidator().Validate("just a string")
	if res.Valid() {
		t.Fatal("expected invalid")
	}
	if res.Violations[0].Kind != KindWrongType {
		t.Fatalf("violations = %v", res.Violations)
	}
}
