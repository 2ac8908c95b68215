package charts

import (
	"reflect"
	"testing"
)

func repairAndRevalidate(t *testing.T, raw string) (ValidationResult, []string) {
	t.Helper()
	v := NewValidator()
	r := NewRepairer(nil)
	candidate := decode(t, raw)
	res := v.Validate(candidate)
	if res.Valid() {
		t.Fatal("fixture is already valid, nothing to repair")
	}
	repaired, applied := r.Repair(candidate)
	return v.Validate(repaired), applied
}

func TestRepairInsertsMissingOptions(t *testing.T) {
	res, applied := repairAndRevalidate(t, `{
		"type": "bar",
		"data": {"labels": ["a"], "datasets": [{"label": "x", "data": [1]}]}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	if len(res.Config.Options) != 0 {
		t.Fatalf("options = %v, want empty object", res.Config.Options)
	}
	if !containsString(applied, "ensure_options") {
		t.Fatalf("applied = %v", applied)
	}
}

func TestRepairNormalizesTypeSynonym(t *testing.T) {
	tests := []struct {
		raw  string
		want ChartType
	}{
		{"column", TypeBar},
		{"HISTOGRAM", TypeBar},
		{"area", TypeLine},
		{"donut", TypeDoughnut},
		{"polar-area", TypePolarArea},
		{"scatterplot", TypeScatter},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			body := `{"type":"` + tt.raw + `","data":{"labels":["a"],"datasets":[{"label":"x","data":[1]}]},"options":{}}`
			if tt.want == TypeScatter {
				body = `{"type":"` + tt.raw + `","data":{"datasets":[{"label":"x","data":[{"x":1,"y":2}]}]},"options":{}}`
			}
			res, _ := repairAndRevalidate(t, body)
			if !res.Valid() {
				t.Fatalf("still invalid: %v", res.Violations)
			}
			if res.Config.Type != tt.want {
				t.Fatalf("type = %q, want %q", res.Config.Type, tt.want)
			}
		})
	}
}

func TestRepairUnknownTypeStaysInvalid(t *testing.T) {
	res, _ := repairAndRevalidate(t, `{"type":"treemap","data":{"labels":[],"datasets":[{"label":"x","data":[]}]},"options":{}}`)
	if res.Valid() {
		t.Fatal("treemap is not a synonym and must stay invalid")
	}
}

func TestRepairTruncatesToShortestSeries(t *testing.T) {
	res, applied := repairAndRevalidate(t, `{
		"type": "bar",
		"data": {
			"labels": ["a", "b", "c", "d"],
			"datasets": [
				{"label": "x", "data": [1, 2]},
				{"label": "y", "data": [5, 6, 7]}
			]
		},
		"options": {}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	cfg := res.Config
	if !reflect.DeepEqual(cfg.Data.Labels, []string{"a", "b"}) {
		t.Fatalf("labels = %v", cfg.Data.Labels)
	}
	for i, ds := range cfg.Data.Datasets {
		if len(ds.Data) != 2 {
			t.Fatalf("dataset %d length = %d, want 2", i, len(ds.Data))
		}
	}
	if !containsString(applied, "align_lengths") {
		t.Fatalf("applied = %v", applied)
	}
}

func TestRepairNeverPadsShortData(t *testing.T) {
	// Labels outnumber data. The data must be left alone and the labels
	// cut down; values are never invented.
	res, _ := repairAndRevalidate(t, `{
		"type": "line",
		"data": {"labels": ["a", "b", "c"], "datasets": [{"label": "x", "data": [9]}]},
		"options": {}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	ds := res.Config.Data.Datasets[0]
	if len(ds.Data) != 1 || ds.Data[0].Value != 9 {
		t.Fatalf("data = %+v", ds.Data)
	}
}

func TestRepairCoercesNumericStrings(t *testing.T) {
	res, applied := repairAndRevalidate(t, `{
		"type": "bar",
		"data": {"labels": ["a", "b"], "datasets": [{"label": "x", "data": ["12", " 3.5 "]}]},
		"options": {}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	ds := res.Config.Data.Datasets[0]
	if ds.Data[0].Value != 12 || ds.Data[1].Value != 3.5 {
		t.Fatalf("data = %+v", ds.Data)
	}
	if !containsString(applied, "coerce_numeric_strings") {
		t.Fatalf("applied = %v", applied)
	}
}

func TestRepairDropsUnparsableElementsWithLabels(t *testing.T) {
	res, _ := repairAndRevalidate(t, `{
		"type": "bar",
		"data": {
			"labels": ["jan", "feb", "mar"],
			"datasets": [
				{"label": "x", "data": [1, "n/a", 3]},
				{"label": "y", "data": [4, 5, 6]}
			]
		},
		"options": {}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	cfg := res.Config
	if !reflect.DeepEqual(cfg.Data.Labels, []string{"jan", "mar"}) {
		t.Fatalf("labels = %v", cfg.Data.Labels)
	}
	// The aligned element is dropped from every dataset, including the
	// one whose value was fine.
	y := cfg.Data.Datasets[1]
	if len(y.Data) != 2 || y.Data[0].Value != 4 || y.Data[1].Value != 6 {
		t.Fatalf("dataset y = %+v", y.Data)
	}
}

func TestRepairCoercesCoordinateStrings(t *testing.T) {
	res, _ := repairAndRevalidate(t, `{
		"type": "scatter",
		"data": {"datasets": [{"label": "pts", "data": [{"x": "1.5", "y": 2}, {"x": "bad", "y": 3}]}]},
		"options": {}
	}`)
	if !res.Valid() {
		t.Fatalf("still invalid: %v", res.Violations)
	}
	data := res.Config.Data.Datasets[0].Data
	if len(data) != 1 {
		t.Fatalf("unparsable coordinate not dropped: %+v", data)
	}
	if data[0].Coord.X != 1.5 {
		t.Fatalf("x = %v, want 1.5", data[0].Coord.X)
	}
}

func TestRepairDoesNotMutateInput(t *testing.T) {
	candidate := decode(t, `{"type":"column","data":{"labels":["a","b"],"datasets":[{"label":"x","data":["1",2]}]}}`)
	before := decode(t, `{"type":"column","data":{"labels":["a","b"],"datasets":[{"label":"x","data":["1",2]}]}}`)

	NewRepairer(nil).Repair(candidate)

	if !reflect.DeepEqual(candidate, before) {
		t.Fatalf("input mutated: %#v", candidate)
	}
}

func containsString(in []string, want string) bool {
	for _, s := range in {
		if s == want {
			return true
		}
	}
	return false
}
