package charts

import (
	"reflect"
	"testing"
)

func barConfig() ChartConfig {
	return ChartConfig{
		Type:  TypeBar,
		Title: "Revenue",
		Data: ChartData{
			Labels: []string{"Q1", "Q2"},
			Datasets: []Dataset{
				{Label: "2024", Data: []DataPoint{NumberPoint(1), NumberPoint(2)}},
				{Label: "2025", Data: []DataPoint{NumberPoint(3), NumberPoint(4)}},
			},
		},
		Options: map[string]any{},
	}
}

func TestThemeAssignsPaletteByDatasetIndex(t *testing.T) {
	theme := DefaultTheme()
	out := theme.Apply(barConfig())

	for i, ds := range out.Data.Datasets {
		want := theme.Palette[i%len(theme.Palette)]
		if ds.BackgroundColor != want {
			t.Fatalf("dataset %d backgroundColor = %v, want %v", i, ds.BackgroundColor, want)
		}
		if ds.BorderColor != theme.BorderColor {
			t.Fatalf("dataset %d borderColor = %v", i, ds.BorderColor)
		}
		if ds.BorderWidth != theme.BorderWidth {
			t.Fatalf("dataset %d borderWidth = %v", i, ds.BorderWidth)
		}
	}
}

func TestThemePaletteCyclesPastItsLength(t *testing.T) {
	theme := DefaultTheme()
	cfg := barConfig()
	for len(cfg.Data.Datasets) <= len(theme.Palette) {
		cfg.Data.Datasets = append(cfg.Data.Datasets, Dataset{Label: "extra", Data: []DataPoint{NumberPoint(1), NumberPoint(2)}})
	}
	out := theme.Apply(cfg)
	last := len(out.Data.Datasets) - 1
	want := theme.Palette[last%len(theme.Palette)]
	if out.Data.Datasets[last].BackgroundColor != want {
		t.Fatalf("wrap-around color = %v, want %v", out.Data.Datasets[last].BackgroundColor, want)
	}
}

func TestThemeSegmentColorsForPie(t *testing.T) {
	theme := DefaultTheme()
	cfg := ChartConfig{
		Type: TypePie,
		Data: ChartData{
			Labels:   []string{"a", "b", "c"},
			Datasets: []Dataset{{Label: "share", Data: []DataPoint{NumberPoint(1), NumberPoint(2), NumberPoint(3)}}},
		},
		Options: map[string]any{},
	}
	out := theme.Apply(cfg)
	colors, ok := out.Data.Datasets[0].BackgroundColor.([]string)
	if !ok {
		t.Fatalf("pie backgroundColor = %T, want []string", out.Data.Datasets[0].BackgroundColor)
	}
	if len(colors) != 3 {
		t.Fatalf("colors = %v, want one per slice", colors)
	}
	if colors[0] != theme.Palette[0] || colors[2] != theme.Palette[2] {
		t.Fatalf("colors = %v", colors)
	}
}

func TestThemeKeepsModelColors(t *testing.T) {
	cfg := barConfig()
	cfg.Data.Datasets[0].BackgroundColor = "#123456"
	cfg.Data.Datasets[0].BorderColor = "#654321"
	cfg.Data.Datasets[0].BorderWidth = 5

	out := DefaultTheme().Apply(cfg)
	ds := out.Data.Datasets[0]
	if ds.BackgroundColor != "#123456" || ds.BorderColor != "#654321" || ds.BorderWidth != 5 {
		t.Fatalf("model colors overwritten: %+v", ds)
	}
}

func TestThemeMergePreservesModelOptions(t *testing.T) {
	cfg := barConfig()
	cfg.Options = map[string]any{
		"indexAxis": "y",
		"plugins": map[string]any{
			"legend":  map[string]any{"position": "bottom"},
			"tooltip": map[string]any{"bodyColor": "#000000"},
		},
	}
	out := DefaultTheme().Apply(cfg)

	if out.Options["indexAxis"] != "y" {
		t.Fatalf("model-only key lost: %v", out.Options)
	}
	plugins := out.Options["plugins"].(map[string]any)
	legend := plugins["legend"].(map[string]any)
	if legend["position"] != "bottom" {
		t.Fatalf("nested model key lost: %v", legend)
	}
	if _, ok := legend["labels"]; !ok {
		t.Fatalf("theme key not merged in: %v", legend)
	}
	// On conflicting keys the theme wins.
	tooltip := plugins["tooltip"].(map[string]any)
	if tooltip["bodyColor"] != "#ffffff" {
		t.Fatalf("theme did not win conflict: %v", tooltip)
	}
}

func TestThemeSurfacesTitleIntoOptions(t *testing.T) {
	out := DefaultTheme().Apply(barConfig())
	title := out.Options["plugins"].(map[string]any)["title"].(map[string]any)
	if title["text"] != "Revenue" || title["display"] != true {
		t.Fatalf("title options = %v", title)
	}
}

func TestThemeApplyIsIdempotent(t *testing.T) {
	theme := DefaultTheme()
	once := theme.Apply(barConfig())
	twice := theme.Apply(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("second apply changed the config:\nonce:  %+v\ntwice: %+v", once, twice)
	}
}

func TestThemeApplyDoesNotMutateInput(t *testing.T) {
	cfg := barConfig()
	cfg.Options["custom"] = map[string]any{"keep": true}
	DefaultTheme().Apply(cfg)

	if cfg.Data.Datasets[0].BackgroundColor != nil {
		t.Fatal("input dataset mutated")
	}
	if _, ok := cfg.Options["scales"]; ok {
		t.Fatal("input options mutated")
	}
}
