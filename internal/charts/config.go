package charts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rules is the product-tunable half of the pipeline: the type synonym
// table and the prompt truncation budget. The compiled-in defaults
// reproduce shipped behavior; deployments override them with a YAML
// file so a synonym change does not need a release.
type Rules struct {
	// Synonyms maps lowercased non-canonical type names to canonical
	// ChartType strings.
	Synonyms map[string]string `yaml:"synonyms"`
	// SummaryByteLimit caps the data summary embedded in the prompt.
	SummaryByteLimit int `yaml:"summary_byte_limit"`
	// TruncationMarker is appended when the summary is cut.
	TruncationMarker string `yaml:"truncation_marker"`
	// MaxCharts caps how many candidates one response may yield.
	MaxCharts int `yaml:"max_charts"`
}

// Config bundles the rule set with the visual theme.
type Config struct {
	Rules Rules `yaml:"rules"`
	Theme Theme `yaml:"theme"`
}

func DefaultRules() Rules {
	return Rules{
		Synonyms: map[string]string{
			"column":         "bar",
			"histogram":      "bar",
			"barchart":       "bar",
			"bar-chart":      "bar",
			"linechart":      "line",
			"line-chart":     "line",
			"area":           "line",
			"pie-chart":      "pie",
			"piechart":       "pie",
			"donut":          "doughnut",
			"doughnut-chart": "doughnut",
			"polar":          "polarArea",
			"polar-area":     "polarArea",
			"polararea":      "polarArea",
			"scatterplot":    "scatter",
			"scatter-plot":   "scatter",
		},
		SummaryByteLimit: 24 << 10,
		TruncationMarker: "\n... [data summary truncated]",
		MaxCharts:        10,
	}
}

func DefaultConfig() Config {
	return Config{
		Rules: DefaultRules(),
		Theme: DefaultTheme(),
	}
}

// LoadConfig reads a YAML rules/theme file, layering it over the
// defaults. Missing keys keep their default values, so a file that only
// overrides the palette leaves the synonym table intact.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read charts config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse charts config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.Rules.SummaryByteLimit <= 0 {
		c.Rules.SummaryByteLimit = DefaultRules().SummaryByteLimit
	}
	if strings.TrimSpace(c.Rules.TruncationMarker) == "" {
		c.Rules.TruncationMarker = DefaultRules().TruncationMarker
	}
	if c.Rules.MaxCharts <= 0 {
		c.Rules.MaxCharts = DefaultRules().MaxCharts
	}
	if len(c.Theme.Palette) == 0 {
		c.Theme.Palette = DefaultTheme().Palette
	}
	// Synonym keys match case-insensitively; store lowercased.
	if len(c.Rules.Synonyms) > 0 {
		lowered := make(map[string]string, len(c.Rules.Synonyms))
		for k, v := range c.Rules.Synonyms {
			lowered[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
		}
		c.Rules.Synonyms = lowered
	}
}

// CanonicalSynonym resolves a non-canonical type name through the
// synonym table. Unknown names resolve to false.
func (r Rules) CanonicalSynonym(raw string) (ChartType, bool) {
	mapped, ok := r.Synonyms[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", false
	}
	return ParseType(mapped)
}
