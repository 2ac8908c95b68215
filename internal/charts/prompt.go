package charts

import (
	"strings"
)

// PromptBuilder assembles the generation prompt sent to the model. The
// data summary and user instruction are included verbatim; only the
// summary is subject to the configured byte limit, and a truncation is
// always marked so the model knows the data is partial.
type PromptBuilder struct {
	rules *Rules
}

func NewPromptBuilder(rules *Rules) *PromptBuilder {
	if rules == nil {
		d := DefaultRules()
		rules = &d
	}
	return &PromptBuilder{rules: rules}
}

// Build renders the full prompt. allowed restricts the chart types the
// model is offered; pass nil for the full supported set.
func (b *PromptBuilder) Build(dataSummary, userInstruction string, allowed []ChartType) string {
	if len(allowed) == 0 {
		allowed = AllTypes()
	}

	var sb strings.Builder
	sb.WriteString("You are a data visualization expert. Analyze the provided data and create appropriate visualizations.\n\n")
	sb.WriteString("Data:\n")
	sb.WriteString(b.truncateSummary(dataSummary))
	sb.WriteString("\n\nUser Request: ")
	sb.WriteString(userInstruction)
	sb.WriteString("\n\nCreate visualizations following these rules:\n\n")

	sb.WriteString("1. RESPONSE FORMAT - Respond with ONLY valid JSON (no markdown, no code blocks):\n")
	sb.WriteString(`{
  "explanation": "Brief explanation of the visualizations",
  "charts": [
    {
      "type": "` + typeAlternatives(allowed) + `",
      "title": "Chart title",
      "data": {
        "labels": ["Label1", "Label2", ...],
        "datasets": [
          {
            "label": "Dataset name",
            "data": [value1, value2, ...],
            "borderColor": "#color",
            "borderWidth": 1
          }
        ]
      },
      "options": {
        "responsive": true,
        "plugins": {
          "title": {"display": true, "text": "Chart Title"},
          "legend": {"display": true}
        }
      }
    }
  ]
}
`)

	sb.WriteString("\n2. CHART TYPE SELECTION:\n")
	for _, t := range allowed {
		if guidance, ok := typeGuidance[t]; ok {
			sb.WriteString("   - Use \"" + string(t) + "\" " + guidance + "\n")
		}
	}

	sb.WriteString("\n3. DATA RULES:\n")
	sb.WriteString("   - Ensure all data arrays have the same length as labels\n")
	sb.WriteString("   - Use numeric values only in data arrays\n")
	sb.WriteString("   - Provide meaningful labels and titles\n")
	if containsType(allowed, TypeScatter) || containsType(allowed, TypeBubble) {
		sb.WriteString("   - For \"scatter\" use data points of the form {\"x\": number, \"y\": number}\n")
	}
	if containsType(allowed, TypeBubble) {
		sb.WriteString("   - For \"bubble\" use data points of the form {\"x\": number, \"y\": number, \"r\": number}\n")
	}

	sb.WriteString("\n4. Create 1-3 visualizations based on data complexity\n")
	return sb.String()
}

var typeGuidance = map[ChartType]string{
	TypeBar:       "for comparisons, categorical data",
	TypeLine:      "for trends over time",
	TypePie:       "for proportions/percentages",
	TypeDoughnut:  "for proportions with an emphasized total",
	TypeRadar:     "for multi-dimensional comparisons",
	TypePolarArea: "for cyclical data",
	TypeScatter:   "for correlation between two numeric variables",
	TypeBubble:    "for three numeric dimensions",
}

func (b *PromptBuilder) truncateSummary(summary string) string {
	limit := b.rules.SummaryByteLimit
	if limit <= 0 || len(summary) <= limit {
		return summary
	}
	// Cut on a rune boundary so the marker never lands mid-character.
	cut := limit
	for cut > 0 && summary[cut]&0xC0 == 0x80 {
		cut--
	}
	return summary[:cut] + b.rules.TruncationMarker
}

func typeAlternatives(types []ChartType) string {
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = string(t)
	}
	return strings.Join(parts, "|")
}

func containsType(types []ChartType, t ChartType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}
