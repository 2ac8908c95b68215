// Package charts turns free-form model output into validated, themed
// chart configurations for the rendering layer. The pipeline is pure and
// request-scoped: nothing in this package touches storage or shares
// mutable state between requests.
package charts

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ChartType is one of the closed set of chart shapes the renderer
// understands. The canonical casing matches the rendering library
// ("polarArea", not "polar-area").
type ChartType string

const (
	TypeBar       ChartType = "bar"
	TypeLine      ChartType = "line"
	TypePie       ChartType = "pie"
	TypeDoughnut  ChartType = "doughnut"
	TypeRadar     ChartType = "radar"
	TypePolarArea ChartType = "polarArea"
	TypeScatter   ChartType = "scatter"
	TypeBubble    ChartType = "bubble"
)

// AllTypes returns the supported chart types in a stable order.
func AllTypes() []ChartType {
	return []ChartType{
		TypeBar, TypeLine, TypePie, TypeDoughnut,
		TypeRadar, TypePolarArea, TypeScatter, TypeBubble,
	}
}

// ParseType resolves a raw type string to its canonical ChartType.
// Matching is case-insensitive per the schema contract; synonym
// resolution ("column" -> bar) is a repair concern, not a parse concern.
func ParseType(raw string) (ChartType, bool) {
	s := strings.TrimSpace(raw)
	for _, t := range AllTypes() {
		if strings.EqualFold(s, string(t)) {
			return t, true
		}
	}
	return "", false
}

// UsesLabels reports whether datasets of this type align element-wise
// with data.labels. Scatter and bubble data points carry their own
// coordinates instead.
func (t ChartType) UsesLabels() bool {
	return t != TypeScatter && t != TypeBubble
}

// SegmentColored reports whether the renderer colors individual data
// elements (slices) rather than whole datasets.
func (t ChartType) SegmentColored() bool {
	return t == TypePie || t == TypeDoughnut || t == TypePolarArea
}

// Point is a coordinate data record for scatter/bubble charts. R is the
// bubble radius and is only present for bubble datasets.
type Point struct {
	X float64  `json:"x"`
	Y float64  `json:"y"`
	R *float64 `json:"r,omitempty"`
}

// DataPoint is a single element of a dataset's data sequence: either a
// plain numeric value or a coordinate record. Exactly one of the two is
// set; which one depends on the parent chart's type.
type DataPoint struct {
	Value float64
	Coord *Point
}

func NumberPoint(v float64) DataPoint  { return DataPoint{Value: v} }
func CoordPoint(p Point) DataPoint     { return DataPoint{Coord: &p} }
func (p DataPoint) IsCoordinate() bool { return p.Coord != nil }

func (p DataPoint) MarshalJSON() ([]byte, error) {
	if p.Coord != nil {
		return json.Marshal(p.Coord)
	}
	return json.Marshal(p.Value)
}

func (p *DataPoint) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "{") {
		var pt Point
		if err := json.Unmarshal(b, &pt); err != nil {
			return err
		}
		p.Coord = &pt
		p.Value = 0
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("data point: %w", err)
	}
	p.Value = v
	p.Coord = nil
	return nil
}

// Dataset is one series within a chart. Color fields hold either a
// single color string or a per-element color slice; both shapes are
// legal for the renderer, so they stay as `any` through serialization.
type Dataset struct {
	Label           string      `json:"label"`
	Data            []DataPoint `json:"data"`
	BackgroundColor any         `json:"backgroundColor,omitempty"`
	BorderColor     any         `json:"borderColor,omitempty"`
	BorderWidth     float64     `json:"borderWidth,omitempty"`
	Fill            *bool       `json:"fill,omitempty"`
	Tension         *float64    `json:"tension,omitempty"`
}

// ChartData carries the labels/datasets pair. Labels may be empty for
// scatter and bubble charts.
type ChartData struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}

// ChartConfig is the finished, renderable configuration. It marshals
// directly to the wire shape the rendering layer expects.
type ChartConfig struct {
	Type    ChartType      `json:"type"`
	Title   string         `json:"title,omitempty"`
	Data    ChartData      `json:"data"`
	Options map[string]any `json:"options"`
}

// Clone returns a deep copy. Theming works on copies so the orchestrator
// never observes a half-themed config.
func (c ChartConfig) Clone() ChartConfig {
	out := c
	out.Data.Labels = append([]string(nil), c.Data.Labels...)
	out.Data.Datasets = make([]Dataset, len(c.Data.Datasets))
	for i, ds := range c.Data.Datasets {
		cp := ds
		cp.Data = append([]DataPoint(nil), ds.Data...)
		cp.BackgroundColor = cloneValue(ds.BackgroundColor)
		cp.BorderColor = cloneValue(ds.BorderColor)
		out.Data.Datasets[i] = cp
	}
	out.Options = cloneMap(c.Options)
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
