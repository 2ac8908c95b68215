package charts

import (
	"fmt"
	"strconv"
	"strings"
)

// Validator checks an untyped candidate (a decoded JSON value) against
// the structural contract for its chart type. Checks run in fixed
// categories; the first failing category short-circuits the rest, but
// every violation within a category is collected so the caller sees the
// whole picture for that stage.
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// Validate returns Valid only when zero required checks fail. Color
// shape problems are reported as advisory: they are tolerable for the
// renderer and absent colors are the theme's job, so they never sink a
// candidate on their own.
func (v *Validator) Validate(candidate any) ValidationResult {
	obj, ok := candidate.(map[string]any)
	if !ok {
		return ValidationResult{Violations: []Violation{{
			Kind:   KindWrongType,
			Path:   "",
			Reason: fmt.Sprintf("expected object, found %s", typeName(candidate)),
		}}}
	}

	// Category 1: chart type.
	chartType, viols := v.checkType(obj)
	if len(viols) > 0 {
		return ValidationResult{Violations: viols}
	}

	// Category 2: data block shape and options presence.
	labels, datasets, viols := v.checkDataBlock(obj, chartType)
	if len(viols) > 0 {
		return ValidationResult{Violations: viols}
	}

	// Category 3: per-dataset contents.
	if viols := v.checkDatasets(chartType, labels, datasets); len(viols) > 0 {
		return ValidationResult{Violations: viols}
	}

	// Category 4: color shapes (advisory only).
	advisory := v.checkColors(datasets)

	cfg := convert(chartType, obj, labels, datasets)
	return ValidationResult{Config: &cfg, Violations: advisory}
}

func (v *Validator) checkType(obj map[string]any) (ChartType, []Violation) {
	raw, present := obj["type"]
	if !present {
		return "", []Violation{{Kind: KindMissingField, Path: "type", Reason: "missing required field"}}
	}
	s, ok := raw.(string)
	if !ok {
		return "", []Violation{{
			Kind:   KindWrongType,
			Path:   "type",
			Reason: fmt.Sprintf("expected string, found %s", typeName(raw)),
		}}
	}
	t, ok := ParseType(s)
	if !ok {
		return "", []Violation{{
			Kind:   KindUnsupportedType,
			Path:   "type",
			Reason: fmt.Sprintf("unsupported chart type: %s", s),
		}}
	}
	return t, nil
}

func (v *Validator) checkDataBlock(obj map[string]any, t ChartType) ([]any, []map[string]any, []Violation) {
	var viols []Violation

	if _, present := obj["options"]; !present {
		viols = append(viols, Violation{Kind: KindMissingField, Path: "options", Reason: "missing required field"})
	} else if _, ok := obj["options"].(map[string]any); !ok {
		viols = append(viols, Violation{
			Kind:   KindWrongType,
			Path:   "options",
			Reason: fmt.Sprintf("expected object, found %s", typeName(obj["options"])),
		})
	}

	data, ok := obj["data"].(map[string]any)
	if !ok {
		if _, present := obj["data"]; !present {
			viols = append(viols, Violation{Kind: KindMissingField, Path: "data", Reason: "missing required field"})
		} else {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   "data",
				Reason: fmt.Sprintf("expected object, found %s", typeName(obj["data"])),
			})
		}
		return nil, nil, viols
	}

	var labels []any
	rawLabels, labelsPresent := data["labels"]
	if labelsPresent {
		arr, ok := rawLabels.([]any)
		if !ok {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   "data.labels",
				Reason: fmt.Sprintf("expected array, found %s", typeName(rawLabels)),
			})
		} else {
			labels = arr
			for i, l := range arr {
				// Numeric labels are common model output (years, bins);
				// they are accepted and stringified on conversion.
				if !isString(l) && !isNumber(l) {
					viols = append(viols, Violation{
						Kind:   KindWrongType,
						Path:   fmt.Sprintf("data.labels[%d]", i),
						Reason: fmt.Sprintf("expected string, found %s", typeName(l)),
					})
				}
			}
		}
	} else if t.UsesLabels() {
		viols = append(viols, Violation{Kind: KindMissingField, Path: "data.labels", Reason: "missing required field"})
	}

	rawDatasets, present := data["datasets"]
	if !present {
		viols = append(viols, Violation{Kind: KindMissingField, Path: "data.datasets", Reason: "missing required field"})
		return labels, nil, viols
	}
	arr, ok := rawDatasets.([]any)
	if !ok {
		viols = append(viols, Violation{
			Kind:   KindWrongType,
			Path:   "data.datasets",
			Reason: fmt.Sprintf("expected array, found %s", typeName(rawDatasets)),
		})
		return labels, nil, viols
	}
	if len(arr) == 0 {
		viols = append(viols, Violation{Kind: KindMissingField, Path: "data.datasets", Reason: "must be a non-empty array"})
		return labels, nil, viols
	}

	datasets := make([]map[string]any, 0, len(arr))
	for i, raw := range arr {
		ds, ok := raw.(map[string]any)
		if !ok {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   fmt.Sprintf("data.datasets[%d]", i),
				Reason: fmt.Sprintf("expected object, found %s", typeName(raw)),
			})
			continue
		}
		datasets = append(datasets, ds)
	}
	return labels, datasets, viols
}

func (v *Validator) checkDatasets(t ChartType, labels []any, datasets []map[string]any) []Violation {
	var viols []Violation
	for i, ds := range datasets {
		base := fmt.Sprintf("data.datasets[%d]", i)

		if raw, present := ds["label"]; !present {
			viols = append(viols, Violation{Kind: KindMissingField, Path: base + ".label", Reason: "missing required field"})
		} else if !isString(raw) {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   base + ".label",
				Reason: fmt.Sprintf("expected string, found %s", typeName(raw)),
			})
		}

		rawData, present := ds["data"]
		if !present {
			viols = append(viols, Violation{Kind: KindMissingField, Path: base + ".data", Reason: "missing required field"})
			continue
		}
		elems, ok := rawData.([]any)
		if !ok {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   base + ".data",
				Reason: fmt.Sprintf("expected array, found %s", typeName(rawData)),
			})
			continue
		}

		if t.UsesLabels() {
			for j, e := range elems {
				if isNumber(e) {
					continue
				}
				viols = append(viols, Violation{
					Kind:   KindWrongType,
					Path:   fmt.Sprintf("%s.data[%d]", base, j),
					Reason: fmt.Sprintf("expected number, found %s", typeName(e)),
				})
			}
			if len(elems) != len(labels) {
				viols = append(viols, Violation{
					Kind:   KindLengthMismatch,
					Path:   base + ".data",
					Reason: fmt.Sprintf("length %d does not match labels length %d", len(elems), len(labels)),
				})
			}
			continue
		}

		for j, e := range elems {
			viols = append(viols, checkCoordinate(t, fmt.Sprintf("%s.data[%d]", base, j), e)...)
		}
	}
	return viols
}

func checkCoordinate(t ChartType, path string, e any) []Violation {
	obj, ok := e.(map[string]any)
	if !ok {
		return []Violation{{
			Kind:   KindWrongType,
			Path:   path,
			Reason: fmt.Sprintf("expected coordinate object, found %s", typeName(e)),
		}}
	}
	var viols []Violation
	for _, key := range []string{"x", "y"} {
		if raw, present := obj[key]; !present {
			viols = append(viols, Violation{Kind: KindMissingField, Path: path + "." + key, Reason: "missing required field"})
		} else if !isNumber(raw) {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   path + "." + key,
				Reason: fmt.Sprintf("expected number, found %s", typeName(raw)),
			})
		}
	}
	if t == TypeBubble {
		if raw, present := obj["r"]; !present {
			viols = append(viols, Violation{Kind: KindMissingField, Path: path + ".r", Reason: "missing required field"})
		} else if !isNumber(raw) {
			viols = append(viols, Violation{
				Kind:   KindWrongType,
				Path:   path + ".r",
				Reason: fmt.Sprintf("expected number, found %s", typeName(raw)),
			})
		}
	}
	return viols
}

func (v *Validator) checkColors(datasets []map[string]any) []Violation {
	var viols []Violation
	for i, ds := range datasets {
		dataLen := 0
		if elems, ok := ds["data"].([]any); ok {
			dataLen = len(elems)
		}
		for _, field := range []string{"backgroundColor", "borderColor"} {
			raw, present := ds[field]
			if !present {
				continue
			}
			path := fmt.Sprintf("data.datasets[%d].%s", i, field)
			switch c := raw.(type) {
			case string:
				// fine
			case []any:
				for j, e := range c {
					if !isString(e) {
						viols = append(viols, Violation{
							Kind:     KindColorShape,
							Path:     fmt.Sprintf("%s[%d]", path, j),
							Reason:   fmt.Sprintf("expected color string, found %s", typeName(e)),
							Advisory: true,
						})
					}
				}
				if len(c) != dataLen {
					viols = append(viols, Violation{
						Kind:     KindColorShape,
						Path:     path,
						Reason:   fmt.Sprintf("color count %d does not match data length %d", len(c), dataLen),
						Advisory: true,
					})
				}
			default:
				viols = append(viols, Violation{
					Kind:     KindColorShape,
					Path:     path,
					Reason:   fmt.Sprintf("expected string or array of strings, found %s", typeName(raw)),
					Advisory: true,
				})
			}
		}
	}
	return viols
}

// convert builds the typed config once validation guarantees the shape.
func convert(t ChartType, obj map[string]any, labels []any, datasets []map[string]any) ChartConfig {
	cfg := ChartConfig{Type: t}
	if title, ok := obj["title"].(string); ok {
		cfg.Title = title
	}
	if opts, ok := obj["options"].(map[string]any); ok {
		cfg.Options = cloneMap(opts)
	} else {
		cfg.Options = map[string]any{}
	}

	if len(labels) > 0 {
		cfg.Data.Labels = make([]string, len(labels))
		for i, l := range labels {
			cfg.Data.Labels[i] = formatLabel(l)
		}
	}

	cfg.Data.Datasets = make([]Dataset, 0, len(datasets))
	for _, raw := range datasets {
		ds := Dataset{}
		if s, ok := raw["label"].(string); ok {
			ds.Label = s
		}
		if elems, ok := raw["data"].([]any); ok {
			ds.Data = make([]DataPoint, 0, len(elems))
			for _, e := range elems {
				if n, ok := asNumber(e); ok {
					ds.Data = append(ds.Data, NumberPoint(n))
					continue
				}
				if coord, ok := e.(map[string]any); ok {
					p := Point{}
					p.X, _ = asNumber(coord["x"])
					p.Y, _ = asNumber(coord["y"])
					if r, ok := asNumber(coord["r"]); ok {
						p.R = &r
					}
					ds.Data = append(ds.Data, CoordPoint(p))
				}
			}
		}
		ds.BackgroundColor = normalizeColor(raw["backgroundColor"])
		ds.BorderColor = normalizeColor(raw["borderColor"])
		if w, ok := asNumber(raw["borderWidth"]); ok {
			ds.BorderWidth = w
		}
		if f, ok := raw["fill"].(bool); ok {
			ds.Fill = &f
		}
		if tn, ok := asNumber(raw["tension"]); ok {
			ds.Tension = &tn
		}
		cfg.Data.Datasets = append(cfg.Data.Datasets, ds)
	}
	return cfg
}

func normalizeColor(raw any) any {
	switch c := raw.(type) {
	case string:
		return c
	case []any:
		out := make([]string, 0, len(c))
		for _, e := range c {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	case []string:
		return c
	default:
		return nil
	}
}

func formatLabel(l any) string {
	if s, ok := l.(string); ok {
		return s
	}
	if n, ok := asNumber(l); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strings.TrimSpace(fmt.Sprint(l))
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

func isNumber(v any) bool {
	_, ok := asNumber(v)
	return ok
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
