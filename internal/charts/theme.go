package charts

// Theme is the deterministic visual overlay applied to every valid
// chart. It is an immutable configuration value injected into the
// pipeline; nothing here is process-global, so concurrent requests need
// no coordination.
type Theme struct {
	// Palette supplies background colors, cycled by dataset index (or by
	// element index for segment-colored types like pie).
	Palette []string `yaml:"palette"`
	// BorderColor is the default series border.
	BorderColor string `yaml:"border_color"`
	// BorderWidth is applied when the model left the width unset.
	BorderWidth float64 `yaml:"border_width"`
	// Options are merged over model-supplied options. Themed keys win;
	// everything else the model set is preserved verbatim.
	Options map[string]any `yaml:"options"`
}

// DefaultTheme reproduces the product's gold/black scheme.
func DefaultTheme() Theme {
	return Theme{
		Palette: []string{
			"rgba(212, 175, 55, 0.8)",
			"rgba(255, 215, 0, 0.8)",
			"rgba(212, 175, 55, 0.6)",
			"rgba(255, 215, 0, 0.6)",
			"rgba(212, 175, 55, 0.4)",
			"rgba(255, 215, 0, 0.4)",
		},
		BorderColor: "#d4af37",
		BorderWidth: 2,
		Options: map[string]any{
			"responsive": true,
			"plugins": map[string]any{
				"legend": map[string]any{
					"labels": map[string]any{"color": "#ffffff"},
				},
				"title": map[string]any{
					"color": "#d4af37",
					"font":  map[string]any{"size": 16, "weight": "300"},
				},
				"tooltip": map[string]any{
					"titleColor": "#d4af37",
					"bodyColor":  "#ffffff",
				},
			},
			"scales": map[string]any{
				"x": map[string]any{"grid": map[string]any{"color": "rgba(212, 175, 55, 0.15)"}},
				"y": map[string]any{"grid": map[string]any{"color": "rgba(212, 175, 55, 0.15)"}},
			},
		},
	}
}

// Apply overlays the theme onto a valid config. It is a total pure
// function and idempotent: colors the model (or a previous Apply) set
// are never overwritten, and the option overlay writes fixed values.
func (t Theme) Apply(cfg ChartConfig) ChartConfig {
	out := cfg.Clone()

	for i := range out.Data.Datasets {
		ds := &out.Data.Datasets[i]
		if ds.BackgroundColor == nil {
			if out.Type.SegmentColored() {
				ds.BackgroundColor = t.sliceColors(len(ds.Data))
			} else {
				ds.BackgroundColor = t.paletteAt(i)
			}
		}
		if ds.BorderColor == nil && t.BorderColor != "" {
			ds.BorderColor = t.BorderColor
		}
		if ds.BorderWidth == 0 && t.BorderWidth > 0 {
			ds.BorderWidth = t.BorderWidth
		}
	}

	if out.Options == nil {
		out.Options = map[string]any{}
	}
	mergeOptions(out.Options, t.Options)

	// The title text itself is model content; only surface it when the
	// model supplied one and did not already place it in options.
	if out.Title != "" {
		ensurePath(out.Options, "plugins", "title")
		title := out.Options["plugins"].(map[string]any)["title"].(map[string]any)
		if _, ok := title["text"]; !ok {
			title["text"] = out.Title
			title["display"] = true
		}
	}

	return out
}

func (t Theme) paletteAt(i int) string {
	if len(t.Palette) == 0 {
		return ""
	}
	return t.Palette[i%len(t.Palette)]
}

func (t Theme) sliceColors(n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = t.paletteAt(i)
	}
	return out
}

// mergeOptions writes overlay keys into dst, recursing into nested maps
// so model-specified siblings survive.
func mergeOptions(dst map[string]any, overlay map[string]any) {
	for k, v := range overlay {
		ov, overlayIsMap := v.(map[string]any)
		dv, dstIsMap := dst[k].(map[string]any)
		if overlayIsMap && dstIsMap {
			mergeOptions(dv, ov)
			continue
		}
		if overlayIsMap {
			dst[k] = cloneMap(ov)
			continue
		}
		dst[k] = v
	}
}

func ensurePath(m map[string]any, keys ...string) {
	cur := m
	for _, k := range keys {
		next, ok := cur[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			cur[k] = next
		}
		cur = next
	}
}
