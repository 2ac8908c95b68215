package charts

import (
	"strconv"
	"strings"
)

// Repairer applies a fixed, ordered set of mechanical fixes to a failed
// candidate. It runs exactly once per candidate; the caller re-validates
// the result and drops the candidate if it still fails. Repairs only
// remove or rewrite what is already there, they never invent data.
type Repairer struct {
	rules *Rules
}

func NewRepairer(rules *Rules) *Repairer {
	if rules == nil {
		d := DefaultRules()
		rules = &d
	}
	return &Repairer{rules: rules}
}

// Repair returns a deep copy of candidate with every applicable rule
// applied, plus the names of the rules that fired. Each rule detects
// its own trigger on the candidate, so one pass can fix defects the
// validator's short-circuiting had not yet reported. The input is never
// mutated.
func (r *Repairer) Repair(candidate any) (any, []string) {
	obj, ok := cloneValue(candidate).(map[string]any)
	if !ok {
		return candidate, nil
	}

	var applied []string
	for _, rule := range repairRules {
		if rule.fn(r, obj) {
			applied = append(applied, rule.name)
		}
	}
	return obj, applied
}

type repairRule struct {
	name string
	fn   func(r *Repairer, obj map[string]any) bool
}

// Order is significant: the type must be canonical before alignment can
// decide whether labels apply, and alignment runs before coercion so
// that coercion drops stay index-consistent.
var repairRules = []repairRule{
	{"ensure_options", (*Repairer).ensureOptions},
	{"normalize_type", (*Repairer).normalizeType},
	{"align_lengths", (*Repairer).alignLengths},
	{"coerce_numeric_strings", (*Repairer).coerceNumericStrings},
}

func (r *Repairer) ensureOptions(obj map[string]any) bool {
	if _, ok := obj["options"].(map[string]any); ok {
		return false
	}
	obj["options"] = map[string]any{}
	return true
}

func (r *Repairer) normalizeType(obj map[string]any) bool {
	raw, ok := obj["type"].(string)
	if !ok {
		return false
	}
	if _, ok := ParseType(raw); ok {
		return false
	}
	t, ok := r.rules.CanonicalSynonym(raw)
	if !ok {
		return false
	}
	obj["type"] = string(t)
	return true
}

func (r *Repairer) alignLengths(obj map[string]any) bool {
	t, labels, datasets := candidateShape(obj)
	if t == "" || !t.UsesLabels() {
		return false
	}

	min := len(labels)
	for _, ds := range datasets {
		if elems, ok := ds["data"].([]any); ok && len(elems) < min {
			min = len(elems)
		}
	}

	changed := false
	if len(labels) > min {
		setLabels(obj, labels[:min])
		changed = true
	}
	for _, ds := range datasets {
		if elems, ok := ds["data"].([]any); ok && len(elems) > min {
			ds["data"] = elems[:min]
			changed = true
		}
	}
	return changed
}

// coerceNumericStrings rewrites numeric strings like "42" in dataset
// data to numbers. Elements that do not parse are dropped, along with
// the label at the same index and the matching element of every other
// dataset so the series stay aligned.
func (r *Repairer) coerceNumericStrings(obj map[string]any) bool {
	t, labels, datasets := candidateShape(obj)
	if t == "" {
		return false
	}

	if !t.UsesLabels() {
		return r.coerceCoordinates(t, datasets)
	}

	changed := false
	drop := map[int]bool{}
	for _, ds := range datasets {
		elems, ok := ds["data"].([]any)
		if !ok {
			continue
		}
		for j, e := range elems {
			s, ok := e.(string)
			if !ok {
				continue
			}
			n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				drop[j] = true
				continue
			}
			elems[j] = n
			changed = true
		}
	}
	if len(drop) == 0 {
		return changed
	}

	if len(labels) > 0 {
		setLabels(obj, withoutIndices(labels, drop))
	}
	for _, ds := range datasets {
		if elems, ok := ds["data"].([]any); ok {
			ds["data"] = withoutIndices(elems, drop)
		}
	}
	return true
}

func (r *Repairer) coerceCoordinates(t ChartType, datasets []map[string]any) bool {
	changed := false
	for _, ds := range datasets {
		elems, ok := ds["data"].([]any)
		if !ok {
			continue
		}
		kept := make([]any, 0, len(elems))
		for _, e := range elems {
			coord, ok := e.(map[string]any)
			if !ok {
				kept = append(kept, e)
				continue
			}
			bad := false
			keys := []string{"x", "y"}
			if t == TypeBubble {
				keys = append(keys, "r")
			}
			for _, key := range keys {
				s, isStr := coord[key].(string)
				if !isStr {
					continue
				}
				n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
				if err != nil {
					bad = true
					break
				}
				coord[key] = n
				changed = true
			}
			if bad {
				changed = true
				continue
			}
			kept = append(kept, e)
		}
		if len(kept) != len(elems) {
			ds["data"] = kept
		}
	}
	return changed
}

func candidateShape(obj map[string]any) (ChartType, []any, []map[string]any) {
	var t ChartType
	if s, ok := obj["type"].(string); ok {
		t, _ = ParseType(s)
	}
	data, _ := obj["data"].(map[string]any)
	if data == nil {
		return t, nil, nil
	}
	labels, _ := data["labels"].([]any)
	var datasets []map[string]any
	if arr, ok := data["datasets"].([]any); ok {
		for _, raw := range arr {
			if ds, ok := raw.(map[string]any); ok {
				datasets = append(datasets, ds)
			}
		}
	}
	return t, labels, datasets
}

func setLabels(obj map[string]any, labels []any) {
	if data, ok := obj["data"].(map[string]any); ok {
		data["labels"] = labels
	}
}

func withoutIndices(in []any, drop map[int]bool) []any {
	out := make([]any, 0, len(in))
	for i, e := range in {
		if !drop[i] {
			out = append(out, e)
		}
	}
	return out
}
