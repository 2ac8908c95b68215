package charts

import "fmt"

// ViolationKind classifies a schema non-conformance so repair rules can
// target the kinds they know how to fix.
type ViolationKind string

const (
	KindUnsupportedType ViolationKind = "unsupported_type"
	KindMissingField    ViolationKind = "missing_field"
	KindWrongType       ViolationKind = "wrong_type"
	KindLengthMismatch  ViolationKind = "length_mismatch"
	KindColorShape      ViolationKind = "color_shape"
)

// Violation is one structured schema non-conformance: a field path such
// as "data.datasets[0].data" plus a human-readable reason. Advisory
// violations (color shape issues) never fail validation on their own;
// the renderer tolerates them and theming fills absent colors.
type Violation struct {
	Kind     ViolationKind `json:"kind"`
	Path     string        `json:"path"`
	Reason   string        `json:"reason"`
	Advisory bool          `json:"advisory,omitempty"`
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Reason)
}

// ValidationResult is the outcome of validating one candidate. Config is
// only populated when the candidate is valid.
type ValidationResult struct {
	Config     *ChartConfig
	Violations []Violation
}

// Valid reports whether the candidate passed every required check.
// Advisory violations are carried for diagnostics but do not invalidate.
func (r ValidationResult) Valid() bool {
	for _, v := range r.Violations {
		if !v.Advisory {
			return false
		}
	}
	return true
}

// Fatal returns the violations that make the candidate invalid.
func (r ValidationResult) Fatal() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if !v.Advisory {
			out = append(out, v)
		}
	}
	return out
}
