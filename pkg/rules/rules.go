// Package rules defines the Mall Readiness rule registry: the immutable
// table of scoring criteria, the Soft-KO criterion specs, and the Hard-KO
// check definitions. The registry is built once at startup and passed by
// value into the components that need it.
package rules

import "strings"

// Method describes how a criterion's raw value is scored.
type Method string

const (
	MethodRange  Method = "RANGE"
	MethodBinary Method = "BINARY"
	MethodCustom Method = "CUSTOM"
)

// Direction describes how thresholds are interpreted for a RANGE rule,
// or names the custom scorer for a CUSTOM rule.
type Direction string

const (
	DirectionLE   Direction = "LE"   // lower is better
	DirectionGE   Direction = "GE"   // higher is better
	DirectionBool Direction = "BOOL" // true passes

	// Custom scorer tags.
	CustomURL    Direction = "URL_REACHABLE"
	CustomSocial Direction = "SOCIAL_PROOF"
	CustomText   Direction = "TEXT_PRESENT"
	CustomImage  Direction = "IMAGE_PAIR"
)

// Group is a coarse bucket of related criteria.
type Group string

const (
	GroupOperation Group = "Operation"
	GroupBrand     Group = "Brand"
	GroupCategory  Group = "Category"
	GroupScale     Group = "Scale"
)

// CanonicalGroups is the fixed display order for group breakdowns.
// Unrecognized groups are appended after these.
var CanonicalGroups = []Group{GroupOperation, GroupBrand, GroupCategory, GroupScale}

// Definition is a single scoring rule. Immutable after registry construction.
type Definition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Group     Group     `json:"group"`
	Method    Method    `json:"method"`
	Direction Direction `json:"direction"`
	T1        *float64  `json:"t1"` // full-score threshold (nil for non-RANGE)
	T2        *float64  `json:"t2"` // partial-score threshold (nil for non-RANGE)
	Weight    float64   `json:"weight"`
}

// Classifier maps a rule ID to its group. Injectable so aggregation can be
// tested with synthetic IDs.
type Classifier func(ruleID string) Group

// PrefixClassifier is the default Classifier. IDs prefixed OP-, CS-, PEN-
// and CO- are Operation; BR- is Brand; CAT- is Category; SC- is Scale.
// Anything else falls back to Operation.
func PrefixClassifier(ruleID string) Group {
	switch {
	case strings.HasPrefix(ruleID, "BR-"):
		return GroupBrand
	case strings.HasPrefix(ruleID, "CAT-"):
		return GroupCategory
	case strings.HasPrefix(ruleID, "SC-"):
		return GroupScale
	default:
		return GroupOperation
	}
}

// SoftDirection describes which side of a Soft-KO threshold passes.
type SoftDirection string

const (
	SoftMin SoftDirection = "min" // value >= threshold passes
	SoftMax SoftDirection = "max" // value <= threshold passes
)

// SoftSpec is a Soft-KO remediation criterion.
type SoftSpec struct {
	RuleID    string        `json:"rule_id"`
	Direction SoftDirection `json:"direction"`
	Threshold float64       `json:"threshold"`
	Unit      string        `json:"unit"`
}

// Pass reports whether a value satisfies the spec.
func (s SoftSpec) Pass(value float64) bool {
	if s.Direction == SoftMin {
		return value >= s.Threshold
	}
	return value <= s.Threshold
}
