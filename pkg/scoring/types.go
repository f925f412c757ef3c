// Package scoring implements the Mall Readiness weighted scoring engine.
// It turns raw criterion inputs into 0/50/100 scores and a weighted total
// with an explainable tier.
package scoring

// CriterionResult is the scored outcome for a single rule. Immutable once
// computed for a given input; recomputed whenever the input changes.
type CriterionResult struct {
	RuleID      string         `json:"rule_id"`
	Group       string         `json:"group"`
	Value       any            `json:"value"`
	Score       float64        `json:"score"`        // 0|50|100 for standard methods
	WeightFinal float64        `json:"weight_final"` // normalized weight
	Meta        map[string]any `json:"meta,omitempty"`
}

// Tier is the coarse readiness bucket derived from the total score.
type Tier string

const (
	TierNotReady  Tier = "Not Ready"
	TierPartially Tier = "Partially Ready"
	TierNear      Tier = "Near Mall-Ready"
	TierMallReady Tier = "Mall-Ready"
)

// TierFromScore maps a total score in [0,100] to a readiness tier.
// Boundaries are inclusive on the lower tier: 69 is Partially Ready,
// 70 is Near Mall-Ready.
func TierFromScore(total float64) Tier {
	switch {
	case total < 50:
		return TierNotReady
	case total < 70:
		return TierPartially
	case total < 85:
		return TierNear
	default:
		return TierMallReady
	}
}
