// Package aggregate normalizes criterion results, buckets them into group
// breakdowns and ranks criteria by improvement opportunity.
package aggregate

import (
	"math"
	"sort"

	"github.com/smros/smros/pkg/rules"
	"github.com/smros/smros/pkg/scoring"
)

// GroupBreakdown is the weighted rollup for one criterion group.
type GroupBreakdown struct {
	Group        string  `json:"group"`
	Score        float64 `json:"score"`        // weighted mean, 0-100
	Contribution float64 `json:"contribution"` // absolute weighted contribution to total
}

// ImpactGapEntry ranks a criterion by points left on the table.
type ImpactGapEntry struct {
	RuleID      string  `json:"rule_id"`
	Group       string  `json:"group"`
	Score       float64 `json:"score"`
	WeightFinal float64 `json:"weight_final"`
	Impact      float64 `json:"impact"` // (100 - score) * weight_final
}

// Normalize prepares criterion results for aggregation: entries without a
// rule ID are dropped, score and weight are coerced to finite numbers
// (defaulting to 0 rather than failing), each entry is assigned a group
// via the classifier, and weights are re-normalized to sum to 1 whenever
// the raw sum is positive. The input slice is not mutated.
func Normalize(criteria []scoring.CriterionResult, classify rules.Classifier) []scoring.CriterionResult {
	if classify == nil {
		classify = rules.PrefixClassifier
	}

	out := make([]scoring.CriterionResult, 0, len(criteria))
	var weightSum float64
	for _, c := range criteria {
		if c.RuleID == "" {
			continue
		}
		c.Score = finiteOrZero(c.Score)
		c.WeightFinal = finiteOrZero(c.WeightFinal)
		c.Group = string(classify(c.RuleID))
		weightSum += c.WeightFinal
		out = append(out, c)
	}

	if weightSum > 0 {
		for i := range out {
			out[i].WeightFinal /= weightSum
		}
	}
	return out
}

// Breakdown computes per-group weighted scores and contributions. Every
// canonical group appears even with no members; unrecognized groups are
// appended after the canonical order.
func Breakdown(criteria []scoring.CriterionResult) []GroupBreakdown {
	type acc struct {
		weighted float64
		weight   float64
	}
	byGroup := make(map[string]*acc)
	var extras []string

	known := make(map[string]bool, len(rules.CanonicalGroups))
	for _, g := range rules.CanonicalGroups {
		known[string(g)] = true
		byGroup[string(g)] = &acc{}
	}

	for _, c := range criteria {
		a, ok := byGroup[c.Group]
		if !ok {
			a = &acc{}
			byGroup[c.Group] = a
			extras = append(extras, c.Group)
		}
		a.weighted += c.Score * c.WeightFinal
		a.weight += c.WeightFinal
	}

	order := make([]string, 0, len(byGroup))
	for _, g := range rules.CanonicalGroups {
		order = append(order, string(g))
	}
	order = append(order, extras...)

	out := make([]GroupBreakdown, 0, len(order))
	for _, g := range order {
		a := byGroup[g]
		b := GroupBreakdown{Group: g, Contribution: a.weighted}
		if a.weight > 0 {
			b.Score = a.weighted / a.weight
		}
		out = append(out, b)
	}
	return out
}

// ImpactGap ranks criteria by (100-score)*weight_final, descending,
// keeping only positive impacts. Ties keep their original relative order.
func ImpactGap(criteria []scoring.CriterionResult) []ImpactGapEntry {
	var out []ImpactGapEntry
	for _, c := range criteria {
		impact := (100 - c.Score) * c.WeightFinal
		if impact <= 0 {
			continue
		}
		out = append(out, ImpactGapEntry{
			RuleID:      c.RuleID,
			Group:       c.Group,
			Score:       c.Score,
			WeightFinal: c.WeightFinal,
			Impact:      impact,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Impact > out[j].Impact
	})
	return out
}

// TopFixlist returns the first topN impact-gap entries: the prioritized
// remediation list. topN <= 0 defaults to 5.
func TopFixlist(criteria []scoring.CriterionResult, topN int) []ImpactGapEntry {
	if topN <= 0 {
		topN = 5
	}
	gaps := ImpactGap(criteria)
	if len(gaps) > topN {
		gaps = gaps[:topN]
	}
	return gaps
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
