package scoring

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/smros/smros/pkg/rules"
)

// Engine scores criteria against a rule registry. Custom methods are
// delegated to capability-injected scorers so the engine itself performs
// no I/O.
type Engine struct {
	registry *rules.Registry
	custom   *CustomScorers
}

// NewEngine creates a scoring engine. custom may be nil, in which case
// every CUSTOM rule scores 0 (fail-closed).
func NewEngine(registry *rules.Registry, custom *CustomScorers) *Engine {
	return &Engine{registry: registry, custom: custom}
}

// Score evaluates one rule against a raw value and returns a
// CriterionResult carrying the rule's raw weight (normalization happens
// in aggregation). It never returns an error for bad input: missing or
// non-numeric values for numeric methods score 0.
func (e *Engine) Score(ctx context.Context, def rules.Definition, raw any) CriterionResult {
	res := CriterionResult{
		RuleID:      def.ID,
		Group:       string(def.Group),
		Value:       raw,
		WeightFinal: def.Weight,
	}

	switch def.Method {
	case rules.MethodRange:
		res.Score = scoreRange(def, raw)
	case rules.MethodBinary:
		res.Score = scoreBinary(raw)
	case rules.MethodCustom:
		res.Score, res.Meta = e.scoreCustom(ctx, def, raw)
	}
	return res
}

// ScoreAll evaluates every rule in the registry against the input map,
// in registry order. Rules with no input entry still produce a result
// (score 0 for numeric methods).
func (e *Engine) ScoreAll(ctx context.Context, inputs map[string]any) []CriterionResult {
	defs := e.registry.Definitions()
	out := make([]CriterionResult, 0, len(defs))
	for _, def := range defs {
		out = append(out, e.Score(ctx, def, inputs[def.ID]))
	}
	return out
}

// scoreRange applies the banded threshold contract:
// LE: value <= t1 -> 100; t1 < value <= t2 -> 50; else 0.
// GE: value >= t1 -> 100; t2 <= value < t1 -> 50; else 0.
func scoreRange(def rules.Definition, raw any) float64 {
	v, ok := toFloat(raw)
	if !ok || def.T1 == nil || def.T2 == nil {
		return 0
	}
	t1, t2 := *def.T1, *def.T2
	switch def.Direction {
	case rules.DirectionLE:
		switch {
		case v <= t1:
			return 100
		case v <= t2:
			return 50
		}
	case rules.DirectionGE:
		switch {
		case v >= t1:
			return 100
		case v >= t2:
			return 50
		}
	}
	return 0
}

func scoreBinary(raw any) float64 {
	if b, ok := raw.(bool); ok && b {
		return 100
	}
	return 0
}

// Total computes the weighted total, rounded to 2 decimals. Results are
// expected to carry normalized weights.
func Total(results []CriterionResult) float64 {
	var sum float64
	for _, r := range results {
		sum += r.Score * r.WeightFinal
	}
	return math.Round(sum*100) / 100
}

// toFloat coerces a raw input to a finite float64. JSON numbers decode as
// float64; form values arrive as strings or ints.
func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		return v, true
	case float32:
		return toFloat(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		if v == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
