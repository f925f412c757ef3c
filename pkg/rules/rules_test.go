package rules

import (
	"math"
	"testing"
)

func TestDefaultRegistryUniqueIDs(t *testing.T) {
	reg := Default()
	seen := make(map[string]bool)
	for _, d := range reg.Definitions() {
		if seen[d.ID] {
			t.Errorf("duplicate rule id %s", d.ID)
		}
		seen[d.ID] = true
	}
	if len(seen) != 19 {
		t.Errorf("expected 19 rules, got %d", len(seen))
	}
}

func TestDefaultRegistryWeightSum(t *testing.T) {
	sum := Default().WeightSum()
	if math.Abs(sum-1.0) > 1e-9 {
		t.Errorf("expected weights to sum to 1.0, got %.6f", sum)
	}
}

func TestDefaultRegistryRangeThresholds(t *testing.T) {
	for _, d := range Default().Definitions() {
		if d.Method != MethodRange {
			continue
		}
		if d.T1 == nil || d.T2 == nil {
			t.Fatalf("rule %s: RANGE rule missing thresholds", d.ID)
		}
		switch d.Direction {
		case DirectionLE:
			if *d.T1 > *d.T2 {
				t.Errorf("rule %s: LE rule needs t1 <= t2, got %.2f > %.2f", d.ID, *d.T1, *d.T2)
			}
		case DirectionGE:
			if *d.T1 < *d.T2 {
				t.Errorf("rule %s: GE rule needs t1 >= t2, got %.2f < %.2f", d.ID, *d.T1, *d.T2)
			}
		default:
			t.Errorf("rule %s: RANGE rule with direction %s", d.ID, d.Direction)
		}
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	defs := []Definition{
		{ID: "X-01", Method: MethodBinary, Direction: DirectionBool, Weight: 0.5},
		{ID: "X-01", Method: MethodBinary, Direction: DirectionBool, Weight: 0.5},
	}
	if _, err := NewRegistry(defs, nil, HardChecks{}); err == nil {
		t.Error("expected error for duplicate rule id")
	}
}

func TestPrefixClassifier(t *testing.T) {
	cases := []struct {
		id   string
		want Group
	}{
		{"OP-01", GroupOperation},
		{"CS-02", GroupOperation},
		{"PEN-01", GroupOperation},
		{"CO-01", GroupOperation},
		{"BR-03", GroupBrand},
		{"CAT-02", GroupCategory},
		{"SC-01", GroupScale},
		{"ZZ-99", GroupOperation},
	}
	for _, c := range cases {
		if got := PrefixClassifier(c.id); got != c.want {
			t.Errorf("PrefixClassifier(%s) = %s, want %s", c.id, got, c.want)
		}
	}
}

func TestSoftSpecPass(t *testing.T) {
	min := SoftSpec{RuleID: "OP-04", Direction: SoftMin, Threshold: 4.5}
	max := SoftSpec{RuleID: "PEN-01", Direction: SoftMax, Threshold: 2}

	if !min.Pass(4.5) || !min.Pass(5.0) {
		t.Error("min spec should pass values at or above threshold")
	}
	if min.Pass(4.49) {
		t.Error("min spec should fail values below threshold")
	}
	if !max.Pass(2) || !max.Pass(0) {
		t.Error("max spec should pass values at or below threshold")
	}
	if max.Pass(2.1) {
		t.Error("max spec should fail values above threshold")
	}
}

func TestApplyWeightOverrides(t *testing.T) {
	reg := Default()
	out, err := reg.ApplyWeightOverrides(map[string]float64{"OP-01": 0.2, "NOPE": 0.9})
	if err != nil {
		t.Fatalf("ApplyWeightOverrides: %v", err)
	}
	d, ok := out.Lookup("OP-01")
	if !ok || d.Weight != 0.2 {
		t.Errorf("expected OP-01 weight 0.2, got %.2f", d.Weight)
	}
	// Original registry untouched.
	d, _ = reg.Lookup("OP-01")
	if d.Weight != 0.07 {
		t.Errorf("original registry mutated: OP-01 weight %.2f", d.Weight)
	}
}
