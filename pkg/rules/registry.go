package rules

import "fmt"

// Registry is the process-wide rule table. Construct with Default (or
// NewRegistry for tests) and treat as read-only afterwards.
type Registry struct {
	defs  []Definition
	byID  map[string]Definition
	soft  []SoftSpec
	hard  HardChecks
	order map[string]int
}

// NewRegistry validates and indexes a rule table.
func NewRegistry(defs []Definition, soft []SoftSpec, hard HardChecks) (*Registry, error) {
	byID := make(map[string]Definition, len(defs))
	order := make(map[string]int, len(defs))
	for i, d := range defs {
		if d.ID == "" {
			return nil, fmt.Errorf("rule at index %d has empty id", i)
		}
		if _, dup := byID[d.ID]; dup {
			return nil, fmt.Errorf("duplicate rule id %s", d.ID)
		}
		if d.Weight < 0 || d.Weight > 1 {
			return nil, fmt.Errorf("rule %s: weight %.4f outside [0,1]", d.ID, d.Weight)
		}
		if d.Method == MethodRange && (d.T1 == nil || d.T2 == nil) {
			return nil, fmt.Errorf("rule %s: RANGE method requires both thresholds", d.ID)
		}
		byID[d.ID] = d
		order[d.ID] = i
	}
	return &Registry{defs: defs, byID: byID, soft: soft, hard: hard, order: order}, nil
}

// Definitions returns the rule table in registry order.
func (r *Registry) Definitions() []Definition {
	out := make([]Definition, len(r.defs))
	copy(out, r.defs)
	return out
}

// Lookup returns the definition for a rule ID.
func (r *Registry) Lookup(id string) (Definition, bool) {
	d, ok := r.byID[id]
	return d, ok
}

// SoftSpecs returns the Soft-KO criterion specs.
func (r *Registry) SoftSpecs() []SoftSpec {
	out := make([]SoftSpec, len(r.soft))
	copy(out, r.soft)
	return out
}

// SoftSpec returns the Soft-KO spec for a rule ID.
func (r *Registry) SoftSpec(id string) (SoftSpec, bool) {
	for _, s := range r.soft {
		if s.RuleID == id {
			return s, true
		}
	}
	return SoftSpec{}, false
}

// Hard returns the Hard-KO check definitions.
func (r *Registry) Hard() HardChecks {
	return r.hard
}

// WeightSum returns the sum of weights across all rules. Nominally 1.0;
// the aggregator re-normalizes regardless.
func (r *Registry) WeightSum() float64 {
	var sum float64
	for _, d := range r.defs {
		sum += d.Weight
	}
	return sum
}

// ApplyWeightOverrides returns a copy of the registry with the given
// per-rule weights replaced. Unknown IDs are ignored.
func (r *Registry) ApplyWeightOverrides(overrides map[string]float64) (*Registry, error) {
	if len(overrides) == 0 {
		return r, nil
	}
	defs := r.Definitions()
	for i := range defs {
		if w, ok := overrides[defs[i].ID]; ok {
			defs[i].Weight = w
		}
	}
	return NewRegistry(defs, r.soft, r.hard)
}

func f(v float64) *float64 { return &v }

// Default returns the standard Mall Readiness rule table: 19 criteria
// across Operation, Brand, Category and Scale, the 4 Soft-KO specs, and
// the Hard-KO check set.
func Default() *Registry {
	defs := []Definition{
		// Operation
		{ID: "OP-01", Name: "Late shipment rate", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(5), T2: f(10), Weight: 0.07},
		{ID: "OP-02", Name: "Non-fulfilment rate", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(2), T2: f(5), Weight: 0.07},
		{ID: "OP-03", Name: "Preparation time (days)", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(1.5), T2: f(2.5), Weight: 0.05},
		{ID: "OP-04", Name: "Shop rating", Group: GroupOperation, Method: MethodRange, Direction: DirectionGE, T1: f(4.7), T2: f(4.5), Weight: 0.07},
		{ID: "CS-01", Name: "Chat response rate", Group: GroupOperation, Method: MethodRange, Direction: DirectionGE, T1: f(90), T2: f(80), Weight: 0.05},
		{ID: "CS-02", Name: "Chat response time (minutes)", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(10), T2: f(30), Weight: 0.04},
		{ID: "PEN-01", Name: "Penalty points", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(0), T2: f(2), Weight: 0.06},
		{ID: "CO-01", Name: "Pre-order listing rate", Group: GroupOperation, Method: MethodRange, Direction: DirectionLE, T1: f(5), T2: f(10), Weight: 0.05},

		// Brand
		{ID: "BR-01", Name: "Trademark registered", Group: GroupBrand, Method: MethodBinary, Direction: DirectionBool, Weight: 0.08},
		{ID: "BR-02", Name: "Official website reachable", Group: GroupBrand, Method: MethodCustom, Direction: CustomURL, Weight: 0.05},
		{ID: "BR-03", Name: "Social presence", Group: GroupBrand, Method: MethodCustom, Direction: CustomSocial, Weight: 0.04},
		{ID: "BR-04", Name: "Brand story", Group: GroupBrand, Method: MethodCustom, Direction: CustomText, Weight: 0.03},
		{ID: "BR-05", Name: "Product imagery", Group: GroupBrand, Method: MethodCustom, Direction: CustomImage, Weight: 0.04},

		// Category
		{ID: "CAT-01", Name: "Active listings", Group: GroupCategory, Method: MethodRange, Direction: DirectionGE, T1: f(50), T2: f(30), Weight: 0.05},
		{ID: "CAT-02", Name: "Category focus rate", Group: GroupCategory, Method: MethodRange, Direction: DirectionGE, T1: f(80), T2: f(60), Weight: 0.04},
		{ID: "CAT-03", Name: "No restricted-category violations", Group: GroupCategory, Method: MethodBinary, Direction: DirectionBool, Weight: 0.04},

		// Scale
		{ID: "SC-01", Name: "Monthly revenue (million VND)", Group: GroupScale, Method: MethodRange, Direction: DirectionGE, T1: f(100), T2: f(50), Weight: 0.08},
		{ID: "SC-02", Name: "Monthly orders", Group: GroupScale, Method: MethodRange, Direction: DirectionGE, T1: f(300), T2: f(150), Weight: 0.05},
		{ID: "SC-03", Name: "Repeat purchase rate", Group: GroupScale, Method: MethodRange, Direction: DirectionGE, T1: f(20), T2: f(10), Weight: 0.04},
	}

	soft := []SoftSpec{
		{RuleID: "OP-04", Direction: SoftMin, Threshold: 4.5, Unit: "stars"},
		{RuleID: "PEN-01", Direction: SoftMax, Threshold: 2, Unit: "points"},
		{RuleID: "CO-01", Direction: SoftMax, Threshold: 10, Unit: "%"},
		{RuleID: "SC-02", Direction: SoftMin, Threshold: 150, Unit: "orders"},
	}

	reg, err := NewRegistry(defs, soft, DefaultHardChecks())
	if err != nil {
		// The default table is a compile-time constant; a validation
		// failure here is a programming error.
		panic(err)
	}
	return reg
}
