package scoring

import (
	"context"
	"testing"

	"github.com/smros/smros/pkg/rules"
)

func rangeRule(dir rules.Direction, t1, t2 float64) rules.Definition {
	return rules.Definition{
		ID: "T-01", Group: rules.GroupOperation,
		Method: rules.MethodRange, Direction: dir,
		T1: &t1, T2: &t2, Weight: 0.1,
	}
}

func TestScoreRangeLE(t *testing.T) {
	def := rangeRule(rules.DirectionLE, 5, 10)
	e := NewEngine(rules.Default(), nil)

	cases := []struct {
		value any
		want  float64
	}{
		{5.0, 100},
		{4.9, 100},
		{5.01, 50},
		{10.0, 50},
		{10.01, 0},
		{"7", 50},
		{"abc", 0},
		{nil, 0},
	}
	for _, c := range cases {
		got := e.Score(context.Background(), def, c.value).Score
		if got != c.want {
			t.Errorf("LE score(%v) = %.0f, want %.0f", c.value, got, c.want)
		}
	}
}

func TestScoreRangeGE(t *testing.T) {
	def := rangeRule(rules.DirectionGE, 90, 80)
	e := NewEngine(rules.Default(), nil)

	cases := []struct {
		value any
		want  float64
	}{
		{90.0, 100},
		{95.0, 100},
		{89.99, 50},
		{80.0, 50},
		{79.99, 0},
		{nil, 0},
	}
	for _, c := range cases {
		got := e.Score(context.Background(), def, c.value).Score
		if got != c.want {
			t.Errorf("GE score(%v) = %.0f, want %.0f", c.value, got, c.want)
		}
	}
}

func TestScoreBinary(t *testing.T) {
	def := rules.Definition{ID: "T-02", Method: rules.MethodBinary, Direction: rules.DirectionBool, Weight: 0.1}
	e := NewEngine(rules.Default(), nil)

	if got := e.Score(context.Background(), def, true).Score; got != 100 {
		t.Errorf("binary(true) = %.0f, want 100", got)
	}
	for _, v := range []any{false, nil, "true", 1} {
		if got := e.Score(context.Background(), def, v).Score; got != 0 {
			t.Errorf("binary(%v) = %.0f, want 0", v, got)
		}
	}
}

func TestTierFromScore(t *testing.T) {
	cases := []struct {
		total float64
		want  Tier
	}{
		{0, TierNotReady},
		{49.99, TierNotReady},
		{50, TierPartially},
		{69, TierPartially},
		{70, TierNear},
		{84, TierNear},
		{85, TierMallReady},
		{100, TierMallReady},
	}
	for _, c := range cases {
		if got := TierFromScore(c.total); got != c.want {
			t.Errorf("TierFromScore(%.2f) = %s, want %s", c.total, got, c.want)
		}
	}
}

func TestScoreAllIdempotent(t *testing.T) {
	e := NewEngine(rules.Default(), nil)
	inputs := map[string]any{
		"OP-01": 3.0, "OP-02": 1.0, "OP-04": 4.8,
		"BR-01": true, "BR-04": "established 2015",
		"SC-01": 120.0,
	}

	first := e.ScoreAll(context.Background(), inputs)
	second := e.ScoreAll(context.Background(), inputs)
	if len(first) != len(second) {
		t.Fatalf("result lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].RuleID != second[i].RuleID || first[i].Score != second[i].Score {
			t.Errorf("result %d differs across runs: %+v vs %+v", i, first[i], second[i])
		}
	}
}

type fakeProbe struct{ up bool }

func (p fakeProbe) Reachable(_ context.Context, _ string) bool { return p.up }

type fakeClassifier struct{ traits ImageTraits }

func (c fakeClassifier) Classify(_ context.Context, _ []byte) (ImageTraits, error) {
	return c.traits, nil
}

func TestScoreCustomURL(t *testing.T) {
	custom := &CustomScorers{Probe: fakeProbe{up: true}}
	e := NewEngine(rules.Default(), custom)
	def, _ := rules.Default().Lookup("BR-02")

	if got := e.Score(context.Background(), def, "https://brand.example.com").Score; got != 100 {
		t.Errorf("valid reachable URL = %.0f, want 100", got)
	}

	down := NewEngine(rules.Default(), &CustomScorers{Probe: fakeProbe{up: false}})
	if got := down.Score(context.Background(), def, "https://brand.example.com").Score; got != 50 {
		t.Errorf("valid unreachable URL = %.0f, want 50", got)
	}

	if got := e.Score(context.Background(), def, "not a url").Score; got != 0 {
		t.Errorf("malformed URL = %.0f, want 0", got)
	}
}

func TestScoreCustomSocial(t *testing.T) {
	e := NewEngine(rules.Default(), &CustomScorers{})
	def, _ := rules.Default().Lookup("BR-03")

	both := e.Score(context.Background(), def, SocialProof{PageURL: "https://fb.example.com/shop", Followers: 5000})
	if both.Score != 100 {
		t.Errorf("both conditions = %.0f, want 100", both.Score)
	}

	one := e.Score(context.Background(), def, SocialProof{PageURL: "https://fb.example.com/shop", Followers: 10})
	if one.Score != 50 {
		t.Errorf("one condition = %.0f, want 50", one.Score)
	}

	none := e.Score(context.Background(), def, SocialProof{})
	if none.Score != 0 {
		t.Errorf("no conditions = %.0f, want 0", none.Score)
	}
}

func TestScoreCustomImages(t *testing.T) {
	e := NewEngine(rules.Default(), &CustomScorers{
		Classifier: fakeClassifier{traits: ImageTraits{WhiteBg: true, Lifestyle: true}},
	})
	def, _ := rules.Default().Lookup("BR-05")

	pair := ImagePair{Primary: []byte{1}, Secondary: []byte{2}}
	if got := e.Score(context.Background(), def, pair).Score; got != 100 {
		t.Errorf("both images pass = %.0f, want 100", got)
	}

	// No classifier wired: fail-closed.
	bare := NewEngine(rules.Default(), nil)
	if got := bare.Score(context.Background(), def, pair).Score; got != 0 {
		t.Errorf("no classifier = %.0f, want 0", got)
	}
}

func TestScoreCustomText(t *testing.T) {
	e := NewEngine(rules.Default(), nil)
	def, _ := rules.Default().Lookup("BR-04")

	if got := e.Score(context.Background(), def, "our story").Score; got != 100 {
		t.Errorf("non-empty text = %.0f, want 100", got)
	}
	if got := e.Score(context.Background(), def, "   ").Score; got != 0 {
		t.Errorf("whitespace text = %.0f, want 0", got)
	}
}
