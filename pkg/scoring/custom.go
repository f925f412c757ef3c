package scoring

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/smros/smros/pkg/rules"
)

// ReachabilityProbe checks whether a URL answers. Implementations must
// treat timeouts as "not reachable" rather than returning an error.
type ReachabilityProbe interface {
	Reachable(ctx context.Context, rawURL string) bool
}

// ImageTraits is the outcome of classifying a product image.
type ImageTraits struct {
	WhiteBg   bool `json:"white_bg"`
	Lifestyle bool `json:"lifestyle"`
}

// ImageClassifier inspects image bytes for the dual-image heuristic.
type ImageClassifier interface {
	Classify(ctx context.Context, data []byte) (ImageTraits, error)
}

// ImagePair is the raw input for the dual-image criterion.
type ImagePair struct {
	Primary   []byte
	Secondary []byte
}

// SocialProof is the raw input for the social-proof criterion.
type SocialProof struct {
	PageURL   string  `json:"page_url"`
	Followers float64 `json:"followers"`
}

const defaultProbeTimeout = 4 * time.Second

// CustomScorers holds the injected capabilities behind the CUSTOM rule
// methods. The aggregation contract is fixed here: the score is 0, 50 or
// 100 from the count of passed sub-conditions; the capabilities only
// answer the individual sub-conditions.
type CustomScorers struct {
	Probe        ReachabilityProbe
	Classifier   ImageClassifier
	ProbeTimeout time.Duration // per-probe bound; 0 means 4s
	MinFollowers float64       // social-proof follower floor; 0 means 1000
}

func (c *CustomScorers) timeout() time.Duration {
	if c == nil || c.ProbeTimeout <= 0 {
		return defaultProbeTimeout
	}
	return c.ProbeTimeout
}

func (c *CustomScorers) minFollowers() float64 {
	if c == nil || c.MinFollowers <= 0 {
		return 1000
	}
	return c.MinFollowers
}

// scoreCustom dispatches a CUSTOM rule to its scorer. Every path is
// fail-closed: missing capability, wrong input type or probe failure all
// count as an unmet condition, never an error.
func (e *Engine) scoreCustom(ctx context.Context, def rules.Definition, raw any) (float64, map[string]any) {
	switch def.Direction {
	case rules.CustomURL:
		return e.custom.scoreURL(ctx, raw)
	case rules.CustomSocial:
		return e.custom.scoreSocial(ctx, raw)
	case rules.CustomText:
		return scoreText(raw)
	case rules.CustomImage:
		return e.custom.scoreImages(ctx, raw)
	}
	return 0, map[string]any{"reason": "unknown custom method"}
}

// conditionScore maps sub-condition outcomes to the 0/50/100 band.
func conditionScore(passed ...bool) float64 {
	n := 0
	for _, p := range passed {
		if p {
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(n) * 100 / float64(len(passed))
}

// scoreURL: condition 1 is a well-formed absolute http(s) URL, condition 2
// is reachability within the probe timeout.
func (c *CustomScorers) scoreURL(ctx context.Context, raw any) (float64, map[string]any) {
	s, _ := raw.(string)
	valid := validHTTPURL(s)

	reachable := false
	if valid && c != nil && c.Probe != nil {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout())
		reachable = c.Probe.Reachable(probeCtx, s)
		cancel()
	}

	return conditionScore(valid, reachable), map[string]any{
		"url_valid": valid,
		"reachable": reachable,
	}
}

// scoreSocial: condition 1 is a linked, well-formed page URL, condition 2
// is the follower floor.
func (c *CustomScorers) scoreSocial(_ context.Context, raw any) (float64, map[string]any) {
	sp, ok := asSocialProof(raw)
	if !ok {
		return 0, map[string]any{"reason": "missing social input"}
	}
	linked := validHTTPURL(sp.PageURL)
	enough := sp.Followers >= c.minFollowers()

	return conditionScore(linked, enough), map[string]any{
		"page_linked": linked,
		"followers":   sp.Followers,
	}
}

// scoreText: single condition, non-empty after trimming.
func scoreText(raw any) (float64, map[string]any) {
	s, _ := raw.(string)
	present := strings.TrimSpace(s) != ""
	return conditionScore(present), map[string]any{"present": present}
}

// scoreImages: condition 1 is a white-background primary image, condition
// 2 is a lifestyle secondary image. Classifier errors count as unmet.
func (c *CustomScorers) scoreImages(ctx context.Context, raw any) (float64, map[string]any) {
	pair, ok := raw.(ImagePair)
	if !ok {
		return 0, map[string]any{"reason": "missing image input"}
	}

	whiteBg := false
	lifestyle := false
	if c != nil && c.Classifier != nil {
		if len(pair.Primary) > 0 {
			if traits, err := c.Classifier.Classify(ctx, pair.Primary); err == nil {
				whiteBg = traits.WhiteBg
			}
		}
		if len(pair.Secondary) > 0 {
			if traits, err := c.Classifier.Classify(ctx, pair.Secondary); err == nil {
				lifestyle = traits.Lifestyle
			}
		}
	}

	return conditionScore(whiteBg, lifestyle), map[string]any{
		"white_bg":  whiteBg,
		"lifestyle": lifestyle,
	}
}

func validHTTPURL(s string) bool {
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func asSocialProof(raw any) (SocialProof, bool) {
	switch v := raw.(type) {
	case SocialProof:
		return v, true
	case map[string]any:
		sp := SocialProof{}
		if s, ok := v["page_url"].(string); ok {
			sp.PageURL = s
		}
		if f, ok := toFloat(v["followers"]); ok {
			sp.Followers = f
		}
		return sp, sp.PageURL != "" || sp.Followers > 0
	default:
		return SocialProof{}, false
	}
}
