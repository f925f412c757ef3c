package gate

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/smros/smros/pkg/rules"
)

// Resolver answers whether a domain has at least one A record. Timeouts
// and lookup failures both mean "does not resolve".
type Resolver interface {
	ResolvesA(ctx context.Context, domain string) bool
}

// HardInput is the raw material for a Hard-KO evaluation.
type HardInput struct {
	ShopInfo map[string]string
	Metrics  map[string]any
	Files    map[string]FileMeta
}

// CheckResult is the outcome of one Hard-KO check.
type CheckResult struct {
	ID     string `json:"id"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason,omitempty"`
}

// EvaluateHard runs all 13 Hard-KO checks (6 shop-info fields plus 7
// eligibility checks). The transition is all-or-nothing: the evidence
// snapshot is non-nil only when every check passes. The evaluation is
// simply re-run on every input change; there is no partial credit.
func EvaluateHard(ctx context.Context, in HardInput, checks rules.HardChecks, resolver Resolver, now time.Time) ([]CheckResult, *HardEvidence) {
	var results []CheckResult
	allPassed := true

	record := func(id string, passed bool, reason string) {
		if !passed {
			allPassed = false
		}
		results = append(results, CheckResult{ID: id, Passed: passed, Reason: reason})
	}

	for _, field := range checks.ShopInfoFields {
		ok := strings.TrimSpace(in.ShopInfo[field]) != ""
		reason := ""
		if !ok {
			reason = fmt.Sprintf("shop info field %q is empty", field)
		}
		record("HK-INFO-"+field, ok, reason)
	}

	for _, fc := range checks.FileChecks {
		meta, present := in.Files[fc.Field]
		ok := present && isPDF(meta) && filenameHasKeyword(meta.Filename, fc.Keywords)
		reason := ""
		if !ok {
			reason = fmt.Sprintf("%s: missing, not a PDF, or filename lacks a recognized keyword", fc.Name)
		}
		record(fc.ID, ok, reason)
	}

	months, monthsOK := metricFloat(in.Metrics, "operating_months")
	okMonths := monthsOK && months > checks.MinOperatingMonths
	reason := ""
	if !okMonths {
		reason = fmt.Sprintf("operating months must exceed %.0f", checks.MinOperatingMonths)
	}
	record("HK-MONTHS", okMonths, reason)

	enumVal, _ := in.Metrics[checks.EnumField].(string)
	okEnum := enumVal == checks.EnumYes
	reason = ""
	if !okEnum {
		reason = fmt.Sprintf("%s must be %q", checks.EnumField, checks.EnumYes)
	}
	record("HK-ENUM", okEnum, reason)

	boolVal, _ := in.Metrics[checks.BoolField].(bool)
	reason = ""
	if !boolVal {
		reason = fmt.Sprintf("%s must be confirmed", checks.BoolField)
	}
	record("HK-BOOL", boolVal, reason)

	okDomain := evalDomain(ctx, in, checks, resolver)
	reason = ""
	if !okDomain {
		reason = "brand domain must be well-formed, resolve, and the shop must satisfy the operating-months floor"
	}
	record("HK-DOMAIN", okDomain, reason)

	if !allPassed {
		return results, nil
	}
	return results, &HardEvidence{
		VerifiedAt: now.UTC(),
		ShopInfo:   cloneStrings(in.ShopInfo),
		Metrics:    cloneAny(in.Metrics),
		FilesMeta:  cloneFiles(in.Files),
	}
}

// evalDomain is the composed check: format regex AND A-record resolution
// AND the operating-months floor.
func evalDomain(ctx context.Context, in HardInput, checks rules.HardChecks, resolver Resolver) bool {
	domain, _ := in.Metrics[checks.DomainField].(string)
	domain = strings.ToLower(strings.TrimSpace(domain))
	re, err := regexp.Compile(checks.DomainPattern)
	if err != nil || !re.MatchString(domain) {
		return false
	}
	if resolver == nil || !resolver.ResolvesA(ctx, domain) {
		return false
	}
	months, ok := metricFloat(in.Metrics, "operating_months")
	return ok && months > checks.MinOperatingMonths
}

func isPDF(meta FileMeta) bool {
	if meta.MimeType == "application/pdf" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(meta.Filename), ".pdf")
}

// filenameHasKeyword matches case- and diacritic-insensitively, so
// "Giấy Phép Kinh Doanh.pdf" matches the keyword "giay phep".
func filenameHasKeyword(filename string, keywords []string) bool {
	folded := foldDiacritics(strings.ToLower(filename))
	for _, kw := range keywords {
		if strings.Contains(folded, foldDiacritics(strings.ToLower(kw))) {
			return true
		}
	}
	return false
}

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldDiacritics(s string) string {
	out, _, err := transform.String(diacriticStripper, s)
	if err != nil {
		return s
	}
	// NFD does not decompose đ/Đ; fold it by hand.
	out = strings.ReplaceAll(out, "đ", "d")
	return strings.ReplaceAll(out, "Đ", "D")
}

func metricFloat(metrics map[string]any, key string) (float64, bool) {
	switch v := metrics[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneAny(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneFiles(m map[string]FileMeta) map[string]FileMeta {
	out := make(map[string]FileMeta, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
