package surface_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/pkg/aggregate"
	"github.com/smros/smros/pkg/gate"
	"github.com/smros/smros/pkg/scoring"
	"github.com/smros/smros/pkg/surface"
)

func sampleResult() *assessment.Result {
	return &assessment.Result{
		AssessmentID: "a-1",
		ShopID:       "shop-1",
		TotalScore:   72.50,
		Tier:         scoring.TierNear,
		Criteria: []scoring.CriterionResult{
			{RuleID: "OP-01", Group: "Operation", Score: 100, WeightFinal: 0.07},
			{RuleID: "BR-01", Group: "Brand", Score: 0, WeightFinal: 0.08},
			{RuleID: "SC-01", Group: "Scale", Score: 50, WeightFinal: 0.08},
		},
		Breakdown: []aggregate.GroupBreakdown{
			{Group: "Operation", Score: 100, Contribution: 7.0},
			{Group: "Brand", Score: 0, Contribution: 0},
			{Group: "Scale", Score: 50, Contribution: 4.0},
		},
		Fixlist: []aggregate.ImpactGapEntry{
			{RuleID: "BR-01", Group: "Brand", Score: 0, WeightFinal: 0.08, Impact: 8.0},
			{RuleID: "SC-01", Group: "Scale", Score: 50, WeightFinal: 0.08, Impact: 4.0},
		},
		Gate: gate.Snapshot{Status: gate.StatusSoftPending},
	}
}

func TestTerminalRenderer_BasicOutput(t *testing.T) {
	// Set NO_COLOR to avoid ANSI codes in test comparison
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	output := buf.String()

	if !strings.Contains(output, "Near Mall-Ready") {
		t.Error("expected tier in output")
	}
	if !strings.Contains(output, "Score 72.50") {
		t.Error("expected Score 72.50 in output")
	}
	if !strings.Contains(output, "Gate: G1") {
		t.Error("expected gate status line")
	}
	if !strings.Contains(output, "Breakdown:") {
		t.Error("expected Breakdown section")
	}
	if !strings.Contains(output, "Findings:") {
		t.Error("expected Findings section")
	}
	if !strings.Contains(output, "BR-01") {
		t.Error("expected failing criterion BR-01")
	}
	if !strings.Contains(output, "Top fixes:") {
		t.Error("expected Top fixes section")
	}
	if !strings.Contains(output, "impact 8.00") {
		t.Error("expected impact value in fix list")
	}

	// Worst score renders first in findings.
	if strings.Index(output, "BR-01") > strings.Index(output, "SC-01") {
		t.Error("findings should order worst score first")
	}
}

func TestTerminalRenderer_NoFindings(t *testing.T) {
	os.Setenv("NO_COLOR", "1")
	defer os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	result := &assessment.Result{
		TotalScore: 100,
		Tier:       scoring.TierMallReady,
		Criteria: []scoring.CriterionResult{
			{RuleID: "OP-01", Score: 100},
		},
		Gate: gate.Snapshot{Status: gate.StatusPass},
	}

	if err := r.Render(&buf, result); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "No findings") {
		t.Error("expected 'No findings' message")
	}
}

func TestTerminalRenderer_ColorRespected(t *testing.T) {
	// Without NO_COLOR, output should have ANSI codes
	os.Unsetenv("NO_COLOR")

	r := &surface.TerminalRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(buf.String(), "\033[") {
		t.Error("expected ANSI escape codes when NO_COLOR is not set")
	}
}

func TestMarkdownRenderer(t *testing.T) {
	r := &surface.MarkdownRenderer{}
	var buf bytes.Buffer

	if err := r.Render(&buf, sampleResult()); err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "## Mall Readiness: Near Mall-Ready — Score 72.50") {
		t.Error("expected markdown header")
	}
	if !strings.Contains(output, "| Group | Score | Contribution |") {
		t.Error("expected breakdown table")
	}
	if !strings.Contains(output, "**BR-01** — impact 8.00") {
		t.Error("expected fix list entry")
	}
	if !strings.Contains(output, "conclusion: neutral") {
		t.Error("expected tier conclusion")
	}
}

func TestForFormat(t *testing.T) {
	if _, ok := surface.ForFormat("json").(*surface.JSONRenderer); !ok {
		t.Error(`ForFormat("json") should be the JSON renderer`)
	}
	if _, ok := surface.ForFormat("markdown").(*surface.MarkdownRenderer); !ok {
		t.Error(`ForFormat("markdown") should be the markdown renderer`)
	}
	if _, ok := surface.ForFormat("").(*surface.TerminalRenderer); !ok {
		t.Error("unknown formats should fall back to terminal")
	}
}
