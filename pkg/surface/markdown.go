package surface

import (
	"fmt"
	"io"
	"strings"

	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/pkg/gate"
	"github.com/smros/smros/pkg/scoring"
)

// MarkdownRenderer produces a shareable Markdown readiness report.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, result *assessment.Result) error {
	_, err := io.WriteString(w, buildMarkdownReport(result))
	return err
}

func buildMarkdownReport(result *assessment.Result) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("## Mall Readiness: %s — Score %.2f\n\n", result.Tier, result.TotalScore))
	sb.WriteString(fmt.Sprintf("%s Gate status: **%s** · conclusion: %s\n\n",
		gateIcon(result.Gate.Status), result.Gate.Status, TierConclusion(result.Tier)))

	// Group breakdown
	sb.WriteString("### Breakdown\n\n")
	sb.WriteString("| Group | Score | Contribution |\n|-------|-------|-------------|\n")
	for _, gb := range result.Breakdown {
		sb.WriteString(fmt.Sprintf("| %s | %.2f | %.2f |\n", gb.Group, gb.Score, gb.Contribution))
	}
	sb.WriteString("\n")

	// Fix list (already capped by the pipeline)
	if len(result.Fixlist) > 0 {
		sb.WriteString("### Top fixes\n\n")
		for _, fx := range result.Fixlist {
			sb.WriteString(fmt.Sprintf("- %s **%s** — impact %.2f (score %.0f, weight %.3f)\n",
				tierIcon(fx.Score), fx.RuleID, fx.Impact, fx.Score, fx.WeightFinal))
		}
		sb.WriteString("\n")
	}

	// Failing criteria (max 5)
	count := 0
	total := 0
	for _, c := range result.Criteria {
		if c.Score < 100 {
			total++
		}
	}
	if total > 0 {
		sb.WriteString("### Findings\n\n")
		for _, c := range result.Criteria {
			if c.Score == 100 {
				continue
			}
			if count >= 5 {
				sb.WriteString(fmt.Sprintf("_... and %d more findings_\n", total-5))
				break
			}
			sb.WriteString(fmt.Sprintf("- %s **%s** scored %.0f\n", tierIcon(c.Score), c.RuleID, c.Score))
			count++
		}
	}

	return sb.String()
}

func gateIcon(status gate.Status) string {
	switch status {
	case gate.StatusPass:
		return ":white_check_mark:"
	case gate.StatusSoftPending:
		return ":hourglass:"
	case gate.StatusSoftOverdue:
		return ":alarm_clock:"
	default:
		return ":no_entry:"
	}
}

func tierIcon(score float64) string {
	switch {
	case score >= 100:
		return ":green_circle:"
	case score >= 50:
		return ":yellow_circle:"
	default:
		return ":red_circle:"
	}
}

// TierConclusion maps a readiness tier to a coarse pass/warn/fail word
// for downstream surfaces.
func TierConclusion(tier scoring.Tier) string {
	switch tier {
	case scoring.TierMallReady:
		return "success"
	case scoring.TierNear, scoring.TierPartially:
		return "neutral"
	default:
		return "failure"
	}
}
