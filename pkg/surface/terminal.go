package surface

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/smros/smros/internal/assessment"
	"github.com/smros/smros/pkg/gate"
	"github.com/smros/smros/pkg/scoring"
)

// TerminalRenderer renders an assessment as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func tierColor(tier scoring.Tier) string {
	if noColor() {
		return ""
	}
	switch tier {
	case scoring.TierMallReady:
		return colorGreen
	case scoring.TierNear, scoring.TierPartially:
		return colorYellow
	default:
		return colorRed
	}
}

func gateColor(status gate.Status) string {
	if noColor() {
		return ""
	}
	switch status {
	case gate.StatusPass:
		return colorGreen
	case gate.StatusSoftPending:
		return colorYellow
	default:
		return colorRed
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, result *assessment.Result) error {
	// Header
	fmt.Fprintf(w, "%s\n\n",
		bold(fmt.Sprintf("Mall Readiness: %s — Score %.2f",
			colored(string(result.Tier), tierColor(result.Tier)), result.TotalScore)))

	// Gate
	fmt.Fprintf(w, "Gate: %s\n\n",
		colored(string(result.Gate.Status), gateColor(result.Gate.Status)))

	// Group breakdown
	if len(result.Breakdown) > 0 {
		fmt.Fprintln(w, "Breakdown:")
		for _, gb := range result.Breakdown {
			fmt.Fprintf(w, "  %-12s %6.2f  %s\n",
				gb.Group, gb.Score, dim(fmt.Sprintf("contributes %.2f", gb.Contribution)))
		}
		fmt.Fprintln(w)
	}

	// Failing criteria, worst first
	var failing []scoring.CriterionResult
	for _, c := range result.Criteria {
		if c.Score < 100 {
			failing = append(failing, c)
		}
	}
	sort.SliceStable(failing, func(i, j int) bool {
		return failing[i].Score < failing[j].Score
	})
	if len(failing) > 0 {
		fmt.Fprintln(w, "Findings:")
		for _, c := range failing {
			fmt.Fprintf(w, "  (%.0f) %s\n", c.Score, bold(c.RuleID))
		}
		fmt.Fprintln(w)
	} else {
		fmt.Fprintln(w, "No findings.")
		fmt.Fprintln(w)
	}

	// Prioritized fix list
	if len(result.Fixlist) > 0 {
		fmt.Fprintln(w, "Top fixes:")
		for _, fx := range result.Fixlist {
			fmt.Fprintf(w, "  %s %s — %s\n",
				colored("●", colorRed), bold(fx.RuleID),
				fmt.Sprintf("impact %.2f", fx.Impact))
		}
		fmt.Fprintln(w)
	}

	// Overdue soft items get a reminder block of their own.
	if result.Gate.Status == gate.StatusSoftOverdue && result.Gate.Soft != nil {
		fmt.Fprintln(w, "Overdue gate items:")
		for id, item := range result.Gate.Soft.Soft.Items {
			if item.Passed {
				continue
			}
			line := id
			if item.Note != "" {
				line += " — " + item.Note
			}
			for _, l := range wrapText(line, 70) {
				fmt.Fprintf(w, "  %s\n", dim(l))
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
