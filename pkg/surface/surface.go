// Package surface defines output rendering for completed assessments.
// Implementations handle different output targets: terminal, Markdown
// report, JSON.
package surface

import (
	"io"

	"github.com/smros/smros/internal/assessment"
)

// Renderer produces formatted output from a completed assessment.
type Renderer interface {
	// Render writes the formatted assessment to the writer.
	Render(w io.Writer, result *assessment.Result) error
}

// ForFormat returns the renderer for a CLI format flag. Unknown formats
// fall back to the terminal renderer.
func ForFormat(format string) Renderer {
	switch format {
	case "json":
		return &JSONRenderer{}
	case "markdown":
		return &MarkdownRenderer{}
	default:
		return &TerminalRenderer{}
	}
}
