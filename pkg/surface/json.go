package surface

import (
	"encoding/json"
	"io"

	"github.com/smros/smros/internal/assessment"
)

// JSONRenderer marshals the assessment to indented JSON.
type JSONRenderer struct{}

func (r *JSONRenderer) Render(w io.Writer, result *assessment.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
