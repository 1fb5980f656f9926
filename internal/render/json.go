package render

import (
	"encoding/json"
	"io"

	"github.com/wonny/supersignal/internal/contracts"
)

// JSON writes the whole batch result as one document
type JSON struct {
	Indent bool
}

// Format implements Formatter
func (j JSON) Format(w io.Writer, res *contracts.BatchResult) error {
	enc := json.NewEncoder(w)
	if j.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(res)
}
