package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

// Formatter writes a batch result. Flag order and overall severity come
// from the reports as is; formatters never re-derive them.
type Formatter interface {
	Format(w io.Writer, res *contracts.BatchResult) error
}

// Format names
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Names lists the supported formats
func Names() []string {
	return []string{FormatText, FormatJSON, FormatCSV}
}

// New returns the formatter registered under name
func New(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatText, "":
		return Text{}, nil
	case FormatJSON:
		return JSON{Indent: true}, nil
	case FormatCSV:
		return CSV{}, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
}

// humanCount renders share counts and volumes: 1.20M, 15.20B, 950.00K
func humanCount(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e12:
		return fmt.Sprintf("%.2fT", v/1e12)
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.2fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

func strOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

func intStr(p *int64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func floatStr(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%g", *p)
}

func boolStr(p *bool) string {
	if p == nil {
		return ""
	}
	if *p {
		return "true"
	}
	return "false"
}
