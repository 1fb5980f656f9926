package report

import (
	"sort"
	"time"

	"github.com/wonny/supersignal/internal/contracts"
)

// Assemble orders flags by severity (highest first, catalogue rank breaking ties),
// computes the overall severity and packages the report.
// The input slice is not modified.
func Assemble(ticker string, rec *contracts.CanonicalRecord, flags []contracts.RiskFlag, now time.Time) *contracts.RiskReport {
	ordered := make([]contracts.RiskFlag, len(flags))
	copy(ordered, flags)

	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Severity != ordered[j].Severity {
			return ordered[i].Severity > ordered[j].Severity
		}
		return ordered[i].Rank < ordered[j].Rank
	})

	return &contracts.RiskReport{
		Ticker:      ticker,
		Record:      rec,
		Flags:       ordered,
		Overall:     Overall(ordered),
		GeneratedAt: now,
	}
}

// Overall returns the highest severity present, or none
func Overall(flags []contracts.RiskFlag) contracts.Severity {
	overall := contracts.SeverityNone
	for _, f := range flags {
		if f.Severity > overall {
			overall = f.Severity
		}
	}
	return overall
}
