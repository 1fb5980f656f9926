package contracts

import (
	"fmt"
	"strings"
	"time"
)

// Severity ranks findings: none < info < warning < critical
// ⭐ SSOT: 심각도 순서는 정수 값으로만 비교
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityWarning
	SeverityCritical
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a name back into a Severity
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none":
		return SeverityNone, nil
	case "info":
		return SeverityInfo, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityNone, fmt.Errorf("unknown severity %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *Severity) UnmarshalText(b []byte) error {
	v, err := ParseSeverity(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// FlagKind is the closed set of risk findings
type FlagKind string

const (
	FlagNonUSIncorporation   FlagKind = "non_us_incorporation"
	FlagHighRiskCountry      FlagKind = "high_risk_country"
	FlagTaxHavenHeadquarters FlagKind = "tax_haven_headquarters"
	FlagADR                  FlagKind = "adr"
	FlagLowFloat             FlagKind = "low_float"
)

// AllFlagKinds returns every kind in catalogue order
func AllFlagKinds() []FlagKind {
	return []FlagKind{
		FlagNonUSIncorporation,
		FlagHighRiskCountry,
		FlagTaxHavenHeadquarters,
		FlagADR,
		FlagLowFloat,
	}
}

// RiskFlag is one finding
type RiskFlag struct {
	Kind     FlagKind `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Rank     int      `json:"-"` // catalogue position, tie-break within a severity
}

// RiskReport is the per-ticker deliverable.
// Flags are ordered by severity desc then catalogue rank; renderers must not re-sort.
type RiskReport struct {
	Ticker      string           `json:"ticker"`
	Record      *CanonicalRecord `json:"record"`
	Flags       []RiskFlag       `json:"flags"`
	Overall     Severity         `json:"overall_severity"`
	GeneratedAt time.Time        `json:"generated_at"`
}

// HasFlag reports whether a finding of kind k is present
func (r *RiskReport) HasFlag(k FlagKind) bool {
	for _, f := range r.Flags {
		if f.Kind == k {
			return true
		}
	}
	return false
}
