package risk

import (
	"fmt"
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

// Rule is one independent predicate over a canonical record.
// check returns the message and true when the rule fires. A rule whose
// input field is unknown must not fire.
type Rule struct {
	Kind     contracts.FlagKind
	Severity contracts.Severity
	check    func(rec *contracts.CanonicalRecord, th *compiled) (string, bool)
}

// DefaultRules returns the rule catalogue. Position in the slice is the
// tie-break between flags of equal severity.
func DefaultRules() []Rule {
	return []Rule{
		{Kind: contracts.FlagNonUSIncorporation, Severity: contracts.SeverityWarning, check: checkForeignIncorporation},
		{Kind: contracts.FlagHighRiskCountry, Severity: contracts.SeverityCritical, check: checkRiskyCountry},
		{Kind: contracts.FlagTaxHavenHeadquarters, Severity: contracts.SeverityWarning, check: checkTaxHaven},
		{Kind: contracts.FlagADR, Severity: contracts.SeverityInfo, check: checkADR},
		{Kind: contracts.FlagLowFloat, Severity: contracts.SeverityWarning, check: checkLowFloat},
	}
}

func checkForeignIncorporation(rec *contracts.CanonicalRecord, th *compiled) (string, bool) {
	if rec.Country == nil {
		return "", false
	}
	code, ok := NormalizeCountry(*rec.Country)
	if !ok || code == th.home {
		return "", false
	}
	return fmt.Sprintf("Country of incorporation is outside %s: %s", th.home, *rec.Country), true
}

func checkRiskyCountry(rec *contracts.CanonicalRecord, th *compiled) (string, bool) {
	if rec.Country == nil {
		return "", false
	}
	code, ok := NormalizeCountry(*rec.Country)
	if !ok || !th.risky[code] {
		return "", false
	}
	return fmt.Sprintf("Country of origin is in red-flag list: %s (%s)", *rec.Country, code), true
}

func checkTaxHaven(rec *contracts.CanonicalRecord, th *compiled) (string, bool) {
	for _, loc := range []*string{rec.HQAddress, rec.HQCountry} {
		if loc == nil {
			continue
		}
		lower := strings.ToLower(*loc)
		for _, kw := range th.keywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("Headquarters location includes red-flag keyword %q: %s", kw, *loc), true
			}
		}
	}
	return "", false
}

func checkADR(rec *contracts.CanonicalRecord, _ *compiled) (string, bool) {
	if rec.IsADR == nil || !*rec.IsADR {
		return "", false
	}
	return "Security trades as an American Depositary Receipt", true
}

func checkLowFloat(rec *contracts.CanonicalRecord, th *compiled) (string, bool) {
	if rec.FloatShares == nil || *rec.FloatShares >= th.minFloat {
		return "", false
	}
	return fmt.Sprintf("Float below %.1fM shares: %.2fM", float64(th.minFloat)/1e6, float64(*rec.FloatShares)/1e6), true
}
