package risk

import (
	"github.com/wonny/supersignal/internal/contracts"
)

// Engine evaluates the rule catalogue against canonical records.
// Safe for concurrent use: all state is read-only after NewEngine.
// ⭐ SSOT: 리스크 판정은 이 엔진에서만
type Engine struct {
	thresholds Thresholds
	compiled   compiled
	rules      []Rule
}

// NewEngine validates the thresholds and builds an engine with the default catalogue
func NewEngine(th Thresholds) (*Engine, error) {
	return NewEngineWithRules(th, DefaultRules())
}

// NewEngineWithRules builds an engine over a custom catalogue
func NewEngineWithRules(th Thresholds, rules []Rule) (*Engine, error) {
	if err := th.Validate(); err != nil {
		return nil, err
	}
	th = th.clone()
	// copy so callers cannot mutate the catalogue afterwards
	cat := make([]Rule, len(rules))
	copy(cat, rules)

	return &Engine{
		thresholds: th,
		compiled:   compile(th),
		rules:      cat,
	}, nil
}

// Thresholds returns the thresholds the engine was built with
func (e *Engine) Thresholds() Thresholds {
	return e.thresholds.clone()
}

// Evaluate runs every rule and returns the fired flags in catalogue order.
// Rank is the 1-based catalogue position.
func (e *Engine) Evaluate(rec *contracts.CanonicalRecord) []contracts.RiskFlag {
	if rec == nil {
		return nil
	}

	var flags []contracts.RiskFlag
	for i, rule := range e.rules {
		msg, fired := rule.check(rec, &e.compiled)
		if !fired {
			continue
		}
		flags = append(flags, contracts.RiskFlag{
			Kind:     rule.Kind,
			Severity: rule.Severity,
			Message:  msg,
			Rank:     i + 1,
		})
	}
	return flags
}
