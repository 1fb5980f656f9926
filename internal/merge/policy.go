package merge

import (
	"fmt"
	"sort"

	"github.com/wonny/supersignal/internal/contracts"
)

// Policy decides which source wins for each canonical field.
// Sources missing from an order are tried after it, in lexical order.
type Policy struct {
	Default []contracts.Source
	Fields  map[contracts.Field][]contracts.Source
}

// DefaultPolicy prefers Yahoo everywhere except the ADR flag,
// which FinViz reports explicitly while Yahoo only infers it.
func DefaultPolicy() Policy {
	return Policy{
		Default: []contracts.Source{contracts.SourceYahoo, contracts.SourceFinviz},
		Fields: map[contracts.Field][]contracts.Source{
			contracts.FieldIsADR: {contracts.SourceFinviz, contracts.SourceYahoo},
		},
	}
}

// PolicyFromConfig builds a Policy from plain names, as read from YAML
func PolicyFromConfig(def []string, fields map[string][]string) (Policy, error) {
	p := Policy{Fields: make(map[contracts.Field][]contracts.Source, len(fields))}
	for _, s := range def {
		p.Default = append(p.Default, contracts.Source(s))
	}

	known := make(map[contracts.Field]bool)
	for _, f := range AllFields() {
		known[f] = true
	}
	for name, order := range fields {
		f := contracts.Field(name)
		if !known[f] {
			return Policy{}, fmt.Errorf("source_priority: unknown field %q", name)
		}
		for _, s := range order {
			p.Fields[f] = append(p.Fields[f], contracts.Source(s))
		}
	}

	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate rejects blank or repeated source names
func (p Policy) Validate() error {
	if err := checkOrder("default", p.Default); err != nil {
		return err
	}
	for f, order := range p.Fields {
		if err := checkOrder(string(f), order); err != nil {
			return err
		}
	}
	return nil
}

func checkOrder(name string, order []contracts.Source) error {
	seen := make(map[contracts.Source]bool, len(order))
	for _, s := range order {
		if s == "" {
			return fmt.Errorf("source_priority.%s: empty source name", name)
		}
		if seen[s] {
			return fmt.Errorf("source_priority.%s: source %q listed twice", name, s)
		}
		seen[s] = true
	}
	return nil
}

// Order returns the priority order for f restricted to the present sources.
// Every present source appears exactly once.
func (p Policy) Order(f contracts.Field, present map[contracts.Source]bool) []contracts.Source {
	named := p.Default
	if override, ok := p.Fields[f]; ok {
		named = override
	}

	out := make([]contracts.Source, 0, len(present))
	used := make(map[contracts.Source]bool, len(present))
	for _, s := range named {
		if present[s] && !used[s] {
			out = append(out, s)
			used[s] = true
		}
	}

	var rest []contracts.Source
	for s := range present {
		if !used[s] {
			rest = append(rest, s)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })

	return append(out, rest...)
}
