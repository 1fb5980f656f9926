package merge

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wonny/supersignal/internal/contracts"
)

var (
	// ErrNoData means no provider returned anything for the ticker
	ErrNoData = errors.New("no data available")

	// ErrDuplicateSource means two field sets claimed the same source
	ErrDuplicateSource = errors.New("duplicate source")
)

// MergeError is returned when a record cannot be built at all.
// Causes holds every provider failure seen for the ticker.
type MergeError struct {
	Ticker string
	Causes []error
}

func (e *MergeError) Error() string {
	if len(e.Causes) == 0 {
		return fmt.Sprintf("merge %s: %v", e.Ticker, ErrNoData)
	}
	msgs := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		msgs = append(msgs, c.Error())
	}
	return fmt.Sprintf("merge %s: %v (%s)", e.Ticker, ErrNoData, strings.Join(msgs, "; "))
}

// Unwrap exposes ErrNoData and the provider failures to errors.Is / errors.As
func (e *MergeError) Unwrap() []error {
	return append([]error{ErrNoData}, e.Causes...)
}

// Merger reconciles provider field sets into one canonical record
type Merger struct {
	policy Policy
}

// New creates a Merger; the policy is validated once here
func New(policy Policy) (*Merger, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	return &Merger{policy: policy}, nil
}

// Policy returns the active policy
func (m *Merger) Policy() Policy {
	return m.policy
}

// Merge builds the canonical record for ticker.
// failures are the errors of sources that produced nothing; they are wrapped
// into the MergeError when sets is empty. The result does not depend on the
// order of sets.
func (m *Merger) Merge(ticker string, sets []*contracts.RawFieldSet, failures ...error) (*contracts.CanonicalRecord, error) {
	bySource := make(map[contracts.Source]*contracts.SecurityFields, len(sets))
	present := make(map[contracts.Source]bool, len(sets))
	for _, set := range sets {
		if set == nil {
			continue
		}
		if present[set.Source] {
			return nil, fmt.Errorf("merge %s: %w %q", ticker, ErrDuplicateSource, set.Source)
		}
		present[set.Source] = true
		bySource[set.Source] = &set.SecurityFields
	}

	if len(present) == 0 {
		return nil, &MergeError{Ticker: ticker, Causes: failures}
	}

	rec := &contracts.CanonicalRecord{
		Ticker:     ticker,
		Provenance: make(map[contracts.Field]contracts.Source),
	}

	for _, b := range bindings {
		for _, src := range m.policy.Order(b.field, present) {
			if b.take(&rec.SecurityFields, bySource[src]) {
				rec.Provenance[b.field] = src
				break
			}
		}
	}

	return rec, nil
}
