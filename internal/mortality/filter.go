package mortality

import "fmt"

// FilterContext is the immutable (scope, causes) pair every aggregation reads
// with. TimeSeries, Breakdown and Summary built from the same context apply
// identical predicates.
type FilterContext struct {
	label  string
	scope  ScopeFilter
	causes CauseSelector
}

// NewFilterContext validates and freezes a filter. label is the scope as the
// user typed it and is only used in messages.
func NewFilterContext(label string, scope ScopeFilter, causes CauseSelector) (FilterContext, error) {
	if !scope.valid() {
		return FilterContext{}, fmt.Errorf("%w: %q", ErrScopeNotFound, label)
	}
	if len(causes) == 0 {
		return FilterContext{}, ErrNoCausesSelected
	}
	frozen := make(CauseSelector, len(causes))
	copy(frozen, causes)
	return FilterContext{label: label, scope: scope, causes: frozen}, nil
}

// Label returns the user-supplied scope string.
func (f FilterContext) Label() string {
	return f.label
}

// Scope returns the geographic filter.
func (f FilterContext) Scope() ScopeFilter {
	return f.scope
}

// Causes returns a copy of the cause selector.
func (f FilterContext) Causes() CauseSelector {
	out := make(CauseSelector, len(f.causes))
	copy(out, f.causes)
	return out
}
