package mortality

import "errors"

// Request-level failures. None of them is retryable; callers surface the
// Kind and message verbatim.
var (
	ErrScopeNotFound    = errors.New("scope not found")
	ErrNoCausesSelected = errors.New("no valid causes selected")
	ErrNoDataForScope   = errors.New("no mortality data for scope")
	ErrInsufficientData = errors.New("insufficient data for summary")
)

// Kind classifies an error for API responses and metrics labels.
type Kind string

const (
	KindScopeNotFound    Kind = "scope_not_found"
	KindNoCausesSelected Kind = "no_causes_selected"
	KindNoDataForScope   Kind = "no_data_for_scope"
	KindInsufficientData Kind = "insufficient_data"
	KindInternal         Kind = "internal"
)

// KindOf returns the Kind of err, or KindInternal for anything that is not
// one of the request-level sentinels. A nil error has no kind.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrScopeNotFound):
		return KindScopeNotFound
	case errors.Is(err, ErrNoCausesSelected):
		return KindNoCausesSelected
	case errors.Is(err, ErrNoDataForScope):
		return KindNoDataForScope
	case errors.Is(err, ErrInsufficientData):
		return KindInsufficientData
	default:
		return KindInternal
	}
}
