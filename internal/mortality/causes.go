package mortality

import (
	"fmt"
	"strings"
)

// CauseSeparator joins the classification list and the cause code in a
// composite cause code, e.g. "104::C34".
const CauseSeparator = "::"

// Cause identifies a cause of death within a classification list.
type Cause struct {
	List string `json:"list"`
	Code string `json:"code"`
}

// Composite renders the cause as "<list>::<code>".
func (c Cause) Composite() string {
	return c.List + CauseSeparator + c.Code
}

func (c Cause) less(o Cause) bool {
	if c.List != o.List {
		return c.List < o.List
	}
	return c.Code < o.Code
}

// CauseSelector is the ordered, de-duplicated set of causes of a request.
type CauseSelector []Cause

// ParseCause splits a composite code. ok is false unless the code splits into
// exactly two parts that are non-empty after trimming.
func ParseCause(composite string) (Cause, bool) {
	parts := strings.Split(composite, CauseSeparator)
	if len(parts) != 2 {
		return Cause{}, false
	}
	list := strings.TrimSpace(parts[0])
	code := strings.TrimSpace(parts[1])
	if list == "" || code == "" {
		return Cause{}, false
	}
	return Cause{List: list, Code: code}, true
}

// ParseCauses builds a selector from composite codes. Malformed codes are
// dropped; if nothing valid remains the result is ErrNoCausesSelected.
func ParseCauses(composites []string) (CauseSelector, error) {
	seen := make(map[Cause]bool, len(composites))
	sel := make(CauseSelector, 0, len(composites))
	for _, raw := range composites {
		c, ok := ParseCause(raw)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		sel = append(sel, c)
	}
	if len(sel) == 0 {
		return nil, fmt.Errorf("%w: %d code(s) given, none of the form list::cause", ErrNoCausesSelected, len(composites))
	}
	return sel, nil
}

// Contains reports whether the selector includes (list, code), comparing
// trimmed values.
func (s CauseSelector) Contains(list, code string) bool {
	c := Cause{List: strings.TrimSpace(list), Code: strings.TrimSpace(code)}
	for _, sc := range s {
		if sc == c {
			return true
		}
	}
	return false
}
