package mortality

import (
	"strings"

	"golang.org/x/text/cases"
)

// CountryName is one country directory row.
type CountryName struct {
	Code string
	Name string
}

// MatchCountry returns the code of the country whose trimmed, non-blank name
// contains name under Unicode case folding. When several match, the smallest
// (name, code) wins. Every CountryDirectory matches through it so all stores
// resolve a name the same way.
func MatchCountry(name string, countries []CountryName) (string, bool) {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(name))

	var best *CountryName
	for i := range countries {
		c := CountryName{Code: strings.TrimSpace(countries[i].Code), Name: strings.TrimSpace(countries[i].Name)}
		if c.Name == "" || !strings.Contains(fold.String(c.Name), needle) {
			continue
		}
		if best == nil || c.Name < best.Name || (c.Name == best.Name && c.Code < best.Code) {
			best = &c
		}
	}
	if best == nil {
		return "", false
	}
	return best.Code, true
}
