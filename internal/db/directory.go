package db

import (
	"context"
	"fmt"
	"sort"

	"whomortality/internal/catalog"
	"whomortality/internal/mortality"
)

// FindCountryCode implements mortality.CountryDirectory. Names are matched
// in Go so that case folding does not depend on the database's LOWER.
func (d *DB) FindCountryCode(ctx context.Context, name string) (string, bool, error) {
	b := d.builder()
	b.Write("SELECT TRIM(code), TRIM(name) FROM countries WHERE TRIM(name) <> ''")

	r, err := d.query(ctx, b)
	if err != nil {
		return "", false, fmt.Errorf("failed to look up country: %w", err)
	}
	defer r.Close()

	var countries []mortality.CountryName
	for r.Next() {
		var c mortality.CountryName
		if err := r.Scan(&c.Code, &c.Name); err != nil {
			return "", false, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	if err := r.Err(); err != nil {
		return "", false, fmt.Errorf("failed to look up country: %w", err)
	}

	code, found := mortality.MatchCountry(name, countries)
	return code, found, nil
}

// ListCountries implements catalog.Store.
func (d *DB) ListCountries(ctx context.Context) ([]string, error) {
	b := d.builder()
	b.Write("SELECT DISTINCT TRIM(name) FROM countries WHERE TRIM(name) <> ''")

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer r.Close()

	names := []string{}
	for r.Next() {
		var name string
		if err := r.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		names = append(names, name)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	// Byte order, as the in-memory store sorts, whatever the database collation.
	sort.Strings(names)
	return names, nil
}

// CauseAvailability implements catalog.Store.
func (d *DB) CauseAvailability(ctx context.Context, scope mortality.ScopeFilter) ([]catalog.CauseAvailability, error) {
	b := d.builder()
	b.Write(`SELECT TRIM(list), TRIM(cause), MIN(year), MAX(year), COUNT(DISTINCT TRIM(country)), COUNT(*)
		FROM mortality
		WHERE TRIM(list) <> '' AND TRIM(cause) <> ''`)
	b.Writef(" AND LENGTH(TRIM(cause)) <= %d", catalog.MaxCauseCodeLength)
	whereScope(b, scope)
	b.Write(" GROUP BY TRIM(list), TRIM(cause) ORDER BY TRIM(list), TRIM(cause)")

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to read cause availability: %w", err)
	}
	defer r.Close()

	var out []catalog.CauseAvailability
	for r.Next() {
		var a catalog.CauseAvailability
		var countries, records int64
		if err := r.Scan(&a.List, &a.Cause, &a.FirstYear, &a.LastYear, &countries, &records); err != nil {
			return nil, fmt.Errorf("failed to scan cause availability: %w", err)
		}
		a.Countries = int(countries)
		a.Records = int(records)
		out = append(out, a)
	}
	return out, r.Err()
}

// CauseDescriptions implements catalog.Store.
func (d *DB) CauseDescriptions(ctx context.Context, codes []string) (map[string]catalog.CauseInfo, error) {
	out := make(map[string]catalog.CauseInfo, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	b := d.builder()
	b.Write("SELECT TRIM(short_code), description, icd_revision FROM causes WHERE ")
	b.In("TRIM(short_code)", codes)

	r, err := d.query(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("failed to read cause descriptions: %w", err)
	}
	defer r.Close()

	for r.Next() {
		var code string
		var info catalog.CauseInfo
		if err := r.Scan(&code, &info.Description, &info.Revision); err != nil {
			return nil, fmt.Errorf("failed to scan cause description: %w", err)
		}
		if _, dup := out[code]; !dup {
			out[code] = info
		}
	}
	return out, r.Err()
}
