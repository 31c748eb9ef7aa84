// Package testutil provides test utilities and helpers.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"whomortality/internal/catalog"
	"whomortality/internal/db"
	"whomortality/internal/memstore"
	"whomortality/internal/mortality"
	"whomortality/internal/query"
)

// FactTables lists the tables created by the migrations.
var FactTables = []string{"mortality", "population", "internet_usage", "countries", "causes"}

// TestDB creates a migrated test database and returns it with its connection
// string. Uses TEST_DATABASE_URL when set, otherwise a temporary SQLite file.
// The database starts empty and is emptied and closed when the test finishes.
func TestDB(t *testing.T) (*db.DB, string) {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		connString = "sqlite://" + filepath.Join(t.TempDir(), "facts.db")
	}

	ctx := context.Background()
	database, err := db.New(ctx, connString)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}

	if err := database.RunMigrations(connString); err != nil {
		database.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	empty := func() {
		for _, table := range FactTables {
			Exec(t, database, "DELETE FROM "+table)
		}
	}
	empty()
	t.Cleanup(func() {
		empty()
		database.Close()
	})

	return database, connString
}

// Exec runs a statement on either backend and fails the test on error.
func Exec(t *testing.T, database *db.DB, sqlText string, args ...any) {
	t.Helper()
	ctx := context.Background()

	var err error
	if database.SQL != nil {
		_, err = database.SQL.ExecContext(ctx, sqlText, args...)
	} else {
		_, err = database.Pool.Exec(ctx, sqlText, args...)
	}
	if err != nil {
		t.Fatalf("failed to execute %q: %v", sqlText, err)
	}
}

// CreateTestCountry inserts a country directory entry.
func CreateTestCountry(t *testing.T, database *db.DB, code, name string) {
	t.Helper()

	b := query.New(database.Dialect())
	b.Writef("INSERT INTO countries (code, name) VALUES (%s, %s)", b.Arg(code), b.Arg(name))
	Exec(t, database, b.SQL(), b.Args()...)
}

// CreateTestDeaths inserts a mortality row whose first partitions hold deaths.
func CreateTestDeaths(t *testing.T, database *db.DB, country string, year int, list, cause, sex string, deaths ...int64) {
	t.Helper()

	b := query.New(database.Dialect())
	b.Writef("INSERT INTO mortality (country, year, list, cause, sex")
	for i := range deaths {
		b.Writef(", deaths%d", i+1)
	}
	b.Writef(") VALUES (%s, %s, %s, %s, %s", b.Arg(country), b.Arg(year), b.Arg(list), b.Arg(cause), b.Arg(sex))
	for _, d := range deaths {
		b.Write(", " + b.Arg(d))
	}
	b.Write(")")
	Exec(t, database, b.SQL(), b.Args()...)
}

// FactStore returns an in-memory store holding a small two-country dataset:
//
//	Mexico (1010): 2010 01::A10 deaths 5+0+3, 2011 104::C34 deaths 6,
//	               population 200000 in 2010, internet "45,7" in 2010
//	Chile  (1020): 2010 01::A10 deaths 2
//
// Cause A10 is documented as Cholera (ICD-10); C34 is undocumented.
func FactStore() *memstore.Store {
	store := memstore.New()
	store.AddCountries(
		memstore.Country{Code: "1010", Name: "Mexico"},
		memstore.Country{Code: "1020", Name: "Chile"},
	)
	store.AddMortality(
		memstore.MortalityRow{Country: "1010", Year: 2010, List: "01", Cause: "A10", Sex: "1", Deaths: mortality.PartitionsOf(5, 0, 3)},
		memstore.MortalityRow{Country: "1010", Year: 2011, List: "104", Cause: "C34", Sex: "1", Deaths: mortality.PartitionsOf(6)},
		memstore.MortalityRow{Country: "1020", Year: 2010, List: "01", Cause: "A10", Sex: "2", Deaths: mortality.PartitionsOf(2)},
	)
	store.AddPopulation(memstore.PopulationRow{Country: "1010", Year: 2010, Sex: "1", Population: mortality.PartitionsOf(200000)})
	store.AddInternet(memstore.InternetRow{Country: "1010", Year: 2010, Value: "45,7"})
	store.AddCause("A10", catalog.CauseInfo{Description: "Cholera", Revision: "ICD-10"})
	return store
}
