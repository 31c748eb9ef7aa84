package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"whomortality/internal/catalog"
	"whomortality/internal/config"
	"whomortality/internal/db"
	"whomortality/internal/mortality"
)

var Version = "dev"

// services is what the query subcommands run against.
type services struct {
	engine  *mortality.Engine
	catalog *catalog.Service
	close   func()
}

// opener builds services from the connection string and region file.
type opener func(ctx context.Context, databaseURL, regionsFile string) (*services, error)

func main() {
	if err := newRootCmd(openDatabase).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(open opener) *cobra.Command {
	cfg := config.Load()

	rootCmd := &cobra.Command{
		Use:           "whomortality",
		Short:         "Query WHO mortality, population and internet adoption aggregates",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("database", cfg.DatabaseURL, "Database URL (postgres://… or sqlite://path)")
	rootCmd.PersistentFlags().String("regions", cfg.RegionsFile, "Region table (YAML)")

	rootCmd.AddCommand(seriesCmd(open))
	rootCmd.AddCommand(breakdownCmd(open))
	rootCmd.AddCommand(summaryCmd(open))
	rootCmd.AddCommand(causesCmd(open))
	rootCmd.AddCommand(countriesCmd(open))
	rootCmd.AddCommand(migrateCmd())

	return rootCmd
}

func openDatabase(ctx context.Context, databaseURL, regionsFile string) (*services, error) {
	database, err := db.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	regions, err := config.LoadRegions(regionsFile)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load regions from %s: %w", regionsFile, err)
	}

	resolver := mortality.NewScopeResolver(regions, database)
	return &services{
		engine:  mortality.NewEngine(database, resolver),
		catalog: catalog.New(database, resolver, nil, 0, nil),
		close:   database.Close,
	}, nil
}
