package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"whomortality/internal/db"
	"whomortality/internal/export"
	"whomortality/internal/mortality"
)

const (
	formatJSON = "json"
	formatCSV  = "csv"
)

// withServices opens services from the persistent flags, runs fn and
// releases them.
func withServices(cmd *cobra.Command, open opener, fn func(ctx context.Context, s *services) error) error {
	databaseURL, _ := cmd.Flags().GetString("database")
	regionsFile, _ := cmd.Flags().GetString("regions")

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := open(ctx, databaseURL, regionsFile)
	if err != nil {
		return err
	}
	defer s.close()
	return fn(ctx, s)
}

// addFilterFlags registers the scope and cause flags shared by the
// aggregation subcommands.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("scope", "s", mortality.GlobalScopeName, "Country name, region name or \"global\"")
	cmd.Flags().StringArrayP("cause", "c", nil, "Cause as list::code (repeatable)")
}

func prepare(ctx context.Context, cmd *cobra.Command, s *services) (mortality.FilterContext, error) {
	scope, _ := cmd.Flags().GetString("scope")
	causes, _ := cmd.Flags().GetStringArray("cause")
	return s.engine.Prepare(ctx, scope, causes)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seriesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "series",
		Short: "Yearly deaths, population, internet adoption and mortality rate",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")
			if format != formatJSON && format != formatCSV {
				return fmt.Errorf("unsupported format %q (want json or csv)", format)
			}

			return withServices(cmd, open, func(ctx context.Context, s *services) error {
				fc, err := prepare(ctx, cmd, s)
				if err != nil {
					return err
				}
				series, err := s.engine.TimeSeries(ctx, fc)
				if err != nil {
					return err
				}

				if format == formatCSV {
					data, err := export.CSV(series)
					if err != nil {
						return err
					}
					_, err = cmd.OutOrStdout().Write(data)
					return err
				}
				return writeJSON(cmd.OutOrStdout(), series)
			})
		},
	}

	addFilterFlags(cmd)
	cmd.Flags().StringP("format", "f", formatJSON, "Output format (json, csv)")

	return cmd
}

func breakdownCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Deaths per year and cause",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *services) error {
				fc, err := prepare(ctx, cmd, s)
				if err != nil {
					return err
				}
				rows, err := s.engine.Breakdown(ctx, fc)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), rows)
			})
		},
	}

	addFilterFlags(cmd)

	return cmd
}

func summaryCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summary statistics and the leading cause of each year",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *services) error {
				fc, err := prepare(ctx, cmd, s)
				if err != nil {
					return err
				}
				summary, err := s.engine.Summary(ctx, fc)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), summary)
			})
		},
	}

	addFilterFlags(cmd)

	return cmd
}

func causesCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "causes",
		Short: "List the causes of death recorded for a scope",
		RunE: func(cmd *cobra.Command, args []string) error {
			scope, _ := cmd.Flags().GetString("scope")
			return withServices(cmd, open, func(ctx context.Context, s *services) error {
				entries, err := s.catalog.Causes(ctx, scope)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), entries)
			})
		},
	}

	cmd.Flags().StringP("scope", "s", mortality.GlobalScopeName, "Country name, region name or \"global\"")

	return cmd
}

func countriesCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List country names, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withServices(cmd, open, func(ctx context.Context, s *services) error {
				names, err := s.catalog.Countries(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the fact table schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseURL, _ := cmd.Flags().GetString("database")

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			database, err := db.New(ctx, databaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer database.Close()

			if err := database.RunMigrations(databaseURL); err != nil {
				return fmt.Errorf("failed to run migrations: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations completed successfully")
			return nil
		},
	}
}
