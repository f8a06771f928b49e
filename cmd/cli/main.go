package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"

	"clinvarminer/adapters/excel"
	"clinvarminer/adapters/postgres"
	"clinvarminer/app"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/config"
	"clinvarminer/internal/logging"
	"clinvarminer/internal/migration"
	"clinvarminer/internal/testkit"
	"clinvarminer/ports"
	"clinvarminer/ui/view"

	"github.com/apex/log"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinvarminer-cli",
		Short: "Administration commands for the ClinVar Miner database",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
			logging.Init(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
		},
	}

	rootCmd.AddCommand(
		newMigrateCmd(),
		newCreateCurrentTablesCmd(),
		newSeedCmd(),
		newSummaryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDB connects with the same configuration the server uses
func openDB(ctx context.Context) (*sqlx.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return postgres.Connect(ctx, cfg.Database)
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the submissions and comparisons tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			runner := migration.NewRunner()
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			log.WithField("version", runner.Version()).Info("[Migrate] schema up to date")
			return nil
		},
	}
}

func newCreateCurrentTablesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create-current-tables",
		Short: "Rebuild the current_* tables from the latest release",
		Long: `Rebuild current_submissions, current_comparisons and the gene link tables
from the most recent release date in the submissions and comparisons tables.

Run this after every import.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migration.CreateCurrentTables(cmd.Context(), db); err != nil {
				return err
			}
			log.Info("[Migrate] current tables rebuilt")
			return nil
		},
	}
}

func newSeedCmd() *cobra.Command {
	genConfig := testkit.DefaultSnapshotConfig()
	var skipCurrent bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a synthetic release for local development",
		Long: `Generate a deterministic synthetic ClinVar release, insert it into the
submissions and comparisons tables and rebuild the current tables.

Example: clinvarminer-cli seed --variants 5000 --seed 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := migration.NewRunner().Run(ctx, db); err != nil {
				return err
			}

			snap, err := testkit.NewSnapshotGenerator(genConfig).Generate()
			if err != nil {
				return err
			}
			if err := testkit.Load(ctx, db, snap); err != nil {
				return err
			}
			log.WithFields(log.Fields{
				"submissions": len(snap.Submissions),
				"comparisons": len(snap.Comparisons),
			}).Info("[Seed] snapshot loaded")

			if skipCurrent {
				return nil
			}
			return migration.CreateCurrentTables(ctx, db)
		},
	}

	cmd.Flags().IntVar(&genConfig.VariantCount, "variants", genConfig.VariantCount, "Number of variants to generate")
	cmd.Flags().IntVar(&genConfig.SubmitterCount, "submitters", genConfig.SubmitterCount, "Number of submitters")
	cmd.Flags().IntVar(&genConfig.MaxSubmissionsPerVariant, "max-submissions", genConfig.MaxSubmissionsPerVariant, "Maximum submissions per variant")
	cmd.Flags().Int64Var(&genConfig.Seed, "seed", genConfig.Seed, "Random seed for deterministic generation")
	cmd.Flags().BoolVar(&skipCurrent, "skip-current", false, "Do not rebuild the current tables")
	return cmd
}

// summaryOptions are the filters of the summary command
type summaryOptions struct {
	minConflictLevel int
	conditions       []string
	originalTerms    bool
	originalGenes    bool
	format           string
	output           string
}

// values maps the flags onto the query parameters the web pages accept
func (o summaryOptions) values() url.Values {
	v := url.Values{}
	v.Set(filter.ParamMinConflictLevel, strconv.Itoa(o.minConflictLevel))
	for _, c := range o.conditions {
		v.Add(filter.ParamConditions, c)
	}
	if o.originalTerms {
		v.Set(filter.ParamOriginalTerms, "1")
	}
	if o.originalGenes {
		v.Set(filter.ParamOriginalGenes, "1")
	}
	return v
}

func newSummaryCmd() *cobra.Command {
	opts := summaryOptions{minConflictLevel: -1}

	cmd := &cobra.Command{
		Use:       "summary [condition|gene|submitter]",
		Short:     "Export a conflict summary table",
		Long:      `Export the conflicting-variants summary of one dimension as CSV or XLSX.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(ports.ByCondition), string(ports.ByGene), string(ports.BySubmitter)},
		RunE: func(cmd *cobra.Command, args []string) error {
			dim := ports.Dimension(args[0])
			if !dim.Valid() {
				return fmt.Errorf("unknown dimension %q", args[0])
			}
			format, err := excel.ParseFormat(opts.format)
			if err != nil {
				return err
			}
			f, err := filter.Parse(opts.values())
			if err != nil {
				return err
			}

			db, err := openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if opts.output != "" {
				file, err := os.Create(opts.output)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}

			service := app.NewConflictSummaryService(postgres.NewComparisonRepository(db))
			return writeSummary(cmd.Context(), service, dim, f, format, out, cmd.ErrOrStderr())
		},
	}

	cmd.Flags().IntVar(&opts.minConflictLevel, "min-conflict-level", opts.minConflictLevel, "Minimum conflict level (-1 to 5)")
	cmd.Flags().StringArrayVar(&opts.conditions, "condition", nil, "Restrict to a condition (repeatable)")
	cmd.Flags().BoolVar(&opts.originalTerms, "original-terms", false, "Use the submitted significance terms")
	cmd.Flags().BoolVar(&opts.originalGenes, "original-genes", false, "Use the submitted gene names")
	cmd.Flags().StringVar(&opts.format, "format", "csv", "Output format: csv|xlsx")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default stdout)")
	return cmd
}

// summarizer is the part of the conflict summary service the command needs
type summarizer interface {
	Summarize(ctx context.Context, dim ports.Dimension, f filter.State) (*app.ConflictReport, error)
}

// writeSummary renders the summary table to out and its totals to status
func writeSummary(ctx context.Context, s summarizer, dim ports.Dimension, f filter.State, format excel.Format, out, status io.Writer) error {
	report, err := s.Summarize(ctx, dim, f)
	if err != nil {
		return err
	}
	table, err := view.BuildConflictTable(report.Summary, f, view.ConflictTableOptions{
		ID:        "conflicts-by-" + string(dim),
		BasePath:  "/variants-by-" + string(dim) + "/",
		Dimension: dim,
	})
	if err != nil {
		return err
	}
	if err := excel.Write(out, format, table.Records()); err != nil {
		return err
	}

	dist, err := table.AnyConflictDistribution()
	if err != nil {
		return err
	}
	fmt.Fprintln(status, table.TotalLabel())
	fmt.Fprintln(status, dist.String())
	return nil
}
