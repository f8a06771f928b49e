package migration

import (
	"context"
	"fmt"

	"clinvarminer/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run creates the snapshot tables the importer fills. Every monthly ClinVar
// release adds rows under a new date.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSubmissionsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create submissions table")
	}

	if err := r.createComparisonsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create comparisons table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSubmissionsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS submissions (
			date DATE NOT NULL,
			variant_name TEXT NOT NULL,
			variant_id BIGINT,
			rsid TEXT NOT NULL DEFAULT '',
			gene TEXT NOT NULL DEFAULT '',
			gene_type INTEGER NOT NULL DEFAULT 0,
			normalized_gene TEXT NOT NULL DEFAULT '',
			normalized_gene_type INTEGER NOT NULL DEFAULT 0,
			rcv TEXT NOT NULL,
			scv TEXT NOT NULL,
			submitter_id BIGINT NOT NULL,
			submitter_name TEXT NOT NULL,
			submitter_country_code TEXT NOT NULL DEFAULT '',
			submitter_country_name TEXT NOT NULL DEFAULT '',
			significance TEXT NOT NULL,
			normalized_significance TEXT NOT NULL,
			star_level INTEGER NOT NULL DEFAULT 0,
			condition_name TEXT NOT NULL,
			condition_db TEXT NOT NULL DEFAULT '',
			condition_id TEXT NOT NULL DEFAULT '',
			condition_xrefs TEXT NOT NULL DEFAULT '',
			method TEXT NOT NULL DEFAULT '',
			normalized_method TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (date, scv)
		)
	`)
	return err
}

func (r *MigrationRunner) createComparisonsTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS comparisons (
			date DATE NOT NULL,
			variant_name TEXT NOT NULL,
			rsid TEXT NOT NULL DEFAULT '',
			gene TEXT NOT NULL DEFAULT '',
			gene_type INTEGER NOT NULL DEFAULT 0,
			normalized_gene TEXT NOT NULL DEFAULT '',
			normalized_gene_type INTEGER NOT NULL DEFAULT 0,
			submitter1_id BIGINT NOT NULL,
			submitter1_name TEXT NOT NULL,
			submitter1_country_code TEXT NOT NULL DEFAULT '',
			submitter1_country_name TEXT NOT NULL DEFAULT '',
			scv1 TEXT NOT NULL,
			significance1 TEXT NOT NULL,
			normalized_significance1 TEXT NOT NULL,
			star_level1 INTEGER NOT NULL DEFAULT 0,
			condition1_name TEXT NOT NULL,
			condition1_db TEXT NOT NULL DEFAULT '',
			condition1_id TEXT NOT NULL DEFAULT '',
			method1 TEXT NOT NULL DEFAULT '',
			normalized_method1 TEXT NOT NULL DEFAULT '',
			submitter2_id BIGINT NOT NULL,
			submitter2_name TEXT NOT NULL,
			scv2 TEXT NOT NULL,
			significance2 TEXT NOT NULL,
			normalized_significance2 TEXT NOT NULL,
			star_level2 INTEGER NOT NULL DEFAULT 0,
			condition2_name TEXT NOT NULL,
			condition2_db TEXT NOT NULL DEFAULT '',
			condition2_id TEXT NOT NULL DEFAULT '',
			method2 TEXT NOT NULL DEFAULT '',
			normalized_method2 TEXT NOT NULL DEFAULT '',
			conflict_level INTEGER NOT NULL CHECK (conflict_level BETWEEN -1 AND 5),
			PRIMARY KEY (date, scv1, scv2)
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range []string{
		`CREATE INDEX IF NOT EXISTS submissions__date ON submissions (date)`,
		`CREATE INDEX IF NOT EXISTS comparisons__date ON comparisons (date)`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Indexed columns of the current snapshot tables
var (
	CurrentSubmissionIndexes = []string{
		"variant_name", "rsid", "gene", "normalized_gene", "rcv", "scv",
		"submitter_id", "submitter_name", "submitter_country_code",
		"significance", "normalized_significance", "condition_name", "method",
	}
	CurrentComparisonIndexes = []string{
		"variant_name", "gene", "gene_type", "normalized_gene", "normalized_gene_type",
		"submitter1_id", "submitter1_name", "submitter1_country_code", "scv1", "significance1", "normalized_significance1",
		"star_level1", "condition1_name", "method1", "normalized_method1",
		"submitter2_id", "significance2", "normalized_significance2", "star_level2",
		"normalized_method2", "condition2_name", "conflict_level",
	}
)

// CreateCurrentTables rebuilds current_submissions, current_comparisons and the
// gene link tables from the latest snapshot date, in one transaction.
func CreateCurrentTables(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if err := createCurrentTable(ctx, tx, "submissions", CurrentSubmissionIndexes); err != nil {
		return err
	}
	if err := createCurrentTable(ctx, tx, "comparisons", CurrentComparisonIndexes); err != nil {
		return err
	}
	if err := createGeneLinksTable(ctx, tx, "normalized_gene_links", "normalized_gene", "normalized_gene_type"); err != nil {
		return err
	}
	if err := createGeneLinksTable(ctx, tx, "gene_links", "gene", "gene_type"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit current tables", err)
	}
	return nil
}

func createCurrentTable(ctx context.Context, tx *sqlx.Tx, source string, indexes []string) error {
	table := "current_" + source
	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		fmt.Sprintf("CREATE TABLE %s AS SELECT * FROM %s WHERE date = (SELECT MAX(date) FROM %s)", table, source, source),
	}
	for _, column := range indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s__%s ON %s (%s)", table, column, table, column))
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to create %s", table), err)
		}
	}
	return nil
}

// createGeneLinksTable links every multi-gene combination (gene type 2) with
// each of its individual genes that also occurs alone, in both directions.
func createGeneLinksTable(ctx context.Context, tx *sqlx.Tx, table, geneColumn, typeColumn string) error {
	stmts := []string{
		"DROP TABLE IF EXISTS " + table,
		fmt.Sprintf(`CREATE TABLE %[1]s AS
			WITH links AS (
				SELECT DISTINCT combo.%[2]s AS combination, part AS individual
				FROM (SELECT DISTINCT %[2]s FROM current_submissions WHERE %[3]s = 2) AS combo,
					unnest(string_to_array(combo.%[2]s, ', ')) AS part
				WHERE EXISTS (SELECT 1 FROM current_submissions s WHERE s.%[2]s = part)
			)
			SELECT combination AS gene, individual AS see_also FROM links
			UNION
			SELECT individual AS gene, combination AS see_also FROM links`, table, geneColumn, typeColumn),
		fmt.Sprintf("CREATE INDEX %s__gene ON %s (gene)", table, table),
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to create %s", table), err)
		}
	}
	return nil
}
