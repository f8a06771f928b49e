package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/significance"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// comparisonRepository implements the ComparisonReader interface
type comparisonRepository struct {
	db *sqlx.DB
}

// NewComparisonRepository creates a new comparison repository
func NewComparisonRepository(db *sqlx.DB) ports.ComparisonReader {
	return &comparisonRepository{db: db}
}

// comparisonQuery accumulates SQL text and positional arguments
type comparisonQuery struct {
	sql  strings.Builder
	args []interface{}
}

func (b *comparisonQuery) arg(value interface{}) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *comparisonQuery) write(parts ...string) {
	for _, p := range parts {
		b.sql.WriteString(p)
	}
}

func (b *comparisonQuery) andEquals(column string, value interface{}) {
	if list, ok := value.([]string); ok {
		if len(list) == 0 {
			return
		}
		b.write(" AND ", column, " = ANY(", b.arg(pq.Array(list)), ")")
		return
	}
	b.write(" AND ", column, " = ", b.arg(value))
}

func (b *comparisonQuery) String() string {
	return b.sql.String()
}

// where writes the FROM/WHERE clause shared by every aggregate
func (b *comparisonQuery) where(q ports.ComparisonQuery, withSignificance bool) {
	b.whereFrom("current_comparisons", q, withSignificance)
}

// whereFrom is where over another comparisons table, such as the full history
func (b *comparisonQuery) whereFrom(table string, q ports.ComparisonQuery, withSignificance bool) {
	b.write(" FROM ", table, " WHERE star_level1 >= ", b.arg(q.MinStars1),
		" AND star_level2 >= ", b.arg(q.MinStars2),
		" AND conflict_level >= ", b.arg(int(q.MinConflictLevel)))

	if q.Gene != nil {
		b.andEquals(geneColumn(q.OriginalGenes), *q.Gene)
	}
	b.andEquals("condition1_name", q.ConditionNames)
	if q.SubmitterID != 0 {
		b.andEquals("submitter1_id", q.SubmitterID)
	}
	if q.SubmitterID2 != 0 {
		b.andEquals("submitter2_id", q.SubmitterID2)
	}
	if q.CountryCode != nil {
		b.andEquals("submitter1_country_code", *q.CountryCode)
	}
	if withSignificance && q.Significance != "" {
		b.andEquals(significanceColumn(q.OriginalTerms, 1), q.Significance)
	}
	if withSignificance && q.Significance2 != "" {
		b.andEquals(significanceColumn(q.OriginalTerms, 2), q.Significance2)
	}
	if q.Method1 != "" {
		b.andEquals("normalized_method1", q.Method1)
	}
	if q.Method2 != "" {
		b.andEquals("normalized_method2", q.Method2)
	}
}

func geneColumn(original bool) string {
	if original {
		return "gene"
	}
	return "normalized_gene"
}

func significanceColumn(original bool, side int) string {
	if original {
		return fmt.Sprintf("significance%d", side)
	}
	return fmt.Sprintf("normalized_significance%d", side)
}

// groupColumns returns the key, label and cross-reference expressions for a dimension
func groupColumns(dim ports.Dimension, q ports.ComparisonQuery) (key, label, xrefDB, xrefID string, err error) {
	side := "1"
	if q.Counterpart {
		side = "2"
	}
	switch dim {
	case ports.ByCondition:
		return "condition" + side + "_name", "condition" + side + "_name",
			"condition" + side + "_db", "condition" + side + "_id", nil
	case ports.ByGene:
		col := geneColumn(q.OriginalGenes)
		return col, col, "''", "''", nil
	case ports.BySubmitter:
		return "submitter" + side + "_id::text", "submitter" + side + "_name", "''", "''", nil
	}
	return "", "", "", "", errors.InvalidInput(fmt.Sprintf("unknown dimension %q", dim))
}

type keyCountRow struct {
	Key    string `db:"group_key"`
	Label  string `db:"label"`
	XrefDB string `db:"xref_db"`
	XrefID string `db:"xref_id"`
	Count  int    `db:"count"`
}

type keyLevelCountRow struct {
	Key   string `db:"group_key"`
	Level int    `db:"conflict_level"`
	Count int    `db:"count"`
}

// TotalVariants counts distinct variants matching q
func (r *comparisonRepository) TotalVariants(ctx context.Context, q ports.ComparisonQuery) (int, error) {
	var b comparisonQuery
	b.write("SELECT COUNT(DISTINCT variant_name)")
	b.where(q, true)

	var total int
	if err := r.db.GetContext(ctx, &total, b.String(), b.args...); err != nil {
		return 0, errors.DatabaseError("failed to count variants", err)
	}
	return total, nil
}

// TotalVariantsWithoutSignificance counts variants with at least one submission
// pair where neither side reported q.Significance
func (r *comparisonRepository) TotalVariantsWithoutSignificance(ctx context.Context, q ports.ComparisonQuery) (int, error) {
	var b comparisonQuery
	b.write("SELECT COUNT(DISTINCT variant_name)")
	b.where(q, false)
	sig := b.arg(q.Significance)
	b.write(" AND ", significanceColumn(q.OriginalTerms, 1), " != ", sig,
		" AND ", significanceColumn(q.OriginalTerms, 2), " != ", sig)

	var total int
	if err := r.db.GetContext(ctx, &total, b.String(), b.args...); err != nil {
		return 0, errors.DatabaseError("failed to count variants without significance", err)
	}
	return total, nil
}

// VariantsBy counts distinct variants per key of dim, largest first
func (r *comparisonRepository) VariantsBy(ctx context.Context, dim ports.Dimension, q ports.ComparisonQuery) ([]conflict.KeyCount, error) {
	key, label, xrefDB, xrefID, err := groupColumns(dim, q)
	if err != nil {
		return nil, err
	}

	var b comparisonQuery
	b.write("SELECT ", key, " AS group_key, MIN(", label, ") AS label, COALESCE(MIN(", xrefDB,
		"), '') AS xref_db, COALESCE(MIN(", xrefID, "), '') AS xref_id, COUNT(DISTINCT variant_name) AS count")
	b.where(q, true)
	b.write(" GROUP BY group_key ORDER BY count DESC, group_key")

	var rows []keyCountRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError(fmt.Sprintf("failed to count variants by %s", dim), err)
	}

	counts := make([]conflict.KeyCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, conflict.KeyCount{
			Key:   row.Key,
			Label: row.Label,
			Xref:  conflict.Xref{DB: row.XrefDB, ID: row.XrefID},
			Count: row.Count,
		})
	}
	return counts, nil
}

// ConflictingVariantsByLevel counts each variant once per key, at the highest
// conflict level it reaches under that key
func (r *comparisonRepository) ConflictingVariantsByLevel(ctx context.Context, dim ports.Dimension, q ports.ComparisonQuery) ([]conflict.KeyLevelCount, error) {
	key, _, _, _, err := groupColumns(dim, q)
	if err != nil {
		return nil, err
	}

	var b comparisonQuery
	b.write("SELECT group_key, conflict_level, COUNT(*) AS count FROM (SELECT ", key,
		" AS group_key, variant_name, MAX(conflict_level) AS conflict_level")
	b.where(q, true)
	b.write(" GROUP BY group_key, variant_name) AS by_variant GROUP BY group_key, conflict_level ORDER BY group_key, conflict_level")

	return r.selectLevels(ctx, &b, fmt.Sprintf("failed to count conflicting variants by %s", dim))
}

// VariantsByConflictLevel counts each variant once, at its highest conflict level
func (r *comparisonRepository) VariantsByConflictLevel(ctx context.Context, q ports.ComparisonQuery) ([]conflict.KeyLevelCount, error) {
	var b comparisonQuery
	b.write("SELECT '' AS group_key, conflict_level, COUNT(*) AS count FROM (SELECT variant_name, MAX(conflict_level) AS conflict_level")
	b.where(q, true)
	b.write(" GROUP BY variant_name) AS by_variant GROUP BY conflict_level ORDER BY conflict_level")

	return r.selectLevels(ctx, &b, "failed to count variants by conflict level")
}

func (r *comparisonRepository) selectLevels(ctx context.Context, b *comparisonQuery, msg string) ([]conflict.KeyLevelCount, error) {
	var rows []keyLevelCountRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError(msg, err)
	}

	counts := make([]conflict.KeyLevelCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, conflict.KeyLevelCount{Key: row.Key, Level: conflict.Level(row.Level), Count: row.Count})
	}
	return counts, nil
}

// VariantsBySignificance counts variants per significance of the first submission
func (r *comparisonRepository) VariantsBySignificance(ctx context.Context, q ports.ComparisonQuery) ([]significance.Count, error) {
	var b comparisonQuery
	b.write("SELECT ", significanceColumn(q.OriginalTerms, 1), " AS significance",
		", COUNT(DISTINCT variant_name) AS count",
		", COUNT(DISTINCT ", geneColumn(q.OriginalGenes), ") AS gene_count",
		", COUNT(DISTINCT condition1_name) AS condition_count",
		", COUNT(DISTINCT submitter1_id) AS submitter_count")
	b.where(q, false)
	b.write(" GROUP BY significance ORDER BY count DESC")

	var rows []significance.Count
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count variants by significance", err)
	}
	return rows, nil
}

type pairCountRow struct {
	Significance1 string `db:"significance1"`
	Significance2 string `db:"significance2"`
	Level         int    `db:"conflict_level"`
	Count         int    `db:"count"`
}

// ConflictingVariantsBySignificance counts distinct variants per pair of
// significance terms, with the highest conflict level seen for the pair
func (r *comparisonRepository) ConflictingVariantsBySignificance(ctx context.Context, q ports.ComparisonQuery) ([]conflict.PairCount, error) {
	sig1, sig2 := significanceColumn(q.OriginalTerms, 1), significanceColumn(q.OriginalTerms, 2)

	var b comparisonQuery
	b.write("SELECT ", sig1, " AS significance1, ", sig2, " AS significance2",
		", MAX(conflict_level) AS conflict_level, COUNT(DISTINCT variant_name) AS count")
	b.where(q, true)
	b.write(" GROUP BY ", sig1, ", ", sig2, " ORDER BY ", sig1, ", ", sig2)

	var rows []pairCountRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count conflicting variants by significance", err)
	}

	pairs := make([]conflict.PairCount, 0, len(rows))
	for _, row := range rows {
		pairs = append(pairs, conflict.PairCount{
			Significance1: row.Significance1,
			Significance2: row.Significance2,
			Level:         conflict.Level(row.Level),
			Count:         row.Count,
		})
	}
	return pairs, nil
}

// Variants lists the distinct variants matching q by name
func (r *comparisonRepository) Variants(ctx context.Context, q ports.ComparisonQuery) ([]ports.VariantRow, error) {
	var b comparisonQuery
	b.write("SELECT variant_name, COALESCE(MIN(rsid), '') AS rsid")
	b.where(q, true)
	b.write(" GROUP BY variant_name ORDER BY variant_name")

	var rows []ports.VariantRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to list variants", err)
	}
	return rows, nil
}

// Submissions lists the current submissions of a variant, best reviewed first
func (r *comparisonRepository) Submissions(ctx context.Context, variantName string) ([]ports.SubmissionRow, error) {
	var rows []ports.SubmissionRow
	err := r.db.SelectContext(ctx, &rows, `SELECT scv, submitter_id, submitter_name, significance,
		star_level, condition_name, method
		FROM current_submissions WHERE variant_name = $1
		ORDER BY star_level DESC, submitter_name, scv`, variantName)
	if err != nil {
		return nil, errors.DatabaseError("failed to list submissions", err)
	}
	return rows, nil
}

func (r *comparisonRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var one int
	err := r.db.GetContext(ctx, &one, query, args...)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.DatabaseError("failed to look up submission", err)
	}
	return true, nil
}

// IsSignificance reports whether any current submission uses term
func (r *comparisonRepository) IsSignificance(ctx context.Context, term string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM current_submissions
		WHERE significance = $1 OR normalized_significance = $1 LIMIT 1`, term)
}

// IsConditionName reports whether any current submission names the condition
func (r *comparisonRepository) IsConditionName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM current_submissions WHERE condition_name = $1 LIMIT 1`, name)
}

// IsGene reports whether gene appears as an original or normalized gene
func (r *comparisonRepository) IsGene(ctx context.Context, gene string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM current_submissions WHERE gene = $1 OR normalized_gene = $1 LIMIT 1`, gene)
}

// IsVariantName reports whether name is an HGVS variant name
func (r *comparisonRepository) IsVariantName(ctx context.Context, name string) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM current_submissions WHERE variant_name = $1 LIMIT 1`, name)
}

// SubmitterInfo returns the submitter, or a not-found error
func (r *comparisonRepository) SubmitterInfo(ctx context.Context, id int64) (*ports.SubmitterInfo, error) {
	var info ports.SubmitterInfo
	err := r.db.GetContext(ctx, &info, `SELECT submitter_id, submitter_name,
		COALESCE(submitter_country_name, '') AS submitter_country_name
		FROM current_submissions WHERE submitter_id = $1 LIMIT 1`, id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(fmt.Sprintf("submitter %d", id))
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to get submitter", err)
	}
	return &info, nil
}

// SubmitterIDFromName finds a submitter by exact name
func (r *comparisonRepository) SubmitterIDFromName(ctx context.Context, name string) (int64, bool, error) {
	var id int64
	err := r.db.GetContext(ctx, &id, `SELECT submitter_id FROM current_submissions WHERE submitter_name = $1 LIMIT 1`, name)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.DatabaseError("failed to look up submitter", err)
	}
	return id, true, nil
}

func (r *comparisonRepository) lookupString(ctx context.Context, query string, arg string) (string, bool, error) {
	var value string
	err := r.db.GetContext(ctx, &value, query, arg)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.DatabaseError("failed to look up submission", err)
	}
	return value, true, nil
}

// VariantNameFromRSID resolves an rsID only when it identifies exactly one variant
func (r *comparisonRepository) VariantNameFromRSID(ctx context.Context, rsid string) (string, bool, error) {
	var names []string
	err := r.db.SelectContext(ctx, &names, `SELECT DISTINCT variant_name FROM current_submissions WHERE rsid = $1 LIMIT 2`, rsid)
	if err != nil {
		return "", false, errors.DatabaseError("failed to look up rsID", err)
	}
	if len(names) != 1 {
		return "", false, nil
	}
	return names[0], true, nil
}

// VariantNameFromRCV resolves an RCV accession
func (r *comparisonRepository) VariantNameFromRCV(ctx context.Context, rcv string) (string, bool, error) {
	return r.lookupString(ctx, `SELECT variant_name FROM current_submissions WHERE rcv = $1 LIMIT 1`, rcv)
}

// VariantNameFromSCV resolves an SCV accession
func (r *comparisonRepository) VariantNameFromSCV(ctx context.Context, scv string) (string, bool, error) {
	return r.lookupString(ctx, `SELECT variant_name FROM current_submissions WHERE scv = $1 LIMIT 1`, scv)
}

// GeneFromRSID returns the gene of an rsID; the empty gene is intergenic
func (r *comparisonRepository) GeneFromRSID(ctx context.Context, rsid string) (string, bool, error) {
	return r.lookupString(ctx, `SELECT gene FROM current_submissions WHERE rsid = $1 LIMIT 1`, rsid)
}

// RelatedGenes lists the individual genes of a gene combination, or the
// combinations an individual gene takes part in
func (r *comparisonRepository) RelatedGenes(ctx context.Context, gene string, original bool) ([]string, error) {
	table := "normalized_gene_links"
	if original {
		table = "gene_links"
	}

	var related []string
	err := r.db.SelectContext(ctx, &related, `SELECT see_also FROM `+table+` WHERE gene = $1 ORDER BY see_also`, gene)
	if err != nil {
		return nil, errors.DatabaseError("failed to get related genes", err)
	}
	return related, nil
}

// SubmitterPrimaryMethod is the collection method a submitter uses most
func (r *comparisonRepository) SubmitterPrimaryMethod(ctx context.Context, id int64) (string, error) {
	var method string
	err := r.db.GetContext(ctx, &method, `SELECT method FROM current_submissions WHERE submitter_id = $1
		GROUP BY method ORDER BY COUNT(*) DESC, method LIMIT 1`, id)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", errors.DatabaseError("failed to get primary method", err)
	}
	return method, nil
}

// CountryName resolves a country code; the empty code is submitters with no country
func (r *comparisonRepository) CountryName(ctx context.Context, code string) (string, bool, error) {
	return r.lookupString(ctx, `SELECT submitter_country_name FROM current_submissions
		WHERE submitter_country_code = $1 LIMIT 1`, code)
}

// SubmissionsByCountry counts the distinct submissions of each submitter country
func (r *comparisonRepository) SubmissionsByCountry(ctx context.Context, q ports.ComparisonQuery) ([]ports.CountryCount, error) {
	var b comparisonQuery
	b.write("SELECT submitter1_country_code AS country_code, MIN(submitter1_country_name) AS country_name",
		", COUNT(DISTINCT scv1) AS count")
	b.where(q, true)
	b.write(" GROUP BY submitter1_country_code ORDER BY count DESC, country_code")

	var rows []ports.CountryCount
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count submissions by country", err)
	}
	return rows, nil
}

// SubmissionsBySubmitter counts the distinct submissions of each submitter
func (r *comparisonRepository) SubmissionsBySubmitter(ctx context.Context, q ports.ComparisonQuery) ([]conflict.KeyCount, error) {
	var b comparisonQuery
	b.write("SELECT submitter1_id::text AS group_key, MIN(submitter1_name) AS label",
		", '' AS xref_db, '' AS xref_id, COUNT(DISTINCT scv1) AS count")
	b.where(q, true)
	b.write(" GROUP BY submitter1_id ORDER BY count DESC, group_key")

	var rows []keyCountRow
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count submissions by submitter", err)
	}

	counts := make([]conflict.KeyCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, conflict.KeyCount{Key: row.Key, Label: row.Label, Count: row.Count})
	}
	return counts, nil
}

// SubmissionsByMethod counts the distinct current submissions of each collection method
func (r *comparisonRepository) SubmissionsByMethod(ctx context.Context, q ports.ComparisonQuery) ([]ports.MethodCount, error) {
	var b comparisonQuery
	b.write("SELECT normalized_method1 AS method, COUNT(DISTINCT scv1) AS count")
	b.where(q, true)
	b.write(" GROUP BY normalized_method1 ORDER BY count DESC, method")

	var rows []ports.MethodCount
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count submissions by method", err)
	}
	return rows, nil
}

// SubmissionsByMethodOverTime counts submissions per method in every imported release
func (r *comparisonRepository) SubmissionsByMethodOverTime(ctx context.Context, q ports.ComparisonQuery) ([]ports.MethodDateCount, error) {
	var b comparisonQuery
	b.write("SELECT date, normalized_method1 AS method, COUNT(DISTINCT scv1) AS count")
	b.whereFrom("comparisons", q, true)
	b.write(" GROUP BY date, normalized_method1 ORDER BY date, count DESC, method")

	var rows []ports.MethodDateCount
	if err := r.db.SelectContext(ctx, &rows, b.String(), b.args...); err != nil {
		return nil, errors.DatabaseError("failed to count submissions by method over time", err)
	}
	return rows, nil
}

// MaxDate is the date of the current ClinVar snapshot
func (r *comparisonRepository) MaxDate(ctx context.Context) (time.Time, error) {
	var date sql.NullTime
	if err := r.db.GetContext(ctx, &date, `SELECT MAX(date) FROM current_submissions`); err != nil {
		return time.Time{}, errors.DatabaseError("failed to get snapshot date", err)
	}
	return date.Time, nil
}

// TotalSubmissions counts the submissions of the current snapshot
func (r *comparisonRepository) TotalSubmissions(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM current_submissions`); err != nil {
		return 0, errors.DatabaseError("failed to count submissions", err)
	}
	return total, nil
}
