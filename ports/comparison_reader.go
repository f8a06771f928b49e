package ports

import (
	"context"
	"time"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/significance"
)

// Dimension is the key a comparison aggregate is grouped by
type Dimension string

const (
	ByCondition Dimension = "condition"
	ByGene      Dimension = "gene"
	BySubmitter Dimension = "submitter"
)

// Dimensions lists every grouping in display order
func Dimensions() []Dimension {
	return []Dimension{ByCondition, ByGene, BySubmitter}
}

// Valid reports whether d is a known grouping
func (d Dimension) Valid() bool {
	switch d {
	case ByCondition, ByGene, BySubmitter:
		return true
	}
	return false
}

// ComparisonQuery filters the current submission comparisons. Zero values
// leave a filter off, except Gene and CountryCode where nil means unfiltered
// and an empty string selects variants without a gene or submitters without a
// country.
type ComparisonQuery struct {
	MinStars1        int
	MinStars2        int
	Method1          string
	Method2          string
	MinConflictLevel conflict.Level

	ConditionNames []string
	Gene           *string
	SubmitterID    int64
	Significance   string
	CountryCode    *string

	// Filters on the second submission of each pair
	SubmitterID2  int64
	Significance2 string

	OriginalTerms bool
	OriginalGenes bool

	// Counterpart groups by the second submission of each pair, for breakdowns
	// within a page already pinned to one condition or submitter.
	Counterpart bool
}

// WithMinConflictLevel returns a copy of q with a different level floor
func (q ComparisonQuery) WithMinConflictLevel(level conflict.Level) ComparisonQuery {
	q.MinConflictLevel = level
	return q
}

// VariantRow is one variant of a drill-down list
type VariantRow struct {
	Name string `db:"variant_name" json:"variant_name"`
	RSID string `db:"rsid" json:"rsid"`
}

// SubmissionRow is one submission of a variant
type SubmissionRow struct {
	SCV           string `db:"scv" json:"scv"`
	SubmitterID   int64  `db:"submitter_id" json:"submitter_id"`
	SubmitterName string `db:"submitter_name" json:"submitter_name"`
	Significance  string `db:"significance" json:"significance"`
	StarLevel     int    `db:"star_level" json:"star_level"`
	ConditionName string `db:"condition_name" json:"condition_name"`
	Method        string `db:"method" json:"method"`
}

// CountryCount is the number of submissions from one country
type CountryCount struct {
	Code  string `db:"country_code" json:"country_code"`
	Name  string `db:"country_name" json:"country_name"`
	Count int    `db:"count" json:"count"`
}

// MethodCount is the number of submissions made with one collection method
type MethodCount struct {
	Method string `db:"method" json:"method"`
	Count  int    `db:"count" json:"count"`
}

// MethodDateCount is the number of submissions of one method in one release
type MethodDateCount struct {
	Date   time.Time `db:"date" json:"date"`
	Method string    `db:"method" json:"method"`
	Count  int       `db:"count" json:"count"`
}

// SubmitterInfo describes a submitting organisation
type SubmitterInfo struct {
	ID          int64  `db:"submitter_id" json:"submitter_id"`
	Name        string `db:"submitter_name" json:"submitter_name"`
	CountryName string `db:"submitter_country_name" json:"country_name"`
}

// ComparisonReader reads aggregates over the current submission comparisons
type ComparisonReader interface {
	// Aggregates
	TotalVariants(ctx context.Context, q ComparisonQuery) (int, error)
	TotalVariantsWithoutSignificance(ctx context.Context, q ComparisonQuery) (int, error)
	VariantsBy(ctx context.Context, dim Dimension, q ComparisonQuery) ([]conflict.KeyCount, error)
	ConflictingVariantsByLevel(ctx context.Context, dim Dimension, q ComparisonQuery) ([]conflict.KeyLevelCount, error)
	VariantsByConflictLevel(ctx context.Context, q ComparisonQuery) ([]conflict.KeyLevelCount, error)
	VariantsBySignificance(ctx context.Context, q ComparisonQuery) ([]significance.Count, error)
	ConflictingVariantsBySignificance(ctx context.Context, q ComparisonQuery) ([]conflict.PairCount, error)
	Variants(ctx context.Context, q ComparisonQuery) ([]VariantRow, error)
	Submissions(ctx context.Context, variantName string) ([]SubmissionRow, error)

	// Lookups
	IsSignificance(ctx context.Context, term string) (bool, error)
	IsConditionName(ctx context.Context, name string) (bool, error)
	IsGene(ctx context.Context, gene string) (bool, error)
	IsVariantName(ctx context.Context, name string) (bool, error)
	SubmitterInfo(ctx context.Context, id int64) (*SubmitterInfo, error)
	SubmitterIDFromName(ctx context.Context, name string) (int64, bool, error)
	VariantNameFromRSID(ctx context.Context, rsid string) (string, bool, error)
	VariantNameFromRCV(ctx context.Context, rcv string) (string, bool, error)
	VariantNameFromSCV(ctx context.Context, scv string) (string, bool, error)
	GeneFromRSID(ctx context.Context, rsid string) (string, bool, error)
	RelatedGenes(ctx context.Context, gene string, original bool) ([]string, error)

	SubmitterPrimaryMethod(ctx context.Context, id int64) (string, error)
	CountryName(ctx context.Context, code string) (string, bool, error)

	// Submission counts
	SubmissionsByCountry(ctx context.Context, q ComparisonQuery) ([]CountryCount, error)
	SubmissionsBySubmitter(ctx context.Context, q ComparisonQuery) ([]conflict.KeyCount, error)
	SubmissionsByMethod(ctx context.Context, q ComparisonQuery) ([]MethodCount, error)
	SubmissionsByMethodOverTime(ctx context.Context, q ComparisonQuery) ([]MethodDateCount, error)

	// Snapshot
	MaxDate(ctx context.Context) (time.Time, error)
	TotalSubmissions(ctx context.Context) (int, error)
}
