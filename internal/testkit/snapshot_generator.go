package testkit

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"clinvarminer/domain/significance"

	"github.com/jmoiron/sqlx"
)

// SnapshotGeneratorConfig configures the synthetic ClinVar snapshot generator
type SnapshotGeneratorConfig struct {
	VariantCount             int       `json:"variant_count"`
	SubmitterCount           int       `json:"submitter_count"`
	MaxSubmissionsPerVariant int       `json:"max_submissions_per_variant"`
	IntergenicRate           float64   `json:"intergenic_rate"`
	Date                     time.Time `json:"date"`
	Seed                     int64     `json:"seed"`
}

// DefaultSnapshotConfig returns defaults sized for a local development database
func DefaultSnapshotConfig() SnapshotGeneratorConfig {
	return SnapshotGeneratorConfig{
		VariantCount:             2000,
		SubmitterCount:           40,
		MaxSubmissionsPerVariant: 5,
		IntergenicRate:           0.05,
		Date:                     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Seed:                     42,
	}
}

// Submission is one row of the submissions table
type Submission struct {
	Date                   time.Time `db:"date"`
	VariantName            string    `db:"variant_name"`
	VariantID              int64     `db:"variant_id"`
	RSID                   string    `db:"rsid"`
	Gene                   string    `db:"gene"`
	GeneType               int       `db:"gene_type"`
	NormalizedGene         string    `db:"normalized_gene"`
	NormalizedGeneType     int       `db:"normalized_gene_type"`
	RCV                    string    `db:"rcv"`
	SCV                    string    `db:"scv"`
	SubmitterID            int64     `db:"submitter_id"`
	SubmitterName          string    `db:"submitter_name"`
	SubmitterCountryCode   string    `db:"submitter_country_code"`
	SubmitterCountryName   string    `db:"submitter_country_name"`
	Significance           string    `db:"significance"`
	NormalizedSignificance string    `db:"normalized_significance"`
	StarLevel              int       `db:"star_level"`
	ConditionName          string    `db:"condition_name"`
	ConditionDB            string    `db:"condition_db"`
	ConditionID            string    `db:"condition_id"`
	ConditionXrefs         string    `db:"condition_xrefs"`
	Method                 string    `db:"method"`
	NormalizedMethod       string    `db:"normalized_method"`
}

// Comparison is one row of the comparisons table
type Comparison struct {
	Date                    time.Time `db:"date"`
	VariantName             string    `db:"variant_name"`
	RSID                    string    `db:"rsid"`
	Gene                    string    `db:"gene"`
	GeneType                int       `db:"gene_type"`
	NormalizedGene          string    `db:"normalized_gene"`
	NormalizedGeneType      int       `db:"normalized_gene_type"`
	Submitter1ID            int64     `db:"submitter1_id"`
	Submitter1Name          string    `db:"submitter1_name"`
	Submitter1CountryCode   string    `db:"submitter1_country_code"`
	Submitter1CountryName   string    `db:"submitter1_country_name"`
	SCV1                    string    `db:"scv1"`
	Significance1           string    `db:"significance1"`
	NormalizedSignificance1 string    `db:"normalized_significance1"`
	StarLevel1              int       `db:"star_level1"`
	Condition1Name          string    `db:"condition1_name"`
	Condition1DB            string    `db:"condition1_db"`
	Condition1ID            string    `db:"condition1_id"`
	Method1                 string    `db:"method1"`
	NormalizedMethod1       string    `db:"normalized_method1"`
	Submitter2ID            int64     `db:"submitter2_id"`
	Submitter2Name          string    `db:"submitter2_name"`
	SCV2                    string    `db:"scv2"`
	Significance2           string    `db:"significance2"`
	NormalizedSignificance2 string    `db:"normalized_significance2"`
	StarLevel2              int       `db:"star_level2"`
	Condition2Name          string    `db:"condition2_name"`
	Condition2DB            string    `db:"condition2_db"`
	Condition2ID            string    `db:"condition2_id"`
	Method2                 string    `db:"method2"`
	NormalizedMethod2       string    `db:"normalized_method2"`
	ConflictLevel           int       `db:"conflict_level"`
}

// Snapshot is one generated ClinVar release
type Snapshot struct {
	Submissions []Submission
	Comparisons []Comparison
}

var (
	sampleGenes = []string{"BRCA1", "BRCA2", "KCNQ1", "KCNH2", "SCN5A", "MYH7", "TTN", "LDLR", "MLH1", "TP53"}

	sampleConditions = []struct{ name, db, id string }{
		{"Long QT syndrome", "MedGen", "C0023976"},
		{"Brugada syndrome", "MedGen", "C1142166"},
		{"Hereditary breast and ovarian cancer syndrome", "MedGen", "C0677776"},
		{"Hypertrophic cardiomyopathy", "MedGen", "C0007194"},
		{"Familial hypercholesterolemia", "MedGen", "C0020445"},
		{"Lynch syndrome", "MedGen", "C1333990"},
		{"not provided", "", ""},
	}

	// raw terms as submitters write them, weighted by repetition
	sampleSignificances = []string{
		"Pathogenic", "Pathogenic", "Likely pathogenic", "Uncertain significance", "Uncertain significance",
		"Uncertain significance", "Likely benign", "Benign", "Benign", "drug response", "not provided",
		"probably pathogenic",
	}

	sampleMethods = []string{"clinical testing", "clinical testing", "research", "literature only", "curation"}

	sampleCountries = []struct{ code, name string }{
		{"US", "United States"}, {"GB", "United Kingdom"}, {"NL", "Netherlands"}, {"DE", "Germany"}, {"", ""},
	}
)

// SnapshotGenerator generates a deterministic synthetic snapshot
type SnapshotGenerator struct {
	config SnapshotGeneratorConfig
	rng    *rand.Rand
}

// NewSnapshotGenerator creates a new snapshot generator
func NewSnapshotGenerator(config SnapshotGeneratorConfig) *SnapshotGenerator {
	return &SnapshotGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// Generate builds the submissions of every variant and all pairwise comparisons
func (g *SnapshotGenerator) Generate() (*Snapshot, error) {
	if g.config.VariantCount <= 0 || g.config.SubmitterCount <= 0 || g.config.MaxSubmissionsPerVariant <= 0 {
		return nil, fmt.Errorf("variant, submitter and submission counts must be positive")
	}

	snap := &Snapshot{}
	scv := 0
	for i := 0; i < g.config.VariantCount; i++ {
		subs := g.variantSubmissions(i, &scv)
		snap.Submissions = append(snap.Submissions, subs...)
		snap.Comparisons = append(snap.Comparisons, g.compare(subs)...)
	}
	return snap, nil
}

func (g *SnapshotGenerator) variantSubmissions(i int, scv *int) []Submission {
	gene := sampleGenes[g.rng.Intn(len(sampleGenes))]
	geneType := 1
	if g.rng.Float64() < g.config.IntergenicRate {
		gene, geneType = "", 0
	}

	name := fmt.Sprintf("NM_%06d.1(%s):c.%d%c>%c", 1000+i, gene, 100+g.rng.Intn(5000), "ACGT"[g.rng.Intn(4)], "ACGT"[g.rng.Intn(4)])
	if gene == "" {
		name = fmt.Sprintf("NC_000001.11:g.%d%c>%c", 1000000+i, "ACGT"[g.rng.Intn(4)], "ACGT"[g.rng.Intn(4)])
	}
	rsid := ""
	if g.rng.Float64() < 0.8 {
		rsid = fmt.Sprintf("rs%d", 100000+i)
	}
	condition := sampleConditions[g.rng.Intn(len(sampleConditions))]

	count := 1 + g.rng.Intn(g.config.MaxSubmissionsPerVariant)
	subs := make([]Submission, 0, count)
	for j := 0; j < count; j++ {
		*scv++
		submitter := int64(1 + g.rng.Intn(g.config.SubmitterCount))
		country := sampleCountries[int(submitter)%len(sampleCountries)]
		term := sampleSignificances[g.rng.Intn(len(sampleSignificances))]
		method := sampleMethods[g.rng.Intn(len(sampleMethods))]

		subs = append(subs, Submission{
			Date:                   g.config.Date,
			VariantName:            name,
			VariantID:              int64(i + 1),
			RSID:                   rsid,
			Gene:                   gene,
			GeneType:               geneType,
			NormalizedGene:         gene,
			NormalizedGeneType:     geneType,
			RCV:                    fmt.Sprintf("RCV%09d", i+1),
			SCV:                    fmt.Sprintf("SCV%09d", *scv),
			SubmitterID:            submitter,
			SubmitterName:          fmt.Sprintf("Laboratory %d", submitter),
			SubmitterCountryCode:   country.code,
			SubmitterCountryName:   country.name,
			Significance:           term,
			NormalizedSignificance: strings.ToLower(significance.Standardize(term)),
			StarLevel:              g.rng.Intn(4),
			ConditionName:          condition.name,
			ConditionDB:            condition.db,
			ConditionID:            condition.id,
			ConditionXrefs:         strings.Trim(condition.db+":"+condition.id, ":"),
			Method:                 method,
			NormalizedMethod:       method,
		})
	}
	return subs
}

// compare pairs every submission of a variant with every other one in both
// orders. A lone submission is paired with itself at level -1.
func (g *SnapshotGenerator) compare(subs []Submission) []Comparison {
	if len(subs) == 1 {
		return []Comparison{comparison(subs[0], subs[0], -1)}
	}

	var out []Comparison
	for i := range subs {
		for j := range subs {
			if i != j {
				out = append(out, comparison(subs[i], subs[j], fixtureConflictLevel(subs[i], subs[j])))
			}
		}
	}
	return out
}

func comparison(a, b Submission, level int) Comparison {
	return Comparison{
		Date:                    a.Date,
		VariantName:             a.VariantName,
		RSID:                    a.RSID,
		Gene:                    a.Gene,
		GeneType:                a.GeneType,
		NormalizedGene:          a.NormalizedGene,
		NormalizedGeneType:      a.NormalizedGeneType,
		Submitter1ID:            a.SubmitterID,
		Submitter1Name:          a.SubmitterName,
		Submitter1CountryCode:   a.SubmitterCountryCode,
		Submitter1CountryName:   a.SubmitterCountryName,
		SCV1:                    a.SCV,
		Significance1:           a.Significance,
		NormalizedSignificance1: a.NormalizedSignificance,
		StarLevel1:              a.StarLevel,
		Condition1Name:          a.ConditionName,
		Condition1DB:            a.ConditionDB,
		Condition1ID:            a.ConditionID,
		Method1:                 a.Method,
		NormalizedMethod1:       a.NormalizedMethod,
		Submitter2ID:            b.SubmitterID,
		Submitter2Name:          b.SubmitterName,
		SCV2:                    b.SCV,
		Significance2:           b.Significance,
		NormalizedSignificance2: b.NormalizedSignificance,
		StarLevel2:              b.StarLevel,
		Condition2Name:          b.ConditionName,
		Condition2DB:            b.ConditionDB,
		Condition2ID:            b.ConditionID,
		Method2:                 b.Method,
		NormalizedMethod2:       b.NormalizedMethod,
		ConflictLevel:           level,
	}
}

// fixtureConflictLevel is a coarse stand-in for the importer's classification,
// good enough to populate every column of the summary tables.
func fixtureConflictLevel(a, b Submission) int {
	ta, tb := a.NormalizedSignificance, b.NormalizedSignificance
	switch {
	case a.Significance == b.Significance:
		return 0
	case ta == tb:
		return 1
	case group(ta) != "" && group(ta) == group(tb):
		return 2
	case (ta == "uncertain significance" && group(tb) == "benign") || (tb == "uncertain significance" && group(ta) == "benign"):
		return 3
	case group(ta) == "pathogenic" || group(tb) == "pathogenic":
		other := tb
		if group(ta) != "pathogenic" {
			other = ta
		}
		if other == "uncertain significance" || group(other) == "benign" {
			return 5
		}
	}
	return 4
}

func group(term string) string {
	switch term {
	case "pathogenic", "likely pathogenic":
		return "pathogenic"
	case "benign", "likely benign":
		return "benign"
	}
	return ""
}

var (
	submissionColumns = []string{
		"date", "variant_name", "variant_id", "rsid", "gene", "gene_type", "normalized_gene", "normalized_gene_type",
		"rcv", "scv", "submitter_id", "submitter_name", "submitter_country_code", "submitter_country_name",
		"significance", "normalized_significance", "star_level", "condition_name", "condition_db", "condition_id",
		"condition_xrefs", "method", "normalized_method",
	}
	comparisonColumns = []string{
		"date", "variant_name", "rsid", "gene", "gene_type", "normalized_gene", "normalized_gene_type",
		"submitter1_id", "submitter1_name", "submitter1_country_code", "submitter1_country_name", "scv1", "significance1", "normalized_significance1", "star_level1",
		"condition1_name", "condition1_db", "condition1_id", "method1", "normalized_method1",
		"submitter2_id", "submitter2_name", "scv2", "significance2", "normalized_significance2", "star_level2",
		"condition2_name", "condition2_db", "condition2_id", "method2", "normalized_method2", "conflict_level",
	}
)

// insertStatement builds a named INSERT for sqlx batch execution
func insertStatement(table string, columns []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (:%s)", table,
		strings.Join(columns, ", "), strings.Join(columns, ", :"))
}

const loadBatchSize = 500

// Load inserts the snapshot into the submissions and comparisons tables
func Load(ctx context.Context, db *sqlx.DB, snap *Snapshot) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertSubmissions := insertStatement("submissions", submissionColumns)
	for start := 0; start < len(snap.Submissions); start += loadBatchSize {
		end := min(start+loadBatchSize, len(snap.Submissions))
		if _, err := tx.NamedExecContext(ctx, insertSubmissions, snap.Submissions[start:end]); err != nil {
			return fmt.Errorf("failed to insert submissions: %w", err)
		}
	}

	insertComparisons := insertStatement("comparisons", comparisonColumns)
	for start := 0; start < len(snap.Comparisons); start += loadBatchSize {
		end := min(start+loadBatchSize, len(snap.Comparisons))
		if _, err := tx.NamedExecContext(ctx, insertComparisons, snap.Comparisons[start:end]); err != nil {
			return fmt.Errorf("failed to insert comparisons: %w", err)
		}
	}

	return tx.Commit()
}
