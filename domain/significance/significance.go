package significance

import (
	"sort"
	"strings"
)

// standardRanks orders the standard terms from most to least clinically significant
var standardRanks = []string{
	"pathogenic",
	"likely pathogenic",
	"uncertain significance",
	"likely benign",
	"benign",
	"other",
	"not provided",
}

// nonstandardTerms maps the free-text spellings submitters use onto standard terms
var nonstandardTerms = map[string]string{
	"probably pathogenic":               "likely pathogenic",
	"probable-pathogenic":               "likely pathogenic",
	"suspected pathogenic":              "likely pathogenic",
	"pathologic":                        "pathogenic",
	"variant of unknown significance":   "uncertain significance",
	"variant of uncertain significance": "uncertain significance",
	"unknown significance":              "uncertain significance",
	"vus":                               "uncertain significance",
	"probably not pathogenic":           "likely benign",
	"probable-non-pathogenic":           "likely benign",
	"non-pathogenic":                    "benign",
	"not pathogenic":                    "benign",
	"no known pathogenicity":            "benign",
}

// Standardize maps a submitted term onto its standard spelling when one is known
func Standardize(term string) string {
	if std, ok := nonstandardTerms[strings.ToLower(term)]; ok {
		return std
	}
	return term
}

// Rank orders significance terms. Unknown terms sort after "benign" and before
// "other" and "not provided".
func Rank(term string) float64 {
	std := Standardize(term)
	for i, s := range standardRanks {
		if s == std {
			return float64(i)
		}
	}
	return float64(len(standardRanks)) - 2.5
}

// Sort orders terms by rank, alphabetically within a rank
func Sort(terms []string) {
	sort.SliceStable(terms, func(i, j int) bool {
		ri, rj := Rank(terms[i]), Rank(terms[j])
		if ri != rj {
			return ri < rj
		}
		return terms[i] < terms[j]
	})
}

// Count is the number of variants classified with one significance
type Count struct {
	Significance   string `db:"significance" json:"significance"`
	Count          int    `db:"count" json:"count"`
	GeneCount      int    `db:"gene_count" json:"gene_count"`
	ConditionCount int    `db:"condition_count" json:"condition_count"`
	SubmitterCount int    `db:"submitter_count" json:"submitter_count"`
}

// Overview returns the per-significance counts in rank order. The five standard
// ACMG terms are always present, with zero when nothing was submitted.
func Overview(rows []Count) []Count {
	byTerm := map[string]Count{}
	for _, s := range standardRanks[:5] {
		byTerm[s] = Count{Significance: s}
	}
	for _, row := range rows {
		byTerm[row.Significance] = row
	}

	terms := make([]string, 0, len(byTerm))
	for term := range byTerm {
		terms = append(terms, term)
	}
	Sort(terms)

	out := make([]Count, 0, len(terms))
	for _, term := range terms {
		out = append(out, byTerm[term])
	}
	return out
}
