package view

import (
	"strconv"

	"clinvarminer/domain/filter"
	"clinvarminer/domain/significance"
)

// SignificanceRow is one term of the significance list
type SignificanceRow struct {
	Significance   string
	Count          int
	GeneCount      int
	ConditionCount int
	SubmitterCount int
	Href           string
}

// SignificanceList is the ranked list of significance terms
type SignificanceList struct {
	ID   string
	Rows []SignificanceRow
}

// BuildSignificanceList links every ranked term to its breakdown page
func BuildSignificanceList(counts []significance.Count, f filter.State) *SignificanceList {
	suffix := f.QuerySuffix(filter.ParamMinConflictLevel, filter.ParamOriginalTerms)
	list := &SignificanceList{ID: "significance-terms"}
	for _, c := range counts {
		list.Rows = append(list.Rows, SignificanceRow{
			Significance:   c.Significance,
			Count:          c.Count,
			GeneCount:      c.GeneCount,
			ConditionCount: c.ConditionCount,
			SubmitterCount: c.SubmitterCount,
			Href:           "/variants-by-significance/" + filter.PathSegment(c.Significance) + suffix,
		})
	}
	return list
}

func (l *SignificanceList) TableID() string {
	return l.ID
}

func (l *SignificanceList) Records() [][]string {
	records := [][]string{{"Significance", "Variants", "Genes", "Conditions", "Submitters"}}
	for _, row := range l.Rows {
		records = append(records, []string{
			row.Significance,
			strconv.Itoa(row.Count),
			strconv.Itoa(row.GeneCount),
			strconv.Itoa(row.ConditionCount),
			strconv.Itoa(row.SubmitterCount),
		})
	}
	return records
}
