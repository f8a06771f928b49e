package view

import (
	"strconv"

	"clinvarminer/ports"
)

// VariantTable lists the variants of a drill-down page
type VariantTable struct {
	ID   string
	Rows []ports.VariantRow
}

func (t *VariantTable) TableID() string {
	return t.ID
}

func (t *VariantTable) Records() [][]string {
	records := [][]string{{"Variant", "rsID"}}
	for _, row := range t.Rows {
		records = append(records, []string{row.Name, row.RSID})
	}
	return records
}

// SubmissionTable lists the submissions of one variant
type SubmissionTable struct {
	ID   string
	Rows []ports.SubmissionRow
}

func (t *SubmissionTable) TableID() string {
	return t.ID
}

func (t *SubmissionTable) Records() [][]string {
	records := [][]string{{"SCV", "Submitter", "Significance", "Review stars", "Condition", "Method"}}
	for _, row := range t.Rows {
		records = append(records, []string{
			row.SCV,
			row.SubmitterName,
			row.Significance,
			strconv.Itoa(row.StarLevel),
			row.ConditionName,
			row.Method,
		})
	}
	return records
}
