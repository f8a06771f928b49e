package view

import (
	"strconv"

	"clinvarminer/app"
	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
)

// MatrixCell is one rendered significance pair
type MatrixCell struct {
	Count   int
	Level   conflict.Level
	Present bool
	Href    string
}

// MatrixRow is the pairs of one first-submission significance
type MatrixRow struct {
	Significance string
	Cells        []MatrixCell
}

// ConflictMatrix is a rendered significance-by-significance conflict table
type ConflictMatrix struct {
	ID      string
	Columns []string
	Rows    []MatrixRow
}

// ReviewPath is the matrix page of a review scope. A single submitter's pairs
// live under the "any other submitter" page.
func ReviewPath(scope app.ReviewScope) string {
	switch {
	case scope.Submitter1 != 0:
		other := int64(0)
		if scope.Submitter2 != nil {
			other = *scope.Submitter2
		}
		return "/conflicting-variants-by-submitter/" + strconv.FormatInt(scope.Submitter1, 10) +
			"/" + strconv.FormatInt(other, 10)
	case scope.Gene != nil:
		return "/conflicting-variants-by-gene/" + filter.GeneSegment(*scope.Gene)
	}
	return "/conflicting-variants-by-significance"
}

// PairPath is the variant list behind one matrix cell
func PairPath(scope app.ReviewScope, significance1, significance2 string) string {
	return ReviewPath(scope) + "/" + filter.PathSegment(significance1) + "/" + filter.PathSegment(significance2)
}

// BuildConflictMatrix lays out m with every present cell linked to its variants
func BuildConflictMatrix(m *conflict.Matrix, scope app.ReviewScope, f filter.State) (*ConflictMatrix, error) {
	if m == nil {
		return nil, errors.InternalError("conflict matrix is missing")
	}

	suffix := f.QuerySuffix(filter.ParamMinConflictLevel, filter.ParamOriginalTerms)
	out := &ConflictMatrix{ID: "significance-matrix", Columns: m.Columns}
	for _, s1 := range m.Rows {
		row := MatrixRow{Significance: s1}
		for _, s2 := range m.Columns {
			cell := m.Cell(s1, s2)
			rendered := MatrixCell{Count: cell.Count, Level: cell.Level, Present: cell.Present}
			if cell.Present {
				rendered.Href = PairPath(scope, s1, s2) + suffix
			}
			row.Cells = append(row.Cells, rendered)
		}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// Empty reports whether no pair conflicts
func (m *ConflictMatrix) Empty() bool {
	return len(m.Rows) == 0
}

func (m *ConflictMatrix) TableID() string {
	return m.ID
}

// Records puts the first submission's significance down the side and the
// second's across the top
func (m *ConflictMatrix) Records() [][]string {
	records := [][]string{append([]string{"Significance"}, m.Columns...)}
	for _, row := range m.Rows {
		record := []string{row.Significance}
		for _, cell := range row.Cells {
			record = append(record, strconv.Itoa(cell.Count))
		}
		records = append(records, record)
	}
	return records
}
