package conflict

import "clinvarminer/domain/significance"

// PairCount counts the conflicting variants where the first submission reported
// Significance1 and the second Significance2. Level is the highest conflict
// level among those pairs.
type PairCount struct {
	Significance1 string `db:"significance1" json:"significance1"`
	Significance2 string `db:"significance2" json:"significance2"`
	Level         Level  `db:"conflict_level" json:"conflict_level"`
	Count         int    `db:"count" json:"count"`
}

// MatrixCell is one significance pair of a conflict matrix
type MatrixCell struct {
	Level   Level
	Count   int
	Present bool
}

type termPair struct {
	first, second string
}

// Matrix cross-tabulates conflicting variants by the significance of each side.
// Rows and columns are in significance rank order.
type Matrix struct {
	Rows    []string
	Columns []string
	cells   map[termPair]MatrixCell
}

// NewMatrix collects pair counts. A pair reported twice keeps the higher level
// and the sum of the counts.
func NewMatrix(pairs []PairCount) *Matrix {
	m := &Matrix{cells: make(map[termPair]MatrixCell)}
	rows := map[string]bool{}
	cols := map[string]bool{}

	for _, p := range pairs {
		key := termPair{p.Significance1, p.Significance2}
		cell := m.cells[key]
		if !cell.Present || p.Level > cell.Level {
			cell.Level = p.Level
		}
		cell.Count += p.Count
		cell.Present = true
		m.cells[key] = cell

		if !rows[p.Significance1] {
			rows[p.Significance1] = true
			m.Rows = append(m.Rows, p.Significance1)
		}
		if !cols[p.Significance2] {
			cols[p.Significance2] = true
			m.Columns = append(m.Columns, p.Significance2)
		}
	}

	significance.Sort(m.Rows)
	significance.Sort(m.Columns)
	return m
}

// Cell returns the pair, or an absent cell
func (m *Matrix) Cell(significance1, significance2 string) MatrixCell {
	return m.cells[termPair{significance1, significance2}]
}

// Empty reports whether no pair conflicts
func (m *Matrix) Empty() bool {
	return len(m.cells) == 0
}
