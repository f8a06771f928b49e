package view

import (
	"strconv"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"
)

// ConflictTableOptions identifies a conflict summary table on a page
type ConflictTableOptions struct {
	ID        string
	BasePath  string
	Dimension ports.Dimension
}

// Cell is a count that is marked (highlighted) only when present and non-zero
type Cell struct {
	Count  int
	Marked bool
}

func markedCell(h conflict.Histogram, level conflict.Level) Cell {
	count := h.Count(level)
	return Cell{Count: count, Marked: h.Has(level) && count != 0}
}

// ConflictColumn is one visible conflict level column
type ConflictColumn struct {
	Level conflict.Level
	Title string
}

// ConflictRow is one key of a conflict summary
type ConflictRow struct {
	Key          string
	Label        string
	Xref         conflict.Xref
	Href         string
	Checkbox     bool
	Checked      bool
	Unclassified Cell
	NoConflict   Cell
	Levels       []int
	AnyConflict  int
}

// ConflictTable is a rendered conflict summary. Rows keep the summary's order.
type ConflictTable struct {
	ID         string
	Dimension  ports.Dimension
	KeyTitle   string
	Checkboxes bool
	Columns    []ConflictColumn
	Rows       []ConflictRow
}

// BuildConflictTable lays out a conflict summary for the given filter. Level
// columns below the filter's minimum conflict level are left out entirely.
func BuildConflictTable(summary *conflict.Summary, f filter.State, opts ConflictTableOptions) (*ConflictTable, error) {
	if summary == nil {
		return nil, errors.InternalError("conflict summary is missing")
	}

	table := &ConflictTable{
		ID:         opts.ID,
		Dimension:  opts.Dimension,
		KeyTitle:   DimensionTitle(opts.Dimension),
		Checkboxes: opts.Dimension == ports.ByCondition,
	}
	for _, level := range conflict.ConflictLevels() {
		if f.MinConflictLevel <= level {
			table.Columns = append(table.Columns, ConflictColumn{Level: level, Title: level.String()})
		}
	}

	suffix := f.QuerySuffix(filter.ParamMinConflictLevel)
	for _, entry := range summary.Entries() {
		row := ConflictRow{
			Key:          entry.Key,
			Label:        label(opts.Dimension, entry.Key, entry.Label),
			Xref:         entry.Xref,
			Href:         opts.BasePath + segment(opts.Dimension, entry.Key) + suffix,
			Checkbox:     table.Checkboxes,
			Checked:      table.Checkboxes && f.HasCondition(entry.Key),
			Unclassified: markedCell(entry.Histogram, conflict.LevelUnclassified),
			NoConflict:   markedCell(entry.Histogram, conflict.LevelNone),
			AnyConflict:  entry.Histogram.AnyConflict,
		}
		for _, col := range table.Columns {
			row.Levels = append(row.Levels, entry.Histogram.Count(col.Level))
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// Empty reports whether the table should be omitted
func (t *ConflictTable) Empty() bool {
	return len(t.Rows) == 0
}

// TotalLabel is the line shown above (or instead of) the table
func (t *ConflictTable) TotalLabel() string {
	return "Total " + dimensionPlural(t.Dimension) + " with conflicts: " + strconv.Itoa(len(t.Rows))
}

func (t *ConflictTable) TableID() string {
	return t.ID
}

// Records flattens the visible table for CSV and XLSX downloads
func (t *ConflictTable) Records() [][]string {
	header := []string{t.KeyTitle, conflict.LevelUnclassified.String(), conflict.LevelNone.String()}
	for _, col := range t.Columns {
		header = append(header, col.Title)
	}
	header = append(header, "any conflict")

	records := [][]string{header}
	for _, row := range t.Rows {
		record := []string{row.Label, strconv.Itoa(row.Unclassified.Count), strconv.Itoa(row.NoConflict.Count)}
		for _, count := range row.Levels {
			record = append(record, strconv.Itoa(count))
		}
		record = append(record, strconv.Itoa(row.AnyConflict))
		records = append(records, record)
	}
	return records
}

func dimensionPlural(dim ports.Dimension) string {
	switch dim {
	case ports.ByCondition:
		return "conditions"
	case ports.ByGene:
		return "genes"
	case ports.BySubmitter:
		return "submitters"
	}
	return string(dim) + "s"
}
