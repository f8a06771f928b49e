package view

import (
	"strconv"

	"clinvarminer/app"
	"clinvarminer/domain/filter"
	"clinvarminer/ports"
)

// CountryRow is one submitter country
type CountryRow struct {
	Code  string
	Name  string
	Href  string
	Count int
}

// CountryTable counts submissions per submitter country
type CountryTable struct {
	ID   string
	Rows []CountryRow
}

// CountryPath is the page of one country; submitters without a country are
// under the bare trailing slash
func CountryPath(code string) string {
	return "/total-submissions-by-country/" + filter.PathSegment(code)
}

// BuildCountryTable links every country to its submitters
func BuildCountryTable(rows []ports.CountryCount, f filter.State) *CountryTable {
	suffix := f.QuerySuffix(filter.ParamMinConflictLevel)
	table := &CountryTable{ID: "submissions-by-country"}
	for _, row := range rows {
		table.Rows = append(table.Rows, CountryRow{
			Code:  row.Code,
			Name:  row.Name,
			Href:  CountryPath(row.Code) + suffix,
			Count: row.Count,
		})
	}
	return table
}

func (t *CountryTable) TableID() string {
	return t.ID
}

func (t *CountryTable) Records() [][]string {
	records := [][]string{{"Country", "Submissions"}}
	for _, row := range t.Rows {
		records = append(records, []string{row.Name, strconv.Itoa(row.Count)})
	}
	return records
}

// BuildCountrySubmitters lays out the submitters of one country
func BuildCountrySubmitters(report *app.CountryReport, f filter.State) *BreakdownSection {
	section := buildSection("submissions-by-submitter", "Submitters from "+report.Name,
		ports.BySubmitter, report.BySubmitter, "", f)
	section.CountTitle = "Submissions"
	return section
}

// MethodTable counts current submissions per collection method
type MethodTable struct {
	ID   string
	Rows []ports.MethodCount
}

func (t *MethodTable) TableID() string {
	return t.ID
}

func (t *MethodTable) Records() [][]string {
	records := [][]string{{"Method", "Submissions"}}
	for _, row := range t.Rows {
		records = append(records, []string{row.Method, strconv.Itoa(row.Count)})
	}
	return records
}

// MethodHistoryRow is the submissions of every method in one release
type MethodHistoryRow struct {
	Date   string
	Counts []int
}

// MethodHistory pivots the method counts of each release, one row per release
type MethodHistory struct {
	ID      string
	Methods []string
	Rows    []MethodHistoryRow
}

// BuildMethodHistory pivots a history ordered by date, then method. Every
// release is expected to carry every method.
func BuildMethodHistory(history []ports.MethodDateCount) *MethodHistory {
	out := &MethodHistory{ID: "submissions-by-method-over-time"}
	column := map[string]int{}
	for _, row := range history {
		if _, ok := column[row.Method]; !ok {
			column[row.Method] = len(out.Methods)
			out.Methods = append(out.Methods, row.Method)
		}
	}

	for _, row := range history {
		date := row.Date.Format("2006-01-02")
		if n := len(out.Rows); n == 0 || out.Rows[n-1].Date != date {
			out.Rows = append(out.Rows, MethodHistoryRow{Date: date, Counts: make([]int, len(out.Methods))})
		}
		out.Rows[len(out.Rows)-1].Counts[column[row.Method]] = row.Count
	}
	return out
}

func (h *MethodHistory) TableID() string {
	return h.ID
}

func (h *MethodHistory) Records() [][]string {
	records := [][]string{append([]string{"Date"}, h.Methods...)}
	for _, row := range h.Rows {
		record := []string{row.Date}
		for _, count := range row.Counts {
			record = append(record, strconv.Itoa(count))
		}
		records = append(records, record)
	}
	return records
}
