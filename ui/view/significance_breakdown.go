package view

import (
	"strconv"

	"clinvarminer/app"
	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/domain/significance"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"
)

// BreakdownRow is one (label, count) line of a breakdown table
type BreakdownRow struct {
	Key   string
	Label string
	Xref  conflict.Xref
	Href  string
	Count int
}

// BreakdownSection is one searchable, downloadable breakdown table
type BreakdownSection struct {
	ID        string
	Title     string
	Dimension ports.Dimension
	Rows      []BreakdownRow

	// CountTitle heads the count column; variants when empty
	CountTitle string
}

func (s *BreakdownSection) TableID() string {
	return s.ID
}

func (s *BreakdownSection) Records() [][]string {
	countTitle := s.CountTitle
	if countTitle == "" {
		countTitle = "Variants"
	}
	records := [][]string{{DimensionTitle(s.Dimension), countTitle}}
	for _, row := range s.Rows {
		records = append(records, []string{row.Label, strconv.Itoa(row.Count)})
	}
	return records
}

// SignificanceBreakdown is the rendered page of one significance term
type SignificanceBreakdown struct {
	Significance string
	Totals       significance.Totals
	Unanimous    int
	Sections     []*BreakdownSection
}

// suffixParams lists the parameters a breakdown row carries into its drill-down.
// Gene identity depends on normalization, so gene rows also keep original_genes.
func suffixParams(dim ports.Dimension) []string {
	params := []string{filter.ParamMinConflictLevel, filter.ParamOriginalTerms}
	if dim == ports.ByGene {
		params = append(params, filter.ParamOriginalGenes)
	}
	return params
}

func buildSection(id, title string, dim ports.Dimension, rows []conflict.KeyCount, pathSuffix string, f filter.State) *BreakdownSection {
	return buildLinkedSection(id, title, dim, rows, func(key string) string {
		return BrowsePath(dim, key) + pathSuffix
	}, f.QuerySuffix(suffixParams(dim)...))
}

// buildLinkedSection is buildSection with rows linked by href
func buildLinkedSection(id, title string, dim ports.Dimension, rows []conflict.KeyCount, href func(key string) string, query string) *BreakdownSection {
	section := &BreakdownSection{ID: id, Title: title, Dimension: dim}
	for _, row := range rows {
		section.Rows = append(section.Rows, BreakdownRow{
			Key:   row.Key,
			Label: label(dim, row.Key, row.Label),
			Xref:  row.Xref,
			Href:  href(row.Key) + query,
			Count: row.Count,
		})
	}
	return section
}

// BuildSignificanceBreakdown lays out the totals and the submitter, condition
// and gene breakdowns of a significance term. With no variants in scope the
// page has no sections at all.
func BuildSignificanceBreakdown(report *app.SignificanceReport, f filter.State) (*SignificanceBreakdown, error) {
	if report == nil {
		return nil, errors.InternalError("significance report is missing")
	}
	if err := report.Totals.Validate(); err != nil {
		return nil, errors.Wrapf(err, "inconsistent totals for %q", report.Significance)
	}

	out := &SignificanceBreakdown{
		Significance: report.Significance,
		Totals:       report.Totals,
		Unanimous:    report.Totals.Unanimous(),
	}
	if report.Totals.Variants == 0 {
		return out, nil
	}

	pathSuffix := "/significance/" + filter.PathSegment(report.Significance)
	out.Sections = []*BreakdownSection{
		buildSection("by-submitter", "Breakdown by submitter", ports.BySubmitter, report.BySubmitter, pathSuffix, f),
		buildSection("by-condition", "Breakdown by condition", ports.ByCondition, report.ByCondition, pathSuffix, f),
		buildSection("by-gene", "Breakdown by gene", ports.ByGene, report.ByGene, pathSuffix, f),
	}
	return out, nil
}

// CrossPath is the variants of key under dim that are also under otherKey of other
func CrossPath(dim ports.Dimension, key string, other ports.Dimension, otherKey string) string {
	return BrowsePath(dim, key) + "/" + string(other) + "/" + segment(other, otherKey)
}

// BuildKeyBreakdowns lays out the breakdowns of a condition, gene or submitter
// overview, in dimension order. Rows link to the variants the two keys share.
func BuildKeyBreakdowns(report *app.KeyReport, f filter.State) []*BreakdownSection {
	var sections []*BreakdownSection
	if report == nil || report.TotalVariants == 0 {
		return sections
	}
	for _, dim := range ports.Dimensions() {
		rows, ok := report.Breakdowns[dim]
		if !ok {
			continue
		}
		sections = append(sections, buildLinkedSection("by-"+string(dim), "Breakdown by "+string(dim), dim, rows,
			func(key string) string {
				return CrossPath(report.Dimension, report.Key, dim, key)
			}, f.QuerySuffix(append(suffixParams(report.Dimension), suffixParams(dim)...)...)))
	}
	return sections
}

// BuildKeyList lays out every key of one dimension with its variant count
func BuildKeyList(list *app.KeyList, f filter.State) *BreakdownSection {
	return buildSection("variants-by-"+string(list.Dimension), "Variants by "+string(list.Dimension),
		list.Dimension, list.Rows, "", f)
}
