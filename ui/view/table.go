package view

import (
	"clinvarminer/domain/filter"
	"clinvarminer/ports"
)

// Exportable is a rendered table that can be downloaded as CSV or XLSX
type Exportable interface {
	TableID() string
	Records() [][]string
}

// segment is the URL path segment of a key
func segment(dim ports.Dimension, key string) string {
	switch dim {
	case ports.ByGene:
		return filter.GeneSegment(key)
	case ports.BySubmitter:
		return key
	}
	return filter.PathSegment(key)
}

// label is the display text of a key
func label(dim ports.Dimension, key, name string) string {
	if dim == ports.ByGene {
		return filter.GeneLabel(key)
	}
	if name != "" {
		return name
	}
	return key
}

// DimensionTitle is the column heading of a dimension
func DimensionTitle(dim ports.Dimension) string {
	switch dim {
	case ports.ByCondition:
		return "Condition"
	case ports.ByGene:
		return "Gene"
	case ports.BySubmitter:
		return "Submitter"
	}
	return string(dim)
}

// BrowsePath is the drill-down page of one key
func BrowsePath(dim ports.Dimension, key string) string {
	return "/variants-by-" + string(dim) + "/" + segment(dim, key)
}
