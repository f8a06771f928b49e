package filter

import (
	"net/url"
	"strings"
)

// IntergenicSegment stands in for the empty gene in URLs
const IntergenicSegment = "intergenic"

// IntergenicLabel is how the empty gene is displayed. The leading zero-width
// space keeps it apart from a real gene called "intergenic" when sorting.
const IntergenicLabel = "​intergenic"

// PathSegment escapes s for use as one URL path segment. Slashes become
// %252F so they survive the router decoding the path once.
func PathSegment(s string) string {
	return strings.ReplaceAll(Escape(s), "%2F", "%252F")
}

// DecodePathSegment reverses PathSegment for a segment the router has already
// decoded once. raw reports whether the segment is still fully escaped.
func DecodePathSegment(segment string, raw bool) (string, error) {
	if raw {
		decoded, err := url.PathUnescape(segment)
		if err != nil {
			return "", err
		}
		segment = decoded
	}
	return strings.ReplaceAll(segment, "%2F", "/"), nil
}

// GeneSegment is the URL segment for a gene, with the empty gene as "intergenic"
func GeneSegment(gene string) string {
	if gene == "" {
		return IntergenicSegment
	}
	return PathSegment(gene)
}

// GeneLabel is the display text for a gene
func GeneLabel(gene string) string {
	if gene == "" {
		return IntergenicLabel
	}
	return gene
}

// GeneFromSegment maps a decoded gene segment back to a gene
func GeneFromSegment(segment string) string {
	if segment == IntergenicSegment {
		return ""
	}
	return segment
}
