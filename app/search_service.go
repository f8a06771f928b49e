package app

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"golang.org/x/text/unicode/norm"
)

// SearchService resolves a free-text query to the page that best matches it
type SearchService struct {
	reader ports.ComparisonReader
}

// NewSearchService creates a search service
func NewSearchService(reader ports.ComparisonReader) *SearchService {
	return &SearchService{reader: reader}
}

// Resolve returns the redirect target for query. Candidates are tried in
// order: rsID, RCV and SCV accessions, the gene of an rsID, gene symbols,
// HGVS names, condition names and submitter names. Anything else becomes a
// site search on host. An empty query resolves to "/".
func (s *SearchService) Resolve(ctx context.Context, query, host string) (string, error) {
	query = norm.NFC.String(strings.TrimSpace(query))
	if query == "" {
		return "/", nil
	}

	lower, upper := strings.ToLower(query), strings.ToUpper(query)

	for _, lookup := range []struct {
		fn  func(context.Context, string) (string, bool, error)
		arg string
	}{
		{s.reader.VariantNameFromRSID, lower},
		{s.reader.VariantNameFromRCV, upper},
		{s.reader.VariantNameFromSCV, upper},
	} {
		name, ok, err := lookup.fn(ctx, lookup.arg)
		if err != nil {
			return "", errors.Wrap(err, "variant search failed")
		}
		if ok {
			return "/submissions-by-variant/" + filter.PathSegment(name), nil
		}
	}

	// an rsID always identifies one gene even when it covers several variants
	gene, ok, err := s.reader.GeneFromRSID(ctx, lower)
	if err != nil {
		return "", errors.Wrap(err, "gene search failed")
	}
	if ok {
		return "/variants-by-gene/" + filter.GeneSegment(gene), nil
	}

	isGene, err := s.reader.IsGene(ctx, upper)
	if err != nil {
		return "", errors.Wrap(err, "gene search failed")
	}
	if isGene {
		return "/variants-by-gene/" + filter.PathSegment(upper), nil
	}
	if lower == filter.IntergenicSegment {
		return "/variants-by-gene/" + filter.IntergenicSegment, nil
	}

	isVariant, err := s.reader.IsVariantName(ctx, query)
	if err != nil {
		return "", errors.Wrap(err, "variant search failed")
	}
	if isVariant {
		return "/submissions-by-variant/" + filter.PathSegment(query), nil
	}

	isCondition, err := s.reader.IsConditionName(ctx, query)
	if err != nil {
		return "", errors.Wrap(err, "condition search failed")
	}
	if isCondition {
		return "/variants-by-condition/" + filter.PathSegment(query), nil
	}

	id, ok, err := s.reader.SubmitterIDFromName(ctx, query)
	if err != nil {
		return "", errors.Wrap(err, "submitter search failed")
	}
	if ok {
		return "/variants-by-submitter/" + strconv.FormatInt(id, 10), nil
	}

	return "https://www.google.com/search?q=" + url.QueryEscape("site:"+host+" "+query), nil
}
