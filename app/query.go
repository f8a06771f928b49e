package app

import (
	"strconv"

	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"
)

// baseQuery maps the request filters onto a comparison query
func baseQuery(f filter.State) ports.ComparisonQuery {
	return ports.ComparisonQuery{
		MinStars1:        f.Submission1.ReviewStatus,
		MinStars2:        f.Submission2.ReviewStatus,
		Method1:          f.Submission1.Method,
		Method2:          f.Submission2.Method,
		MinConflictLevel: f.MinConflictLevel,
		ConditionNames:   f.Conditions,
		OriginalTerms:    f.OriginalTerms,
		OriginalGenes:    f.OriginalGenes,
	}
}

// pin restricts q to one key of dim
func pin(q ports.ComparisonQuery, dim ports.Dimension, key string) (ports.ComparisonQuery, error) {
	switch dim {
	case ports.ByCondition:
		q.ConditionNames = []string{key}
	case ports.ByGene:
		gene := key
		q.Gene = &gene
	case ports.BySubmitter:
		id, err := ParseSubmitterID(key)
		if err != nil {
			return q, err
		}
		q.SubmitterID = id
	default:
		return q, errors.InvalidInput("unknown dimension " + string(dim))
	}
	return q, nil
}

// ParseSubmitterID parses a positive submitter id from a URL segment
func ParseSubmitterID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NotFound("submitter " + raw)
	}
	return id, nil
}
