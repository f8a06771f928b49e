package filter

import (
	"net/url"
	"testing"

	"clinvarminer/domain/conflict"
	"clinvarminer/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, raw string) State {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	s, err := Parse(values)
	require.NoError(t, err)
	return s
}

func TestParseDefaults(t *testing.T) {
	s := mustParse(t, "")

	assert.Equal(t, conflict.LevelUnclassified, s.MinConflictLevel)
	assert.Equal(t, AnyReviewStatus, s.Submission1.ReviewStatus)
	assert.Equal(t, AnyReviewStatus, s.Submission2.ReviewStatus)
	assert.False(t, s.OriginalTerms)
	assert.Empty(t, s.Conditions)
	assert.Equal(t, "", s.QuerySuffix(ParamMinConflictLevel))
}

func TestParseRejectsBadIntegers(t *testing.T) {
	for _, raw := range []string{
		"min_conflict_level=high",
		"min_conflict_level=6",
		"min_conflict_level=-2",
		"review_status1=x",
		"review_status2=5",
	} {
		values, _ := url.ParseQuery(raw)
		_, err := Parse(values)
		require.Error(t, err, raw)
		assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err), raw)
	}
}

func TestHasConditionIsExact(t *testing.T) {
	s := mustParse(t, "conditions=Long+QT+syndrome&conditions=Brugada+syndrome")

	assert.True(t, s.HasCondition("Long QT syndrome"))
	assert.True(t, s.HasCondition("Brugada syndrome"))
	assert.False(t, s.HasCondition("long qt syndrome"))
	assert.False(t, s.HasCondition("Long QT syndrome "))
	assert.Equal(t, []string{"Long QT syndrome", "Brugada syndrome"}, s.Conditions)
}

func TestQuerySuffix(t *testing.T) {
	s := mustParse(t, "original_terms=1&min_conflict_level=2&method2=clinical+testing&conditions=x&review_status1=&foo=bar")

	assert.Equal(t, "?method2=clinical%20testing&min_conflict_level=2", s.QuerySuffix(ParamMinConflictLevel))
	assert.Equal(t, "?method2=clinical%20testing&min_conflict_level=2&original_terms=1",
		s.QuerySuffix(ParamMinConflictLevel, ParamOriginalTerms))
	assert.Equal(t, "?method2=clinical%20testing", s.QuerySuffix())
	// idempotent
	assert.Equal(t, s.QuerySuffix(ParamOriginalTerms), s.QuerySuffix(ParamOriginalTerms, ParamOriginalTerms))
}

func TestQuerySuffixFirstValueOnly(t *testing.T) {
	s := mustParse(t, "method1=a%26b&method1=second")
	assert.Equal(t, "?method1=a%26b", s.QuerySuffix())
}

func TestPathSegmentRoundTrip(t *testing.T) {
	name := "Cardiomyopathy/arrhythmia & more"
	seg := PathSegment(name)
	assert.Equal(t, "Cardiomyopathy%252Farrhythmia%20%26%20more", seg)

	// the router decodes once before the handler sees the segment
	once, err := url.PathUnescape(seg)
	require.NoError(t, err)
	decoded, err := DecodePathSegment(once, false)
	require.NoError(t, err)
	assert.Equal(t, name, decoded)

	decoded, err = DecodePathSegment(seg, true)
	require.NoError(t, err)
	assert.Equal(t, name, decoded)
}

func TestGeneSegments(t *testing.T) {
	assert.Equal(t, "intergenic", GeneSegment(""))
	assert.Equal(t, "​intergenic", GeneLabel(""))
	assert.Equal(t, "BRCA1", GeneLabel("BRCA1"))
	assert.Equal(t, "", GeneFromSegment("intergenic"))
	assert.Equal(t, "TTN", GeneFromSegment("TTN"))
	assert.Equal(t, "practice guideline", ReviewStatusLabel(4))
	assert.Equal(t, "any review status", ReviewStatusLabel(-1))
}
