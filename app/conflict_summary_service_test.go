package app

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"testing"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/testkit"
	"clinvarminer/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func parseFilter(t *testing.T, raw string) filter.State {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	f, err := filter.Parse(values)
	require.NoError(t, err)
	return f
}

func TestSummarizeBuildsSummaryFromFourQueries(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything

	reader.On("VariantsBy", anything, ports.ByCondition, testkit.LevelQuery(conflict.LevelUnclassified)).
		Return([]conflict.KeyCount{{Key: "Long QT syndrome", Count: 11}, {Key: "Brugada syndrome", Count: 4}}, nil)
	reader.On("VariantsBy", anything, ports.ByCondition, testkit.LevelQuery(conflict.LevelNone)).
		Return([]conflict.KeyCount{{Key: "Long QT syndrome", Count: 8}, {Key: "Brugada syndrome", Count: 2}}, nil)
	reader.On("VariantsBy", anything, ports.ByCondition, testkit.LevelQuery(conflict.LevelConfidence)).
		Return([]conflict.KeyCount{{Key: "Long QT syndrome", Label: "Long QT syndrome", Xref: conflict.Xref{DB: "MedGen", ID: "C0023976"}, Count: 3}}, nil)
	reader.On("ConflictingVariantsByLevel", anything, ports.ByCondition, testkit.LevelQuery(conflict.LevelConfidence)).
		Return([]conflict.KeyLevelCount{
			{Key: "Long QT syndrome", Level: conflict.LevelConfidence, Count: 2},
			{Key: "Long QT syndrome", Level: conflict.LevelClinical, Count: 1},
		}, nil)
	reader.On("VariantsByConflictLevel", anything, testkit.LevelQuery(conflict.LevelConfidence)).
		Return([]conflict.KeyLevelCount{{Level: conflict.LevelConfidence, Count: 2}, {Level: conflict.LevelClinical, Count: 1}}, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelUnclassified)).Return(15, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelNone)).Return(10, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelConfidence)).Return(3, nil)

	report, err := NewConflictSummaryService(reader).Summarize(context.Background(), ports.ByCondition,
		parseFilter(t, "min_conflict_level=2&conditions=Long+QT+syndrome&conditions=Brugada+syndrome"))

	require.NoError(t, err)
	assert.Equal(t, []string{"Long QT syndrome"}, report.Summary.Keys())

	entry, _ := report.Summary.Get("Long QT syndrome")
	assert.Equal(t, 3, entry.Histogram.AnyConflict)
	assert.Equal(t, 5, entry.Histogram.Count(conflict.LevelNone))
	assert.Equal(t, 3, entry.Histogram.Count(conflict.LevelUnclassified))
	assert.Equal(t, 2, entry.Histogram.Count(conflict.LevelConfidence))
	assert.True(t, entry.Histogram.Consistent(conflict.LevelConfidence))
	assert.Equal(t, "C0023976", entry.Xref.ID)

	assert.Equal(t, 15, report.TotalVariants)
	assert.Equal(t, 10, report.TotalPotentiallyConflicting)
	assert.Equal(t, 3, report.TotalConflicting)
	assert.Equal(t, 3, report.Overview.Total(conflict.LevelConfidence))

	reader.AssertExpectations(t)
}

func TestSummarizePassesFiltersThrough(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	var mu sync.Mutex
	var seen []ports.ComparisonQuery
	capture := func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, args.Get(2).(ports.ComparisonQuery))
	}

	reader.On("VariantsBy", mock.Anything, ports.ByGene, mock.Anything).Return([]conflict.KeyCount(nil), nil).Run(capture)
	reader.On("ConflictingVariantsByLevel", mock.Anything, ports.ByGene, mock.Anything).Return([]conflict.KeyLevelCount(nil), nil)
	reader.On("VariantsByConflictLevel", mock.Anything, mock.Anything).Return([]conflict.KeyLevelCount(nil), nil)
	reader.On("TotalVariants", mock.Anything, mock.Anything).Return(0, nil)

	report, err := NewConflictSummaryService(reader).Summarize(context.Background(), ports.ByGene,
		parseFilter(t, "review_status1=2&method2=research&original_genes=1"))

	require.NoError(t, err)
	assert.Equal(t, 0, report.Summary.Len())
	require.NotEmpty(t, seen)
	for _, q := range seen {
		assert.Equal(t, 2, q.MinStars1)
		assert.Equal(t, -1, q.MinStars2)
		assert.Equal(t, "research", q.Method2)
		assert.True(t, q.OriginalGenes)
	}
}

func TestSummarizeFailsOnQueryError(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("VariantsBy", mock.Anything, mock.Anything, mock.Anything).Return([]conflict.KeyCount(nil), nil)
	reader.On("ConflictingVariantsByLevel", mock.Anything, mock.Anything, mock.Anything).
		Return([]conflict.KeyLevelCount(nil), errors.DatabaseError("failed to count", fmt.Errorf("timeout")))
	reader.On("VariantsByConflictLevel", mock.Anything, mock.Anything).Return([]conflict.KeyLevelCount(nil), nil)
	reader.On("TotalVariants", mock.Anything, mock.Anything).Return(0, nil)

	_, err := NewConflictSummaryService(reader).Summarize(context.Background(), ports.BySubmitter, filter.Default())

	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestSummarizeRejectsUnknownDimension(t *testing.T) {
	_, err := NewConflictSummaryService(&testkit.MockComparisonReader{}).
		Summarize(context.Background(), ports.Dimension("country"), filter.Default())

	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
