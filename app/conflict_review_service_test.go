package app

import (
	"context"
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

func TestReviewWholeDatabaseBuildsMatrix(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything

	reader.On("VariantsByConflictLevel", anything, testkit.LevelQuery(conflict.LevelUnclassified)).
		Return([]conflict.KeyLevelCount{{Level: conflict.LevelClinical, Count: 4}}, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelUnclassified)).Return(20, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelNone)).Return(12, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelSynonymous)).Return(4, nil)
	reader.On("ConflictingVariantsBySignificance", anything, testkit.LevelQuery(conflict.LevelSynonymous)).
		Return([]conflict.PairCount{
			{Significance1: "pathogenic", Significance2: "benign", Level: conflict.LevelClinical, Count: 4},
			{Significance1: "benign", Significance2: "pathogenic", Level: conflict.LevelClinical, Count: 4},
		}, nil)

	report, err := NewConflictReviewService(reader).Review(context.Background(), ReviewScope{}, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, 20, report.TotalVariants)
	assert.Equal(t, 12, report.TotalPotentiallyConflicting)
	assert.Equal(t, 4, report.TotalConflicting)
	assert.Equal(t, []string{"pathogenic", "benign"}, report.Matrix.Rows)
	assert.Equal(t, 4, report.Matrix.Cell("benign", "pathogenic").Count)
	assert.Nil(t, report.Counterparts)
	assert.Nil(t, report.Variants)
	reader.AssertNotCalled(t, "Variants", anything, anything)
	reader.AssertExpectations(t)
}

func TestReviewSingleSubmitterAddsCounterparts(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	counterpart := func(level conflict.Level) interface{} {
		return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
			return q.Counterpart && q.SubmitterID == 500031 && q.MinConflictLevel == level
		})
	}

	reader.On("SubmitterInfo", anything, int64(500031)).Return(&ports.SubmitterInfo{ID: 500031, Name: "GeneDx"}, nil)
	reader.On("SubmitterPrimaryMethod", anything, int64(500031)).Return("clinical testing", nil)
	reader.On("VariantsByConflictLevel", anything, anything).Return([]conflict.KeyLevelCount{}, nil)
	reader.On("TotalVariants", anything, anything).Return(3, nil)
	reader.On("ConflictingVariantsBySignificance", anything, testkit.SubmitterPairQuery(500031, 0)).
		Return([]conflict.PairCount{}, nil)
	reader.On("Variants", anything, testkit.SubmitterPairQuery(500031, 0)).
		Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A"}}, nil)

	reader.On("VariantsBy", anything, ports.BySubmitter, counterpart(conflict.LevelUnclassified)).
		Return([]conflict.KeyCount{{Key: "26957", Label: "Invitae", Count: 5}}, nil)
	reader.On("VariantsBy", anything, ports.BySubmitter, counterpart(conflict.LevelNone)).
		Return([]conflict.KeyCount{{Key: "26957", Label: "Invitae", Count: 3}}, nil)
	reader.On("VariantsBy", anything, ports.BySubmitter, counterpart(conflict.LevelSynonymous)).
		Return([]conflict.KeyCount{{Key: "26957", Label: "Invitae", Count: 1}}, nil)
	reader.On("ConflictingVariantsByLevel", anything, ports.BySubmitter, counterpart(conflict.LevelSynonymous)).
		Return([]conflict.KeyLevelCount{{Key: "26957", Level: conflict.LevelClinical, Count: 1}}, nil)

	report, err := NewConflictReviewService(reader).Review(context.Background(),
		ReviewScope{Submitter1: 500031}, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, "GeneDx", report.Submitter1.Name)
	assert.Nil(t, report.Submitter2)
	assert.Equal(t, "clinical testing", report.PrimaryMethod)
	require.NotNil(t, report.Counterparts)
	entry, ok := report.Counterparts.Get("26957")
	require.True(t, ok)
	assert.Equal(t, 1, entry.Histogram.AnyConflict)
	assert.Len(t, report.Variants, 1)
	reader.AssertExpectations(t)
}

func TestReviewSubmitterPairAgainstAnyone(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	zero := int64(0)

	reader.On("SubmitterInfo", anything, int64(500031)).Return(&ports.SubmitterInfo{ID: 500031, Name: "GeneDx"}, nil)
	reader.On("VariantsByConflictLevel", anything, anything).Return([]conflict.KeyLevelCount{}, nil)
	reader.On("TotalVariants", anything, anything).Return(0, nil)
	reader.On("ConflictingVariantsBySignificance", anything, anything).Return([]conflict.PairCount{}, nil)
	reader.On("Variants", anything, anything).Return([]ports.VariantRow{}, nil)

	report, err := NewConflictReviewService(reader).Review(context.Background(),
		ReviewScope{Submitter1: 500031, Submitter2: &zero}, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, AnyOtherSubmitter, report.Submitter2.Name)
	assert.Nil(t, report.Counterparts)
	assert.True(t, report.Matrix.Empty())
	reader.AssertNotCalled(t, "SubmitterPrimaryMethod", anything, anything)
	reader.AssertNotCalled(t, "VariantsBy", anything, anything, anything)
}

func TestReviewUnknownGeneIsNotFound(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsGene", mock.Anything, "NOPE1").Return(false, nil)
	gene := "NOPE1"

	_, err := NewConflictReviewService(reader).Review(context.Background(), ReviewScope{Gene: &gene}, filter.Default())

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReviewIntergenicNeedsNoLookup(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	intergenic := ""

	reader.On("VariantsByConflictLevel", anything, anything).Return([]conflict.KeyLevelCount{}, nil)
	reader.On("TotalVariants", anything, anything).Return(0, nil)
	reader.On("ConflictingVariantsBySignificance", anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Gene != nil && *q.Gene == ""
	})).Return([]conflict.PairCount{}, nil)
	reader.On("Variants", anything, anything).Return([]ports.VariantRow{}, nil)

	report, err := NewConflictReviewService(reader).Review(context.Background(), ReviewScope{Gene: &intergenic}, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, filter.IntergenicLabel, report.GeneLabel)
	reader.AssertNotCalled(t, "IsGene", anything, anything)
	reader.AssertExpectations(t)
}

func TestPairVariantsFiltersBothSides(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsSignificance", mock.Anything, "pathogenic").Return(true, nil)
	reader.On("IsSignificance", mock.Anything, "benign").Return(true, nil)
	reader.On("Variants", mock.Anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Significance == "pathogenic" && q.Significance2 == "benign" &&
			q.MinConflictLevel == conflict.LevelSynonymous
	})).Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A", RSID: "rs1"}}, nil)

	report, err := NewConflictReviewService(reader).PairVariants(context.Background(), ReviewScope{},
		"pathogenic", "benign", filter.Default())

	require.NoError(t, err)
	assert.Equal(t, "pathogenic", report.Significance1)
	assert.Equal(t, "benign", report.Significance2)
	assert.Len(t, report.Variants, 1)
	reader.AssertExpectations(t)
}

func TestPairVariantsUnknownSignificanceIsNotFound(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsSignificance", mock.Anything, "pathogenic").Return(true, nil)
	reader.On("IsSignificance", mock.Anything, "made up").Return(false, nil)

	_, err := NewConflictReviewService(reader).PairVariants(context.Background(), ReviewScope{},
		"pathogenic", "made up", filter.Default())

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	reader.AssertNotCalled(t, "Variants", mock.Anything, mock.Anything)
}
