package app

import (
	"context"
	"testing"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/domain/significance"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/testkit"
	"clinvarminer/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func geneQuery(gene string) interface{} {
	return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Gene != nil && *q.Gene == gene
	})
}

func TestOverviewOfIntergenicVariants(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("TotalVariants", mock.Anything, geneQuery("")).Return(12, nil)
	reader.On("VariantsBySignificance", mock.Anything, geneQuery("")).
		Return([]significance.Count{{Significance: "benign", Count: 12}}, nil)
	reader.On("VariantsBy", mock.Anything, ports.ByCondition, geneQuery("")).
		Return([]conflict.KeyCount{{Key: "not provided", Count: 12}}, nil)
	reader.On("VariantsBy", mock.Anything, ports.BySubmitter, geneQuery("")).
		Return([]conflict.KeyCount{{Key: "1006", Label: "GeneDx", Count: 7}}, nil)

	report, err := NewVariantService(reader).Overview(context.Background(), ports.ByGene, "", filter.Default())

	require.NoError(t, err)
	assert.Equal(t, filter.IntergenicLabel, report.Label)
	assert.Equal(t, 12, report.TotalVariants)
	assert.Len(t, report.Breakdowns, 2)
	assert.NotContains(t, report.Breakdowns, ports.ByGene)
	assert.Equal(t, "GeneDx", report.Breakdowns[ports.BySubmitter][0].Label)
	// the five standard terms are always listed
	assert.Len(t, report.Significances, 5)
	reader.AssertNotCalled(t, "RelatedGenes", mock.Anything, mock.Anything, mock.Anything)
}

func TestOverviewOfSubmitter(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	submitterQuery := mock.MatchedBy(func(q ports.ComparisonQuery) bool { return q.SubmitterID == 26957 })
	reader.On("SubmitterInfo", mock.Anything, int64(26957)).
		Return(&ports.SubmitterInfo{ID: 26957, Name: "GeneDx", CountryName: "United States"}, nil)
	reader.On("TotalVariants", mock.Anything, submitterQuery).Return(3, nil)
	reader.On("VariantsBySignificance", mock.Anything, submitterQuery).Return([]significance.Count(nil), nil)
	reader.On("VariantsBy", mock.Anything, mock.Anything, submitterQuery).Return([]conflict.KeyCount(nil), nil)

	report, err := NewVariantService(reader).Overview(context.Background(), ports.BySubmitter, "26957", filter.Default())

	require.NoError(t, err)
	assert.Equal(t, "GeneDx", report.Label)
	assert.Equal(t, "United States", report.Submitter.CountryName)
}

func TestOverviewUnknownKeys(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsConditionName", mock.Anything, "nope").Return(false, nil)
	reader.On("IsGene", mock.Anything, "NOPE").Return(false, nil)

	svc := NewVariantService(reader)
	for _, tc := range []struct {
		dim ports.Dimension
		key string
	}{
		{ports.ByCondition, "nope"},
		{ports.ByGene, "NOPE"},
		{ports.BySubmitter, "abc"},
		{ports.BySubmitter, "-4"},
	} {
		_, err := svc.Overview(context.Background(), tc.dim, tc.key, filter.Default())
		assert.Equal(t, errors.CodeNotFound, errors.GetCode(err), "%s %s", tc.dim, tc.key)
	}
}

func TestVariantsPinsKeyAndSignificance(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsConditionName", mock.Anything, "Long QT syndrome").Return(true, nil)
	reader.On("Variants", mock.Anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return len(q.ConditionNames) == 1 && q.ConditionNames[0] == "Long QT syndrome" && q.Significance == "benign"
	})).Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A", RSID: "rs1"}}, nil)

	list, err := NewVariantService(reader).Variants(context.Background(),
		Selection{Dimension: ports.ByCondition, Key: "Long QT syndrome", Significance: "benign"}, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, "Long QT syndrome", list.Label)
	assert.Len(t, list.Rows, 1)
}

func TestVariantsCrossesTwoDimensions(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsGene", mock.Anything, "KCNQ1").Return(true, nil)
	reader.On("SubmitterInfo", mock.Anything, int64(500031)).
		Return(&ports.SubmitterInfo{ID: 500031, Name: "GeneDx"}, nil)
	reader.On("Variants", mock.Anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Gene != nil && *q.Gene == "KCNQ1" && q.SubmitterID == 500031 && q.Significance == ""
	})).Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A"}, {Name: "NM_000218.3(KCNQ1):c.1085A>G"}}, nil)

	list, err := NewVariantService(reader).Variants(context.Background(), Selection{
		Dimension: ports.ByGene,
		Key:       "KCNQ1",
		Other:     ports.BySubmitter,
		OtherKey:  "500031",
	}, filter.Default())

	require.NoError(t, err)
	assert.True(t, list.Crossed())
	assert.Equal(t, "KCNQ1", list.Label)
	assert.Equal(t, "GeneDx", list.OtherLabel)
	assert.Len(t, list.Rows, 2)
	reader.AssertExpectations(t)
}

func TestVariantsCrossedWithUnknownKeyIsNotFound(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsConditionName", mock.Anything, "Long QT syndrome").Return(true, nil)
	reader.On("IsGene", mock.Anything, "NOPE1").Return(false, nil)

	_, err := NewVariantService(reader).Variants(context.Background(), Selection{
		Dimension: ports.ByCondition,
		Key:       "Long QT syndrome",
		Other:     ports.ByGene,
		OtherKey:  "NOPE1",
	}, filter.Default())

	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	reader.AssertNotCalled(t, "Variants", mock.Anything, mock.Anything)
}

func TestVariantsRejectsCrossWithSameDimension(t *testing.T) {
	reader := &testkit.MockComparisonReader{}

	_, err := NewVariantService(reader).Variants(context.Background(), Selection{
		Dimension: ports.ByGene, Key: "KCNQ1", Other: ports.ByGene, OtherKey: "KCNH2",
	}, filter.Default())

	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestListCountsEveryKey(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("VariantsBy", mock.Anything, ports.ByGene, mock.Anything).
		Return([]conflict.KeyCount{{Key: "KCNQ1", Label: "KCNQ1", Count: 9}, {Key: "", Label: "", Count: 2}}, nil)
	reader.On("TotalVariants", mock.Anything, mock.Anything).Return(11, nil)

	list, err := NewVariantService(reader).List(context.Background(), ports.ByGene, filter.Default())

	require.NoError(t, err)
	assert.Equal(t, 11, list.TotalVariants)
	assert.Len(t, list.Rows, 2)

	_, err = NewVariantService(reader).List(context.Background(), ports.Dimension("country"), filter.Default())
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
