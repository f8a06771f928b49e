package ui

import (
	"net/http"
	"testing"
	"time"

	"clinvarminer/domain/conflict"
	"clinvarminer/internal/testkit"
	"clinvarminer/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// expectReview answers the aggregate queries of every matrix page alike
func expectReview(reader *testkit.MockComparisonReader) {
	anything := mock.Anything
	reader.On("VariantsByConflictLevel", anything, anything).
		Return([]conflict.KeyLevelCount{{Level: conflict.LevelClinical, Count: 2}}, nil)
	reader.On("TotalVariants", anything, anything).Return(2, nil)
	reader.On("ConflictingVariantsBySignificance", anything, anything).
		Return([]conflict.PairCount{{Significance1: "pathogenic", Significance2: "benign", Level: conflict.LevelClinical, Count: 2}}, nil)
}

func TestConflictsBySignificancePage(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	expectReview(reader)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-significance?original_terms=1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `<table id="significance-matrix"`)
	assert.Contains(t, body, `href="/conflicting-variants-by-significance/pathogenic/benign?original_terms=1"`)
	assert.NotContains(t, body, `id="conflicting-variants"`)
	reader.AssertNotCalled(t, "Variants", mock.Anything, mock.Anything)
}

func TestSignificancePairVariantsPage(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsSignificance", mock.Anything, "pathogenic").Return(true, nil)
	reader.On("IsSignificance", mock.Anything, "risk factor").Return(true, nil)
	reader.On("Variants", mock.Anything, testkit.PairQuery("pathogenic", "risk factor")).
		Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A", RSID: "rs12720449"}}, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-significance/pathogenic/risk%20factor")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "1 variants reported as pathogenic by the first submitter and risk factor by the second")
	assert.Contains(t, body, "NM_000218.3(KCNQ1):c.1032G&gt;A")
	reader.AssertExpectations(t)
}

func TestSignificancePairUnknownTermIsNotFound(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsSignificance", mock.Anything, "pathogenic").Return(true, nil)
	reader.On("IsSignificance", mock.Anything, "made up").Return(false, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-significance/pathogenic/made%20up")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestConflictsByGeneLinksToGeneReview(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	kcnq1 := []conflict.KeyCount{{Key: "KCNQ1", Label: "KCNQ1", Count: 4}}
	reader.On("VariantsBy", anything, ports.ByGene, anything).Return(kcnq1, nil)
	reader.On("ConflictingVariantsByLevel", anything, ports.ByGene, anything).
		Return([]conflict.KeyLevelCount{{Key: "KCNQ1", Level: conflict.LevelClinical, Count: 4}}, nil)
	reader.On("VariantsByConflictLevel", anything, anything).Return([]conflict.KeyLevelCount{}, nil)
	reader.On("TotalVariants", anything, anything).Return(4, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-gene")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `href="/conflicting-variants-by-gene/KCNQ1"`)
	assert.Contains(t, body, `href="/variants-by-gene/KCNQ1"`)
}

func TestGeneReviewListsConflictingVariants(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	expectReview(reader)
	reader.On("IsGene", mock.Anything, "KCNQ1").Return(true, nil)
	reader.On("Variants", mock.Anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Gene != nil && *q.Gene == "KCNQ1" && q.MinConflictLevel == conflict.LevelSynonymous
	})).Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1085A>G"}}, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-gene/KCNQ1")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Conflicting variants in KCNQ1")
	assert.Contains(t, body, `href="/conflicting-variants-by-gene/KCNQ1/pathogenic/benign"`)
	assert.Contains(t, body, "Total conflicting variants: 1")
}

func TestSubmitterReviewLinksCounterparts(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	expectReview(reader)
	invitae := []conflict.KeyCount{{Key: "26957", Label: "Invitae", Count: 2}}
	reader.On("SubmitterInfo", anything, int64(500031)).
		Return(&ports.SubmitterInfo{ID: 500031, Name: "GeneDx", CountryName: "United States"}, nil)
	reader.On("SubmitterPrimaryMethod", anything, int64(500031)).Return("clinical testing", nil)
	reader.On("Variants", anything, anything).Return([]ports.VariantRow{}, nil)
	reader.On("VariantsBy", anything, ports.BySubmitter, anything).Return(invitae, nil)
	reader.On("ConflictingVariantsByLevel", anything, ports.BySubmitter, anything).
		Return([]conflict.KeyLevelCount{{Key: "26957", Level: conflict.LevelClinical, Count: 2}}, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-submitter/500031")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Conflicting variants from GeneDx")
	assert.Contains(t, body, "Primary collection method: clinical testing")
	assert.Contains(t, body, `href="/conflicting-variants-by-submitter/500031/26957"`)
	assert.Contains(t, body, `href="/conflicting-variants-by-submitter/500031/0/pathogenic/benign"`)
}

func TestSubmitterPairReviewAgainstAnyone(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	expectReview(reader)
	reader.On("SubmitterInfo", anything, int64(500031)).Return(&ports.SubmitterInfo{ID: 500031, Name: "GeneDx"}, nil)
	reader.On("Variants", anything, testkit.SubmitterPairQuery(500031, 0)).Return([]ports.VariantRow{}, nil)

	rec := get(newTestApp(t, reader, nil), "/conflicting-variants-by-submitter/500031/0")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Conflicts between GeneDx and any other submitter")
	reader.AssertNotCalled(t, "VariantsBy", anything, anything, anything)
}

func TestSubmitterReviewRejectsBadIDs(t *testing.T) {
	a := newTestApp(t, &testkit.MockComparisonReader{}, nil)

	assert.Equal(t, http.StatusNotFound, get(a, "/conflicting-variants-by-submitter/abc").Code)
	assert.Equal(t, http.StatusNotFound, get(a, "/conflicting-variants-by-submitter/0").Code)
	assert.Equal(t, http.StatusNotFound, get(a, "/conflicting-variants-by-submitter/500031/-4").Code)
}

func TestKeylessListPage(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("VariantsBy", mock.Anything, ports.ByCondition, mock.Anything).
		Return([]conflict.KeyCount{{Key: "Cardiomyopathy/arrhythmia", Label: "Cardiomyopathy/arrhythmia", Count: 6}}, nil)
	reader.On("TotalVariants", mock.Anything, mock.Anything).Return(6, nil)

	rec := get(newTestApp(t, reader, nil), "/variants-by-condition")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Total variants: 6")
	assert.Contains(t, body, `href="/variants-by-condition/Cardiomyopathy%252Farrhythmia"`)
}

func TestCrossDrillDownPage(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsGene", mock.Anything, "KCNQ1").Return(true, nil)
	reader.On("IsConditionName", mock.Anything, "Cardiomyopathy/arrhythmia").Return(true, nil)
	reader.On("Variants", mock.Anything, mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Gene != nil && *q.Gene == "KCNQ1" && len(q.ConditionNames) == 1 &&
			q.ConditionNames[0] == "Cardiomyopathy/arrhythmia" && q.Significance == "pathogenic"
	})).Return([]ports.VariantRow{{Name: "NM_000218.3(KCNQ1):c.1032G>A"}}, nil)

	rec := get(newTestApp(t, reader, nil), "/variants-by-gene/KCNQ1/condition/Cardiomyopathy%252Farrhythmia/pathogenic")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "1 pathogenic variants for Gene KCNQ1 and Condition Cardiomyopathy/arrhythmia")
	reader.AssertExpectations(t)
}

func TestAnySignificanceListsEveryVariant(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsConditionName", mock.Anything, "Long QT syndrome").Return(true, nil)
	reader.On("Variants", mock.Anything, testkit.SignificanceQuery("")).
		Return([]ports.VariantRow{{Name: "a"}, {Name: "b"}}, nil)

	rec := get(newTestApp(t, reader, nil), "/variants-by-condition/Long%20QT%20syndrome/significance/any")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2 variants for Condition Long QT syndrome")
	reader.AssertExpectations(t)
}

func TestCountryPages(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	reader.On("SubmissionsByCountry", anything, anything).Return([]ports.CountryCount{
		{Code: "NL", Name: "Netherlands", Count: 12},
		{Code: "", Count: 1},
	}, nil)
	reader.On("CountryName", anything, "NL").Return("Netherlands", true, nil)
	reader.On("CountryName", anything, "XX").Return("", false, nil)
	reader.On("SubmissionsBySubmitter", anything, anything).
		Return([]conflict.KeyCount{{Key: "505237", Label: "Radboud University Medical Center", Count: 12}}, nil)
	a := newTestApp(t, reader, nil)

	rec := get(a, "/total-submissions-by-country")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="/total-submissions-by-country/NL"`)
	assert.Contains(t, rec.Body.String(), `href="/total-submissions-by-country/"`)

	rec = get(a, "/total-submissions-by-country/NL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total submissions from Netherlands")
	assert.Contains(t, rec.Body.String(), `href="/variants-by-submitter/505237"`)

	rec = get(a, "/total-submissions-by-country/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Total submissions from Unknown country")

	assert.Equal(t, http.StatusNotFound, get(a, "/total-submissions-by-country/XX").Code)
}

func TestMethodsPage(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	jan := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reader.On("SubmissionsByMethod", mock.Anything, mock.Anything).
		Return([]ports.MethodCount{{Method: "clinical testing", Count: 30}}, nil)
	reader.On("SubmissionsByMethodOverTime", mock.Anything, mock.Anything).
		Return([]ports.MethodDateCount{{Date: jan, Method: "clinical testing", Count: 25}}, nil)

	rec := get(newTestApp(t, reader, nil), "/total-submissions-by-method?download=submissions-by-method-over-time&format=csv")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Date,clinical testing")
	assert.Contains(t, rec.Body.String(), "2024-01-01,25")
}
