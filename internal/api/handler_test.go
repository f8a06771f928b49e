package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinvarminer/app"
	"clinvarminer/domain/conflict"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/testkit"
	"clinvarminer/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupRouter(reader *testkit.MockComparisonReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(
		app.NewConflictSummaryService(reader),
		app.NewConflictReviewService(reader),
		app.NewSignificanceService(reader),
		app.NewSnapshotService(reader),
	).Router()
}

func serve(r *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestHealth(t *testing.T) {
	w := serve(setupRouter(&testkit.MockComparisonReader{}), "/api/v1/health")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetConflicts(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	brca1 := conflict.KeyCount{Key: "BRCA1", Label: "BRCA1", Count: 10}

	reader.On("VariantsBy", anything, ports.ByGene, testkit.LevelQuery(conflict.LevelUnclassified)).
		Return([]conflict.KeyCount{brca1}, nil)
	reader.On("VariantsBy", anything, ports.ByGene, testkit.LevelQuery(conflict.LevelNone)).
		Return([]conflict.KeyCount{{Key: "BRCA1", Label: "BRCA1", Count: 7}}, nil)
	reader.On("VariantsBy", anything, ports.ByGene, testkit.LevelQuery(conflict.LevelSynonymous)).
		Return([]conflict.KeyCount{{Key: "BRCA1", Label: "BRCA1", Count: 4}}, nil)
	reader.On("ConflictingVariantsByLevel", anything, ports.ByGene, testkit.LevelQuery(conflict.LevelSynonymous)).
		Return([]conflict.KeyLevelCount{
			{Key: "BRCA1", Level: conflict.LevelConfidence, Count: 3},
			{Key: "BRCA1", Level: conflict.LevelClinical, Count: 1},
		}, nil)
	reader.On("VariantsByConflictLevel", anything, testkit.LevelQuery(conflict.LevelSynonymous)).
		Return([]conflict.KeyLevelCount{{Level: conflict.LevelConfidence, Count: 3}, {Level: conflict.LevelClinical, Count: 1}}, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelUnclassified)).Return(10, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelNone)).Return(7, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelSynonymous)).Return(4, nil)

	w := serve(setupRouter(reader), "/api/v1/conflicts/gene?min_conflict_level=1")

	require.Equal(t, http.StatusOK, w.Code)
	var resp ConflictsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, ports.ByGene, resp.Dimension)
	assert.Equal(t, 4, resp.TotalConflicting)
	require.Len(t, resp.Rows, 1)
	row := resp.Rows[0]
	assert.Equal(t, "BRCA1", row.Key)
	assert.Equal(t, 4, row.AnyConflict)
	assert.Equal(t, 3, row.Levels["no conflict"])
	assert.Equal(t, 3, row.Levels["unclassified"])
	assert.Equal(t, 3, row.Levels["confidence conflict"])
	assert.Nil(t, row.Xref)
	assert.Equal(t, 1, resp.Overview["clinically significant conflict"])
	reader.AssertExpectations(t)
}

func TestGetConflictsUnknownDimension(t *testing.T) {
	w := serve(setupRouter(&testkit.MockComparisonReader{}), "/api/v1/conflicts/variant")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), errors.CodeNotFound)
}

func TestGetConflictsBadFilter(t *testing.T) {
	w := serve(setupRouter(&testkit.MockComparisonReader{}), "/api/v1/conflicts/condition?review_status1=abc")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetSignificance(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	reader.On("IsSignificance", anything, "likely pathogenic").Return(true, nil)
	reader.On("TotalVariants", anything, testkit.SignificanceQuery("")).Return(100, nil)
	reader.On("TotalVariants", anything, testkit.SignificanceQuery("likely pathogenic")).Return(30, nil)
	reader.On("TotalVariantsWithoutSignificance", anything, testkit.SignificanceQuery("likely pathogenic")).Return(75, nil)
	reader.On("VariantsBy", anything, ports.BySubmitter, anything).
		Return([]conflict.KeyCount{{Key: "1006", Label: "Invitae", Count: 20}}, nil)
	reader.On("VariantsBy", anything, ports.ByCondition, anything).Return([]conflict.KeyCount(nil), nil)
	reader.On("VariantsBy", anything, ports.ByGene, anything).Return([]conflict.KeyCount(nil), nil)

	w := serve(setupRouter(reader), "/api/v1/significance/likely%20pathogenic")

	require.Equal(t, http.StatusOK, w.Code)
	var resp SignificanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 25, resp.Unanimous)
	assert.Equal(t, 30, resp.Ever)
	assert.Equal(t, "Invitae", resp.BySubmitter[0].Label)
	assert.NotNil(t, resp.ByGene)
}

func TestGetSignificanceUnknown(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	reader.On("IsSignificance", mock.Anything, "made up").Return(false, nil)

	w := serve(setupRouter(reader), "/api/v1/significance/made%20up")

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSignificancePairs(t *testing.T) {
	reader := &testkit.MockComparisonReader{}
	anything := mock.Anything
	reader.On("VariantsByConflictLevel", anything, anything).Return([]conflict.KeyLevelCount{}, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelUnclassified)).Return(10, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelNone)).Return(7, nil)
	reader.On("TotalVariants", anything, testkit.LevelQuery(conflict.LevelSynonymous)).Return(4, nil)
	reader.On("ConflictingVariantsBySignificance", anything, testkit.LevelQuery(conflict.LevelSynonymous)).
		Return([]conflict.PairCount{
			{Significance1: "benign", Significance2: "pathogenic", Level: conflict.LevelClinical, Count: 1},
			{Significance1: "pathogenic", Significance2: "likely pathogenic", Level: conflict.LevelConfidence, Count: 3},
		}, nil)

	w := serve(setupRouter(reader), "/api/v1/conflicting-significance-pairs")

	require.Equal(t, http.StatusOK, w.Code)
	var resp SignificancePairsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, 4, resp.TotalConflicting)
	assert.Equal(t, []PairCell{
		{Significance1: "pathogenic", Significance2: "likely pathogenic", Level: "confidence conflict", Count: 3},
		{Significance1: "benign", Significance2: "pathogenic", Level: "clinically significant conflict", Count: 1},
	}, resp.Pairs)
}
