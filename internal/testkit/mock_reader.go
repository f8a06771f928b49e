package testkit

import (
	"context"
	"time"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/significance"
	"clinvarminer/ports"

	"github.com/stretchr/testify/mock"
)

// MockComparisonReader is a testify mock of ports.ComparisonReader
type MockComparisonReader struct {
	mock.Mock
}

var _ ports.ComparisonReader = (*MockComparisonReader)(nil)

func (m *MockComparisonReader) TotalVariants(ctx context.Context, q ports.ComparisonQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

func (m *MockComparisonReader) TotalVariantsWithoutSignificance(ctx context.Context, q ports.ComparisonQuery) (int, error) {
	args := m.Called(ctx, q)
	return args.Int(0), args.Error(1)
}

func (m *MockComparisonReader) VariantsBy(ctx context.Context, dim ports.Dimension, q ports.ComparisonQuery) ([]conflict.KeyCount, error) {
	args := m.Called(ctx, dim, q)
	rows, _ := args.Get(0).([]conflict.KeyCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) ConflictingVariantsByLevel(ctx context.Context, dim ports.Dimension, q ports.ComparisonQuery) ([]conflict.KeyLevelCount, error) {
	args := m.Called(ctx, dim, q)
	rows, _ := args.Get(0).([]conflict.KeyLevelCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) VariantsByConflictLevel(ctx context.Context, q ports.ComparisonQuery) ([]conflict.KeyLevelCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]conflict.KeyLevelCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) VariantsBySignificance(ctx context.Context, q ports.ComparisonQuery) ([]significance.Count, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]significance.Count)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) ConflictingVariantsBySignificance(ctx context.Context, q ports.ComparisonQuery) ([]conflict.PairCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]conflict.PairCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) Variants(ctx context.Context, q ports.ComparisonQuery) ([]ports.VariantRow, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]ports.VariantRow)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) Submissions(ctx context.Context, variantName string) ([]ports.SubmissionRow, error) {
	args := m.Called(ctx, variantName)
	rows, _ := args.Get(0).([]ports.SubmissionRow)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) IsSignificance(ctx context.Context, term string) (bool, error) {
	args := m.Called(ctx, term)
	return args.Bool(0), args.Error(1)
}

func (m *MockComparisonReader) IsConditionName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockComparisonReader) IsGene(ctx context.Context, gene string) (bool, error) {
	args := m.Called(ctx, gene)
	return args.Bool(0), args.Error(1)
}

func (m *MockComparisonReader) IsVariantName(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockComparisonReader) SubmitterInfo(ctx context.Context, id int64) (*ports.SubmitterInfo, error) {
	args := m.Called(ctx, id)
	info, _ := args.Get(0).(*ports.SubmitterInfo)
	return info, args.Error(1)
}

func (m *MockComparisonReader) SubmitterIDFromName(ctx context.Context, name string) (int64, bool, error) {
	args := m.Called(ctx, name)
	id, _ := args.Get(0).(int64)
	return id, args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) VariantNameFromRSID(ctx context.Context, rsid string) (string, bool, error) {
	args := m.Called(ctx, rsid)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) VariantNameFromRCV(ctx context.Context, rcv string) (string, bool, error) {
	args := m.Called(ctx, rcv)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) VariantNameFromSCV(ctx context.Context, scv string) (string, bool, error) {
	args := m.Called(ctx, scv)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) GeneFromRSID(ctx context.Context, rsid string) (string, bool, error) {
	args := m.Called(ctx, rsid)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) RelatedGenes(ctx context.Context, gene string, original bool) ([]string, error) {
	args := m.Called(ctx, gene, original)
	genes, _ := args.Get(0).([]string)
	return genes, args.Error(1)
}

func (m *MockComparisonReader) SubmitterPrimaryMethod(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockComparisonReader) CountryName(ctx context.Context, code string) (string, bool, error) {
	args := m.Called(ctx, code)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockComparisonReader) SubmissionsByCountry(ctx context.Context, q ports.ComparisonQuery) ([]ports.CountryCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]ports.CountryCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) SubmissionsBySubmitter(ctx context.Context, q ports.ComparisonQuery) ([]conflict.KeyCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]conflict.KeyCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) SubmissionsByMethod(ctx context.Context, q ports.ComparisonQuery) ([]ports.MethodCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]ports.MethodCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) SubmissionsByMethodOverTime(ctx context.Context, q ports.ComparisonQuery) ([]ports.MethodDateCount, error) {
	args := m.Called(ctx, q)
	rows, _ := args.Get(0).([]ports.MethodDateCount)
	return rows, args.Error(1)
}

func (m *MockComparisonReader) MaxDate(ctx context.Context) (time.Time, error) {
	args := m.Called(ctx)
	date, _ := args.Get(0).(time.Time)
	return date, args.Error(1)
}

func (m *MockComparisonReader) TotalSubmissions(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// LevelQuery matches a comparison query by its conflict level floor
func LevelQuery(level conflict.Level) interface{} {
	return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.MinConflictLevel == level
	})
}

// SignificanceQuery matches a comparison query by its significance filter
func SignificanceQuery(term string) interface{} {
	return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Significance == term
	})
}

// PairQuery matches a comparison query by the significance of both sides
func PairQuery(significance1, significance2 string) interface{} {
	return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.Significance == significance1 && q.Significance2 == significance2
	})
}

// SubmitterPairQuery matches a comparison query by the submitters of both sides
func SubmitterPairQuery(submitter1, submitter2 int64) interface{} {
	return mock.MatchedBy(func(q ports.ComparisonQuery) bool {
		return q.SubmitterID == submitter1 && q.SubmitterID2 == submitter2
	})
}
