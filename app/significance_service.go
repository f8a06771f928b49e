package app

import (
	"context"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/domain/significance"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"golang.org/x/sync/errgroup"
)

// SignificanceService assembles the variants-by-significance pages
type SignificanceService struct {
	reader ports.ComparisonReader
}

// SignificanceReport backs the page of one significance term
type SignificanceReport struct {
	Significance string
	Totals       significance.Totals

	BySubmitter []conflict.KeyCount
	ByCondition []conflict.KeyCount
	ByGene      []conflict.KeyCount
}

// NewSignificanceService creates a significance service
func NewSignificanceService(reader ports.ComparisonReader) *SignificanceService {
	return &SignificanceService{reader: reader}
}

// List counts variants per significance term in rank order
func (s *SignificanceService) List(ctx context.Context, f filter.State) ([]significance.Count, error) {
	rows, err := s.reader.VariantsBySignificance(ctx, baseQuery(f))
	if err != nil {
		return nil, errors.Wrap(err, "failed to list significance terms")
	}
	return significance.Overview(rows), nil
}

// Breakdown loads the totals and the three breakdowns for term. Unknown terms
// are a not-found error.
func (s *SignificanceService) Breakdown(ctx context.Context, term string, f filter.State) (*SignificanceReport, error) {
	ok, err := s.reader.IsSignificance(ctx, term)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up significance")
	}
	if !ok {
		return nil, errors.NotFound("significance " + term)
	}

	all := baseQuery(f)
	q := all
	q.Significance = term

	report := &SignificanceReport{Significance: term}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.Totals.Variants, err = s.reader.TotalVariants(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		report.Totals.Ever, err = s.reader.TotalVariants(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		report.Totals.Never, err = s.reader.TotalVariantsWithoutSignificance(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		report.BySubmitter, err = s.reader.VariantsBy(gctx, ports.BySubmitter, q)
		return err
	})
	g.Go(func() (err error) {
		report.ByCondition, err = s.reader.VariantsBy(gctx, ports.ByCondition, q)
		return err
	})
	g.Go(func() (err error) {
		report.ByGene, err = s.reader.VariantsBy(gctx, ports.ByGene, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to break down significance %q", term)
	}

	return report, nil
}
