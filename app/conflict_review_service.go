package app

import (
	"context"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"golang.org/x/sync/errgroup"
)

// AnyOtherSubmitter is the display name of submitter id 0 in a submitter pair
const AnyOtherSubmitter = "any other submitter"

// ConflictReviewService assembles the significance matrix pages, optionally
// narrowed to one gene or one submitter pair
type ConflictReviewService struct {
	reader ports.ComparisonReader
}

// ReviewScope narrows a review. The zero scope covers every comparison.
// Submitter2 is only read when Submitter1 is set; nil reviews Submitter1
// against everyone, and 0 does the same on a pair page.
type ReviewScope struct {
	Gene       *string
	Submitter1 int64
	Submitter2 *int64
}

// Scoped reports whether the review lists its conflicting variants
func (s ReviewScope) Scoped() bool {
	return s.Gene != nil || s.Submitter1 != 0
}

func (s ReviewScope) apply(q ports.ComparisonQuery) ports.ComparisonQuery {
	if s.Gene != nil {
		gene := *s.Gene
		q.Gene = &gene
	}
	if s.Submitter1 != 0 {
		q.SubmitterID = s.Submitter1
		if s.Submitter2 != nil {
			q.SubmitterID2 = *s.Submitter2
		}
	}
	return q
}

// ReviewSubject is what a review page is about
type ReviewSubject struct {
	Scope      ReviewScope
	GeneLabel  string
	Submitter1 *ports.SubmitterInfo
	Submitter2 *ports.SubmitterInfo
}

// ReviewReport is everything a significance matrix page shows
type ReviewReport struct {
	ReviewSubject

	PrimaryMethod    string
	MinConflictLevel conflict.Level
	Overview         conflict.Overview

	TotalVariants               int
	TotalPotentiallyConflicting int
	TotalConflicting            int

	Matrix *conflict.Matrix

	// Counterparts breaks a single submitter's conflicts down by the other submitter
	Counterparts *conflict.Summary

	// Variants lists the conflicting variants of a gene or submitter review
	Variants []ports.VariantRow
}

// PairReport lists the variants behind one matrix cell
type PairReport struct {
	ReviewSubject

	Significance1 string
	Significance2 string
	Variants      []ports.VariantRow
}

// NewConflictReviewService creates a conflict review service
func NewConflictReviewService(reader ports.ComparisonReader) *ConflictReviewService {
	return &ConflictReviewService{reader: reader}
}

// subject checks that the gene and submitters of scope exist
func (s *ConflictReviewService) subject(ctx context.Context, scope ReviewScope) (ReviewSubject, error) {
	subject := ReviewSubject{Scope: scope}

	if scope.Gene != nil {
		gene := *scope.Gene
		if gene == "" {
			subject.GeneLabel = filter.IntergenicLabel
		} else {
			ok, err := s.reader.IsGene(ctx, gene)
			if err != nil {
				return subject, err
			}
			if !ok {
				return subject, errors.NotFound("gene " + gene)
			}
			subject.GeneLabel = gene
		}
	}

	if scope.Submitter1 != 0 {
		info, err := s.reader.SubmitterInfo(ctx, scope.Submitter1)
		if err != nil {
			return subject, err
		}
		subject.Submitter1 = info

		if scope.Submitter2 != nil {
			if *scope.Submitter2 == 0 {
				subject.Submitter2 = &ports.SubmitterInfo{Name: AnyOtherSubmitter}
			} else {
				other, err := s.reader.SubmitterInfo(ctx, *scope.Submitter2)
				if err != nil {
					return subject, err
				}
				subject.Submitter2 = other
			}
		}
	}
	return subject, nil
}

// Review loads the overview, totals and significance matrix of scope
func (s *ConflictReviewService) Review(ctx context.Context, scope ReviewScope, f filter.State) (*ReviewReport, error) {
	subject, err := s.subject(ctx, scope)
	if err != nil {
		return nil, err
	}

	q := scope.apply(baseQuery(f))
	threshold := conflict.AnyConflictThreshold(f.MinConflictLevel)
	report := &ReviewReport{ReviewSubject: subject, MinConflictLevel: f.MinConflictLevel}
	single := scope.Submitter1 != 0 && scope.Submitter2 == nil

	var overviewRows []conflict.KeyLevelCount
	var pairs []conflict.PairCount
	var src conflict.Sources

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overviewRows, err = s.reader.VariantsByConflictLevel(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		report.TotalVariants, err = s.reader.TotalVariants(gctx, q.WithMinConflictLevel(conflict.LevelUnclassified))
		return err
	})
	g.Go(func() (err error) {
		report.TotalPotentiallyConflicting, err = s.reader.TotalVariants(gctx, q.WithMinConflictLevel(conflict.LevelNone))
		return err
	})
	g.Go(func() (err error) {
		report.TotalConflicting, err = s.reader.TotalVariants(gctx, q.WithMinConflictLevel(threshold))
		return err
	})
	g.Go(func() (err error) {
		pairs, err = s.reader.ConflictingVariantsBySignificance(gctx, q.WithMinConflictLevel(threshold))
		return err
	})
	if scope.Scoped() {
		g.Go(func() (err error) {
			report.Variants, err = s.reader.Variants(gctx, q.WithMinConflictLevel(threshold))
			return err
		})
	}
	if single {
		g.Go(func() (err error) {
			report.PrimaryMethod, err = s.reader.SubmitterPrimaryMethod(gctx, scope.Submitter1)
			return err
		})
		counterpart := q
		counterpart.Counterpart = true
		loadSources(g, gctx, s.reader, ports.BySubmitter, counterpart, threshold, &src)
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to review conflicts")
	}

	if single {
		report.Counterparts, err = buildSummary(ctx, src, f.MinConflictLevel)
		if err != nil {
			return nil, err
		}
	}
	report.Overview = conflict.NewOverview(overviewRows)
	report.Matrix = conflict.NewMatrix(pairs)
	return report, nil
}

// PairVariants lists the conflicting variants of scope where the first
// submission reported significance1 and the second significance2
func (s *ConflictReviewService) PairVariants(ctx context.Context, scope ReviewScope, significance1, significance2 string, f filter.State) (*PairReport, error) {
	subject, err := s.subject(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, term := range []string{significance1, significance2} {
		ok, err := s.reader.IsSignificance(ctx, term)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NotFound("significance " + term)
		}
	}

	q := scope.apply(baseQuery(f)).WithMinConflictLevel(conflict.AnyConflictThreshold(f.MinConflictLevel))
	q.Significance = significance1
	q.Significance2 = significance2

	rows, err := s.reader.Variants(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list conflicting variants")
	}
	return &PairReport{
		ReviewSubject: subject,
		Significance1: significance1,
		Significance2: significance2,
		Variants:      rows,
	}, nil
}
