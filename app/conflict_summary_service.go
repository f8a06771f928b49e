package app

import (
	"context"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/logging"
	"clinvarminer/ports"

	"golang.org/x/sync/errgroup"
)

// ConflictSummaryService assembles the conflicting-variants pages
type ConflictSummaryService struct {
	reader ports.ComparisonReader
}

// ConflictReport is everything a conflicting-variants page shows
type ConflictReport struct {
	Dimension        ports.Dimension
	MinConflictLevel conflict.Level
	Summary          *conflict.Summary
	Overview         conflict.Overview

	TotalVariants               int
	TotalPotentiallyConflicting int
	TotalConflicting            int
}

// NewConflictSummaryService creates a conflict summary service
func NewConflictSummaryService(reader ports.ComparisonReader) *ConflictSummaryService {
	return &ConflictSummaryService{reader: reader}
}

// Summarize runs the aggregate queries for dim concurrently and builds the summary
func (s *ConflictSummaryService) Summarize(ctx context.Context, dim ports.Dimension, f filter.State) (*ConflictReport, error) {
	if !dim.Valid() {
		return nil, errors.InvalidInput("unknown dimension " + string(dim))
	}

	q := baseQuery(f)
	threshold := conflict.AnyConflictThreshold(f.MinConflictLevel)
	all := q.WithMinConflictLevel(conflict.LevelUnclassified)
	potential := q.WithMinConflictLevel(conflict.LevelNone)
	conflicting := q.WithMinConflictLevel(threshold)

	report := &ConflictReport{Dimension: dim, MinConflictLevel: f.MinConflictLevel}
	var src conflict.Sources
	var overviewRows []conflict.KeyLevelCount

	g, gctx := errgroup.WithContext(ctx)
	loadSources(g, gctx, s.reader, dim, q, threshold, &src)
	g.Go(func() (err error) {
		overviewRows, err = s.reader.VariantsByConflictLevel(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		report.TotalVariants, err = s.reader.TotalVariants(gctx, all)
		return err
	})
	g.Go(func() (err error) {
		report.TotalPotentiallyConflicting, err = s.reader.TotalVariants(gctx, potential)
		return err
	})
	g.Go(func() (err error) {
		report.TotalConflicting, err = s.reader.TotalVariants(gctx, conflicting)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to summarize conflicts by %s", dim)
	}

	summary, err := buildSummary(ctx, src, f.MinConflictLevel)
	if err != nil {
		return nil, err
	}

	report.Summary = summary
	report.Overview = conflict.NewOverview(overviewRows)
	return report, nil
}

// loadSources queues the four aggregate queries a summary by dim is built from
func loadSources(g *errgroup.Group, ctx context.Context, reader ports.ComparisonReader, dim ports.Dimension, q ports.ComparisonQuery, threshold conflict.Level, src *conflict.Sources) {
	all := q.WithMinConflictLevel(conflict.LevelUnclassified)
	potential := q.WithMinConflictLevel(conflict.LevelNone)
	conflicting := q.WithMinConflictLevel(threshold)

	g.Go(func() (err error) {
		src.Total, err = reader.VariantsBy(ctx, dim, all)
		return err
	})
	g.Go(func() (err error) {
		src.Potential, err = reader.VariantsBy(ctx, dim, potential)
		return err
	})
	g.Go(func() (err error) {
		src.Conflicting, err = reader.VariantsBy(ctx, dim, conflicting)
		return err
	})
	g.Go(func() (err error) {
		src.ByLevel, err = reader.ConflictingVariantsByLevel(ctx, dim, conflicting)
		return err
	})
}

// buildSummary builds the summary and logs rows whose totals disagree
func buildSummary(ctx context.Context, src conflict.Sources, minConflictLevel conflict.Level) (*conflict.Summary, error) {
	summary, err := conflict.Build(src)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build conflict summary")
	}
	for _, entry := range summary.Entries() {
		if !entry.Histogram.Consistent(minConflictLevel) {
			logging.FromContext(ctx).WithField("key", entry.Key).
				Warn("[ConflictSummary] any-conflict total differs from per-level counts")
		}
	}
	return summary, nil
}
