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

// VariantService backs the variants-by-condition, -gene and -submitter drill-downs
type VariantService struct {
	reader ports.ComparisonReader
}

// KeyReport is the overview of one condition, gene or submitter
type KeyReport struct {
	Dimension     ports.Dimension
	Key           string
	Label         string
	Submitter     *ports.SubmitterInfo
	TotalVariants int
	Significances []significance.Count
	RelatedGenes  []string

	// Breakdowns by the other two dimensions
	Breakdowns map[ports.Dimension][]conflict.KeyCount
}

// NewVariantService creates a variant service
func NewVariantService(reader ports.ComparisonReader) *VariantService {
	return &VariantService{reader: reader}
}

// resolve checks that key exists under dim and returns its display label
func (s *VariantService) resolve(ctx context.Context, dim ports.Dimension, key string) (string, *ports.SubmitterInfo, error) {
	switch dim {
	case ports.ByCondition:
		ok, err := s.reader.IsConditionName(ctx, key)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, errors.NotFound("condition " + key)
		}
		return key, nil, nil
	case ports.ByGene:
		if key == "" {
			return filter.IntergenicLabel, nil, nil
		}
		ok, err := s.reader.IsGene(ctx, key)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return "", nil, errors.NotFound("gene " + key)
		}
		return key, nil, nil
	case ports.BySubmitter:
		id, err := ParseSubmitterID(key)
		if err != nil {
			return "", nil, err
		}
		info, err := s.reader.SubmitterInfo(ctx, id)
		if err != nil {
			return "", nil, err
		}
		return info.Name, info, nil
	}
	return "", nil, errors.InvalidInput("unknown dimension " + string(dim))
}

// Overview loads the significance overview and the breakdowns for one key
func (s *VariantService) Overview(ctx context.Context, dim ports.Dimension, key string, f filter.State) (*KeyReport, error) {
	label, submitter, err := s.resolve(ctx, dim, key)
	if err != nil {
		return nil, err
	}
	q, err := pin(baseQuery(f), dim, key)
	if err != nil {
		return nil, err
	}

	report := &KeyReport{
		Dimension:  dim,
		Key:        key,
		Label:      label,
		Submitter:  submitter,
		Breakdowns: make(map[ports.Dimension][]conflict.KeyCount),
	}

	var significances []significance.Count
	others := make([]ports.Dimension, 0, 2)
	for _, other := range ports.Dimensions() {
		if other != dim {
			others = append(others, other)
		}
	}
	results := make([][]conflict.KeyCount, len(others))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.TotalVariants, err = s.reader.TotalVariants(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		significances, err = s.reader.VariantsBySignificance(gctx, q)
		return err
	})
	for i, other := range others {
		g.Go(func() (err error) {
			results[i], err = s.reader.VariantsBy(gctx, other, q)
			return err
		})
	}
	if dim == ports.ByGene && key != "" {
		g.Go(func() (err error) {
			report.RelatedGenes, err = s.reader.RelatedGenes(gctx, key, f.OriginalGenes)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to load variants by %s", dim)
	}

	for i, other := range others {
		report.Breakdowns[other] = results[i]
	}
	report.Significances = significance.Overview(significances)
	return report, nil
}

// Selection picks the variants of a drill-down list: one key of Dimension,
// optionally crossed with a key of Other, reported with Significance. The empty
// significance lists every variant.
type Selection struct {
	Dimension    ports.Dimension
	Key          string
	Other        ports.Dimension
	OtherKey     string
	Significance string
}

// Crossed reports whether the selection pins a second dimension
func (s Selection) Crossed() bool {
	return s.Other != ""
}

// VariantList is a drill-down list with the labels of its keys
type VariantList struct {
	Selection
	Label      string
	OtherLabel string
	Rows       []ports.VariantRow
}

// KeyList counts variants for every key of one dimension
type KeyList struct {
	Dimension     ports.Dimension
	TotalVariants int
	Rows          []conflict.KeyCount
}

// List counts the variants of every condition, gene or submitter
func (s *VariantService) List(ctx context.Context, dim ports.Dimension, f filter.State) (*KeyList, error) {
	if !dim.Valid() {
		return nil, errors.InvalidInput("unknown dimension " + string(dim))
	}
	q := baseQuery(f)
	list := &KeyList{Dimension: dim}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		list.Rows, err = s.reader.VariantsBy(gctx, dim, q)
		return err
	})
	g.Go(func() (err error) {
		list.TotalVariants, err = s.reader.TotalVariants(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrapf(err, "failed to list variants by %s", dim)
	}
	return list, nil
}

// Variants lists the variants of a selection
func (s *VariantService) Variants(ctx context.Context, sel Selection, f filter.State) (*VariantList, error) {
	if sel.Crossed() && sel.Other == sel.Dimension {
		return nil, errors.InvalidInput("cannot cross " + string(sel.Dimension) + " with itself")
	}
	label, _, err := s.resolve(ctx, sel.Dimension, sel.Key)
	if err != nil {
		return nil, err
	}
	q, err := pin(baseQuery(f), sel.Dimension, sel.Key)
	if err != nil {
		return nil, err
	}

	list := &VariantList{Selection: sel, Label: label}
	if sel.Crossed() {
		list.OtherLabel, _, err = s.resolve(ctx, sel.Other, sel.OtherKey)
		if err != nil {
			return nil, err
		}
		q, err = pin(q, sel.Other, sel.OtherKey)
		if err != nil {
			return nil, err
		}
	}
	q.Significance = sel.Significance

	list.Rows, err = s.reader.Variants(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list variants")
	}
	return list, nil
}
