package app

import (
	"context"
	"time"

	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"golang.org/x/sync/errgroup"
)

// SnapshotService describes the loaded ClinVar snapshot and its variants
type SnapshotService struct {
	reader ports.ComparisonReader
}

// Snapshot is the headline of the index page
type Snapshot struct {
	MaxDate          time.Time `json:"max_date"`
	TotalSubmissions int       `json:"total_submissions"`
	TotalVariants    int       `json:"total_variants"`
}

// NewSnapshotService creates a snapshot service
func NewSnapshotService(reader ports.ComparisonReader) *SnapshotService {
	return &SnapshotService{reader: reader}
}

// Overview loads the import date and totals of the current snapshot
func (s *SnapshotService) Overview(ctx context.Context) (*Snapshot, error) {
	var out Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.MaxDate, err = s.reader.MaxDate(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalSubmissions, err = s.reader.TotalSubmissions(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.TotalVariants, err = s.reader.TotalVariants(gctx, baseQuery(filter.Default()))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to load snapshot overview")
	}
	return &out, nil
}

// Submissions lists every current submission of a variant, by HGVS name
func (s *SnapshotService) Submissions(ctx context.Context, variantName string) ([]ports.SubmissionRow, error) {
	ok, err := s.reader.IsVariantName(ctx, variantName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up variant")
	}
	if !ok {
		return nil, errors.NotFound("variant " + variantName)
	}

	rows, err := s.reader.Submissions(ctx, variantName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list submissions of %q", variantName)
	}
	return rows, nil
}
