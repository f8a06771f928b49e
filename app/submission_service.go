package app

import (
	"context"
	"sort"
	"time"

	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"

	"golang.org/x/sync/errgroup"
)

// UnknownCountry is the display name of submitters without a country
const UnknownCountry = "Unknown country"

// SubmissionService assembles the total-submissions pages
type SubmissionService struct {
	reader ports.ComparisonReader
}

// CountryReport is the submitters of one country
type CountryReport struct {
	Code        string
	Name        string
	BySubmitter []conflict.KeyCount
}

// MethodReport is the current split of submissions by collection method and
// how it developed over every imported release
type MethodReport struct {
	ByMethod []ports.MethodCount

	// History has a row for every release and method, zero where a method had
	// no submissions in a release
	History []ports.MethodDateCount
}

// NewSubmissionService creates a submission service
func NewSubmissionService(reader ports.ComparisonReader) *SubmissionService {
	return &SubmissionService{reader: reader}
}

// ByCountry counts submissions per submitter country
func (s *SubmissionService) ByCountry(ctx context.Context, f filter.State) ([]ports.CountryCount, error) {
	rows, err := s.reader.SubmissionsByCountry(ctx, baseQuery(f))
	if err != nil {
		return nil, errors.Wrap(err, "failed to count submissions by country")
	}
	for i := range rows {
		if rows[i].Code == "" {
			rows[i].Name = UnknownCountry
		}
	}
	return rows, nil
}

// Country counts the submissions of each submitter from code. The empty code
// is the submitters without a country; any other unknown code is not found.
func (s *SubmissionService) Country(ctx context.Context, code string, f filter.State) (*CountryReport, error) {
	report := &CountryReport{Code: code, Name: UnknownCountry}
	if code != "" {
		name, ok, err := s.reader.CountryName(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.NotFound("country " + code)
		}
		report.Name = name
	}

	q := baseQuery(f)
	q.CountryCode = &code
	rows, err := s.reader.SubmissionsBySubmitter(ctx, q)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to count submissions from %s", report.Name)
	}
	report.BySubmitter = rows
	return report, nil
}

// ByMethod loads the method totals and their history. The method filters do
// not apply; the page is about the methods themselves.
func (s *SubmissionService) ByMethod(ctx context.Context, f filter.State) (*MethodReport, error) {
	q := baseQuery(f)
	q.Method1 = ""
	q.Method2 = ""

	report := &MethodReport{}
	var history []ports.MethodDateCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		report.ByMethod, err = s.reader.SubmissionsByMethod(gctx, q)
		return err
	})
	g.Go(func() (err error) {
		history, err = s.reader.SubmissionsByMethodOverTime(gctx, q)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "failed to count submissions by method")
	}

	report.History = fillMethodHistory(history)
	return report, nil
}

// fillMethodHistory adds a zero row for every release a method is missing from
// and orders the rows by date, then method
func fillMethodHistory(rows []ports.MethodDateCount) []ports.MethodDateCount {
	type slot struct {
		day    int64
		method string
	}
	seen := make(map[slot]bool, len(rows))
	dates := make(map[int64]time.Time)
	methods := make(map[string]bool)
	for _, row := range rows {
		day := row.Date.Unix()
		seen[slot{day, row.Method}] = true
		dates[day] = row.Date
		methods[row.Method] = true
	}

	filled := append([]ports.MethodDateCount(nil), rows...)
	for day, date := range dates {
		for method := range methods {
			if !seen[slot{day, method}] {
				filled = append(filled, ports.MethodDateCount{Date: date, Method: method})
			}
		}
	}

	sort.Slice(filled, func(i, j int) bool {
		if !filled[i].Date.Equal(filled[j].Date) {
			return filled[i].Date.Before(filled[j].Date)
		}
		return filled[i].Method < filled[j].Method
	})
	return filled
}
