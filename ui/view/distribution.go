package view

import (
	"fmt"

	"github.com/montanaflynn/stats"
)

// Distribution summarises the counts of a table column
type Distribution struct {
	Rows   int
	Total  int
	Mean   float64
	Median float64
	Q75    float64
	Max    float64
}

// NewDistribution computes the distribution of counts. An empty column has a
// zero distribution.
func NewDistribution(counts []int) (Distribution, error) {
	d := Distribution{Rows: len(counts)}
	if len(counts) == 0 {
		return d, nil
	}

	data := make(stats.Float64Data, len(counts))
	for i, c := range counts {
		data[i] = float64(c)
		d.Total += c
	}

	var err error
	if d.Mean, err = stats.Mean(data); err != nil {
		return d, err
	}
	if d.Median, err = stats.Median(data); err != nil {
		return d, err
	}
	if d.Q75, err = stats.Percentile(data, 75); err != nil {
		return d, err
	}
	if d.Max, err = stats.Max(data); err != nil {
		return d, err
	}
	return d, nil
}

// AnyConflictDistribution is the distribution of the any-conflict column
func (t *ConflictTable) AnyConflictDistribution() (Distribution, error) {
	counts := make([]int, len(t.Rows))
	for i, row := range t.Rows {
		counts[i] = row.AnyConflict
	}
	return NewDistribution(counts)
}

// CountDistribution is the distribution of a breakdown's counts
func (s *BreakdownSection) CountDistribution() (Distribution, error) {
	counts := make([]int, len(s.Rows))
	for i, row := range s.Rows {
		counts[i] = row.Count
	}
	return NewDistribution(counts)
}

func (d Distribution) String() string {
	if d.Rows == 0 {
		return "no rows"
	}
	return fmt.Sprintf("%d variants over %d rows: mean %.1f, median %.1f, 75th percentile %.1f, max %.0f",
		d.Total, d.Rows, d.Mean, d.Median, d.Q75, d.Max)
}
