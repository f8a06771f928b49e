package conflict

// KeyCount is a distinct-variant count for one summary key
type KeyCount struct {
	Key   string `json:"key"`
	Label string `json:"label,omitempty"`
	Xref  Xref   `json:"xref"`
	Count int    `json:"count"`
}

// KeyLevelCount is a distinct-variant count for one key at one conflict level
type KeyLevelCount struct {
	Key   string
	Level Level
	Count int
}

// Sources are the four aggregate query results a summary is derived from.
//
// Total counts every variant per key, Potential those with at least one comparison
// (level >= 0), Conflicting those at or above the any-conflict threshold, and
// ByLevel splits the conflicting variants by their highest conflict level.
type Sources struct {
	Total       []KeyCount
	Potential   []KeyCount
	Conflicting []KeyCount
	ByLevel     []KeyLevelCount
}

// Build derives the summary. Only keys with at least one conflict get a row,
// in the order of Sources.Conflicting.
func Build(src Sources) (*Summary, error) {
	summary := NewSummary()

	for _, row := range src.Conflicting {
		entry, err := summary.Add(row.Key, row.Label)
		if err != nil {
			return nil, err
		}
		entry.Xref = row.Xref
		entry.Histogram.AnyConflict = row.Count
	}

	for _, row := range src.Potential {
		if entry, ok := summary.Get(row.Key); ok {
			entry.Histogram.Set(LevelNone, row.Count-entry.Histogram.AnyConflict)
		}
	}

	for _, row := range src.Total {
		if entry, ok := summary.Get(row.Key); ok {
			h := &entry.Histogram
			h.Set(LevelUnclassified, row.Count-h.Count(LevelNone)-h.AnyConflict)
		}
	}

	for _, row := range src.ByLevel {
		if row.Level < LevelSynonymous {
			continue
		}
		if entry, ok := summary.Get(row.Key); ok {
			entry.Histogram.Set(row.Level, row.Count)
		}
	}

	return summary, nil
}

// Overview maps each conflict level to its distinct-variant count
type Overview map[Level]int

// NewOverview collects per-level counts
func NewOverview(rows []KeyLevelCount) Overview {
	overview := make(Overview)
	for _, row := range rows {
		overview[row.Level] += row.Count
	}
	return overview
}

// Total sums the overview over the levels at or above threshold
func (o Overview) Total(threshold Level) int {
	total := 0
	for level, count := range o {
		if level >= threshold {
			total += count
		}
	}
	return total
}
