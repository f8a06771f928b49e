package conflict

import (
	"fmt"
)

// Histogram counts variants per conflict level. AnyConflict is the synthetic
// total over the levels at or above the active threshold.
type Histogram struct {
	counts      map[Level]int
	AnyConflict int
}

// NewHistogram returns an empty histogram
func NewHistogram() Histogram {
	return Histogram{counts: make(map[Level]int)}
}

// Set stores the count for a level
func (h *Histogram) Set(level Level, count int) {
	if h.counts == nil {
		h.counts = make(map[Level]int)
	}
	h.counts[level] = count
}

// Has reports whether a count was recorded for level
func (h Histogram) Has(level Level) bool {
	_, ok := h.counts[level]
	return ok
}

// Count returns the count for level, zero when absent
func (h Histogram) Count(level Level) int {
	return h.counts[level]
}

// SumFrom adds up every recorded count at or above threshold
func (h Histogram) SumFrom(threshold Level) int {
	total := 0
	for level, count := range h.counts {
		if level >= threshold {
			total += count
		}
	}
	return total
}

// Consistent checks AnyConflict against the per-level counts for the given filter
func (h Histogram) Consistent(minConflictLevel Level) bool {
	return h.AnyConflict == h.SumFrom(AnyConflictThreshold(minConflictLevel))
}

// Xref is an external identifier for a condition, e.g. MedGen C0023976
type Xref struct {
	DB string `json:"db,omitempty"`
	ID string `json:"id,omitempty"`
}

// Entry is one row of a summary
type Entry struct {
	Key       string
	Label     string
	Xref      Xref
	Histogram Histogram
}

// Summary is an insertion-ordered mapping from a unique key (condition name,
// gene or submitter id) to its conflict histogram.
type Summary struct {
	entries []*Entry
	index   map[string]int
}

// NewSummary returns an empty summary
func NewSummary() *Summary {
	return &Summary{index: make(map[string]int)}
}

// Add appends a new entry. Keys are unique.
func (s *Summary) Add(key, label string) (*Entry, error) {
	if _, exists := s.index[key]; exists {
		return nil, fmt.Errorf("duplicate summary key %q", key)
	}
	e := &Entry{Key: key, Label: label, Histogram: NewHistogram()}
	s.index[key] = len(s.entries)
	s.entries = append(s.entries, e)
	return e, nil
}

// Get looks up an entry by key
func (s *Summary) Get(key string) (*Entry, bool) {
	i, ok := s.index[key]
	if !ok {
		return nil, false
	}
	return s.entries[i], true
}

// Len returns the number of entries
func (s *Summary) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Entries returns the entries in insertion order
func (s *Summary) Entries() []*Entry {
	if s == nil {
		return nil
	}
	return s.entries
}

// Keys returns the keys in insertion order
func (s *Summary) Keys() []string {
	keys := make([]string, 0, s.Len())
	for _, e := range s.Entries() {
		keys = append(keys, e.Key)
	}
	return keys
}
