package filter

import (
	"net/url"
	"strconv"
	"strings"

	"clinvarminer/domain/conflict"
	"clinvarminer/internal/errors"
)

// Query parameter names
const (
	ParamMinConflictLevel = "min_conflict_level"
	ParamConditions       = "conditions"
	ParamReviewStatus1    = "review_status1"
	ParamReviewStatus2    = "review_status2"
	ParamMethod1          = "method1"
	ParamMethod2          = "method2"
	ParamOriginalTerms    = "original_terms"
	ParamOriginalGenes    = "original_genes"
)

// alwaysAllowed are the submission filters every generated link carries forward
var alwaysAllowed = []string{ParamReviewStatus1, ParamReviewStatus2, ParamMethod1, ParamMethod2}

// AnyReviewStatus disables the review-status filter
const AnyReviewStatus = -1

var reviewStatusLabels = []string{
	"no assertion criteria provided",
	"criteria provided, single submitter",
	"criteria provided, multiple submitters",
	"reviewed by expert panel",
	"practice guideline",
}

// ReviewStatusLabel names a minimum star level
func ReviewStatusLabel(stars int) string {
	if stars < 0 || stars >= len(reviewStatusLabels) {
		return "any review status"
	}
	return reviewStatusLabels[stars]
}

// Submission filters one side of a submission comparison
type Submission struct {
	// ReviewStatus is the minimum review star level, AnyReviewStatus for no limit
	ReviewStatus int
	Method       string
}

// State is the immutable filter state of one request
type State struct {
	MinConflictLevel conflict.Level
	Conditions       []string
	Submission1      Submission
	Submission2      Submission
	OriginalTerms    bool
	OriginalGenes    bool

	params     map[string]string
	conditions map[string]struct{}
}

// Default is the state of a request without query parameters
func Default() State {
	return State{
		MinConflictLevel: conflict.LevelUnclassified,
		Submission1:      Submission{ReviewStatus: AnyReviewStatus},
		Submission2:      Submission{ReviewStatus: AnyReviewStatus},
	}
}

// Parse builds the state from query parameters. Malformed integers are an
// invalid-input error.
func Parse(values url.Values) (State, error) {
	s := Default()
	s.params = make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 && vs[0] != "" {
			s.params[key] = vs[0]
		}
	}

	level, err := intParam(values, ParamMinConflictLevel, int(conflict.LevelUnclassified))
	if err != nil {
		return State{}, err
	}
	if !conflict.Level(level).Valid() {
		return State{}, errors.InvalidInput("min_conflict_level must be between -1 and 5")
	}
	s.MinConflictLevel = conflict.Level(level)

	for i, name := range []string{ParamReviewStatus1, ParamReviewStatus2} {
		stars, err := intParam(values, name, AnyReviewStatus)
		if err != nil {
			return State{}, err
		}
		if stars < AnyReviewStatus || stars >= len(reviewStatusLabels) {
			return State{}, errors.InvalidInput(name + " must be between -1 and 4")
		}
		if i == 0 {
			s.Submission1.ReviewStatus = stars
		} else {
			s.Submission2.ReviewStatus = stars
		}
	}

	s.Submission1.Method = values.Get(ParamMethod1)
	s.Submission2.Method = values.Get(ParamMethod2)
	s.OriginalTerms = values.Get(ParamOriginalTerms) != ""
	s.OriginalGenes = values.Get(ParamOriginalGenes) != ""

	if conds, ok := values[ParamConditions]; ok && len(conds) > 0 {
		s.Conditions = append([]string(nil), conds...)
		s.conditions = make(map[string]struct{}, len(conds))
		for _, c := range conds {
			s.conditions[c] = struct{}{}
		}
	}

	return s, nil
}

func intParam(values url.Values, name string, def int) (int, error) {
	raw := values.Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.InvalidInput(name + " must be an integer")
	}
	return n, nil
}

// HasCondition reports whether name was selected, by exact string match
func (s State) HasCondition(name string) bool {
	_, ok := s.conditions[name]
	return ok
}

// Param returns the first non-empty value of a request parameter
func (s State) Param(name string) string {
	return s.params[name]
}

// QuerySuffix serialises the submission filters plus the named extra parameters
// into a "?"-prefixed query string. Absent and empty parameters are omitted and
// an empty string is returned when nothing qualifies.
func (s State) QuerySuffix(extra ...string) string {
	seen := make(map[string]bool, len(alwaysAllowed)+len(extra))
	var args []string
	for _, names := range [][]string{alwaysAllowed, extra} {
		for _, name := range names {
			if seen[name] {
				continue
			}
			seen[name] = true
			value, ok := s.params[name]
			if !ok {
				continue
			}
			args = append(args, Escape(name)+"="+Escape(value))
		}
	}
	if len(args) == 0 {
		return ""
	}
	return "?" + strings.Join(args, "&")
}

// Escape percent-encodes every reserved character, spaces as %20
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
