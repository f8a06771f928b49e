package ui

import (
	"net/http"
	"strconv"

	"clinvarminer/app"
	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/ports"
	"clinvarminer/ui/view"

	"github.com/go-chi/chi/v5"
)

// conflictView describes one conflict summary page
type conflictView struct {
	title string
	opts  view.ConflictTableOptions
}

var (
	conditionConflicts = conflictView{
		title: "Conflicting variants by condition",
		opts:  view.ConflictTableOptions{ID: "conflicts-by-condition", BasePath: "/variants-by-condition/", Dimension: ports.ByCondition},
	}
	geneConflicts = conflictView{
		title: "Conflicting variants by gene",
		opts:  view.ConflictTableOptions{ID: "conflicts-by-gene", BasePath: "/conflicting-variants-by-gene/", Dimension: ports.ByGene},
	}
	submitterConflicts = conflictView{
		title: "Conflicting variants by submitter",
		opts:  view.ConflictTableOptions{ID: "conflicts-by-submitter", BasePath: "/conflicting-variants-by-submitter/", Dimension: ports.BySubmitter},
	}
)

// overviewRow is one line of the conflict level overview
type overviewRow struct {
	Level conflict.Level
	Count int
}

type conflictsPage struct {
	Page
	Report       *app.ConflictReport
	Table        *view.ConflictTable
	Distribution view.Distribution
	Overview     []overviewRow
}

func (a *App) handleConflicts(cv conflictView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		report, err := a.services.Conflicts.Summarize(r.Context(), cv.opts.Dimension, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		table, err := view.BuildConflictTable(report.Summary, f, cv.opts)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		if a.serveDownload(w, r, table) {
			return
		}

		dist, err := table.AnyConflictDistribution()
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		a.renderTemplate(w, r, http.StatusOK, "conflicts.html", conflictsPage{
			Page:         a.page(r, cv.title),
			Report:       report,
			Table:        table,
			Distribution: dist,
			Overview:     overviewRows(report.Overview, f),
		})
	}
}

// overviewRows lists the conflict levels at or above the any-conflict threshold
func overviewRows(overview conflict.Overview, f filter.State) []overviewRow {
	var rows []overviewRow
	for _, level := range conflict.ConflictLevels() {
		if level >= conflict.AnyConflictThreshold(f.MinConflictLevel) {
			rows = append(rows, overviewRow{Level: level, Count: overview[level]})
		}
	}
	return rows
}

// scopeReader reads the review scope of a matrix URL
type scopeReader func(r *http.Request) (app.ReviewScope, error)

func significanceScope(*http.Request) (app.ReviewScope, error) {
	return app.ReviewScope{}, nil
}

func geneScope(r *http.Request) (app.ReviewScope, error) {
	seg, err := pathParam(r, "gene")
	if err != nil {
		return app.ReviewScope{}, err
	}
	gene := filter.GeneFromSegment(seg)
	return app.ReviewScope{Gene: &gene}, nil
}

// submitterScope reads submitter1 and, on pair pages, submitter2 where 0
// stands for any other submitter
func submitterScope(r *http.Request) (app.ReviewScope, error) {
	id, err := app.ParseSubmitterID(chi.URLParam(r, "submitter1"))
	if err != nil {
		return app.ReviewScope{}, err
	}
	scope := app.ReviewScope{Submitter1: id}

	raw := chi.URLParam(r, "submitter2")
	if raw == "" {
		return scope, nil
	}
	other, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || other < 0 {
		return scope, errors.NotFound("submitter " + raw)
	}
	scope.Submitter2 = &other
	return scope, nil
}

// reviewTitle names what a review is about
func reviewTitle(subject app.ReviewSubject) string {
	switch {
	case subject.Submitter2 != nil:
		return "Conflicts between " + subject.Submitter1.Name + " and " + subject.Submitter2.Name
	case subject.Submitter1 != nil:
		return "Conflicting variants from " + subject.Submitter1.Name
	case subject.Scope.Gene != nil:
		return "Conflicting variants in " + subject.GeneLabel
	}
	return "Conflicting variants by significance"
}

type reviewPage struct {
	Page
	Report       *app.ReviewReport
	Matrix       *view.ConflictMatrix
	Counterparts *view.ConflictTable
	Variants     *view.VariantTable
	Overview     []overviewRow
}

func (a *App) handleReview(readScope scopeReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := readScope(r)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		report, err := a.services.Reviews.Review(r.Context(), scope, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		matrix, err := view.BuildConflictMatrix(report.Matrix, scope, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		page := reviewPage{
			Page:     a.page(r, reviewTitle(report.ReviewSubject)),
			Report:   report,
			Matrix:   matrix,
			Overview: overviewRows(report.Overview, f),
		}
		tables := []view.Exportable{matrix}
		if report.Counterparts != nil {
			page.Counterparts, err = view.BuildConflictTable(report.Counterparts, f, view.ConflictTableOptions{
				ID:        "conflicts-by-counterpart",
				BasePath:  "/conflicting-variants-by-submitter/" + strconv.FormatInt(scope.Submitter1, 10) + "/",
				Dimension: ports.BySubmitter,
			})
			if err != nil {
				a.renderError(w, r, err)
				return
			}
			tables = append(tables, page.Counterparts)
		}
		if scope.Scoped() {
			page.Variants = &view.VariantTable{ID: "conflicting-variants", Rows: report.Variants}
			tables = append(tables, page.Variants)
		}
		if a.serveDownload(w, r, tables...) {
			return
		}

		a.renderTemplate(w, r, http.StatusOK, "review.html", page)
	}
}

type pairPage struct {
	Page
	Report *app.PairReport
	Back   string
	Table  *view.VariantTable
}

func (a *App) handlePairVariants(readScope scopeReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		scope, err := readScope(r)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		significance1, err := pathParam(r, "significance1")
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		significance2, err := pathParam(r, "significance2")
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		report, err := a.services.Reviews.PairVariants(r.Context(), scope, significance1, significance2, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		table := &view.VariantTable{ID: "variants", Rows: report.Variants}
		if a.serveDownload(w, r, table) {
			return
		}

		a.renderTemplate(w, r, http.StatusOK, "pair.html", pairPage{
			Page:   a.page(r, reviewTitle(report.ReviewSubject)+": "+significance1+" vs "+significance2),
			Report: report,
			Back:   view.ReviewPath(scope) + f.QuerySuffix(filter.ParamMinConflictLevel, filter.ParamOriginalTerms),
			Table:  table,
		})
	}
}
