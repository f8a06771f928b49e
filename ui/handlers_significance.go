package ui

import (
	"net/http"

	"clinvarminer/domain/filter"
	"clinvarminer/ui/view"
)

type significanceListPage struct {
	Page
	List *view.SignificanceList
}

func (a *App) handleSignificanceList(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	counts, err := a.services.Significance.List(r.Context(), f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	list := view.BuildSignificanceList(counts, f)
	if a.serveDownload(w, r, list) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "significance-list.html", significanceListPage{
		Page: a.page(r, "Variants by significance"),
		List: list,
	})
}

type significancePage struct {
	Page
	Breakdown *view.SignificanceBreakdown
}

func (a *App) handleSignificance(w http.ResponseWriter, r *http.Request) {
	term, err := pathParam(r, "significance")
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	report, err := a.services.Significance.Breakdown(r.Context(), term, f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	breakdown, err := view.BuildSignificanceBreakdown(report, f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	tables := make([]view.Exportable, 0, len(breakdown.Sections))
	for _, section := range breakdown.Sections {
		tables = append(tables, section)
	}
	if a.serveDownload(w, r, tables...) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "significance.html", significancePage{
		Page:      a.page(r, "Variants reported as "+term),
		Breakdown: breakdown,
	})
}
