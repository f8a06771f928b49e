package ui

import (
	"net/http"

	"clinvarminer/app"
	"clinvarminer/domain/filter"
	"clinvarminer/ui/view"

	"github.com/go-chi/chi/v5"
)

type countriesPage struct {
	Page
	Table *view.CountryTable
}

func (a *App) handleCountries(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	rows, err := a.services.Submissions.ByCountry(r.Context(), f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	table := view.BuildCountryTable(rows, f)
	if a.serveDownload(w, r, table) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "countries.html", countriesPage{
		Page:  a.page(r, "Total submissions by country"),
		Table: table,
	})
}

type countryPage struct {
	Page
	Report  *app.CountryReport
	Section *view.BreakdownSection
}

// handleCountry serves one country; the bare trailing slash route has no code
// and lists the submitters without a country
func (a *App) handleCountry(w http.ResponseWriter, r *http.Request) {
	var code string
	if chi.URLParam(r, "code") != "" {
		var err error
		if code, err = pathParam(r, "code"); err != nil {
			a.renderError(w, r, err)
			return
		}
	}
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	report, err := a.services.Submissions.Country(r.Context(), code, f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	section := view.BuildCountrySubmitters(report, f)
	if a.serveDownload(w, r, section) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "country.html", countryPage{
		Page:    a.page(r, "Total submissions from "+report.Name),
		Report:  report,
		Section: section,
	})
}

type methodsPage struct {
	Page
	Methods *view.MethodTable
	History *view.MethodHistory
}

func (a *App) handleMethods(w http.ResponseWriter, r *http.Request) {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	report, err := a.services.Submissions.ByMethod(r.Context(), f)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	methods := &view.MethodTable{ID: "submissions-by-method", Rows: report.ByMethod}
	history := view.BuildMethodHistory(report.History)
	if a.serveDownload(w, r, methods, history) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "methods.html", methodsPage{
		Page:    a.page(r, "Total submissions by method"),
		Methods: methods,
		History: history,
	})
}
