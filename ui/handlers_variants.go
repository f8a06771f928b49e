package ui

import (
	"net/http"

	"clinvarminer/app"
	"clinvarminer/domain/filter"
	"clinvarminer/ports"
	"clinvarminer/ui/view"

	"github.com/go-chi/chi/v5"
)

var browseDimensions = ports.Dimensions()

// keyParam reads the condition, gene or submitter of a drill-down URL
func keyParam(r *http.Request, dim ports.Dimension) (string, error) {
	return dimensionParam(r, dim, "key")
}

// dimensionParam reads the key of dim from the named path parameter
func dimensionParam(r *http.Request, dim ports.Dimension, name string) (string, error) {
	key, err := pathParam(r, name)
	if err != nil {
		return "", err
	}
	if dim == ports.ByGene {
		return filter.GeneFromSegment(key), nil
	}
	return key, nil
}

// significanceLink is one row of a key's significance overview
type significanceLink struct {
	Significance string
	Count        int
	Href         string
}

type keyPage struct {
	Page
	Report        *app.KeyReport
	AllHref       string
	Significances []significanceLink
	Sections      []*view.BreakdownSection
}

func (a *App) handleKeyOverview(dim ports.Dimension) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, err := keyParam(r, dim)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		report, err := a.services.Variants.Overview(r.Context(), dim, key, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		sections := view.BuildKeyBreakdowns(report, f)
		tables := make([]view.Exportable, 0, len(sections))
		for _, section := range sections {
			tables = append(tables, section)
		}
		if a.serveDownload(w, r, tables...) {
			return
		}

		base := view.BrowsePath(dim, key) + "/significance/"
		suffix := f.QuerySuffix(filter.ParamMinConflictLevel, filter.ParamOriginalTerms, filter.ParamOriginalGenes)
		links := make([]significanceLink, 0, len(report.Significances))
		for _, s := range report.Significances {
			links = append(links, significanceLink{
				Significance: s.Significance,
				Count:        s.Count,
				Href:         base + filter.PathSegment(s.Significance) + suffix,
			})
		}

		a.renderTemplate(w, r, http.StatusOK, "key.html", keyPage{
			Page:          a.page(r, "Variants by "+string(dim)+": "+report.Label),
			Report:        report,
			AllHref:       base + "any" + suffix,
			Significances: links,
			Sections:      sections,
		})
	}
}

type keysPage struct {
	Page
	List    *app.KeyList
	Section *view.BreakdownSection
}

func (a *App) handleKeyList(dim ports.Dimension) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		list, err := a.services.Variants.List(r.Context(), dim, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		section := view.BuildKeyList(list, f)
		if a.serveDownload(w, r, section) {
			return
		}

		a.renderTemplate(w, r, http.StatusOK, "keys.html", keysPage{
			Page:    a.page(r, "Variants by "+string(dim)),
			List:    list,
			Section: section,
		})
	}
}

type variantsPage struct {
	Page
	List  *app.VariantList
	Table *view.VariantTable
}

// variantsTitle names a drill-down list by its keys and significance
func variantsTitle(list *app.VariantList) string {
	title := list.Label
	if list.Crossed() {
		title += " / " + list.OtherLabel
	}
	if list.Significance != "" {
		title += ": " + list.Significance
	}
	return title
}

// handleKeyVariants lists the variants of one key, crossed with a key of other
// unless other is empty. Routes without a significance list every variant.
func (a *App) handleKeyVariants(dim, other ports.Dimension) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sel := app.Selection{Dimension: dim, Other: other}
		var err error
		if sel.Key, err = keyParam(r, dim); err != nil {
			a.renderError(w, r, err)
			return
		}
		if other != "" {
			if sel.OtherKey, err = dimensionParam(r, other, "other"); err != nil {
				a.renderError(w, r, err)
				return
			}
		}
		if chi.URLParam(r, "significance") != "" {
			if sel.Significance, err = pathParam(r, "significance"); err != nil {
				a.renderError(w, r, err)
				return
			}
		}
		f, err := filter.Parse(r.URL.Query())
		if err != nil {
			a.renderError(w, r, err)
			return
		}

		list, err := a.services.Variants.Variants(r.Context(), sel, f)
		if err != nil {
			a.renderError(w, r, err)
			return
		}
		table := &view.VariantTable{ID: "variants", Rows: list.Rows}
		if a.serveDownload(w, r, table) {
			return
		}

		a.renderTemplate(w, r, http.StatusOK, "variants.html", variantsPage{
			Page:  a.page(r, variantsTitle(list)),
			List:  list,
			Table: table,
		})
	}
}

type submissionsPage struct {
	Page
	Variant string
	Table   *view.SubmissionTable
}

func (a *App) handleSubmissions(w http.ResponseWriter, r *http.Request) {
	variant, err := pathParam(r, "variant")
	if err != nil {
		a.renderError(w, r, err)
		return
	}

	rows, err := a.services.Snapshot.Submissions(r.Context(), variant)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	table := &view.SubmissionTable{ID: "submissions", Rows: rows}
	if a.serveDownload(w, r, table) {
		return
	}

	a.renderTemplate(w, r, http.StatusOK, "submissions.html", submissionsPage{
		Page:    a.page(r, variant),
		Variant: variant,
		Table:   table,
	})
}
