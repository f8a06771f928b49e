package ui

import (
	"html/template"
	"net/http"
	"net/url"

	"clinvarminer/adapters/excel"
	"clinvarminer/app"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/logging"
	"clinvarminer/ui/view"

	"github.com/go-chi/chi/v5"
)

// Page carries what every template needs
type Page struct {
	Title    string
	SiteName string
	Path     string
	Filter   filter.State

	query url.Values
}

func (a *App) page(r *http.Request, title string) Page {
	f, err := filter.Parse(r.URL.Query())
	if err != nil {
		f = filter.Default()
	}
	return Page{
		Title:    title,
		SiteName: a.config.SiteName,
		Path:     r.URL.EscapedPath(),
		Filter:   f,
		query:    r.URL.Query(),
	}
}

// pathParam decodes a super-escaped URL segment. chi matches on the raw path
// whenever the request path needed non-default escaping.
func pathParam(r *http.Request, name string) (string, error) {
	value, err := filter.DecodePathSegment(chi.URLParam(r, name), r.URL.RawPath != "")
	if err != nil {
		return "", errors.InvalidInput("malformed path segment " + name)
	}
	return value, nil
}

// Download request parameters
const (
	paramDownload = "download"
	paramFormat   = "format"
)

// serveDownload writes the table named by the download parameter. It reports
// whether the request was a download at all.
func (a *App) serveDownload(w http.ResponseWriter, r *http.Request, tables ...view.Exportable) bool {
	id := r.URL.Query().Get(paramDownload)
	if id == "" {
		return false
	}

	format, err := excel.ParseFormat(r.URL.Query().Get(paramFormat))
	if err != nil {
		a.renderError(w, r, errors.InvalidInput(err.Error()))
		return true
	}

	for _, table := range tables {
		if table == nil || table.TableID() != id {
			continue
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename(id)+`"`)
		if err := excel.Write(w, format, table.Records()); err != nil {
			logging.FromContext(r.Context()).WithError(err).Error("[Download] failed to write table")
		}
		return true
	}

	a.renderError(w, r, errors.NotFound("table "+id))
	return true
}

// DownloadLink is the href of a table download in the given format
func (p Page) DownloadLink(tableID, format string) string {
	q := url.Values{}
	for k, vs := range p.query {
		q[k] = vs
	}
	q.Set(paramDownload, tableID)
	q.Set(paramFormat, format)
	return p.Path + "?" + q.Encode()
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

func (a *App) handleRobots(w http.ResponseWriter, r *http.Request) {
	data, err := embeddedFiles.ReadFile("static/robots.txt")
	if err != nil {
		a.renderError(w, r, errors.NotFound("robots.txt"))
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write(data)
}

type indexPage struct {
	Page
	Intro    template.HTML
	Snapshot *app.Snapshot
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	snapshot, err := a.services.Snapshot.Overview(r.Context())
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	a.renderTemplate(w, r, http.StatusOK, "index.html", indexPage{
		Page:     a.page(r, a.config.SiteName),
		Intro:    a.intro,
		Snapshot: snapshot,
	})
}

func (a *App) handleSearch(w http.ResponseWriter, r *http.Request) {
	target, err := a.services.Search.Resolve(r.Context(), r.URL.Query().Get("q"), r.Host)
	if err != nil {
		a.renderError(w, r, err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}
