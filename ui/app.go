package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"clinvarminer/app"
	"clinvarminer/internal/cache"
	"clinvarminer/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.html static/* content/*.md
var embeddedFiles embed.FS

// Services are the application services behind the pages
type Services struct {
	Conflicts    *app.ConflictSummaryService
	Reviews      *app.ConflictReviewService
	Significance *app.SignificanceService
	Variants     *app.VariantService
	Submissions  *app.SubmissionService
	Search       *app.SearchService
	Snapshot     *app.SnapshotService
}

// Config holds UI application configuration
type Config struct {
	SiteName string

	// PageCache caches rendered pages; nil serves every request fresh
	PageCache *cache.PageCache

	// API is mounted under /api when set
	API http.Handler
}

// App is the HTML front end
type App struct {
	router    *chi.Mux
	templates *template.Template
	services  Services
	config    Config
	intro     template.HTML
}

// NewApp parses the embedded templates and sets up the router
func NewApp(config Config, services Services) (*App, error) {
	templates, err := template.New("").Funcs(funcMap()).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	intro, err := renderMarkdown("content/index.md")
	if err != nil {
		return nil, err
	}

	a := &App{
		router:    chi.NewRouter(),
		templates: templates,
		services:  services,
		config:    config,
		intro:     intro,
	}

	if err := a.setupMiddleware(); err != nil {
		return nil, err
	}
	a.setupRoutes()

	return a, nil
}

// renderMarkdown renders an embedded markdown file once at startup
func renderMarkdown(name string) (template.HTML, error) {
	md, err := embeddedFiles.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return template.HTML(markdown.Render(p.Parse(md), renderer)), nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(logging.RequestLogger)
	a.router.Use(middleware.Recoverer)
	if a.config.PageCache != nil {
		a.router.Use(a.config.PageCache.Middleware)
	} else {
		a.router.Use(middleware.Compress(5))
	}

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/health", a.handleHealth)
	a.router.Get("/robots.txt", a.handleRobots)
	a.router.Get("/search", a.handleSearch)

	// Conflict summaries
	a.router.Get("/conflicting-variants-by-condition", a.handleConflicts(conditionConflicts))
	a.router.Get("/conflicting-variants-by-gene", a.handleConflicts(geneConflicts))
	a.router.Get("/conflicting-variants-by-submitter", a.handleConflicts(submitterConflicts))

	// Significance matrices and the variants behind each cell
	a.router.Get("/conflicting-variants-by-significance", a.handleReview(significanceScope))
	a.router.Get("/conflicting-variants-by-significance/{significance1}/{significance2}", a.handlePairVariants(significanceScope))
	a.router.Get("/conflicting-variants-by-gene/{gene}", a.handleReview(geneScope))
	a.router.Get("/conflicting-variants-by-gene/{gene}/{significance1}/{significance2}", a.handlePairVariants(geneScope))
	a.router.Get("/conflicting-variants-by-submitter/{submitter1}", a.handleReview(submitterScope))
	a.router.Get("/conflicting-variants-by-submitter/{submitter1}/{submitter2}", a.handleReview(submitterScope))
	a.router.Get("/conflicting-variants-by-submitter/{submitter1}/{submitter2}/{significance1}/{significance2}",
		a.handlePairVariants(submitterScope))

	// Significance breakdowns
	a.router.Get("/variants-by-significance", a.handleSignificanceList)
	a.router.Get("/variants-by-significance/{significance}", a.handleSignificance)

	// Drill-downs
	for _, dim := range browseDimensions {
		base := "/variants-by-" + string(dim)
		a.router.Get(base, a.handleKeyList(dim))
		a.router.Get(base+"/{key}", a.handleKeyOverview(dim))
		a.router.Get(base+"/{key}/significance/any", a.handleKeyVariants(dim, ""))
		a.router.Get(base+"/{key}/significance/{significance}", a.handleKeyVariants(dim, ""))
		for _, other := range browseDimensions {
			if other == dim {
				continue
			}
			cross := base + "/{key}/" + string(other) + "/{other}"
			a.router.Get(cross, a.handleKeyVariants(dim, other))
			a.router.Get(cross+"/{significance}", a.handleKeyVariants(dim, other))
		}
	}
	a.router.Get("/submissions-by-variant/{variant}", a.handleSubmissions)

	// Submission totals
	a.router.Get("/total-submissions-by-country", a.handleCountries)
	a.router.Get("/total-submissions-by-country/", a.handleCountry)
	a.router.Get("/total-submissions-by-country/{code}", a.handleCountry)
	a.router.Get("/total-submissions-by-method", a.handleMethods)

	if a.config.API != nil {
		a.router.Mount("/api", a.config.API)
	}
}

// ServeHTTP makes App an http.Handler
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}
