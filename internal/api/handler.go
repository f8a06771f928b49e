package api

import (
	"net/http"

	"clinvarminer/app"
	"clinvarminer/domain/conflict"
	"clinvarminer/domain/filter"
	"clinvarminer/internal/errors"
	"clinvarminer/internal/logging"
	"clinvarminer/ports"

	"github.com/gin-gonic/gin"
)

// Handler serves the JSON API
type Handler struct {
	conflicts    *app.ConflictSummaryService
	reviews      *app.ConflictReviewService
	significance *app.SignificanceService
	snapshot     *app.SnapshotService
}

// NewHandler creates a new API handler
func NewHandler(
	conflicts *app.ConflictSummaryService,
	reviews *app.ConflictReviewService,
	significance *app.SignificanceService,
	snapshot *app.SnapshotService,
) *Handler {
	return &Handler{
		conflicts:    conflicts,
		reviews:      reviews,
		significance: significance,
		snapshot:     snapshot,
	}
}

// Router builds the gin engine. Routes carry the full /api/v1 prefix because
// the engine is mounted on the page router without stripping it.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.UseRawPath = true
	r.UnescapePathValues = true

	v1 := r.Group("/api/v1")
	v1.GET("/health", h.Health)
	v1.GET("/snapshot", h.GetSnapshot)
	v1.GET("/conflicts/:dimension", h.GetConflicts)
	v1.GET("/conflicting-significance-pairs", h.GetSignificancePairs)
	v1.GET("/significance/:significance", h.GetSignificance)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": errors.CodeNotFound})
	})
	return r
}

// Health reports liveness
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetSnapshot returns the release date and totals of the loaded data
func (h *Handler) GetSnapshot(c *gin.Context) {
	snapshot, err := h.snapshot.Overview(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// ConflictRow is one key of a conflict summary
type ConflictRow struct {
	Key         string         `json:"key"`
	Label       string         `json:"label"`
	Xref        *conflict.Xref `json:"xref,omitempty"`
	Levels      map[string]int `json:"levels"`
	AnyConflict int            `json:"any_conflict"`
}

// ConflictsResponse is the JSON form of a conflict summary
type ConflictsResponse struct {
	Dimension                   ports.Dimension `json:"dimension"`
	MinConflictLevel            conflict.Level  `json:"min_conflict_level"`
	TotalVariants               int             `json:"total_variants"`
	TotalPotentiallyConflicting int             `json:"total_potentially_conflicting"`
	TotalConflicting            int             `json:"total_conflicting"`
	Overview                    map[string]int  `json:"overview"`
	Rows                        []ConflictRow   `json:"rows"`
}

// GetConflicts returns the conflict summary of one dimension
func (h *Handler) GetConflicts(c *gin.Context) {
	dim := ports.Dimension(c.Param("dimension"))
	if !dim.Valid() {
		h.fail(c, errors.NotFound("dimension "+string(dim)))
		return
	}
	f, err := filter.Parse(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.conflicts.Summarize(c.Request.Context(), dim, f)
	if err != nil {
		h.fail(c, err)
		return
	}

	threshold := conflict.AnyConflictThreshold(f.MinConflictLevel)
	resp := ConflictsResponse{
		Dimension:                   dim,
		MinConflictLevel:            f.MinConflictLevel,
		TotalVariants:               report.TotalVariants,
		TotalPotentiallyConflicting: report.TotalPotentiallyConflicting,
		TotalConflicting:            report.TotalConflicting,
		Overview:                    make(map[string]int),
		Rows:                        make([]ConflictRow, 0, report.Summary.Len()),
	}
	for _, level := range conflict.ConflictLevels() {
		if level >= threshold {
			resp.Overview[level.String()] = report.Overview[level]
		}
	}

	for _, entry := range report.Summary.Entries() {
		row := ConflictRow{
			Key:         entry.Key,
			Label:       entry.Label,
			Levels:      make(map[string]int),
			AnyConflict: entry.Histogram.AnyConflict,
		}
		if entry.Xref.ID != "" {
			xref := entry.Xref
			row.Xref = &xref
		}
		for level := conflict.LevelUnclassified; level <= conflict.LevelClinical; level++ {
			if entry.Histogram.Has(level) {
				row.Levels[level.String()] = entry.Histogram.Count(level)
			}
		}
		resp.Rows = append(resp.Rows, row)
	}

	c.JSON(http.StatusOK, resp)
}

// PairCell is one significance pair of the conflict matrix
type PairCell struct {
	Significance1 string `json:"significance1"`
	Significance2 string `json:"significance2"`
	Level         string `json:"conflict_level"`
	Count         int    `json:"count"`
}

// SignificancePairsResponse is the JSON form of the conflict matrix
type SignificancePairsResponse struct {
	MinConflictLevel conflict.Level `json:"min_conflict_level"`
	TotalConflicting int            `json:"total_conflicting"`
	Pairs            []PairCell     `json:"pairs"`
}

// GetSignificancePairs returns the conflicting variants by the significance of each side
func (h *Handler) GetSignificancePairs(c *gin.Context) {
	f, err := filter.Parse(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.reviews.Review(c.Request.Context(), app.ReviewScope{}, f)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := SignificancePairsResponse{
		MinConflictLevel: f.MinConflictLevel,
		TotalConflicting: report.TotalConflicting,
		Pairs:            []PairCell{},
	}
	for _, s1 := range report.Matrix.Rows {
		for _, s2 := range report.Matrix.Columns {
			if cell := report.Matrix.Cell(s1, s2); cell.Present {
				resp.Pairs = append(resp.Pairs, PairCell{
					Significance1: s1,
					Significance2: s2,
					Level:         cell.Level.String(),
					Count:         cell.Count,
				})
			}
		}
	}
	c.JSON(http.StatusOK, resp)
}

// SignificanceResponse is the JSON form of a significance breakdown
type SignificanceResponse struct {
	Significance string              `json:"significance"`
	Variants     int                 `json:"variants"`
	Ever         int                 `json:"ever"`
	Unanimous    int                 `json:"unanimous"`
	BySubmitter  []conflict.KeyCount `json:"by_submitter"`
	ByCondition  []conflict.KeyCount `json:"by_condition"`
	ByGene       []conflict.KeyCount `json:"by_gene"`
}

// GetSignificance returns the totals and breakdowns of one significance term
func (h *Handler) GetSignificance(c *gin.Context) {
	term := c.Param("significance")
	f, err := filter.Parse(c.Request.URL.Query())
	if err != nil {
		h.fail(c, err)
		return
	}

	report, err := h.significance.Breakdown(c.Request.Context(), term, f)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := report.Totals.Validate(); err != nil {
		h.fail(c, errors.Wrapf(err, "inconsistent totals for %q", term))
		return
	}

	resp := SignificanceResponse{
		Significance: report.Significance,
		Variants:     report.Totals.Variants,
		Ever:         report.Totals.Ever,
		Unanimous:    report.Totals.Unanimous(),
		BySubmitter:  nonNil(report.BySubmitter),
		ByCondition:  nonNil(report.ByCondition),
		ByGene:       nonNil(report.ByGene),
	}
	c.JSON(http.StatusOK, resp)
}

func nonNil(rows []conflict.KeyCount) []conflict.KeyCount {
	if rows == nil {
		return []conflict.KeyCount{}
	}
	return rows
}

// fail logs err and answers with its status and code
func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	logger := logging.FromContext(c.Request.Context()).WithField("code", errors.GetCode(err))
	message := http.StatusText(status)
	if status >= http.StatusInternalServerError {
		logger.WithError(err).Error("[API] request failed")
	} else {
		logger.WithError(err).Debug("[API] request rejected")
		var appErr *errors.AppError
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
	}
	c.JSON(status, gin.H{"error": message, "code": errors.GetCode(err)})
}
