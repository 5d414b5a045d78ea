package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	"github.com/couchcryptid/hazard-risk-etl/internal/service"
	"github.com/gin-gonic/gin"
)

const maxRequestHazards = 10000

type recordsRequest struct {
	Hazards []domain.HazardRecord `json:"hazards" binding:"max=10000"`
}

type scoreRequest struct {
	Hazards []domain.AnnotatedHazard `json:"hazards" binding:"max=10000"`
}

type assessmentResponse struct {
	Hazards []domain.AnnotatedHazard `json:"hazards"`
	Summary domain.Summary           `json:"summary"`
}

type handler struct {
	risk          *service.RiskService
	defaultWindow time.Duration
	logger        *slog.Logger
}

func (h *handler) registerRoutes(api *gin.RouterGroup) {
	api.POST("/cluster", h.cluster)
	api.POST("/score", h.score)
	api.POST("/assess", h.assess)

	hazards := api.Group("/hazards")
	{
		hazards.POST("", h.reportHazard)
		hazards.GET("/risk", h.riskMap)
		hazards.GET("/stats", h.stats)
	}

	api.GET("/reporters/:id/hazards", h.reporterHistory)
}

func (h *handler) cluster(c *gin.Context) {
	var req recordsRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.risk.Cluster(req.Hazards)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessmentResponse{Hazards: out, Summary: domain.Summarize(out)})
}

func (h *handler) score(c *gin.Context) {
	var req scoreRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.risk.Score(req.Hazards)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessmentResponse{Hazards: out, Summary: domain.Summarize(out)})
}

func (h *handler) assess(c *gin.Context) {
	var req recordsRequest
	if !bindJSON(c, &req) {
		return
	}
	out, err := h.risk.Assess(req.Hazards)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, assessmentResponse{Hazards: out, Summary: domain.Summarize(out)})
}

func (h *handler) reportHazard(c *gin.Context) {
	var req service.Report
	if !bindJSON(c, &req) {
		return
	}
	rec, err := h.risk.ReportHazard(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (h *handler) riskMap(c *gin.Context) {
	window := h.defaultWindow
	if v := c.Query("window"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window"})
			return
		}
		window = d
	}
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	m, err := h.risk.RiskMap(c.Request.Context(), window, refresh)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *handler) stats(c *gin.Context) {
	stats, err := h.risk.Stats(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *handler) reporterHistory(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 || limit > maxRequestHazards {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	hazards, err := h.risk.ReporterHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hazards": hazards})
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return false
	}
	return true
}

func (h *handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidHazard), errors.Is(err, service.ErrInvalidWindow):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrStoreDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed",
			"path", c.FullPath(),
			"request_id", c.GetString(requestIDHeader),
			"error", err,
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
