package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"landslide-monitor/internal/aggregator"
	"landslide-monitor/internal/models"
	"landslide-monitor/internal/registry"
	"landslide-monitor/internal/services"
)

// HistoryReader reads the retained samples of one series
type HistoryReader interface {
	ReadAll(siteID string, metric models.Metric) ([]models.Sample, error)
}

// StatusReader exposes the latest classification per site
type StatusReader interface {
	Get(siteID string) (models.SiteStatus, error)
	UpdatedAt(siteID string) (time.Time, error)
	Snapshot() models.Snapshot
}

// StateReporter reports whether the producer loop is running
type StateReporter interface {
	State() services.State
}

type errorResponse struct {
	Error string `json:"error"`
}

// siteDetail adds the last classification time; it is omitted while pending
type siteDetail struct {
	models.SiteState
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// HealthCheck reports liveness and the producer loop state
func HealthCheck(scheduler StateReporter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"scheduler": scheduler.State().String(),
		})
	}
}

// ListSites returns every site with its current status in registry order
func ListSites(sites *registry.Registry, statuses StatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot := statuses.Snapshot()
		out := make([]models.SiteState, 0, sites.Len())
		for _, site := range sites.Sites() {
			out = append(out, models.SiteState{Site: site, Status: snapshot[site.ID]})
		}
		c.JSON(http.StatusOK, out)
	}
}

// GetSite returns one site with its current status
func GetSite(sites *registry.Registry, statuses StatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("site")
		site, ok := sites.Get(id)
		if !ok {
			c.JSON(http.StatusNotFound, errorResponse{Error: "unknown site: " + id})
			return
		}
		status, err := statuses.Get(id)
		if err != nil {
			log.Printf("API: Error reading status for %s: %v", id, err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "status unavailable"})
			return
		}
		detail := siteDetail{SiteState: models.SiteState{Site: site, Status: status}}
		if at, err := statuses.UpdatedAt(id); err == nil && !at.IsZero() {
			detail.UpdatedAt = &at
		}
		c.JSON(http.StatusOK, detail)
	}
}

// GetStatus returns the aggregate snapshot as sent on the all topic
func GetStatus(statuses StatusReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, statuses.Snapshot())
	}
}

// GetHistory returns the retained samples of one series, oldest first
func GetHistory(history HistoryReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		siteID := c.Param("site")
		metric, err := models.ParseMetric(c.Param("metric"))
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		samples, err := history.ReadAll(siteID, metric)
		switch {
		case err == nil:
			c.JSON(http.StatusOK, samples)
		case errors.Is(err, aggregator.ErrUnknownSite):
			c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		case errors.Is(err, aggregator.ErrUnknownMetric):
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		default:
			log.Printf("API: Error reading history %s/%s: %v", siteID, metric, err)
			c.JSON(http.StatusInternalServerError, errorResponse{Error: "history unavailable"})
		}
	}
}
