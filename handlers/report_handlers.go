// handlers/report_handlers.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ecomfunnel/analytics"
	"ecomfunnel/models"
)

const defaultJourneyLimit = 100

// ReportHandlers serves a snapshot of analysis results.
type ReportHandlers struct {
	Results *analytics.Results
}

func NewReportHandlers(res *analytics.Results) *ReportHandlers {
	return &ReportHandlers{
		Results: res,
	}
}

func (h *ReportHandlers) GetFirstPageSegments(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.Results.FirstPage))
}

func (h *ReportHandlers) GetProductOnlyViewers(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.Results.ProductOnly))
}

func (h *ReportHandlers) GetAnomalousUsers(c *gin.Context) {
	c.JSON(http.StatusOK, nonNil(h.Results.Anomalies))
}

// GetJourneys lists journeys, optionally filtered by entry page type.
func (h *ReportHandlers) GetJourneys(c *gin.Context) {
	firstPage := c.Query("first_page_type") // optional, empty means all entry pages

	// Parse and validate 'limit' parameter
	limit := defaultJourneyLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid 'limit' parameter. Must be a positive integer."})
			return
		}
		limit = parsed
	}

	// Journeys are sorted by session; the first 'limit' matches are returned.
	results := make([]models.SessionJourney, 0, min(limit, len(h.Results.Journeys)))
	for _, j := range h.Results.Journeys {
		if firstPage != "" && j.FirstPageType != firstPage {
			continue
		}
		results = append(results, j)
		if len(results) == limit {
			break
		}
	}

	c.JSON(http.StatusOK, results)
}

func (h *ReportHandlers) GetJourney(c *gin.Context) {
	session := c.Param("session")

	// Binary search over the sorted journeys.
	j, ok := h.Results.Journey(session)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, j)
}

// Health reports liveness and the size of the loaded snapshot.
func (h *ReportHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": len(h.Results.Journeys),
	})
}

// nonNil keeps empty reports encoded as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
