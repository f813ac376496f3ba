package handlers

import (
	"net/http"
	"strconv"

	"voting-bracket-api/services"

	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{
		statsService: statsService,
	}
}

// GetLogs returns a page of the vote ledger
// @Summary Get vote logs
// @Description Paginated permanent ledger with user and candidate details, newest first.
// @Tags admin
// @Produce json
// @Param page query int false "Page number (default: 1)" default(1)
// @Param per_page query int false "Items per page (default: 100, max: 500)" default(100)
// @Success 200 {object} models.PaginatedVotesResponse
// @Failure 400 {object} map[string]string
// @Router /admin/logs [get]
func (h *StatsHandler) GetLogs(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "100"))
	if err != nil || perPage < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid per_page parameter"})
		return
	}
	if perPage > 500 {
		perPage = 500
	}

	logs, err := h.statsService.GetLogs(page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve logs"})
		return
	}

	c.JSON(http.StatusOK, logs)
}

// GetOverallStats returns aggregate voting statistics
// @Summary Get overall statistics
// @Tags admin
// @Produce json
// @Success 200 {object} models.OverallStats
// @Router /admin/stats [get]
func (h *StatsHandler) GetOverallStats(c *gin.Context) {
	stats, err := h.statsService.GetOverallStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}
