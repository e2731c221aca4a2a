package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rideboard/internal/service"
)

type StatsController struct {
	statsService service.StatsService
}

func NewStatsController(statsService service.StatsService) *StatsController {
	return &StatsController{statsService: statsService}
}

// GetStats handles GET /api/v1/stats
func (sc *StatsController) GetStats(c *gin.Context) {
	stats, err := sc.statsService.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
