package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"signaltracker/internal/repository"
)

type PerformanceHandler struct {
	Repo repository.Repository
}

func (h *PerformanceHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/performance", h.summary)
}

func (h *PerformanceHandler) summary(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	summary, err := h.Repo.PerformanceSummary(c.Request.Context())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"total":               summary.Total,
		"pending":             summary.Pending,
		"hit_target":          summary.HitTarget,
		"hit_stop_loss":       summary.HitStopLoss,
		"expired":             summary.Expired,
		"avg_performance_pct": summary.AvgPerformancePct,
		"win_rate_pct":        summary.WinRatePct,
	}, nil)
}
