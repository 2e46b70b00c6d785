package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"signaltracker/internal/price"
)

type PriceHandler struct {
	Prices *price.Service
}

func (h *PriceHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/prices")
	group.GET("/:symbol", h.currentPrice)
	group.GET("/:symbol/history", h.historicalPrice)
}

func (h *PriceHandler) currentPrice(c *gin.Context) {
	if h.Prices == nil {
		Error(c, http.StatusInternalServerError, "prices unavailable", nil)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		Error(c, http.StatusBadRequest, "missing symbol", nil)
		return
	}
	quote, err := h.Prices.CurrentPrice(c.Request.Context(), symbol)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"symbol":     quote.Symbol,
		"price":      quote.Price,
		"fetched_at": quote.At,
	}, nil)
}

func (h *PriceHandler) historicalPrice(c *gin.Context) {
	if h.Prices == nil {
		Error(c, http.StatusInternalServerError, "prices unavailable", nil)
		return
	}
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		Error(c, http.StatusBadRequest, "missing symbol", nil)
		return
	}
	at, err := time.Parse(time.RFC3339, strings.TrimSpace(c.Query("at")))
	if err != nil {
		Error(c, http.StatusBadRequest, "at must be RFC3339", nil)
		return
	}
	val, err := h.Prices.HistoricalPrice(c.Request.Context(), symbol, at.UTC())
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, gin.H{
		"symbol": symbol,
		"price":  val,
		"at":     at.UTC(),
	}, nil)
}
