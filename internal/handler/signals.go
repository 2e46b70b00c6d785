package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"signaltracker/internal/repository"
	"signaltracker/internal/service"
)

type SignalHandler struct {
	Repo   repository.Repository
	Ingest *service.IngestService
}

func (h *SignalHandler) Register(r *gin.Engine) {
	group := r.Group("/api/v1/signals")
	group.POST("", h.createSignal)
	group.GET("", h.listSignals)
	group.GET("/:id", h.getSignal)
}

type createSignalRequest struct {
	Source string `json:"source"`
	Text   string `json:"text" binding:"required"`
}

func (h *SignalHandler) createSignal(c *gin.Context) {
	if h.Ingest == nil {
		Error(c, http.StatusInternalServerError, "ingest unavailable", nil)
		return
	}
	var req createSignalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	sig, err := h.Ingest.Ingest(c.Request.Context(), req.Source, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			Error(c, http.StatusBadRequest, err.Error(), nil)
			return
		}
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, sig, nil)
}

func (h *SignalHandler) listSignals(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	status := strings.TrimSpace(c.Query("status"))
	symbol := strings.TrimSpace(c.Query("symbol"))
	since := strings.TrimSpace(c.Query("since"))
	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	var sinceTime *time.Time
	if since != "" {
		if parsed, err := time.Parse(time.RFC3339, since); err == nil {
			parsed = parsed.UTC()
			sinceTime = &parsed
		}
	}

	var statusPtr *string
	if status != "" {
		statusPtr = &status
	}
	var symbolPtr *string
	if symbol != "" {
		symbolPtr = &symbol
	}

	params := repository.ListSignalsParams{
		Limit:   limit,
		Offset:  offset,
		Status:  statusPtr,
		Symbol:  symbolPtr,
		Since:   sinceTime,
		OrderBy: "created_at",
		Asc:     boolPtr(false),
	}
	items, err := h.Repo.ListSignals(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	total, err := h.Repo.CountSignals(c.Request.Context(), params)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, items, paginationMeta(limit, offset, total))
}

func (h *SignalHandler) getSignal(c *gin.Context) {
	if h.Repo == nil {
		Error(c, http.StatusInternalServerError, "repo unavailable", nil)
		return
	}
	id, err := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id == 0 {
		Error(c, http.StatusBadRequest, "invalid id", nil)
		return
	}
	sig, err := h.Repo.GetSignalByID(c.Request.Context(), id)
	if err != nil {
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	if sig == nil {
		Error(c, http.StatusNotFound, "signal not found", nil)
		return
	}
	Ok(c, sig, nil)
}
