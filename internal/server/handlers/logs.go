package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"smartshelf/internal/audit"
	"smartshelf/internal/store"
)

const defaultRetentionDays = 90

type LogHTTPHandler struct {
	logs     *store.LogStore
	recorder *audit.Recorder
}

func NewLogHTTPHandler(logs *store.LogStore, recorder *audit.Recorder) *LogHTTPHandler {
	return &LogHTTPHandler{logs: logs, recorder: recorder}
}

func parseDateQuery(c *gin.Context, param string) *time.Time {
	value := c.Query(param)
	if value == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

// ListLogs handles GET /api/logs.
func (h *LogHTTPHandler) ListLogs(c *gin.Context) {
	params := store.LogListParams{
		ListParams: listParamsFrom(c),
		Action:     c.Query("action"),
		EntityType: c.Query("entityType"),
		UserEmail:  c.Query("userEmail"),
		StartDate:  parseDateQuery(c, "startDate"),
		EndDate:    parseDateQuery(c, "endDate"),
	}

	entries, total, err := h.logs.List(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	listResponse(c, "logs", entries, total, params.ListParams)
}

// GetLog handles GET /api/logs/:id.
func (h *LogHTTPHandler) GetLog(c *gin.Context) {
	entry, err := h.logs.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, entry)
}

// Stats handles GET /api/logs/stats/summary.
func (h *LogHTTPHandler) Stats(c *gin.Context) {
	stats, err := h.logs.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, stats)
}

// Cleanup handles DELETE /api/logs/cleanup?days=N.
func (h *LogHTTPHandler) Cleanup(c *gin.Context) {
	days := defaultRetentionDays
	if v := c.Query("days"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			days = parsed
		}
	}

	result, err := h.recorder.PurgeOlderThan(c.Request.Context(), days, actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	success(c, result)
}
