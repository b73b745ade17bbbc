package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"homesoc/internal/engine"
	"homesoc/internal/snapshot"
	"homesoc/internal/store"
)

const defaultLimit = 50

// Handler serves read-only views over the persisted monitor logs.
type Handler struct {
	store   *store.JSONL
	history *store.History
	log     logrus.FieldLogger
}

func NewHandler(s *store.JSONL, history *store.History, log logrus.FieldLogger) *Handler {
	return &Handler{store: s, history: history, log: log}
}

// MetricRow is the flattened per-snapshot shape the dashboard charts consume.
type MetricRow struct {
	Timestamp     string  `json:"timestamp"`
	SecurityScore int     `json:"security_score"`
	CPULoad       float64 `json:"cpu_load"`
	MemUsed       float64 `json:"mem_used"`
	Connections   float64 `json:"connections"`
}

func (h *Handler) Dashboard(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(dashboardHTML))
}

func (h *Handler) Metrics(c *gin.Context) {
	snaps, err := h.store.TailSnapshots(queryLimit(c))
	if err != nil {
		h.log.WithError(err).Error("read metrics log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read metrics log"})
		return
	}

	rows := make([]MetricRow, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, flatten(s))
	}
	c.JSON(http.StatusOK, rows)
}

func (h *Handler) Alerts(c *gin.Context) {
	batches, err := h.store.TailAlerts(queryLimit(c))
	if err != nil {
		h.log.WithError(err).Error("read alerts log")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read alerts log"})
		return
	}
	if batches == nil {
		batches = []snapshot.AlertBatch{}
	}
	c.JSON(http.StatusOK, batches)
}

func (h *Handler) Trends(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "history database not configured"})
		return
	}
	points, err := h.history.Trends(c.Request.Context(), queryLimit(c))
	if err != nil {
		h.log.WithError(err).Error("query history trends")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to query trends"})
		return
	}
	c.JSON(http.StatusOK, points)
}

// flatten extracts the chart series values; a metric missing from the
// snapshot (probe gap) charts as zero, matching the log's omission.
func flatten(s snapshot.Snapshot) MetricRow {
	row := MetricRow{Timestamp: s.Timestamp, SecurityScore: s.SecurityScore}
	if v, ok := s.MetricValue(engine.MetricCPULoad); ok {
		row.CPULoad = v
	}
	if v, ok := s.MetricValue(engine.MetricMemoryUsedPct); ok {
		row.MemUsed = v
	}
	if v, ok := s.MetricValue(engine.MetricEstablishedConns); ok {
		row.Connections = v
	}
	return row
}

func queryLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}
