package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/consilium/internal/services/metrics"
)

// MetricsHandler exposes the per-stage latency summary
type MetricsHandler struct {
	monitor *metrics.LatencyMonitor
	logger  arbor.ILogger
}

func NewMetricsHandler(monitor *metrics.LatencyMonitor, logger arbor.ILogger) *MetricsHandler {
	return &MetricsHandler{
		monitor: monitor,
		logger:  logger,
	}
}

// LatencyHandler handles GET /api/metrics requests
func (h *MetricsHandler) LatencyHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stages": h.monitor.Snapshot(),
	})
}
