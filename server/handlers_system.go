package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"receiptserver/ai"
	"receiptserver/database"
	"receiptserver/export"
	"receiptserver/receipt"
)

// StatsResponse aggregates storage, model gateway and queue statistics.
type StatsResponse struct {
	Receipts             *database.Stats  `json:"receipts"`
	ModelGateway         *ai.GatewayStats `json:"model_gateway,omitempty"`
	PendingConfirmations int              `json:"pending_confirmations"`
}

// HandleStats returns aggregate statistics over everything stored so far.
// @Summary Pipeline statistics
// @Tags system
// @Produce json
// @Success 200 {object} StatsResponse
// @Failure 500 {object} ErrorResponse
// @Router /stats [get]
func (s *Server) HandleStats(c *gin.Context) {
	stats, err := s.db.Stats(c.Request.Context())
	if err != nil {
		writeError(c, NewInternalError("failed to collect statistics", err))
		return
	}

	resp := StatsResponse{Receipts: stats}
	if s.gateway != nil {
		gs := s.gateway.Stats()
		resp.ModelGateway = &gs
	}
	if s.confirmer != nil {
		resp.PendingConfirmations = s.confirmer.Len()
	}

	c.JSON(http.StatusOK, resp)
}

// HandleMetrics returns in-process HTTP and processing metrics.
// @Summary Server metrics
// @Tags system
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics [get]
func (s *Server) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.metrics.GetMetrics())
}

// HandleExportReceipts streams stored receipts as a downloadable file.
// @Summary Export stored receipts
// @Tags export
// @Produce json
// @Param format query string false "json, csv or xlsx (default json)"
// @Param store query string false "Filter by store"
// @Param limit query int false "Maximum receipts to export (default 1000)"
// @Success 200 {file} file "Exported receipts"
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /export/receipts [get]
func (s *Server) HandleExportReceipts(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		writeError(c, NewValidationError(err.Error(), err))
		return
	}
	store := c.Query("store")
	limit, err := parseIntQuery(c, "limit", 1000)
	if err != nil {
		writeError(c, NewValidationError(err.Error(), nil))
		return
	}

	summaries, err := s.db.ListReceipts(c.Request.Context(), store, limit, 0)
	if err != nil {
		writeError(c, NewInternalError("failed to list receipts", err))
		return
	}
	receipts := make([]*receipt.ProcessedReceipt, 0, len(summaries))
	for _, summary := range summaries {
		rec, err := s.db.GetReceipt(c.Request.Context(), summary.ID)
		if err != nil {
			writeError(c, NewInternalError("failed to load receipt "+summary.ID, err))
			return
		}
		receipts = append(receipts, rec)
	}

	filename := fmt.Sprintf("receipts_%s%s", time.Now().Format("20060102_150405"), format.Ext())
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)

	// Headers are already on the wire here, so a mid-stream failure can
	// only be logged.
	if err := export.Write(c.Writer, format, receipts); err != nil {
		slog.Error("Export stream failed",
			"error", err,
			"format", string(format),
			"receipts", len(receipts))
	}
}
