package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"receiptserver/database"
	"receiptserver/normalization"
	"receiptserver/receipt"
)

// ProcessReceiptResponse wraps the pipeline output with the persistence
// outcome.
type ProcessReceiptResponse struct {
	Receipt   *receipt.ProcessedReceipt `json:"receipt"`
	Persisted bool                      `json:"persisted"`
}

// ReceiptListResponse is one page of stored receipt summaries.
type ReceiptListResponse struct {
	Receipts []database.ReceiptSummary `json:"receipts"`
	Total    int                       `json:"total"`
	Limit    int                       `json:"limit"`
	Offset   int                       `json:"offset"`
}

// HandleProcessReceipt runs one extracted receipt through the pipeline.
// @Summary Process an extracted receipt
// @Description Runs store detection, arithmetic verification and name normalization over an extracted receipt. The call blocks while low-confidence names wait in the confirmation queue. persist=false skips writing the result.
// @Tags receipts
// @Accept json
// @Produce json
// @Param receipt body receipt.ExtractedReceipt true "Extracted receipt"
// @Param persist query bool false "Persist the processed receipt (default true)"
// @Success 200 {object} ProcessReceiptResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /receipts/process [post]
func (s *Server) HandleProcessReceipt(c *gin.Context) {
	var extracted receipt.ExtractedReceipt
	if err := c.ShouldBindJSON(&extracted); err != nil {
		writeError(c, NewValidationError("invalid receipt payload", err))
		return
	}
	if len(extracted.Items) == 0 {
		writeError(c, NewValidationError("receipt has no items", nil))
		return
	}

	persist := true
	if raw := c.Query("persist"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, NewValidationError("persist must be a boolean", err))
			return
		}
		persist = value
	}

	start := time.Now()
	processed, err := s.processor.Process(c.Request.Context(), extracted)
	if err != nil {
		s.metrics.RecordReceiptFailure()
		if errors.Is(err, normalization.ErrEmptyName) {
			writeError(c, NewValidationError(err.Error(), err))
			return
		}
		writeError(c, NewInternalError("failed to process receipt", err))
		return
	}
	s.metrics.RecordReceipt(processed, time.Since(start))

	if persist {
		if err := s.db.SaveReceipt(c.Request.Context(), processed); err != nil {
			writeError(c, NewInternalError("failed to save processed receipt", err))
			return
		}
	}

	c.JSON(http.StatusOK, ProcessReceiptResponse{
		Receipt:   processed,
		Persisted: persist,
	})
}

// HandleListReceipts returns stored receipt summaries, newest first.
// @Summary List stored receipts
// @Tags receipts
// @Produce json
// @Param store query string false "Filter by detected store"
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset"
// @Success 200 {object} ReceiptListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /receipts [get]
func (s *Server) HandleListReceipts(c *gin.Context) {
	store := c.Query("store")
	limit, err := parseIntQuery(c, "limit", 50)
	if err != nil {
		writeError(c, NewValidationError(err.Error(), nil))
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		writeError(c, NewValidationError(err.Error(), nil))
		return
	}

	summaries, err := s.db.ListReceipts(c.Request.Context(), store, limit, offset)
	if err != nil {
		writeError(c, NewInternalError("failed to list receipts", err))
		return
	}

	c.JSON(http.StatusOK, ReceiptListResponse{
		Receipts: summaries,
		Total:    len(summaries),
		Limit:    limit,
		Offset:   offset,
	})
}

// HandleGetReceipt returns one stored receipt with all its items.
// @Summary Get a stored receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} receipt.ProcessedReceipt
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /receipts/{id} [get]
func (s *Server) HandleGetReceipt(c *gin.Context) {
	rec, err := s.db.GetReceipt(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// HandleDeleteReceipt removes a stored receipt and its items.
// @Summary Delete a stored receipt
// @Tags receipts
// @Produce json
// @Param id path string true "Receipt ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /receipts/{id} [delete]
func (s *Server) HandleDeleteReceipt(c *gin.Context) {
	id := c.Param("id")
	if err := s.db.DeleteReceipt(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "deleted", ID: id})
}
