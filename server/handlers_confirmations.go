package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"receiptserver/confirmation"
)

// ConfirmationListResponse lists names currently waiting for a human answer.
type ConfirmationListResponse struct {
	Pending []confirmation.Request `json:"pending"`
	Total   int                    `json:"total"`
}

// ResolveConfirmationRequest answers one pending confirmation. An empty
// canonical name accepts the suggested one.
type ResolveConfirmationRequest struct {
	CanonicalName string `json:"canonical_name"`
}

// HandlePendingConfirmations returns the confirmation queue, oldest first.
// @Summary List pending confirmations
// @Tags confirmations
// @Produce json
// @Success 200 {object} ConfirmationListResponse
// @Router /confirmations [get]
func (s *Server) HandlePendingConfirmations(c *gin.Context) {
	resp := ConfirmationListResponse{Pending: []confirmation.Request{}}
	if s.confirmer != nil {
		resp.Pending = s.confirmer.Pending()
	}
	resp.Total = len(resp.Pending)

	c.JSON(http.StatusOK, resp)
}

// HandleResolveConfirmation answers a pending confirmation and unblocks the
// receipt waiting on it.
// @Summary Resolve a pending confirmation
// @Tags confirmations
// @Accept json
// @Produce json
// @Param id path string true "Confirmation ID"
// @Param answer body ResolveConfirmationRequest true "Canonical name, empty to accept the suggestion"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /confirmations/{id}/resolve [post]
func (s *Server) HandleResolveConfirmation(c *gin.Context) {
	if s.confirmer == nil {
		writeError(c, NewServiceUnavailableError("confirmation queue is not running", nil))
		return
	}

	var req ResolveConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, NewValidationError("invalid confirmation payload", err))
		return
	}

	id := c.Param("id")
	if err := s.confirmer.Resolve(id, req.CanonicalName); err != nil {
		writeError(c, NewNotFoundError("no pending confirmation with this id", err))
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "resolved", ID: id})
}
