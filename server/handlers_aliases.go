package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"receiptserver/receipt"
)

// AliasListResponse is one page of learned aliases.
type AliasListResponse struct {
	Aliases []receipt.AliasRecord `json:"aliases"`
	Total   int                   `json:"total"`
	Limit   int                   `json:"limit"`
	Offset  int                   `json:"offset"`
}

// CreateAliasRequest maps one raw receipt name to its canonical product name.
type CreateAliasRequest struct {
	RawName       string `json:"raw_name" binding:"required"`
	CanonicalName string `json:"canonical_name" binding:"required"`
	Store         string `json:"store"`
}

// HandleListAliases returns learned aliases, most recently updated first.
// @Summary List learned aliases
// @Tags aliases
// @Produce json
// @Param store query string false "Filter by store"
// @Param limit query int false "Page size (default 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} AliasListResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /aliases [get]
func (s *Server) HandleListAliases(c *gin.Context) {
	store := c.Query("store")
	limit, err := parseIntQuery(c, "limit", 100)
	if err != nil {
		writeError(c, NewValidationError(err.Error(), nil))
		return
	}
	offset, err := parseIntQuery(c, "offset", 0)
	if err != nil {
		writeError(c, NewValidationError(err.Error(), nil))
		return
	}

	aliases, err := s.db.ListAliases(c.Request.Context(), store, limit, offset)
	if err != nil {
		writeError(c, NewInternalError("failed to list aliases", err))
		return
	}
	total, err := s.db.CountAliases(c.Request.Context(), store)
	if err != nil {
		writeError(c, NewInternalError("failed to count aliases", err))
		return
	}

	c.JSON(http.StatusOK, AliasListResponse{
		Aliases: aliases,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
	})
}

// HandleCreateAlias stores a user-curated alias. Subsequent receipts with the
// same raw name resolve through it without touching the model or the queue.
// @Summary Create or update an alias
// @Tags aliases
// @Accept json
// @Produce json
// @Param alias body CreateAliasRequest true "Alias mapping"
// @Success 200 {object} receipt.AliasRecord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /aliases [post]
func (s *Server) HandleCreateAlias(c *gin.Context) {
	var req CreateAliasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, NewValidationError("invalid alias payload", err))
		return
	}
	req.RawName = strings.TrimSpace(req.RawName)
	req.CanonicalName = strings.TrimSpace(req.CanonicalName)
	if req.RawName == "" || req.CanonicalName == "" {
		writeError(c, NewValidationError("raw_name and canonical_name must not be blank", nil))
		return
	}

	rec := receipt.AliasRecord{
		RawName:       req.RawName,
		CanonicalName: req.CanonicalName,
		Store:         req.Store,
		Confidence:    1.0,
		Origin:        receipt.StageUser,
	}
	if err := s.db.UpsertAlias(c.Request.Context(), rec); err != nil {
		writeError(c, NewInternalError("failed to store alias", err))
		return
	}

	// Read the row back so the response carries the assigned ID and the
	// bumped seen count.
	stored, err := s.db.LookupAliases(c.Request.Context(), []string{req.RawName}, req.Store)
	if err != nil {
		writeError(c, NewInternalError("failed to load stored alias", err))
		return
	}
	if saved, ok := stored[req.RawName]; ok {
		rec = saved
	}

	c.JSON(http.StatusOK, rec)
}

// HandleDeleteAlias removes one alias by its numeric ID.
// @Summary Delete an alias
// @Tags aliases
// @Produce json
// @Param id path int true "Alias ID"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /aliases/{id} [delete]
func (s *Server) HandleDeleteAlias(c *gin.Context) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(c, NewValidationError("alias id must be an integer", err))
		return
	}

	if err := s.db.DeleteAlias(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, StatusResponse{Status: "deleted", ID: raw})
}
