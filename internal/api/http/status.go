package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// GetStatus returns the assistant status
func (h *Handlers) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// UpdateStatus patches the assistant status
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var patch types.StatusPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	st, err := h.service.UpdateStatus(patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// ListFeed returns the newest feed entries. A limit of zero or less
// returns every retained entry.
func (h *Handlers) ListFeed(c *gin.Context) {
	limit := h.feedLimit
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.respondError(c, apperrors.Validation("limit must be an integer"))
			return
		}
		limit = n
	}
	c.JSON(http.StatusOK, h.service.FeedEntries(limit))
}

// AddFeedEntry posts an activity entry
func (h *Handlers) AddFeedEntry(c *gin.Context) {
	var req types.FeedEntryRequest
	if !h.bindJSON(c, &req) {
		return
	}
	entry, err := h.service.AddFeedEntry(req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
