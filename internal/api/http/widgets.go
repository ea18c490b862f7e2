package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ari-dashboard/backend/internal/shared/types"
)

// ListWidgets returns every widget in creation order
func (h *Handlers) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListWidgets())
}

// GetWidget returns one widget
func (h *Handlers) GetWidget(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.GetWidget(id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// CreateWidget adds a widget to the display
func (h *Handlers) CreateWidget(c *gin.Context) {
	var req types.CreateWidgetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tpl, err := req.Template()
	if err != nil {
		h.respondError(c, err)
		return
	}
	w, err := h.service.CreateWidget(c.Request.Context(), tpl)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateWidget applies a partial update
func (h *Handlers) UpdateWidget(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var patch types.WidgetPatch
	if !h.bindJSON(c, &patch) {
		return
	}
	w, err := h.service.UpdateWidget(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// DeleteWidget removes a widget
func (h *Handlers) DeleteWidget(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteWidget(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"id":      id,
	})
}

// FocusWidget shows one widget full screen
func (h *Handlers) FocusWidget(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	w, err := h.service.Focus(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": fmt.Sprintf("Widget %q is now in focus mode", w.Title),
		"widget":  w,
	})
}

// UnfocusWidget restores the layout saved by the last focus
func (h *Handlers) UnfocusWidget(c *gin.Context) {
	restored, err := h.service.Unfocus(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Focus mode ended, previous layout restored",
		"widgets": restored,
	})
}
