package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ari-dashboard/backend/internal/shared/types"
)

// ListPresets returns all saved presets
func (h *Handlers) ListPresets(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.ListPresets())
}

// GetDefaultPreset returns the preset flagged as default
func (h *Handlers) GetDefaultPreset(c *gin.Context) {
	p, err := h.service.GetDefaultPreset()
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// GetPreset returns a preset by name
func (h *Handlers) GetPreset(c *gin.Context) {
	name, ok := h.pathID(c, "name")
	if !ok {
		return
	}
	p, err := h.service.GetPreset(name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// SavePreset creates or replaces a preset
func (h *Handlers) SavePreset(c *gin.Context) {
	var req types.SavePresetRequest
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.service.SavePreset(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// ActivatePreset replaces the current layout with a preset
func (h *Handlers) ActivatePreset(c *gin.Context) {
	name, ok := h.pathID(c, "name")
	if !ok {
		return
	}
	activated, err := h.service.ActivatePreset(c.Request.Context(), name)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"preset":  activated,
		"message": fmt.Sprintf("Preset '%s' activated successfully", activated.DisplayName),
	})
}

// DeletePreset removes a preset
func (h *Handlers) DeletePreset(c *gin.Context) {
	name, ok := h.pathID(c, "name")
	if !ok {
		return
	}
	if err := h.service.DeletePreset(c.Request.Context(), name); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"name":    name,
	})
}
