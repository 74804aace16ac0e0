package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubhub-app/clubhub-backend/internal/model"
)

func (h *Handler) cacheStats(c *gin.Context) {
	stats, err := h.images.StorageSize(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "stats": stats})
}

func (h *Handler) cacheCleanup(c *gin.Context) {
	removed, err := h.images.CleanupOld(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "removed": removed})
}

func (h *Handler) cacheExport(c *gin.Context) {
	records, err := h.images.Export(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "records": records})
}

func (h *Handler) cacheImport(c *gin.Context) {
	var records []model.LocalImageRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	summary, err := h.images.Import(c.Request.Context(), records)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "imported": summary.Imported, "failed": summary.Failed})
}
