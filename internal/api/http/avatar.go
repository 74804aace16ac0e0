package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clubhub-app/clubhub-backend/internal/model"
)

type uploadAvatarReq struct {
	ImageURI string `json:"image_uri"`
}

// uploadAvatar saves the image reference locally, then fires the remote
// upload without blocking the response on it. The local save is the
// synchronous part of the flow; the remote write is best-effort.
func (h *Handler) uploadAvatar(c *gin.Context) {
	profileID := c.Param("profile_id")

	var req uploadAvatarReq
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.ImageURI) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	uri, err := h.images.Save(c.Request.Context(), profileID, strings.TrimSpace(req.ImageURI))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidParameters) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	go func() {
		// Detached from the request context: the response does not wait
		// for the remote write.
		url, err := h.avatars.Upload(context.Background(), profileID, uri)
		if err != nil {
			h.logger.Error("background avatar upload failed", "profile_id", profileID, "error", err)
			return
		}
		h.logger.Info("avatar uploaded", "profile_id", profileID, "url", url)
	}()

	c.JSON(http.StatusAccepted, gin.H{"ok": true, "image_uri": uri})
}

type deleteAvatarReq struct {
	AvatarURL string `json:"avatar_url"`
}

func (h *Handler) deleteAvatar(c *gin.Context) {
	profileID := c.Param("profile_id")

	var req deleteAvatarReq
	if err := c.ShouldBindJSON(&req); err != nil || req.AvatarURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
		return
	}

	if err := h.images.Remove(c.Request.Context(), profileID); err != nil {
		h.logger.Warn("failed to drop cached image", "profile_id", profileID, "error", err)
	}

	if err := h.avatars.Delete(c.Request.Context(), profileID, req.AvatarURL); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, model.ErrInvalidParameters) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) listAvatars(c *gin.Context) {
	profileID := c.Param("profile_id")

	urls, err := h.avatars.UserAvatars(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "avatars": urls})
}

func (h *Handler) cleanupAvatars(c *gin.Context) {
	profileID := c.Param("profile_id")

	deleted, err := h.avatars.CleanupOld(c.Request.Context(), profileID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) storageHealth(c *gin.Context) {
	status := h.avatars.CheckStorage(c.Request.Context())
	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"ok": status.OK, "message": status.Message})
}
