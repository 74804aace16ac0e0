package http

import "github.com/gin-gonic/gin"

// Register attaches all routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/health", h.health)
	rg.GET("/storage/health", h.storageHealth)

	rg.POST("/profiles/:profile_id/avatar", h.uploadAvatar)
	rg.DELETE("/profiles/:profile_id/avatar", h.deleteAvatar)
	rg.GET("/profiles/:profile_id/avatars", h.listAvatars)
	rg.POST("/profiles/:profile_id/avatars/cleanup", h.cleanupAvatars)

	rg.GET("/profiles/:profile_id/registrations", h.listRegistrations)
	rg.DELETE("/profiles/:profile_id/registrations/:registration_id", h.cancelRegistration)

	rg.GET("/cache/stats", h.cacheStats)
	rg.POST("/cache/cleanup", h.cacheCleanup)
	rg.GET("/cache/export", h.cacheExport)
	rg.POST("/cache/import", h.cacheImport)
}
