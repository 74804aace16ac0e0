// Package http exposes the club services over a thin JSON surface.
// Authentication and rendering live outside this process; callers are
// trusted to supply the profile id.
package http

import (
	"github.com/clubhub-app/clubhub-backend/internal/logger"
	"github.com/clubhub-app/clubhub-backend/internal/service"
)

type Handler struct {
	images        *service.ImageCache
	avatars       *service.Avatar
	registrations *service.Registrations
	logger        *logger.Logger
}

func NewHandler(
	images *service.ImageCache,
	avatars *service.Avatar,
	registrations *service.Registrations,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		images:        images,
		avatars:       avatars,
		registrations: registrations,
		logger:        logger,
	}
}
