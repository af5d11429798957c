package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"venue-feedback-backend/internal/resolution"
	"venue-feedback-backend/internal/store"
	"venue-feedback-backend/internal/syncer"
	"venue-feedback-backend/internal/viewport"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store      store.Store
	hub        *syncer.Hub
	resolution *resolution.Service
	viewport   viewport.Config
	webpush    *webpush.Options
	logger     *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, hub *syncer.Hub, res *resolution.Service, vp viewport.Config, webpushOptions *webpush.Options, logger *zap.Logger) *Handler {
	return &Handler{
		store:      s,
		hub:        hub,
		resolution: res,
		viewport:   vp,
		webpush:    webpushOptions,
		logger:     logger,
	}
}
