package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"venue-feedback-backend/internal/resolution"
)

type acknowledgeRequest struct {
	StaffID string `json:"staff_id"`
}

// AcknowledgeAssistance handles POST /api/assistance/{request_id}/acknowledge.
func (h *Handler) AcknowledgeAssistance(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resolution.Acknowledge(c.Request.Context(), requestID, req.StaffID); err != nil {
		h.writeResolutionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resolveRequest struct {
	StaffID string `json:"staff_id"`
	Notes   string `json:"notes"`
}

// ResolveAssistance handles POST /api/assistance/{request_id}/resolve.
func (h *Handler) ResolveAssistance(c *gin.Context) {
	requestID, err := strconv.ParseUint(c.Param("request_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid request id"})
		return
	}

	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resolution.Resolve(c.Request.Context(), requestID, req.StaffID, req.Notes); err != nil {
		h.writeResolutionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type resolveSessionsRequest struct {
	SessionIDs      []string `json:"session_ids" binding:"required"`
	StaffID         string   `json:"staff_id"`
	Kind            string   `json:"resolution_kind"`
	DismissalReason string   `json:"dismissal_reason"`
}

// ResolveSessions handles POST /api/venues/{venue_id}/sessions/resolve.
func (h *Handler) ResolveSessions(c *gin.Context) {
	venueID, err := strconv.ParseInt(c.Param("venue_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}

	var req resolveSessionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err = h.resolution.ResolveSessions(c.Request.Context(), venueID,
		req.SessionIDs, req.StaffID, req.Kind, req.DismissalReason)
	if err != nil {
		h.writeResolutionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type clearPositiveRequest struct {
	SessionIDs []string `json:"session_ids" binding:"required"`
}

// ClearPositiveSessions handles POST /api/venues/{venue_id}/sessions/clear_positive.
func (h *Handler) ClearPositiveSessions(c *gin.Context) {
	venueID, err := strconv.ParseInt(c.Param("venue_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}

	var req clearPositiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resolution.ClearPositiveFeedback(c.Request.Context(), venueID, req.SessionIDs); err != nil {
		h.writeResolutionError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeResolutionError maps service errors onto HTTP statuses. A state
// conflict is a normal outcome when two staff devices race; the 409
// body tells the loser what actually happened.
func (h *Handler) writeResolutionError(c *gin.Context, err error) {
	var validation *resolution.ValidationError
	var state *resolution.StateError
	var mutation *resolution.MutationError

	switch {
	case errors.As(err, &validation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &state):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": state.Error()})
	case errors.As(err, &mutation):
		h.logger.Error("resolution mutation failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": "the action could not be saved"})
	default:
		h.logger.Error("resolution failed", zap.Error(err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
