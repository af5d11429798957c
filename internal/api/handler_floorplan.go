package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/viewport"
)

var errInvalidDimension = errors.New("w and h must be positive numbers")

// visibleTables filters to the active zone so fit-to-screen frames the
// zone the kiosk is showing, not the whole plan.
func visibleTables(tables []model.Table, zoneID int64) []model.Table {
	if zoneID == 0 {
		return tables
	}
	visible := make([]model.Table, 0, len(tables))
	for i := range tables {
		if tables[i].ZoneID == zoneID {
			visible = append(visible, tables[i])
		}
	}
	return visible
}

type zoneResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// GetFloorplan handles GET /api/venues/{venue_id}/floorplan. The
// caller passes its container size as w/h query params and optionally a
// zone_id filter; the response carries screen-space render instructions
// for a fit-to-screen camera over that container.
func (h *Handler) GetFloorplan(c *gin.Context) {
	venueID, err := strconv.ParseInt(c.Param("venue_id"), 10, 64)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid venue id"})
		return
	}

	coordinator, ok := h.hub.Coordinator(venueID)
	if !ok {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "unknown venue"})
		return
	}

	container, err := containerSize(c, h.viewport)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var zoneID int64
	if raw := c.Query("zone_id"); raw != "" {
		zoneID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid zone id"})
			return
		}
	}

	ctx := c.Request.Context()
	zones, err := h.store.ZonesForVenue(ctx, venueID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve zones"})
		return
	}
	tables, err := h.store.TablesForVenue(ctx, venueID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tables"})
		return
	}

	snapshot := coordinator.Snapshot()
	statuses := viewport.TableStatuses(snapshot.Sessions, snapshot.Requests)

	view := viewport.NewView(h.viewport)
	view.SetContainer(container)
	view.ActiveZone = zoneID
	view.FitToScreen(visibleTables(tables, zoneID))

	zoneList := make([]zoneResponse, 0, len(zones))
	for i := range zones {
		zoneList = append(zoneList, zoneResponse{
			ID:           zones[i].ID,
			Name:         zones[i].Name,
			DisplayOrder: zones[i].DisplayOrder,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"taken_at": snapshot.TakenAt,
		"zones":    zoneList,
		"overview": viewport.ZoneOverview(zones, tables, snapshot.Queue),
		"zoom":     view.Zoom,
		"pan":      view.Pan,
		"tables":   view.Render(tables, statuses),
	})
}

func containerSize(c *gin.Context, cfg viewport.Config) (viewport.Size, error) {
	size := viewport.Size{W: cfg.DesignWidth, H: cfg.DesignHeight}
	if raw := c.Query("w"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w <= 0 {
			return viewport.Size{}, errInvalidDimension
		}
		size.W = w
	}
	if raw := c.Query("h"); raw != "" {
		h, err := strconv.ParseFloat(raw, 64)
		if err != nil || h <= 0 {
			return viewport.Size{}, errInvalidDimension
		}
		size.H = h
	}
	return size, nil
}
