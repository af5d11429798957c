package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/triage"
)

// queueEntryResponse is the flattened structure for one queue item.
type queueEntryResponse struct {
	Kind        string              `json:"kind"`
	Urgency     string              `json:"urgency"`
	UrgencyRank int                 `json:"urgency_rank"`
	TableNumber int                 `json:"table_number"`
	CreatedAt   time.Time           `json:"created_at"`
	Session     *sessionResponse    `json:"session,omitempty"`
	Assistance  *assistanceResponse `json:"assistance,omitempty"`
}

type sessionResponse struct {
	SessionID     string            `json:"session_id"`
	TableNumber   int               `json:"table_number"`
	CreatedAt     time.Time         `json:"created_at"`
	AverageRating *float64          `json:"average_rating"`
	HasComments   bool              `json:"has_comments"`
	Rows          []sessionRowEntry `json:"rows"`
}

type sessionRowEntry struct {
	ID        uint64    `json:"id"`
	Prompt    string    `json:"prompt,omitempty"`
	Rating    *int      `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type assistanceResponse struct {
	ID             uint64     `json:"id"`
	TableNumber    int        `json:"table_number"`
	Status         string     `json:"status"`
	Message        string     `json:"message,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
	AcknowledgedBy *string    `json:"acknowledged_by,omitempty"`
}

// GetQueue handles GET /api/venues/{venue_id}/queue. The response is
// the already-ordered snapshot queue; no ordering happens at request
// time.
func (h *Handler) GetQueue(c *gin.Context) {
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

	snapshot := coordinator.Snapshot()
	entries := make([]queueEntryResponse, 0, len(snapshot.Queue))
	for i := range snapshot.Queue {
		entries = append(entries, toQueueEntry(&snapshot.Queue[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"taken_at": snapshot.TakenAt,
		"queue":    entries,
	})
}

func toQueueEntry(e *triage.Entry) queueEntryResponse {
	resp := queueEntryResponse{
		Kind:        string(e.Kind),
		Urgency:     e.Urgency.String(),
		UrgencyRank: int(e.Urgency),
		TableNumber: e.TableNumber(),
		CreatedAt:   e.CreatedAt,
	}
	switch e.Kind {
	case triage.KindFeedback:
		resp.Session = toSessionResponse(e.Session)
	case triage.KindAssistance:
		resp.Assistance = toAssistanceResponse(e.Request)
	}
	return resp
}

func toSessionResponse(s *triage.FeedbackSession) *sessionResponse {
	rows := make([]sessionRowEntry, 0, len(s.Rows))
	for i := range s.Rows {
		r := &s.Rows[i]
		entry := sessionRowEntry{
			ID:        r.ID,
			Rating:    r.Rating,
			Comment:   r.Comment,
			CreatedAt: r.CreatedAt,
		}
		if r.Question != nil {
			entry.Prompt = r.Question.Prompt
		}
		rows = append(rows, entry)
	}
	return &sessionResponse{
		SessionID:     s.SessionID,
		TableNumber:   s.TableNumber,
		CreatedAt:     s.CreatedAt,
		AverageRating: s.AverageRating,
		HasComments:   s.HasComments,
		Rows:          rows,
	}
}

func toAssistanceResponse(r *model.AssistanceRequest) *assistanceResponse {
	return &assistanceResponse{
		ID:             r.ID,
		TableNumber:    r.TableNumber,
		Status:         r.Status,
		Message:        r.Message,
		CreatedAt:      r.CreatedAt,
		AcknowledgedAt: r.AcknowledgedAt,
		AcknowledgedBy: r.AcknowledgedBy,
	}
}
