package triage

import (
	"sort"
	"strings"
	"time"

	"venue-feedback-backend/internal/model"
)

// FeedbackSession is the per-submission aggregate of feedback rows
// sharing one session id. It is a pure projection: rebuilt from the raw
// row snapshot on every refresh, never persisted.
type FeedbackSession struct {
	SessionID     string
	TableNumber   int
	CreatedAt     time.Time // earliest member row
	Rows          []model.FeedbackRow
	AverageRating *float64
	HasComments   bool
	Urgency       Tier
}

// questionOrder returns the member sort key for a row. Rows without a
// question (free-text-only) sort after all question rows.
func questionOrder(r *model.FeedbackRow) int {
	if r.Question != nil {
		return r.Question.DisplayOrder
	}
	return int(^uint(0) >> 1)
}

// AggregateSessions groups feedback rows by session id and computes the
// per-session summary. Rows without a session id cannot be grouped and
// are dropped. The input snapshot is not mutated.
func AggregateSessions(rows []model.FeedbackRow) []FeedbackSession {
	groups := make(map[string][]model.FeedbackRow)
	var order []string
	for _, r := range rows {
		if r.SessionID == "" {
			continue
		}
		if _, seen := groups[r.SessionID]; !seen {
			order = append(order, r.SessionID)
		}
		groups[r.SessionID] = append(groups[r.SessionID], r)
	}

	sessions := make([]FeedbackSession, 0, len(order))
	for _, id := range order {
		sessions = append(sessions, buildSession(id, groups[id]))
	}

	// Stable presentation order for identical refreshes.
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})
	return sessions
}

func buildSession(id string, members []model.FeedbackRow) FeedbackSession {
	rows := make([]model.FeedbackRow, len(members))
	copy(rows, members)
	sort.SliceStable(rows, func(i, j int) bool {
		oi, oj := questionOrder(&rows[i]), questionOrder(&rows[j])
		if oi != oj {
			return oi < oj
		}
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})

	s := FeedbackSession{
		SessionID:   id,
		TableNumber: rows[0].TableNumber,
		CreatedAt:   rows[0].CreatedAt,
		Rows:        rows,
	}

	var sum, n int
	for i := range rows {
		r := &rows[i]
		if r.CreatedAt.Before(s.CreatedAt) {
			s.CreatedAt = r.CreatedAt
		}
		if r.Rating != nil {
			sum += *r.Rating
			n++
		}
		if strings.TrimSpace(r.Comment) != "" {
			s.HasComments = true
		}
	}
	// An average over zero ratings is undefined, never zero.
	if n > 0 {
		avg := float64(sum) / float64(n)
		s.AverageRating = &avg
	}

	s.Urgency = ClassifySession(&s)
	return s
}
