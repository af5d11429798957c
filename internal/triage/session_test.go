package triage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"venue-feedback-backend/internal/model"
)

func intPtr(v int) *int { return &v }

func question(order int) *model.Question {
	return &model.Question{ID: int64(order), DisplayOrder: order}
}

func TestAggregateSessions_Partition(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rows := []model.FeedbackRow{
		{SessionID: "s1", TableNumber: 3, Rating: intPtr(4), CreatedAt: base},
		{SessionID: "s2", TableNumber: 5, Rating: intPtr(2), CreatedAt: base.Add(time.Minute)},
		{SessionID: "s1", TableNumber: 3, Comment: "nice place", CreatedAt: base.Add(time.Second)},
		{SessionID: "", TableNumber: 9, Rating: intPtr(1), CreatedAt: base}, // ungroupable, dropped
	}

	sessions := AggregateSessions(rows)
	require.Len(t, sessions, 2)

	total := 0
	for _, s := range sessions {
		total += len(s.Rows)
		for _, r := range s.Rows {
			assert.Equal(t, s.SessionID, r.SessionID)
		}
	}
	// Every row with a session id is in exactly one session.
	assert.Equal(t, 3, total)
}

func TestAggregateSessions_Idempotent(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	rows := []model.FeedbackRow{
		{SessionID: "s1", Rating: intPtr(3), CreatedAt: base.Add(time.Minute), Question: question(2)},
		{SessionID: "s1", Rating: intPtr(5), CreatedAt: base, Question: question(1)},
		{SessionID: "s2", Comment: "ok", CreatedAt: base.Add(2 * time.Minute)},
	}

	first := AggregateSessions(rows)
	second := AggregateSessions(rows)
	assert.Equal(t, first, second)
}

func TestAggregateSessions_AverageRating(t *testing.T) {
	base := time.Now().UTC()

	testCases := []struct {
		name        string
		ratings     []*int
		expected    *float64
		hasComments bool
	}{
		{
			name:     "Mean over present ratings only",
			ratings:  []*int{intPtr(1), intPtr(2), nil},
			expected: func() *float64 { v := 1.5; return &v }(),
		},
		{
			name:     "No numeric ratings yields nil, not zero",
			ratings:  []*int{nil, nil},
			expected: nil,
		},
		{
			name:     "Single rating",
			ratings:  []*int{intPtr(5)},
			expected: func() *float64 { v := 5.0; return &v }(),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var rows []model.FeedbackRow
			for i, r := range tc.ratings {
				rows = append(rows, model.FeedbackRow{
					SessionID: "s1",
					Rating:    r,
					CreatedAt: base.Add(time.Duration(i) * time.Second),
				})
			}

			sessions := AggregateSessions(rows)
			require.Len(t, sessions, 1)
			if tc.expected == nil {
				assert.Nil(t, sessions[0].AverageRating)
			} else {
				require.NotNil(t, sessions[0].AverageRating)
				assert.InDelta(t, *tc.expected, *sessions[0].AverageRating, 1e-9)
			}
		})
	}
}

func TestAggregateSessions_AverageInvariantToRowOrder(t *testing.T) {
	base := time.Now().UTC()
	rows := []model.FeedbackRow{
		{SessionID: "s1", Rating: intPtr(1), CreatedAt: base},
		{SessionID: "s1", Rating: intPtr(4), CreatedAt: base.Add(time.Second)},
		{SessionID: "s1", Rating: intPtr(5), CreatedAt: base.Add(2 * time.Second)},
	}
	reversed := []model.FeedbackRow{rows[2], rows[1], rows[0]}

	a := AggregateSessions(rows)
	b := AggregateSessions(reversed)
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	require.NotNil(t, a[0].AverageRating)
	require.NotNil(t, b[0].AverageRating)
	assert.Equal(t, *a[0].AverageRating, *b[0].AverageRating)
}

func TestAggregateSessions_MemberOrder(t *testing.T) {
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	// Inserted out of question order; the free-text row has no question.
	rows := []model.FeedbackRow{
		{ID: 30, SessionID: "s1", Comment: "too cold", CreatedAt: base.Add(3 * time.Second)},
		{ID: 20, SessionID: "s1", Rating: intPtr(4), CreatedAt: base.Add(2 * time.Second), Question: question(2)},
		{ID: 10, SessionID: "s1", Rating: intPtr(5), CreatedAt: base.Add(5 * time.Second), Question: question(1)},
	}

	sessions := AggregateSessions(rows)
	require.Len(t, sessions, 1)

	ids := make([]uint64, 0, 3)
	for _, r := range sessions[0].Rows {
		ids = append(ids, r.ID)
	}
	// Q1, Q2, then the question-less comment row.
	assert.Equal(t, []uint64{10, 20, 30}, ids)
	// Session timestamp is the earliest member, regardless of member order.
	assert.Equal(t, base.Add(2*time.Second), sessions[0].CreatedAt)
}

func TestAggregateSessions_CommentDetection(t *testing.T) {
	base := time.Now().UTC()
	rows := []model.FeedbackRow{
		{SessionID: "s1", Comment: "   ", CreatedAt: base},
		{SessionID: "s2", Comment: " needs salt ", CreatedAt: base},
	}

	sessions := AggregateSessions(rows)
	require.Len(t, sessions, 2)
	byID := map[string]FeedbackSession{}
	for _, s := range sessions {
		byID[s.SessionID] = s
	}
	assert.False(t, byID["s1"].HasComments, "whitespace-only comments do not count")
	assert.True(t, byID["s2"].HasComments)
}

// Scenario from the kiosk triage rules: three rows in one session,
// ratings 1, 2 and a null-rated "too cold" comment.
func TestAggregateSessions_UrgentSessionWithComment(t *testing.T) {
	base := time.Now().UTC()
	rows := []model.FeedbackRow{
		{SessionID: "S1", TableNumber: 4, Rating: intPtr(1), CreatedAt: base},
		{SessionID: "S1", TableNumber: 4, Rating: intPtr(2), CreatedAt: base.Add(time.Second)},
		{SessionID: "S1", TableNumber: 4, Comment: "too cold", CreatedAt: base.Add(2 * time.Second)},
	}

	sessions := AggregateSessions(rows)
	require.Len(t, sessions, 1)
	s := sessions[0]
	require.NotNil(t, s.AverageRating)
	assert.InDelta(t, 1.5, *s.AverageRating, 1e-9)
	assert.True(t, s.HasComments)
	assert.Equal(t, TierUrgent, s.Urgency)
}
