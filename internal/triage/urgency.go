package triage

import "venue-feedback-backend/internal/model"

// Tier is a discrete urgency bucket. Higher values outrank lower ones.
// An open assistance request always outranks feedback of any rating: it
// implies an active, in-person situation at the table.
type Tier int

const (
	TierInformational Tier = iota
	TierAttention
	TierUrgent
	TierAssistanceAcknowledged
	TierAssistancePending
)

// Feedback rating cutoffs. A session averaging at or below
// urgentRatingMax is urgent; above that and at or below
// attentionRatingMax (inclusive) it needs attention when at least one
// comment was left.
const (
	urgentRatingMax    = 2.0
	attentionRatingMax = 4.0
)

func (t Tier) String() string {
	switch t {
	case TierAssistancePending:
		return "assistance_pending"
	case TierAssistanceAcknowledged:
		return "assistance_acknowledged"
	case TierUrgent:
		return "urgent"
	case TierAttention:
		return "attention"
	default:
		return "informational"
	}
}

// ClassifySession assigns the urgency tier for a feedback session.
// Comment-only sessions (no numeric ratings) are informational.
func ClassifySession(s *FeedbackSession) Tier {
	if s.AverageRating == nil {
		return TierInformational
	}
	avg := *s.AverageRating
	switch {
	case avg <= urgentRatingMax:
		return TierUrgent
	case avg <= attentionRatingMax && s.HasComments:
		return TierAttention
	default:
		return TierInformational
	}
}

// ClassifyRequest assigns the urgency tier for an open assistance
// request. Resolved requests are filtered out before classification;
// callers passing one get the lowest tier back.
func ClassifyRequest(r *model.AssistanceRequest) Tier {
	switch r.Status {
	case model.AssistancePending:
		return TierAssistancePending
	case model.AssistanceAcknowledged:
		return TierAssistanceAcknowledged
	default:
		return TierInformational
	}
}
