package triage

import (
	"sort"
	"time"

	"venue-feedback-backend/internal/model"
)

// EntryKind tags the variant held by a queue entry.
type EntryKind string

const (
	KindFeedback   EntryKind = "feedback"
	KindAssistance EntryKind = "assistance"
)

// Entry is one item of the merged work queue: either a feedback session
// or an assistance request, with the (urgency, timestamp) projection
// used for ordering. Exactly one of Session/Request is set, matching
// Kind.
type Entry struct {
	Kind      EntryKind
	Urgency   Tier
	CreatedAt time.Time
	Session   *FeedbackSession
	Request   *model.AssistanceRequest
}

// TableNumber returns the table the entry belongs to.
func (e *Entry) TableNumber() int {
	if e.Kind == KindAssistance {
		return e.Request.TableNumber
	}
	return e.Session.TableNumber
}

// BuildQueue merges open feedback sessions and open assistance requests
// into one ordered list: urgency tier descending, then creation time
// descending (newest first) within a tier. The sort is stable, so
// entries equal on both keys keep their input order. The builder holds
// no state between calls; it is rerun in full on every refresh.
func BuildQueue(sessions []FeedbackSession, requests []model.AssistanceRequest) []Entry {
	entries := make([]Entry, 0, len(sessions)+len(requests))

	for i := range sessions {
		s := &sessions[i]
		entries = append(entries, Entry{
			Kind:      KindFeedback,
			Urgency:   s.Urgency,
			CreatedAt: s.CreatedAt,
			Session:   s,
		})
	}
	for i := range requests {
		r := &requests[i]
		if !r.Open() {
			// Resolved requests are filtered upstream; never queue one.
			continue
		}
		entries = append(entries, Entry{
			Kind:      KindAssistance,
			Urgency:   ClassifyRequest(r),
			CreatedAt: r.CreatedAt,
			Request:   r,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Urgency != entries[j].Urgency {
			return entries[i].Urgency > entries[j].Urgency
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries
}
