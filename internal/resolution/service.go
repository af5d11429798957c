package resolution

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/store"
	"venue-feedback-backend/internal/triage"
)

// Refresher is notified after every committed transition so the live
// queue reflects the change without waiting for the next poll tick.
type Refresher interface {
	Trigger()
}

// SessionIndex looks up the current aggregate for a session id; the
// sync coordinator implements it over its latest snapshot.
type SessionIndex interface {
	SessionByID(id string) (*triage.FeedbackSession, bool)
}

// Average rating above which a session qualifies for the lightweight
// clear-positive transition.
const positiveRatingMin = 3.0

// Service validates and applies operator actions against the data
// store. It never mutates the local snapshot directly; a refresh after
// the committed write is the only path back into the live view.
type Service struct {
	store     store.Store
	refresher Refresher
	sessions  SessionIndex
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates the resolution service.
func NewService(s store.Store, refresher Refresher, sessions SessionIndex, logger *zap.Logger) *Service {
	return &Service{
		store:     s,
		refresher: refresher,
		sessions:  sessions,
		logger:    logger,
		now:       time.Now,
	}
}

// Acknowledge moves a pending assistance request to acknowledged.
func (s *Service) Acknowledge(ctx context.Context, requestID uint64, staffID string) error {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return &ValidationError{Field: "staff_id", Reason: "an acknowledging staff member is required"}
	}

	request, err := s.fetchRequest(ctx, requestID, "acknowledge")
	if err != nil {
		return err
	}
	if request.Status != model.AssistancePending {
		return &StateError{Entity: "assistance request", Current: request.Status, Attempted: "acknowledge"}
	}

	now := s.now().UTC()
	affected, err := s.store.UpdateAssistanceRequest(ctx, requestID,
		[]string{model.AssistancePending},
		map[string]any{
			"status":          model.AssistanceAcknowledged,
			"acknowledged_at": now,
			"acknowledged_by": staffID,
		})
	if err != nil {
		return &MutationError{Op: "acknowledge", Err: err}
	}
	if affected == 0 {
		// Another staff member acted between our read and write.
		return &StateError{Entity: "assistance request", Current: "changed", Attempted: "acknowledge"}
	}

	s.logger.Info("assistance request acknowledged",
		zap.Uint64("request_id", requestID),
		zap.String("staff_id", staffID),
	)
	s.refresher.Trigger()
	return nil
}

// Resolve closes an assistance request from pending or acknowledged.
func (s *Service) Resolve(ctx context.Context, requestID uint64, staffID, notes string) error {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return &ValidationError{Field: "staff_id", Reason: "a resolving staff member is required"}
	}
	if strings.TrimSpace(notes) == "" {
		return &ValidationError{Field: "notes", Reason: "resolution notes are required"}
	}

	request, err := s.fetchRequest(ctx, requestID, "resolve")
	if err != nil {
		return err
	}
	if !request.Open() {
		return &StateError{Entity: "assistance request", Current: request.Status, Attempted: "resolve"}
	}

	now := s.now().UTC()
	affected, err := s.store.UpdateAssistanceRequest(ctx, requestID,
		[]string{model.AssistancePending, model.AssistanceAcknowledged},
		map[string]any{
			"status":      model.AssistanceResolved,
			"resolved_at": now,
			"resolved_by": staffID,
			"notes":       notes,
		})
	if err != nil {
		return &MutationError{Op: "resolve", Err: err}
	}
	if affected == 0 {
		return &StateError{Entity: "assistance request", Current: "changed", Attempted: "resolve"}
	}

	s.logger.Info("assistance request resolved",
		zap.Uint64("request_id", requestID),
		zap.String("staff_id", staffID),
	)
	s.refresher.Trigger()
	return nil
}

// ResolveSessions marks every member row of the given feedback sessions
// as actioned, with the given resolution kind. A dismissal without a
// reason records a fixed sentinel rather than an empty string.
func (s *Service) ResolveSessions(ctx context.Context, venueID int64, sessionIDs []string, staffID, kind, dismissalReason string) error {
	staffID = strings.TrimSpace(staffID)
	if staffID == "" {
		return &ValidationError{Field: "staff_id", Reason: "a resolving staff member is required"}
	}
	if len(sessionIDs) == 0 {
		return &ValidationError{Field: "session_ids", Reason: "at least one session is required"}
	}
	if kind != model.ResolutionResolved && kind != model.ResolutionDismissed {
		return &ValidationError{Field: "resolution_kind", Reason: "must be resolved or dismissed"}
	}

	now := s.now().UTC()
	updates := map[string]any{
		"is_actioned":     true,
		"resolved_at":     now,
		"resolved_by":     staffID,
		"resolution_kind": kind,
	}
	if kind == model.ResolutionDismissed {
		reason := strings.TrimSpace(dismissalReason)
		if reason == "" {
			reason = model.DismissalReasonFallback
		}
		updates["dismissal_reason"] = reason
	}

	affected, err := s.store.UpdateFeedbackSessions(ctx, venueID, sessionIDs, updates)
	if err != nil {
		return &MutationError{Op: "resolve sessions", Err: err}
	}
	if affected == 0 {
		return &StateError{Entity: "feedback session", Current: "actioned", Attempted: kind}
	}

	s.logger.Info("feedback sessions actioned",
		zap.Int64("venue_id", venueID),
		zap.Strings("session_ids", sessionIDs),
		zap.String("kind", kind),
		zap.Int64("rows", affected),
	)
	s.refresher.Trigger()
	return nil
}

// ClearPositiveFeedback acknowledges clearly positive sessions without
// staff attribution. Positive feedback needs acknowledgment, not
// case-work, so no staff id or notes are collected; the distinct
// resolution kind keeps the path auditable.
func (s *Service) ClearPositiveFeedback(ctx context.Context, venueID int64, sessionIDs []string) error {
	if len(sessionIDs) == 0 {
		return &ValidationError{Field: "session_ids", Reason: "at least one session is required"}
	}
	for _, id := range sessionIDs {
		session, ok := s.sessions.SessionByID(id)
		if !ok {
			return &StateError{Entity: "feedback session", Current: "gone", Attempted: "clear"}
		}
		if session.AverageRating == nil || *session.AverageRating <= positiveRatingMin {
			return &ValidationError{Field: "session_ids", Reason: "session " + id + " is not positive feedback"}
		}
	}

	now := s.now().UTC()
	affected, err := s.store.UpdateFeedbackSessions(ctx, venueID, sessionIDs, map[string]any{
		"is_actioned":     true,
		"resolved_at":     now,
		"resolution_kind": model.ResolutionPositiveCleared,
	})
	if err != nil {
		return &MutationError{Op: "clear positive feedback", Err: err}
	}
	if affected == 0 {
		return &StateError{Entity: "feedback session", Current: "actioned", Attempted: "clear"}
	}

	s.logger.Info("positive feedback cleared",
		zap.Int64("venue_id", venueID),
		zap.Strings("session_ids", sessionIDs),
		zap.Int64("rows", affected),
	)
	s.refresher.Trigger()
	return nil
}

func (s *Service) fetchRequest(ctx context.Context, requestID uint64, op string) (*model.AssistanceRequest, error) {
	request, err := s.store.AssistanceRequestByID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &StateError{Entity: "assistance request", Current: "missing", Attempted: op}
		}
		return nil, &MutationError{Op: op, Err: err}
	}
	return request, nil
}
