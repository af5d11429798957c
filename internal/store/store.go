package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"venue-feedback-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB

	// Snapshot reads.
	OpenFeedbackRows(ctx context.Context, venueID int64, since time.Time) ([]model.FeedbackRow, error)
	OpenAssistanceRequests(ctx context.Context, venueID int64, since time.Time) ([]model.AssistanceRequest, error)
	TablesForVenue(ctx context.Context, venueID int64) ([]model.Table, error)
	ZonesForVenue(ctx context.Context, venueID int64) ([]model.Zone, error)

	// Resolution writes.
	AssistanceRequestByID(ctx context.Context, id uint64) (*model.AssistanceRequest, error)
	UpdateAssistanceRequest(ctx context.Context, id uint64, fromStatuses []string, updates map[string]any) (int64, error)
	UpdateFeedbackSessions(ctx context.Context, venueID int64, sessionIDs []string, updates map[string]any) (int64, error)

	// Staff push subscriptions.
	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	SubscriptionByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	SubscriptionsForVenue(ctx context.Context, venueID int64) ([]model.PushSubscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that query directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// OpenFeedbackRows returns the venue's unactioned feedback rows newer
// than the cutoff, with question metadata preloaded so session members
// can be ordered by display order.
func (s *gormStore) OpenFeedbackRows(ctx context.Context, venueID int64, since time.Time) ([]model.FeedbackRow, error) {
	var rows []model.FeedbackRow
	err := s.db.WithContext(ctx).
		Preload("Question").
		Where("venue_id = ? AND is_actioned = ? AND created_at >= ?", venueID, false, since).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open feedback rows: %w", err)
	}
	return rows, nil
}

// OpenAssistanceRequests returns the venue's unresolved assistance
// requests newer than the cutoff.
func (s *gormStore) OpenAssistanceRequests(ctx context.Context, venueID int64, since time.Time) ([]model.AssistanceRequest, error) {
	var requests []model.AssistanceRequest
	err := s.db.WithContext(ctx).
		Where("venue_id = ? AND status IN ? AND created_at >= ?",
			venueID, []string{model.AssistancePending, model.AssistanceAcknowledged}, since).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open assistance requests: %w", err)
	}
	return requests, nil
}

func (s *gormStore) TablesForVenue(ctx context.Context, venueID int64) ([]model.Table, error) {
	var tables []model.Table
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("zone_id ASC, number ASC").
		Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tables: %w", err)
	}
	return tables, nil
}

func (s *gormStore) ZonesForVenue(ctx context.Context, venueID int64) ([]model.Zone, error) {
	var zones []model.Zone
	err := s.db.WithContext(ctx).
		Where("venue_id = ?", venueID).
		Order("display_order ASC").
		Find(&zones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch zones: %w", err)
	}
	return zones, nil
}

func (s *gormStore) AssistanceRequestByID(ctx context.Context, id uint64) (*model.AssistanceRequest, error) {
	var request model.AssistanceRequest
	if err := s.db.WithContext(ctx).First(&request, id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

// UpdateAssistanceRequest applies a partial update to one request,
// guarded by its current status. The returned count is the number of
// rows matched; 0 means the request was no longer in an allowed state.
func (s *gormStore) UpdateAssistanceRequest(ctx context.Context, id uint64, fromStatuses []string, updates map[string]any) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.AssistanceRequest{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update assistance request %d: %w", id, res.Error)
	}
	return res.RowsAffected, nil
}

// UpdateFeedbackSessions applies a partial update to every unactioned
// feedback row sharing any of the given session ids, as one statement
// so all member rows of a session transition together.
func (s *gormStore) UpdateFeedbackSessions(ctx context.Context, venueID int64, sessionIDs []string, updates map[string]any) (int64, error) {
	res := s.db.WithContext(ctx).
		Model(&model.FeedbackRow{}).
		Where("venue_id = ? AND session_id IN ? AND is_actioned = ?", venueID, sessionIDs, false).
		Updates(updates)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to update feedback sessions %v: %w", sessionIDs, res.Error)
	}
	return res.RowsAffected, nil
}

func (s *gormStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"venue_id", "p256dh", "auth"}),
	}).Create(sub).Error
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}
	return nil
}

func (s *gormStore) SubscriptionByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	var sub model.PushSubscription
	if err := s.db.WithContext(ctx).Where("endpoint = ?", endpoint).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

func (s *gormStore) SubscriptionsForVenue(ctx context.Context, venueID int64) ([]model.PushSubscription, error) {
	var subs []model.PushSubscription
	if err := s.db.WithContext(ctx).Where("venue_id = ?", venueID).Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch subscriptions: %w", err)
	}
	return subs, nil
}

func (s *gormStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	if err := s.db.WithContext(ctx).Delete(&model.PushSubscription{Endpoint: endpoint}).Error; err != nil {
		return fmt.Errorf("failed to delete subscription %s: %w", endpoint, err)
	}
	return nil
}
