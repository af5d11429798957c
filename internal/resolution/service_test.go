package resolution

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/triage"
)

// fakeStore is an in-memory Store. Only the methods the resolution
// service touches are functional.
type fakeStore struct {
	requests map[uint64]*model.AssistanceRequest
	rows     []*model.FeedbackRow

	updateErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{requests: make(map[uint64]*model.AssistanceRequest)}
}

func (f *fakeStore) DB() *gorm.DB { return nil }

func (f *fakeStore) OpenFeedbackRows(ctx context.Context, venueID int64, since time.Time) ([]model.FeedbackRow, error) {
	return nil, nil
}

func (f *fakeStore) OpenAssistanceRequests(ctx context.Context, venueID int64, since time.Time) ([]model.AssistanceRequest, error) {
	return nil, nil
}

func (f *fakeStore) TablesForVenue(ctx context.Context, venueID int64) ([]model.Table, error) {
	return nil, nil
}

func (f *fakeStore) ZonesForVenue(ctx context.Context, venueID int64) ([]model.Zone, error) {
	return nil, nil
}

func (f *fakeStore) AssistanceRequestByID(ctx context.Context, id uint64) (*model.AssistanceRequest, error) {
	r, ok := f.requests[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) UpdateAssistanceRequest(ctx context.Context, id uint64, fromStatuses []string, updates map[string]any) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	r, ok := f.requests[id]
	if !ok {
		return 0, nil
	}
	allowed := false
	for _, st := range fromStatuses {
		if r.Status == st {
			allowed = true
		}
	}
	if !allowed {
		return 0, nil
	}
	if v, ok := updates["status"]; ok {
		r.Status = v.(string)
	}
	if v, ok := updates["acknowledged_by"]; ok {
		id := v.(string)
		r.AcknowledgedBy = &id
	}
	if v, ok := updates["resolved_by"]; ok {
		id := v.(string)
		r.ResolvedBy = &id
	}
	if v, ok := updates["notes"]; ok {
		r.Notes = v.(string)
	}
	return 1, nil
}

func (f *fakeStore) UpdateFeedbackSessions(ctx context.Context, venueID int64, sessionIDs []string, updates map[string]any) (int64, error) {
	if f.updateErr != nil {
		return 0, f.updateErr
	}
	member := make(map[string]bool, len(sessionIDs))
	for _, id := range sessionIDs {
		member[id] = true
	}
	var affected int64
	for _, r := range f.rows {
		if r.VenueID != venueID || !member[r.SessionID] || r.IsActioned {
			continue
		}
		r.IsActioned = true
		if v, ok := updates["resolved_by"]; ok {
			id := v.(string)
			r.ResolvedBy = &id
		}
		if v, ok := updates["resolution_kind"]; ok {
			r.ResolutionKind = v.(string)
		}
		if v, ok := updates["dismissal_reason"]; ok {
			r.DismissalReason = v.(string)
		}
		affected++
	}
	return affected, nil
}

func (f *fakeStore) UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error {
	return nil
}

func (f *fakeStore) SubscriptionByEndpoint(ctx context.Context, endpoint string) (*model.PushSubscription, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStore) SubscriptionsForVenue(ctx context.Context, venueID int64) ([]model.PushSubscription, error) {
	return nil, nil
}

func (f *fakeStore) DeleteSubscription(ctx context.Context, endpoint string) error {
	return nil
}

type fakeRefresher struct {
	triggers int
}

func (f *fakeRefresher) Trigger() { f.triggers++ }

type fakeIndex map[string]*triage.FeedbackSession

func (f fakeIndex) SessionByID(id string) (*triage.FeedbackSession, bool) {
	s, ok := f[id]
	return s, ok
}

func newService(fs *fakeStore, idx fakeIndex) (*Service, *fakeRefresher) {
	r := &fakeRefresher{}
	return NewService(fs, r, idx, zap.NewNop()), r
}

func TestAcknowledge(t *testing.T) {
	testCases := []struct {
		name        string
		staffID     string
		status      string
		expectErrAs any
		expectCalls int
	}{
		{
			name:        "Missing staff id",
			staffID:     "",
			status:      model.AssistancePending,
			expectErrAs: &ValidationError{},
		},
		{
			name:        "Pending request succeeds",
			staffID:     "emp-42",
			status:      model.AssistancePending,
			expectCalls: 1,
		},
		{
			name:        "Already acknowledged",
			staffID:     "emp-42",
			status:      model.AssistanceAcknowledged,
			expectErrAs: &StateError{},
		},
		{
			name:        "Already resolved",
			staffID:     "emp-42",
			status:      model.AssistanceResolved,
			expectErrAs: &StateError{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFakeStore()
			fs.requests[7] = &model.AssistanceRequest{ID: 7, Status: tc.status}
			svc, refresher := newService(fs, fakeIndex{})

			err := svc.Acknowledge(context.Background(), 7, tc.staffID)

			switch target := tc.expectErrAs.(type) {
			case *ValidationError:
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				_ = target
			case *StateError:
				var se *StateError
				require.ErrorAs(t, err, &se)
			default:
				require.NoError(t, err)
				assert.Equal(t, model.AssistanceAcknowledged, fs.requests[7].Status)
				require.NotNil(t, fs.requests[7].AcknowledgedBy)
				assert.Equal(t, "emp-42", *fs.requests[7].AcknowledgedBy)
			}
			assert.Equal(t, tc.expectCalls, refresher.triggers)
		})
	}
}

func TestAcknowledge_MissingRequest(t *testing.T) {
	svc, _ := newService(newFakeStore(), fakeIndex{})
	var se *StateError
	err := svc.Acknowledge(context.Background(), 99, "emp-1")
	require.ErrorAs(t, err, &se)
}

func TestResolve(t *testing.T) {
	t.Run("Requires notes", func(t *testing.T) {
		fs := newFakeStore()
		fs.requests[7] = &model.AssistanceRequest{ID: 7, Status: model.AssistancePending}
		svc, _ := newService(fs, fakeIndex{})

		var ve *ValidationError
		err := svc.Resolve(context.Background(), 7, "emp-1", "   ")
		require.ErrorAs(t, err, &ve)
	})

	t.Run("Resolvable from pending", func(t *testing.T) {
		fs := newFakeStore()
		fs.requests[7] = &model.AssistanceRequest{ID: 7, Status: model.AssistancePending}
		svc, refresher := newService(fs, fakeIndex{})

		require.NoError(t, svc.Resolve(context.Background(), 7, "emp-1", "brought extra chairs"))
		assert.Equal(t, model.AssistanceResolved, fs.requests[7].Status)
		assert.Equal(t, "brought extra chairs", fs.requests[7].Notes)
		assert.Equal(t, 1, refresher.triggers)
	})

	t.Run("Resolvable from acknowledged", func(t *testing.T) {
		fs := newFakeStore()
		fs.requests[7] = &model.AssistanceRequest{ID: 7, Status: model.AssistanceAcknowledged}
		svc, _ := newService(fs, fakeIndex{})

		require.NoError(t, svc.Resolve(context.Background(), 7, "emp-1", "done"))
		assert.Equal(t, model.AssistanceResolved, fs.requests[7].Status)
	})

	t.Run("Second resolve fails, not silently succeeds", func(t *testing.T) {
		fs := newFakeStore()
		fs.requests[7] = &model.AssistanceRequest{ID: 7, Status: model.AssistanceResolved}
		svc, refresher := newService(fs, fakeIndex{})

		var se *StateError
		err := svc.Resolve(context.Background(), 7, "emp-1", "done")
		require.ErrorAs(t, err, &se)
		assert.Zero(t, refresher.triggers)
	})
}

func TestResolveSessions(t *testing.T) {
	t.Run("Dismissal without reason records sentinel", func(t *testing.T) {
		fs := newFakeStore()
		fs.rows = []*model.FeedbackRow{
			{ID: 1, VenueID: 42, SessionID: "S1"},
			{ID: 2, VenueID: 42, SessionID: "S1"},
			{ID: 3, VenueID: 42, SessionID: "S1"},
		}
		svc, refresher := newService(fs, fakeIndex{})

		err := svc.ResolveSessions(context.Background(), 42, []string{"S1"}, "emp-1", model.ResolutionDismissed, "")
		require.NoError(t, err)
		for _, r := range fs.rows {
			assert.True(t, r.IsActioned)
			assert.Equal(t, model.DismissalReasonFallback, r.DismissalReason)
			assert.Equal(t, model.ResolutionDismissed, r.ResolutionKind)
		}
		assert.Equal(t, 1, refresher.triggers)
	})

	t.Run("Invalid resolution kind", func(t *testing.T) {
		svc, _ := newService(newFakeStore(), fakeIndex{})
		var ve *ValidationError
		err := svc.ResolveSessions(context.Background(), 42, []string{"S1"}, "emp-1", "archived", "")
		require.ErrorAs(t, err, &ve)
	})

	t.Run("Missing staff id", func(t *testing.T) {
		svc, _ := newService(newFakeStore(), fakeIndex{})
		var ve *ValidationError
		err := svc.ResolveSessions(context.Background(), 42, []string{"S1"}, " ", model.ResolutionResolved, "")
		require.ErrorAs(t, err, &ve)
	})

	t.Run("All rows already actioned", func(t *testing.T) {
		fs := newFakeStore()
		fs.rows = []*model.FeedbackRow{{ID: 1, VenueID: 42, SessionID: "S1", IsActioned: true}}
		svc, _ := newService(fs, fakeIndex{})

		var se *StateError
		err := svc.ResolveSessions(context.Background(), 42, []string{"S1"}, "emp-1", model.ResolutionResolved, "")
		require.ErrorAs(t, err, &se)
	})
}

func TestClearPositiveFeedback(t *testing.T) {
	positive := 4.5
	low := 2.0

	t.Run("Clears without attribution", func(t *testing.T) {
		fs := newFakeStore()
		fs.rows = []*model.FeedbackRow{{ID: 1, VenueID: 42, SessionID: "S9"}}
		idx := fakeIndex{"S9": {SessionID: "S9", AverageRating: &positive}}
		svc, refresher := newService(fs, idx)

		require.NoError(t, svc.ClearPositiveFeedback(context.Background(), 42, []string{"S9"}))
		assert.True(t, fs.rows[0].IsActioned)
		assert.Nil(t, fs.rows[0].ResolvedBy)
		assert.Equal(t, model.ResolutionPositiveCleared, fs.rows[0].ResolutionKind)
		assert.Equal(t, 1, refresher.triggers)
	})

	t.Run("Rejects non-positive session", func(t *testing.T) {
		idx := fakeIndex{"S9": {SessionID: "S9", AverageRating: &low}}
		svc, _ := newService(newFakeStore(), idx)

		var ve *ValidationError
		err := svc.ClearPositiveFeedback(context.Background(), 42, []string{"S9"})
		require.ErrorAs(t, err, &ve)
	})

	t.Run("Rejects unknown session", func(t *testing.T) {
		svc, _ := newService(newFakeStore(), fakeIndex{})
		var se *StateError
		err := svc.ClearPositiveFeedback(context.Background(), 42, []string{"S9"})
		require.ErrorAs(t, err, &se)
	})
}
