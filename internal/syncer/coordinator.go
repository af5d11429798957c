package syncer

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/store"
	"venue-feedback-backend/internal/triage"
)

// Snapshot is one consistent view of the venue's open items plus the
// projections derived from it. Snapshots are immutable once published;
// downstream readers never mutate them.
type Snapshot struct {
	TakenAt  time.Time
	Rows     []model.FeedbackRow
	Requests []model.AssistanceRequest
	Sessions []triage.FeedbackSession
	Queue    []triage.Entry
}

// Coordinator owns the local row snapshot and keeps it fresh from two
// independent triggers: change-channel notifications and an
// unconditional poll ticker. Both run the same full reload; there is no
// payload-driven incremental update, so a dropped notification costs
// latency, never correctness.
type Coordinator struct {
	store   store.Store
	venueID int64
	poll    time.Duration
	cutoff  time.Duration
	logger  *zap.Logger
	now     func() time.Time

	// onNewPending fires after a refresh that brought previously unseen
	// pending assistance requests into the snapshot.
	onNewPending func(requests []model.AssistanceRequest)

	mu       sync.RWMutex
	snapshot *Snapshot

	// Depth-1 trigger channel: with the refresh in flight that bounds
	// queued work to in-flight + pending, no matter how noisy the
	// change channel gets.
	trigger chan struct{}
}

// New creates a coordinator for one venue.
func New(s store.Store, venueID int64, poll, cutoff time.Duration, logger *zap.Logger) *Coordinator {
	return &Coordinator{
		store:   s,
		venueID: venueID,
		poll:    poll,
		cutoff:  cutoff,
		logger:  logger,
		now:     time.Now,
		trigger: make(chan struct{}, 1),
	}
}

// OnNewPending registers the hook invoked when a refresh surfaces new
// pending assistance requests. Must be called before Run.
func (c *Coordinator) OnNewPending(fn func(requests []model.AssistanceRequest)) {
	c.onNewPending = fn
}

// Trigger requests a refresh. It never blocks; if a refresh is already
// pending the extra trigger is collapsed into it.
func (c *Coordinator) Trigger() {
	select {
	case c.trigger <- struct{}{}:
	default:
	}
}

// Run performs an initial load and then serves refresh triggers until
// the context is cancelled. All refreshes run on this goroutine, one at
// a time, so a refresh never reads a partially updated snapshot.
func (c *Coordinator) Run(ctx context.Context) {
	if err := c.Refresh(ctx); err != nil {
		c.logger.Warn("initial snapshot load failed", zap.Error(err))
	}

	ticker := time.NewTicker(c.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("sync coordinator shutting down")
			return
		case <-ticker.C:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("poll refresh failed", zap.Error(err))
			}
		case <-c.trigger:
			if err := c.Refresh(ctx); err != nil {
				c.logger.Warn("triggered refresh failed", zap.Error(err))
			}
		}
	}
}

// Refresh reloads everything for the venue and publishes a new
// snapshot. On any store error the previous snapshot is kept; a late
// snapshot is harmless because recomputation is idempotent.
func (c *Coordinator) Refresh(ctx context.Context) error {
	now := c.now().UTC()
	// The cutoff is relative to the current wall clock on every pass so
	// stale items age out without a restart.
	since := now.Add(-c.cutoff)

	rows, err := c.store.OpenFeedbackRows(ctx, c.venueID, since)
	if err != nil {
		return err
	}
	requests, err := c.store.OpenAssistanceRequests(ctx, c.venueID, since)
	if err != nil {
		return err
	}

	sessions := triage.AggregateSessions(rows)
	queue := triage.BuildQueue(sessions, requests)

	next := &Snapshot{
		TakenAt:  now,
		Rows:     rows,
		Requests: requests,
		Sessions: sessions,
		Queue:    queue,
	}

	c.mu.Lock()
	prev := c.snapshot
	c.snapshot = next
	c.mu.Unlock()

	if c.onNewPending != nil {
		if fresh := newPendingRequests(prev, next); len(fresh) > 0 {
			c.onNewPending(fresh)
		}
	}
	return nil
}

// Snapshot returns the latest published snapshot. Before the first
// successful refresh it returns an empty snapshot, not nil.
func (c *Coordinator) Snapshot() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.snapshot == nil {
		return &Snapshot{}
	}
	return c.snapshot
}

// SessionByID looks up a session aggregate in the latest snapshot.
func (c *Coordinator) SessionByID(id string) (*triage.FeedbackSession, bool) {
	snap := c.Snapshot()
	for i := range snap.Sessions {
		if snap.Sessions[i].SessionID == id {
			return &snap.Sessions[i], true
		}
	}
	return nil, false
}

// newPendingRequests returns requests pending in next that were not
// pending in prev. The first snapshot after startup reports nothing, so
// a process restart does not re-alert staff about items they already
// know about.
func newPendingRequests(prev, next *Snapshot) []model.AssistanceRequest {
	if prev == nil {
		return nil
	}
	seen := make(map[uint64]bool)
	for _, r := range prev.Requests {
		if r.Status == model.AssistancePending {
			seen[r.ID] = true
		}
	}

	var fresh []model.AssistanceRequest
	for _, r := range next.Requests {
		if r.Status == model.AssistancePending && !seen[r.ID] {
			fresh = append(fresh, r)
		}
	}
	return fresh
}
