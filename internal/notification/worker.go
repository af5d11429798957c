package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"venue-feedback-backend/internal/model"
	"venue-feedback-backend/internal/store"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender implementation backed by the webpush
// library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// WorkerPool fans assistance alerts out to the venue's subscribed staff
// devices.
type WorkerPool struct {
	size    int
	jobs    chan model.AssistanceRequest
	store   store.Store
	webpush *webpush.Options
	sender  Sender
	logger  *zap.Logger
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, s store.Store, webpushOptions *webpush.Options, logger *zap.Logger) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan model.AssistanceRequest, size),
		store:   s,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
		logger:  logger,
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	wp.logger.Debug("notification worker started", zap.Int("worker", id))
	for {
		select {
		case request := <-wp.jobs:
			wp.alertStaff(ctx, request)
		case <-ctx.Done():
			wp.logger.Debug("notification worker shutting down", zap.Int("worker", id))
			return
		}
	}
}

// Dispatch queues an alert for a newly pending assistance request. It
// drops the job rather than blocking a refresh when the pool is
// saturated; the request is still on the kiosk queue either way.
func (wp *WorkerPool) Dispatch(request model.AssistanceRequest) {
	select {
	case wp.jobs <- request:
	default:
		wp.logger.Warn("notification pool saturated, dropping alert",
			zap.Uint64("request_id", request.ID))
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan model.AssistanceRequest {
	return wp.jobs
}

// SetSender replaces the webpush sender, for testing.
func (wp *WorkerPool) SetSender(s Sender) {
	wp.sender = s
}

func (wp *WorkerPool) alertStaff(ctx context.Context, request model.AssistanceRequest) {
	subscriptions, err := wp.store.SubscriptionsForVenue(ctx, request.VenueID)
	if err != nil {
		wp.logger.Error("failed to fetch subscriptions",
			zap.Int64("venue_id", request.VenueID), zap.Error(err))
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	message := fmt.Sprintf("Table %d needs help", request.TableNumber)
	if request.Message != "" {
		message = fmt.Sprintf("Table %d needs help: %s", request.TableNumber, request.Message)
	}

	wp.logger.Info("sending assistance alerts",
		zap.Uint64("request_id", request.ID),
		zap.Int("subscriptions", len(subscriptions)),
	)
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		wp.logger.Error("failed to send notification",
			zap.String("endpoint", sub.Endpoint), zap.Error(err))
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions.
	if resp.StatusCode == http.StatusGone {
		wp.logger.Info("subscription expired, deleting", zap.String("endpoint", sub.Endpoint))
		if err := wp.store.DeleteSubscription(ctx, sub.Endpoint); err != nil {
			wp.logger.Error("failed to delete expired subscription",
				zap.String("endpoint", sub.Endpoint), zap.Error(err))
		}
	}
}
