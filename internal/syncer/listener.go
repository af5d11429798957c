package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Tables announced on the change channel.
const (
	ChannelFeedback   = "feedback"
	ChannelAssistance = "assistance"
)

// Notifier receives change signals. The coordinator satisfies it.
type Notifier interface {
	Trigger()
}

// ChangeListener subscribes to the venue's change channels and turns
// every message into a refresh trigger. Messages carry no reliable
// payload; the only contract is "something changed, re-fetch". A broken
// channel is never surfaced to the kiosk: the poll fallback stays
// authoritative while the listener reconnects with backoff.
type ChangeListener struct {
	client   *redis.Client
	channels []string
	target   Notifier
	logger   *zap.Logger
}

// ChangeChannel names the pub/sub channel for one venue and table.
func ChangeChannel(prefix string, venueID int64, table string) string {
	return fmt.Sprintf("%s:%d:%s", prefix, venueID, table)
}

// NewChangeListener creates a listener for the venue's feedback and
// assistance channels.
func NewChangeListener(client *redis.Client, prefix string, venueID int64, target Notifier, logger *zap.Logger) *ChangeListener {
	return &ChangeListener{
		client: client,
		channels: []string{
			ChangeChannel(prefix, venueID, ChannelFeedback),
			ChangeChannel(prefix, venueID, ChannelAssistance),
		},
		target: target,
		logger: logger,
	}
}

// Run consumes change messages until the context is cancelled,
// resubscribing with exponential backoff after connection failures.
func (l *ChangeListener) Run(ctx context.Context) {
	backoff := time.Second
	const maxBackoff = 30 * time.Second

	for {
		if ctx.Err() != nil {
			return
		}

		pubsub := l.client.Subscribe(ctx, l.channels...)
		if _, err := pubsub.Receive(ctx); err != nil {
			pubsub.Close()
			if ctx.Err() != nil {
				return
			}
			// Degraded delivery only; the poll keeps the view correct.
			l.logger.Warn("change channel unavailable, poll fallback in effect",
				zap.Error(err),
				zap.Duration("retry_in", backoff),
			)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		backoff = time.Second
		l.logger.Info("change channel subscribed", zap.Strings("channels", l.channels))

		ch := pubsub.Channel()
	consume:
		for {
			select {
			case <-ctx.Done():
				pubsub.Close()
				return
			case msg, ok := <-ch:
				if !ok {
					// Connection dropped; resubscribe.
					break consume
				}
				_ = msg.Payload // no payload contract
				l.target.Trigger()
			}
		}
		pubsub.Close()
	}
}
