// internal/events/publisher.go
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"
)

// Type identifies a domain event.
type Type string

const (
	TypeAuctionOpened             Type = "opened"
	TypeBidPlaced                 Type = "bid_placed"
	TypeAuctionSettled            Type = "settled"
	TypeAuctionExpiredWithoutBids Type = "expired_without_bids"
)

const (
	streamName    = "AUCTION_EVENTS"
	subjectPrefix = "auction.events."
)

// Event is the wire envelope published for every auction state change.
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	AuctionID  int64     `json:"auction_id"`
	AssetID    int64     `json:"asset_id,omitempty"`
	UserID     int64     `json:"user_id,omitempty"`
	Amount     int64     `json:"amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher publishes auction events to a NATS JetStream stream. A nil
// Publisher is valid and drops all events, so callers never branch on
// whether eventing is configured.
type Publisher struct {
	js     jetstream.JetStream
	logger *zap.Logger
}

// NewPublisher creates a Publisher and ensures the event stream exists.
func NewPublisher(nc *nats.Conn, logger *zap.Logger) (*Publisher, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      streamName,
		Subjects:  []string{subjectPrefix + "*"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create/update stream %s: %w", streamName, err)
	}

	return &Publisher{js: js, logger: logger}, nil
}

// Publish sends the event, fire-and-forget. Failures are logged, never
// returned; event delivery must not affect committed state.
func (p *Publisher) Publish(ctx context.Context, evt Event) {
	if p == nil {
		return
	}
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.OccurredAt.IsZero() {
		evt.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.String("type", string(evt.Type)), zap.Error(err))
		return
	}
	if _, err := p.js.Publish(ctx, subjectPrefix+string(evt.Type), data); err != nil {
		p.logger.Error("failed to publish event",
			zap.String("type", string(evt.Type)),
			zap.Int64("auction_id", evt.AuctionID),
			zap.Error(err))
	}
}
