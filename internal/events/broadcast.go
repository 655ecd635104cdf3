// Package events carries the cross-session slot-change channel: a Redis
// pub/sub broadcast plus a websocket hub pushing changes to open sessions,
// so every active availability view re-derives its slots when a date's
// state changes.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fisiocan/booking-platform/pkg/logging"
)

// SlotsChannel is the Redis pub/sub channel for slot-change events.
const SlotsChannel = "fisiocan:slots-changed"

// SlotsChangedEvent signals that the bookable slots for a date changed:
// a window was edited, or a booking was created or cancelled.
type SlotsChangedEvent struct {
	Date string    `json:"date"`
	At   time.Time `json:"at"`
}

// Broadcaster publishes slot-change events to all active sessions.
type Broadcaster interface {
	SlotsChanged(ctx context.Context, date string) error
}

// NopBroadcaster discards events. Used when Redis is not configured and in
// tests.
type NopBroadcaster struct{}

func (NopBroadcaster) SlotsChanged(context.Context, string) error { return nil }

// RedisBroadcaster publishes slot-change events on a Redis channel so every
// running instance can refresh its connected sessions.
type RedisBroadcaster struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisBroadcaster creates a broadcaster over the given client.
func NewRedisBroadcaster(client *redis.Client) *RedisBroadcaster {
	if client == nil {
		panic("events: redis client required")
	}
	return &RedisBroadcaster{client: client, now: time.Now}
}

// SlotsChanged publishes the event. Failures are reported to the caller but
// never block a booking: broadcast is best-effort.
func (b *RedisBroadcaster) SlotsChanged(ctx context.Context, date string) error {
	payload, err := json.Marshal(SlotsChangedEvent{Date: date, At: b.now().UTC()})
	if err != nil {
		return fmt.Errorf("events: marshal slot change: %w", err)
	}
	if err := b.client.Publish(ctx, SlotsChannel, payload).Err(); err != nil {
		return fmt.Errorf("events: publish slot change: %w", err)
	}
	return nil
}

// Subscriber consumes slot-change events from Redis and forwards them to a
// handler, typically the websocket hub.
type Subscriber struct {
	client  *redis.Client
	handler func(SlotsChangedEvent)
	logger  *logging.Logger
}

// NewSubscriber creates a subscriber delivering events to handler.
func NewSubscriber(client *redis.Client, handler func(SlotsChangedEvent), logger *logging.Logger) *Subscriber {
	if client == nil {
		panic("events: redis client required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Subscriber{client: client, handler: handler, logger: logger}
}

// Run blocks consuming events until ctx is cancelled.
func (s *Subscriber) Run(ctx context.Context) {
	sub := s.client.Subscribe(ctx, SlotsChannel)
	defer func() { _ = sub.Close() }()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var evt SlotsChangedEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				s.logger.Error("bad slot-change payload", "error", err)
				continue
			}
			if s.handler != nil {
				s.handler(evt)
			}
		}
	}
}
