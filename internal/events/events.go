// Package events publishes service events to Redis pub/sub so the gateway
// can forward them to connected clients.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ChannelLocationUpdated carries EVENT_LOCATION_UPDATED messages.
const ChannelLocationUpdated = "EVENT_LOCATION_UPDATED"

// LocationUpdated is published after coordinates are written to an entity.
type LocationUpdated struct {
	EventID   string  `json:"eventId"`
	Type      string  `json:"type"`
	Kind      string  `json:"kind"`
	EntityID  string  `json:"entityId"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	At        string  `json:"at"`
}

// NewLocationUpdated builds an event stamped with a fresh id and time.
func NewLocationUpdated(kind, entityID string, lat, lng float64) LocationUpdated {
	return LocationUpdated{
		EventID:   uuid.NewString(),
		Type:      ChannelLocationUpdated,
		Kind:      kind,
		EntityID:  entityID,
		Latitude:  lat,
		Longitude: lng,
		At:        time.Now().UTC().Format(time.RFC3339),
	}
}

// Publisher sends JSON-encoded events to a channel.
type Publisher interface {
	Publish(ctx context.Context, channel string, event any) error
}

// RedisPublisher publishes through a go-redis client.
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher wraps rdb.
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

func (p *RedisPublisher) Publish(ctx context.Context, channel string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", channel, err)
	}
	return nil
}

// Discard drops every event. Used when Redis is not configured.
type Discard struct{}

func (Discard) Publish(context.Context, string, any) error { return nil }
