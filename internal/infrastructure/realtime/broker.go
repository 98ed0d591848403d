package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultChannel is the Redis pub/sub channel carrying dispatch events.
const DefaultChannel = "dispatch:events"

// Broker bridges events between API instances over Redis pub/sub. Publish
// may be called on any instance; Run delivers what arrives to the local hub.
type Broker struct {
	client  *redis.Client
	channel string
	hub     *Hub
	log     zerolog.Logger
}

func NewBroker(client *redis.Client, hub *Hub, channel string, log zerolog.Logger) *Broker {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broker{client: client, channel: channel, hub: hub, log: log}
}

// Publish sends an event for room to every instance, this one included.
func (b *Broker) Publish(ctx context.Context, room, event string, payload any) error {
	msg, err := encodeEnvelope(room, event, payload)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, b.channel, msg).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, room, err)
	}
	return nil
}

// Run subscribes to the channel and blocks until ctx is cancelled.
func (b *Broker) Run(ctx context.Context) error {
	sub := b.client.Subscribe(ctx, b.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}
	b.log.Info().Str("channel", b.channel).Msg("event broker subscribed")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			b.deliver(msg.Payload)
		}
	}
}

func (b *Broker) deliver(payload string) {
	var env Envelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		b.log.Error().Err(err).Msg("discarding malformed event")
		return
	}
	n := b.hub.Broadcast(env.Room, env.Event, env.Data)
	b.log.Debug().Str("room", env.Room).Str("event", env.Event).Int("clients", n).Msg("event delivered")
}

func encodeEnvelope(room, event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	return json.Marshal(Envelope{Room: room, Event: event, Data: data})
}
