package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const noteChannelPattern = "notoria:note:*"

// RedisBridge extends a Hub across instances over Redis pub/sub. Local
// subscribers are still served directly; the bridge only relays publishes
// so clients connected to another instance see them too. When Redis is
// down the hub keeps working, single-instance.
type RedisBridge struct {
	hub      *Hub
	client   *redis.Client
	instance string
	cancel   context.CancelFunc
}

type bridgeEnvelope struct {
	Origin    string    `json:"origin"`
	Event     NoteEvent `json:"event"`
	Excluding string    `json:"excluding"`
}

// NewRedisBridge starts the relay listener and returns the bridged notifier.
func NewRedisBridge(hub *Hub, client *redis.Client, instanceID string) *RedisBridge {
	ctx, cancel := context.WithCancel(context.Background())

	b := &RedisBridge{
		hub:      hub,
		client:   client,
		instance: instanceID,
		cancel:   cancel,
	}

	go b.listen(ctx)

	return b
}

func (b *RedisBridge) Subscribe(noteID uint64, sub Subscriber)   { b.hub.Subscribe(noteID, sub) }
func (b *RedisBridge) Unsubscribe(noteID uint64, sub Subscriber) { b.hub.Unsubscribe(noteID, sub) }
func (b *RedisBridge) NotifyUser(userID uint64, msg Message)     { b.hub.NotifyUser(userID, msg) }

func (b *RedisBridge) Publish(noteID uint64, event NoteEvent, excluding string) {
	b.hub.Publish(noteID, event, excluding)

	envelope := bridgeEnvelope{
		Origin:    b.instance,
		Event:     event,
		Excluding: excluding,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode bridge envelope")
		return
	}

	channel := fmt.Sprintf("notoria:note:%d", noteID)
	if err := b.client.Publish(context.Background(), channel, raw).Err(); err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("bridge publish failed")
	}
}

func (b *RedisBridge) Close() {
	b.cancel()
}

func (b *RedisBridge) listen(ctx context.Context) {
	pubsub := b.client.PSubscribe(ctx, noteChannelPattern)
	defer pubsub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-pubsub.Channel():
			if !ok {
				return
			}

			var envelope bridgeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &envelope); err != nil {
				log.Warn().Err(err).Msg("bad bridge envelope")
				continue
			}
			if envelope.Origin == b.instance {
				continue // already delivered locally
			}

			b.hub.Publish(envelope.Event.NoteID, envelope.Event, envelope.Excluding)
		}
	}
}
