package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/playmatatu/plinko/internal/game"
	"github.com/redis/go-redis/v9"
)

// EventsChannel carries board events between instances.
const EventsChannel = "plinko_events"

var rdbClient *redis.Client

func SetRedisClient(r *redis.Client) {
	rdbClient = r
}

// RedisPublisher fans board events out through Redis so every instance's
// hub (this one included) delivers them to its clients.
type RedisPublisher struct {
	rdb *redis.Client
}

func NewRedisPublisher(r *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: r}
}

func (p *RedisPublisher) Publish(ev game.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.Printf("[WS] Error marshaling %s event: %v", ev.Type, err)
		return
	}
	if err := p.rdb.Publish(context.Background(), EventsChannel, data).Err(); err != nil {
		log.Printf("[REDIS] Failed to publish %s event, delivering locally: %v", ev.Type, err)
		BoardHub.broadcastRaw(data)
	}
}

// EventPublisher returns where the board manager should send events: Redis
// when a client is configured, otherwise straight to the local hub.
func EventPublisher() game.EventPublisher {
	if rdbClient == nil {
		return BoardHub
	}
	return NewRedisPublisher(rdbClient)
}

// StartEventSubscriber relays events from the Redis channel to the local hub.
func StartEventSubscriber(ctx context.Context) {
	if rdbClient == nil {
		log.Println("[WS] Redis client not set; event subscriber not started")
		return
	}

	pubsub := rdbClient.Subscribe(ctx, EventsChannel)
	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		log.Printf("[WS] %s subscriber started", EventsChannel)
		for msg := range ch {
			var head struct {
				Type game.EventType `json:"type"`
			}
			if err := json.Unmarshal([]byte(msg.Payload), &head); err != nil || head.Type == "" {
				log.Printf("[WS] invalid event payload: %v", err)
				continue
			}
			if head.Type != game.EventDropFrame {
				log.Printf("[WS] event received: type=%s watchers=%d", head.Type, BoardHub.Count())
			}
			BoardHub.broadcastRaw([]byte(msg.Payload))
		}
	}()
}
