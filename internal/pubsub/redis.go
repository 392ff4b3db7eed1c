package pubsub

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisChannel = "startuphub:events"

// RedisFabric routes envelopes through a single Redis Pub/Sub channel so
// group delivery works across multiple server instances. Each instance keeps
// its own membership registry and filters incoming envelopes by group.
type RedisFabric struct {
	rdb *redis.Client

	mu  sync.RWMutex
	reg *registry
}

func NewRedisFabric(rdb *redis.Client) *RedisFabric {
	return &RedisFabric{
		rdb: rdb,
		reg: newRegistry(),
	}
}

// Run subscribes to the Redis channel and delivers incoming envelopes to
// local subscribers until ctx is cancelled.
func (f *RedisFabric) Run(ctx context.Context) {
	sub := f.rdb.Subscribe(ctx, redisChannel)
	defer sub.Close()

	ch := sub.Channel()
	log.Println("pubsub: redis subscriber started")

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("pubsub: bad envelope: %v", err)
				continue
			}
			f.mu.Lock()
			f.reg.deliver(&env)
			f.mu.Unlock()
		}
	}
}

func (f *RedisFabric) Join(group string, sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg.join(group, sub)
}

func (f *RedisFabric) Leave(group string, sub Subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reg.leave(group, sub)
}

// Publish encodes the envelope and pushes it through Redis. Delivery to
// local subscribers happens when the envelope comes back on the channel,
// so every instance, this one included, takes the same path.
func (f *RedisFabric) Publish(ctx context.Context, group, senderID string, data []byte) error {
	payload, err := json.Marshal(&Envelope{
		Group:    group,
		SenderID: senderID,
		Data:     data,
	})
	if err != nil {
		return err
	}
	return f.rdb.Publish(ctx, redisChannel, payload).Err()
}
