package live

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const channel = "comlab:live"

// Notifier announces that a topic's rows changed.
type Notifier interface {
	Notify(ctx context.Context, topic string)
}

// RedisNotifier fans notifications out to every instance through Redis
// pub/sub. Each instance runs Listen to feed its local hub.
type RedisNotifier struct {
	rdb *redis.Client
	hub *Hub
}

func NewRedisNotifier(rdb *redis.Client, hub *Hub) *RedisNotifier {
	return &RedisNotifier{rdb: rdb, hub: hub}
}

func (n *RedisNotifier) Notify(ctx context.Context, topic string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := n.rdb.Publish(ctx, channel, topic).Err(); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("live publish failed, notifying locally")
		n.hub.Notify(ctx, topic)
	}
}

// Listen relays published topics to the local hub until ctx is done.
func (n *RedisNotifier) Listen(ctx context.Context) {
	sub := n.rdb.Subscribe(ctx, channel)
	defer sub.Close()
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if n.hub.HasTopic(msg.Payload) {
				n.hub.Notify(ctx, msg.Payload)
			}
		}
	}
}
