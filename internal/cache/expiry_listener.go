package cache

import (
	"context"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"
)

// ExpiryListener subscribes to Redis keyspace notifications and invokes
// OnExpire for every booking whose payment window elapsed. Requires
// notify-keyspace-events to include Ex on the Redis server.
type ExpiryListener struct {
	Client   *redis.Client
	OnExpire func(ctx context.Context, bookingID string)
}

// Run blocks until ctx is cancelled. Callers start it in a goroutine next to
// the HTTP server.
func (l ExpiryListener) Run(ctx context.Context) {
	sub := l.Client.Subscribe(ctx, expiredEventChan)
	defer sub.Close()

	log.Println("booking expiry listener started")

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			log.Println("booking expiry listener stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			key := msg.Payload
			if !strings.HasPrefix(key, expireKeyPrefix) {
				continue
			}
			bookingID := strings.TrimPrefix(key, expireKeyPrefix)
			if bookingID == "" || l.OnExpire == nil {
				continue
			}
			l.OnExpire(ctx, bookingID)
		}
	}
}
