package presence

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const onlineKeyPrefix = "presence:online:"

// OnlineTracker marks users online with a redis heartbeat key that expires
// on its own. A nil client degrades to "nobody online" so the API works
// without redis in local setups.
type OnlineTracker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewOnlineTracker(rdb *redis.Client, ttl time.Duration) *OnlineTracker {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &OnlineTracker{rdb: rdb, ttl: ttl}
}

// Heartbeat refreshes the caller's online key. Clients call it on connect
// and periodically while connected.
func (o *OnlineTracker) Heartbeat(ctx context.Context, userID string) error {
	if o.rdb == nil {
		return nil
	}
	return o.rdb.Set(ctx, onlineKeyPrefix+userID, "1", o.ttl).Err()
}

// MarkOffline drops the key early on clean disconnect.
func (o *OnlineTracker) MarkOffline(ctx context.Context, userID string) error {
	if o.rdb == nil {
		return nil
	}
	return o.rdb.Del(ctx, onlineKeyPrefix+userID).Err()
}

func (o *OnlineTracker) IsOnline(ctx context.Context, userID string) (bool, error) {
	if o.rdb == nil {
		return false, nil
	}
	n, err := o.rdb.Exists(ctx, onlineKeyPrefix+userID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
