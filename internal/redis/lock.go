package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

type Redis struct {
	Client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{Client: client}
}

// Short TTL so a crashed admin request cannot wedge the slot.
const slotLockTTL = 10 * time.Second

// AcquireSlot takes the named single-writer lock. The advertise admission
// check runs under it so two admins cannot both observe a free slot.
func (r *Redis) AcquireSlot(name string) (bool, error) {
	key := "slot_lock:" + name
	ok, err := r.Client.SetNX(context.Background(), key, "1", slotLockTTL).Result()
	return ok, err
}

func (r *Redis) ReleaseSlot(name string) error {
	key := "slot_lock:" + name
	_, err := r.Client.Del(context.Background(), key).Result()
	if err == redis.Nil {
		return nil // already released
	}
	return err
}
