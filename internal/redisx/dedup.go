package redisx

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Dedup tracks processed event ids under dedup:{service}:{event_id} keys.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

func (d *Dedup) key(eventID string) string {
	return fmt.Sprintf(KeyDedup, d.Service, eventID)
}

func (d *Dedup) Seen(ctx context.Context, eventID string) (bool, error) {
	return Exists(ctx, d.RDB, d.key(eventID))
}

// Mark is called only after the event's work has succeeded, so a failed
// handler run stays eligible for redelivery.
func (d *Dedup) Mark(ctx context.Context, eventID string) {
	_ = d.RDB.Set(ctx, d.key(eventID), "1", TTLDedup).Err()
}
