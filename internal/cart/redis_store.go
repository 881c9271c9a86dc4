package cart

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/candylabs/sweetshop/internal/redisx"
)

// RedisStore keeps each cart in a hash keyed cart:{user_id}. A hash field is
// a sweet id, its value the desired quantity.
type RedisStore struct{ RDB *redis.Client }

func cartKey(userID string) string { return fmt.Sprintf(redisx.KeyCart, userID) }

func (s *RedisStore) Entries(ctx context.Context, userID string) (map[string]int, error) {
	raw, err := s.RDB.HGetAll(ctx, cartKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(raw))
	for sweetID, v := range raw {
		qty, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("corrupt cart entry %s=%q: %w", sweetID, v, err)
		}
		out[sweetID] = qty
	}
	return out, nil
}

func (s *RedisStore) SetQuantity(ctx context.Context, userID, sweetID string, qty int) error {
	return s.RDB.HSet(ctx, cartKey(userID), sweetID, strconv.Itoa(qty)).Err()
}

func (s *RedisStore) Remove(ctx context.Context, userID, sweetID string) error {
	return s.RDB.HDel(ctx, cartKey(userID), sweetID).Err()
}

func (s *RedisStore) Clear(ctx context.Context, userID string) error {
	return s.RDB.Del(ctx, cartKey(userID)).Err()
}

// RemoveFromAllCarts scans every cart key and deletes the field for the
// given sweet. Best effort: a partial sweep leaves entries that resolve to
// NotFound at purchase time.
func (s *RedisStore) RemoveFromAllCarts(ctx context.Context, sweetID string) error {
	var cursor uint64
	for {
		keys, next, err := s.RDB.Scan(ctx, cursor, redisx.KeyCartPattern, 100).Result()
		if err != nil {
			return err
		}
		for _, key := range keys {
			if err := s.RDB.HDel(ctx, key, sweetID).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
