package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "numspeak:history"

// RedisStore keeps the newest Size entries as JSON on a Redis list.
type RedisStore struct {
	Client redis.Cmdable
	Key    string
	Size   int
}

func NewRedisStore(client redis.Cmdable, size int) *RedisStore {
	return &RedisStore{Client: client, Key: defaultRedisKey, Size: size}
}

func (s *RedisStore) Add(ctx context.Context, e Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode history entry: %w", err)
	}

	_, err = s.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, s.Key, data)
		pipe.LTrim(ctx, s.Key, 0, int64(s.Size-1))
		return nil
	})
	if err != nil {
		return fmt.Errorf("push history entry: %w", err)
	}
	return nil
}

func (s *RedisStore) Recent(ctx context.Context, limit int) ([]Entry, error) {
	values, err := s.Client.LRange(ctx, s.Key, 0, int64(ClampLimit(limit)-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}

	entries := make([]Entry, 0, len(values))
	for _, v := range values {
		var e Entry
		if err := json.Unmarshal([]byte(v), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
