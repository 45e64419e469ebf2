package rewardcache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "reward:set:"

// RedisStore keeps the rewarded-channel set in Redis so the set survives
// agent restarts and can be shared across installations of the same user.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, keyPrefix: defaultKeyPrefix}, nil
}

// NewRedisStoreWithClient wraps an existing client. Useful for tests or
// when sharing a client across components.
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix}
}

func (s *RedisStore) Load(ctx context.Context, userEmail string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, s.keyPrefix+userEmail).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load rewarded set for %s: %w", userEmail, err)
	}
	return ids, nil
}

func (s *RedisStore) Add(ctx context.Context, userEmail string, channelIDs ...string) error {
	if len(channelIDs) == 0 {
		return nil
	}
	members := make([]any, len(channelIDs))
	for i, id := range channelIDs {
		members[i] = id
	}
	if err := s.client.SAdd(ctx, s.keyPrefix+userEmail, members...).Err(); err != nil {
		return fmt.Errorf("failed to add to rewarded set for %s: %w", userEmail, err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, userEmail string) error {
	if err := s.client.Del(ctx, s.keyPrefix+userEmail).Err(); err != nil {
		return fmt.Errorf("failed to clear rewarded set for %s: %w", userEmail, err)
	}
	return nil
}

// Close closes the underlying Redis client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
