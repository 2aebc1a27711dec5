package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/Ashenafi-pixel/minicasino/account"
)

const (
	redisProfileKey  = "casino:profile:"
	redisUsernameKey = "casino:username:"
)

// RedisStore keeps each profile as a JSON value plus a username -> player id index.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("profile: redis %s: %w", addr, err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) get(ctx context.Context, key string) (account.Profile, error) {
	data, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return account.Profile{}, ErrNotFound
	}
	if err != nil {
		return account.Profile{}, err
	}
	var r record
	if err := json.Unmarshal(data, &r); err != nil {
		return account.Profile{}, err
	}
	return r.profile()
}

func (s *RedisStore) put(ctx context.Context, p account.Profile) error {
	data, err := json.Marshal(toRecord(p))
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisProfileKey+p.PlayerID, data, 0).Err()
}

func (s *RedisStore) Load(ctx context.Context, playerID string) (account.Profile, error) {
	return s.get(ctx, redisProfileKey+playerID)
}

func (s *RedisStore) FindByUsername(ctx context.Context, username string) (account.Profile, error) {
	if username == "" {
		return account.Profile{}, ErrNotFound
	}
	id, err := s.rdb.Get(ctx, redisUsernameKey+username).Result()
	if errors.Is(err, redis.Nil) {
		return account.Profile{}, ErrNotFound
	}
	if err != nil {
		return account.Profile{}, err
	}
	return s.Load(ctx, id)
}

func (s *RedisStore) Create(ctx context.Context, p account.Profile) error {
	if p.Username != "" {
		ok, err := s.rdb.SetNX(ctx, redisUsernameKey+p.Username, p.PlayerID, 0).Result()
		if err != nil {
			return err
		}
		if !ok {
			return ErrUsernameTaken
		}
	}
	return s.put(ctx, p)
}

func (s *RedisStore) Save(ctx context.Context, p account.Profile) error {
	return s.put(ctx, p)
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
