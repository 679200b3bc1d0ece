package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const leaderboardKey = "connect4:leaderboard"

// NewRedisClient connects to addr, which is either host:port or a redis://
// URL, and pings it once.
func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	opts := &redis.Options{Addr: addr, Password: password}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, err
		}
		if password != "" {
			parsed.Password = password
		}
		opts = parsed
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// leaderboardCache holds encoded leaderboard pages under one key. Get
// returns redis.Nil on a miss.
type leaderboardCache interface {
	Get(ctx context.Context, field string) ([]byte, error)
	Set(ctx context.Context, field string, data []byte, ttl time.Duration) error
	Clear(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

func (r redisCache) Get(ctx context.Context, field string) ([]byte, error) {
	return r.client.HGet(ctx, leaderboardKey, field).Bytes()
}

func (r redisCache) Set(ctx context.Context, field string, data []byte, ttl time.Duration) error {
	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, leaderboardKey, field, data)
	pipe.Expire(ctx, leaderboardKey, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (r redisCache) Clear(ctx context.Context) error {
	return r.client.Del(ctx, leaderboardKey).Err()
}

// CachedStore keeps leaderboard pages in a redis hash keyed by limit. Any
// saved game drops the whole hash.
type CachedStore struct {
	Store
	cache leaderboardCache
	ttl   time.Duration
}

func NewCachedStore(store Store, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: store, cache: redisCache{client: client}, ttl: ttl}
}

func (c *CachedStore) SaveGame(ctx context.Context, g CompletedGame) error {
	if err := c.Store.SaveGame(ctx, g); err != nil {
		return err
	}
	if err := c.cache.Clear(ctx); err != nil {
		log.Printf("leaderboard cache invalidation failed: %v", err)
	}
	return nil
}

func (c *CachedStore) GetLeaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	field := strconv.Itoa(limit)
	data, err := c.cache.Get(ctx, field)
	if err == nil {
		var rows []LeaderboardRow
		if err := json.Unmarshal(data, &rows); err == nil {
			return rows, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		log.Printf("leaderboard cache read failed: %v", err)
	}

	rows, err := c.Store.GetLeaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(rows); err == nil {
		if err := c.cache.Set(ctx, field, data, c.ttl); err != nil {
			log.Printf("leaderboard cache write failed: %v", err)
		}
	}
	return rows, nil
}
