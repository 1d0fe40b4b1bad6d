package database

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisClients holds one connection per concern: Queue backs the sync
// job queue and refresh tokens, Cache backs chapter-data caching and
// chat snapshots, PubSub is dedicated to subscriptions since a
// subscribed connection cannot issue regular commands.
type RedisClients struct {
	Queue  *redis.Client
	Cache  *redis.Client
	PubSub *redis.Client
}

func NewRedisClients(redisURL string) (*RedisClients, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clients := &RedisClients{}
	for _, c := range []struct {
		name   string
		target **redis.Client
	}{
		{"queue", &clients.Queue},
		{"cache", &clients.Cache},
		{"pubsub", &clients.PubSub},
	} {
		connOpt := *opt
		client := redis.NewClient(&connOpt)
		if err := client.Ping(ctx).Err(); err != nil {
			clients.Close()
			return nil, fmt.Errorf("failed to ping Redis (%s): %w", c.name, err)
		}
		*c.target = client
	}

	return clients, nil
}

func (r *RedisClients) Close() {
	for _, c := range []*redis.Client{r.Queue, r.Cache, r.PubSub} {
		if c != nil {
			c.Close()
		}
	}
}
