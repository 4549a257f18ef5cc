package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisGuard блокировки на Redis (SET NX PX), общие для всех инстансов сервиса
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisGuard создает guard; ttl ограничивает время жизни забытой блокировки
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl, prefix: "appointments:inflight:"}
}

// TryLock пытается захватить key без ожидания
func (g *RedisGuard) TryLock(ctx context.Context, key string) (func(), error) {
	owner := uuid.NewString()
	fullKey := g.prefix + key

	ok, err := g.client.SetNX(ctx, fullKey, owner, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: SETNX %s: %v", ErrBackend, fullKey, err)
	}
	if !ok {
		return nil, ErrLocked
	}

	release := func() {
		// контекст запроса мог быть уже отменён
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(releaseCtx, g.client, []string{fullKey}, owner).Err()
	}
	return release, nil
}

// Ping проверяет доступность Redis
func (g *RedisGuard) Ping(ctx context.Context) error {
	return g.client.Ping(ctx).Err()
}
