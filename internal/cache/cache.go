// Package cache хранит счетчики непрочитанных сообщений.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// UnreadCache кэширует количество непрочитанных сообщений пользователя.
type UnreadCache interface {
	GetUnread(ctx context.Context, userID string) (int, bool, error)
	SetUnread(ctx context.Context, userID string, count int) error
	Invalidate(ctx context.Context, userIDs ...string) error
}

// RedisUnreadCache - реализация UnreadCache поверх Redis.
type RedisUnreadCache struct {
	Client *redis.Client
	TTL    time.Duration
}

// NewRedisUnreadCache создаёт новый экземпляр RedisUnreadCache.
func NewRedisUnreadCache(client *redis.Client, ttl time.Duration) *RedisUnreadCache {
	return &RedisUnreadCache{Client: client, TTL: ttl}
}

func unreadKey(userID string) string {
	return "unread:" + userID
}

// GetUnread возвращает значение из кэша. Второй результат false, если ключа нет.
func (c *RedisUnreadCache) GetUnread(ctx context.Context, userID string) (int, bool, error) {
	val, err := c.Client.Get(ctx, unreadKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, false, err
	}
	return count, true, nil
}

// SetUnread сохраняет значение на время TTL.
func (c *RedisUnreadCache) SetUnread(ctx context.Context, userID string, count int) error {
	return c.Client.Set(ctx, unreadKey(userID), count, c.TTL).Err()
}

// Invalidate удаляет значения для пользователей.
func (c *RedisUnreadCache) Invalidate(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, unreadKey(id))
	}
	return c.Client.Del(ctx, keys...).Err()
}

// NoopUnreadCache ничего не хранит. Используется, когда Redis не настроен.
type NoopUnreadCache struct{}

func (NoopUnreadCache) GetUnread(context.Context, string) (int, bool, error) { return 0, false, nil }
func (NoopUnreadCache) SetUnread(context.Context, string, int) error         { return nil }
func (NoopUnreadCache) Invalidate(context.Context, ...string) error          { return nil }
