package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const keyPrefix = "smc-recurring:lock:"

// releaseScript удаляет ключ только если он всё ещё принадлежит владельцу токена
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Logger интерфейс для логирования
type Logger interface {
	Warn(format string, v ...interface{})
}

// RedisLocker распределённая блокировка на SET NX, общая для всех реплик сервиса
type RedisLocker struct {
	client *redis.Client
	logger Logger
}

// NewRedisLocker создает блокировку поверх redis клиента
func NewRedisLocker(client *redis.Client, logger Logger) *RedisLocker {
	return &RedisLocker{client: client, logger: logger}
}

// NewRedisClient создает клиента и проверяет соединение
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: ping %s: %v", ErrLockBackend, addr, err)
	}

	return client, nil
}

// Acquire занимает ключ на ttl
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	fullKey := keyPrefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, fullKey, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: SETNX %s: %v", ErrLockBackend, fullKey, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}

	return func() {
		// Контекст запуска к этому моменту может быть отменён по дедлайну
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := releaseScript.Run(releaseCtx, l.client, []string{fullKey}, token).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("RedisLocker: failed to release lock key=%s: %v", fullKey, err)
		}
	}, nil
}
