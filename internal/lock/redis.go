// Package lock распределённая блокировка обхода напоминаний.
// Несколько экземпляров бота не должны рассылать одно напоминание дважды.
package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultKey = "tutor_scheduler:reminder_sweep"

// releaseScript удаляет ключ только если им владеет тот же токен
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// SweepLock блокировка на SET NX PX. Без клиента блокировка всегда
// захватывается, это режим одного экземпляра.
type SweepLock struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	logger *zap.Logger
}

func NewSweepLock(client redis.Cmdable, key string, ttl time.Duration, logger *zap.Logger) *SweepLock {
	if key == "" {
		key = DefaultKey
	}
	return &SweepLock{client: client, key: key, ttl: ttl, logger: logger}
}

// TryAcquire пытается взять блокировку. Возвращает функцию освобождения
// и false, если блокировку держит другой экземпляр.
func (l *SweepLock) TryAcquire(ctx context.Context) (func(), bool, error) {
	if l.client == nil || isNilClient(l.client) {
		return func() {}, true, nil
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err()
		if err != nil && !errors.Is(err, redis.Nil) {
			l.logger.Warn("Failed to release sweep lock", zap.String("key", l.key), zap.Error(err))
		}
	}
	return release, true, nil
}

func isNilClient(c redis.Cmdable) bool {
	rc, ok := c.(*redis.Client)
	return ok && rc == nil
}

// Options параметры подключения к Redis
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient подключается к Redis. Пустой адрес означает работу без Redis,
// тогда возвращается nil.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.Addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", opts.Addr, err)
	}
	return client, nil
}
