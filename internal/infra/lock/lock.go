package lock

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrLockHeld возвращается, когда блокировка уже занята другим запуском
	ErrLockHeld = errors.New("lock: already held")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("lock: backend error")
)

// ReleaseFunc освобождает полученную блокировку
type ReleaseFunc func()

// LocalLocker блокировка внутри одного процесса (используется, когда redis выключен)
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]time.Time // key -> истечение
	now  func() time.Time
}

// NewLocalLocker создает блокировку в памяти процесса
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{
		held: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Acquire занимает ключ на ttl. Просроченная блокировка считается свободной.
func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (ReleaseFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if expiresAt, ok := l.held[key]; ok && now.Before(expiresAt) {
		return nil, ErrLockHeld
	}

	expiresAt := now.Add(ttl)
	l.held[key] = expiresAt

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		// Не освобождаем чужую блокировку, если наша уже истекла и ключ занят заново
		if current, ok := l.held[key]; ok && current.Equal(expiresAt) {
			delete(l.held, key)
		}
	}, nil
}
