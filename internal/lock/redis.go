package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockLost блокировка истекла и была занята другим владельцем до Unlock
var ErrLockLost = errors.New("lock expired and was taken by another holder")

// releaseScript удаляет ключ только если в нём всё ещё наш токен
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker эксклюзивная блокировка по ключу с TTL
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// RedisLock блокировка через SET NX с токеном владельца
type RedisLock struct {
	client redis.Cmdable

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisLock подключается к Redis и проверяет соединение
func NewRedisLock(ctx context.Context, addr string) (*RedisLock, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	return NewRedisLockFromClient(client), client, nil
}

// NewRedisLockFromClient создаёт блокировку поверх готового клиента
func NewRedisLockFromClient(client redis.Cmdable) *RedisLock {
	return &RedisLock{client: client, tokens: make(map[string]string)}
}

// Lock ставит ключ через SETNX. false означает, что блокировку держит другой процесс
func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()

	ok, err := r.client.SetNX(ctx, lockKey(key), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}

	r.mu.Lock()
	r.tokens[key] = token
	r.mu.Unlock()

	return true, nil
}

// Unlock снимает блокировку, только если она всё ещё принадлежит этому процессу.
// Если за время работы TTL истёк и ключ занял другой владелец, возвращает ErrLockLost
func (r *RedisLock) Unlock(ctx context.Context, key string) error {
	r.mu.Lock()
	token, ok := r.tokens[key]
	delete(r.tokens, key)
	r.mu.Unlock()

	if !ok {
		return nil
	}

	released, err := releaseScript.Run(ctx, r.client, []string{lockKey(key)}, token).Int()
	if err != nil {
		return fmt.Errorf("unlock %s: %w", key, err)
	}
	if released == 0 {
		return fmt.Errorf("unlock %s: %w", key, ErrLockLost)
	}
	return nil
}

func lockKey(key string) string {
	return "lock:" + key
}

// MemoryLock блокировка в памяти процесса, когда Redis не настроен
type MemoryLock struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{
		locks: make(map[string]time.Time),
		now:   time.Now,
	}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if expires, ok := m.locks[key]; ok && now.Before(expires) {
		return false, nil
	}
	m.locks[key] = now.Add(ttl)
	return true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.locks, key)
	return nil
}
