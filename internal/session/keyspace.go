package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces session keys in a shared keyspace.
const KeyPrefix = "swingdash:session:"

// Keyspace is a server-side token table keyed by device id. Get returns ""
// with a nil error for a missing key.
type Keyspace interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, token string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// Scope returns a Store bound to one device id within a keyspace.
func Scope(ks Keyspace, deviceID string) Store {
	return &scopedStore{ks: ks, key: KeyPrefix + deviceID}
}

type scopedStore struct {
	ks  Keyspace
	key string
}

func (s *scopedStore) Load(ctx context.Context) (string, error) {
	return s.ks.Get(ctx, s.key)
}

func (s *scopedStore) Save(ctx context.Context, token string, ttl time.Duration) error {
	return s.ks.Set(ctx, s.key, token, ttl)
}

func (s *scopedStore) Remove(ctx context.Context) error {
	return s.ks.Del(ctx, s.key)
}

// MemoryKeyspace is a process-local keyspace with lazy expiry.
type MemoryKeyspace struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	token   string
	expires time.Time
}

// NewMemoryKeyspace returns an empty keyspace.
func NewMemoryKeyspace() *MemoryKeyspace {
	return &MemoryKeyspace{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryKeyspace) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return "", nil
	}
	if !e.expires.IsZero() && m.now().After(e.expires) {
		delete(m.entries, key)
		return "", nil
	}
	return e.token, nil
}

func (m *MemoryKeyspace) Set(_ context.Context, key, token string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{token: token}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
	return nil
}

func (m *MemoryKeyspace) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryKeyspace) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.expires.IsZero() || !m.now().After(e.expires) {
			n++
		}
	}
	return n
}

// RedisOptions configures a Redis keyspace connection.
type RedisOptions struct {
	Addr        string
	Username    string
	Password    string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

// RedisKeyspace stores tokens in Redis with SET ... EX ttl.
type RedisKeyspace struct {
	client *redis.Client
}

// NewRedisKeyspace connects to Redis and pings it.
func NewRedisKeyspace(ctx context.Context, opts RedisOptions) (*RedisKeyspace, error) {
	const op = "session.NewRedisKeyspace"
	client := redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Username:     opts.Username,
		Password:     opts.Password,
		DB:           opts.DB,
		MaxRetries:   opts.MaxRetries,
		DialTimeout:  opts.DialTimeout,
		ReadTimeout:  opts.Timeout,
		WriteTimeout: opts.Timeout,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &RedisKeyspace{client: client}, nil
}

func (r *RedisKeyspace) Get(ctx context.Context, key string) (string, error) {
	const op = "session.RedisKeyspace.Get"
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return val, nil
}

func (r *RedisKeyspace) Set(ctx context.Context, key, token string, ttl time.Duration) error {
	const op = "session.RedisKeyspace.Set"
	if err := r.client.Set(ctx, key, token, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisKeyspace) Del(ctx context.Context, key string) error {
	const op = "session.RedisKeyspace.Del"
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close releases the Redis connection pool.
func (r *RedisKeyspace) Close() error {
	return r.client.Close()
}
