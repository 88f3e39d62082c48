package patients

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Samandar90/Kamilovs-CRM/pkg/config"
)

const archiveSetKey = "clinic:patients:archived"

// ArchiveStore keeps the set of archived patient keys. Archiving hides a
// patient from the default roster view without touching their appointment
// history.
type ArchiveStore interface {
	Archive(ctx context.Context, key string) error
	Restore(ctx context.Context, key string) error
	Archived(ctx context.Context) (map[string]bool, error)
	Close() error
}

type redisArchiveStore struct {
	client *redis.Client
}

// NewRedisArchiveStore connects to Redis and verifies the connection with a
// bounded ping.
func NewRedisArchiveStore(cfg config.RedisConfig) (ArchiveStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisArchiveStore{client: client}, nil
}

func (s *redisArchiveStore) Archive(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.SAdd(ctx, archiveSetKey, key).Err()
}

func (s *redisArchiveStore) Restore(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.client.SRem(ctx, archiveSetKey, key).Err()
}

func (s *redisArchiveStore) Archived(ctx context.Context) (map[string]bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	members, err := s.client.SMembers(ctx, archiveSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read archived patients: %w", err)
	}

	out := make(map[string]bool, len(members))
	for _, m := range members {
		out[m] = true
	}
	return out, nil
}

func (s *redisArchiveStore) Close() error {
	return s.client.Close()
}

// memoryArchiveStore is the fallback when Redis is not configured. Archive
// state then lives for the process lifetime only.
type memoryArchiveStore struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewMemoryArchiveStore returns an in-process archive set.
func NewMemoryArchiveStore() ArchiveStore {
	return &memoryArchiveStore{keys: make(map[string]bool)}
}

func (s *memoryArchiveStore) Archive(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[key] = true
	return nil
}

func (s *memoryArchiveStore) Restore(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memoryArchiveStore) Archived(_ context.Context) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.keys))
	for k := range s.keys {
		out[k] = true
	}
	return out, nil
}

func (s *memoryArchiveStore) Close() error { return nil }
