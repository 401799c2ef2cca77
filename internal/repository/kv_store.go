package repository

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/go-redis/redis/v8"
)

// KVStore 学习计划的键值持久化，按 key 保存整个序列化后的集合
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// MemoryKVStore 进程内实现，未启用 Redis 时使用
type MemoryKVStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{data: make(map[string][]byte)}
}

func (s *MemoryKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (s *MemoryKVStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// RedisKVStore Redis 实现
type RedisKVStore struct {
	Redis *redis.Client
}

func NewRedisKVStore(rdb *redis.Client) *RedisKVStore {
	return &RedisKVStore{Redis: rdb}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.Redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key string, value []byte) error {
	return s.Redis.Set(ctx, key, value, 0).Err()
}

func (s *RedisKVStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	iter := s.Redis.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}
