package practice

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Store provides persistence for practice configurations.
type Store interface {
	// Get retrieves a practice config, returning DefaultConfig when the id
	// is unknown.
	Get(ctx context.Context, id string) (*Config, error)
	// Put saves a practice config.
	Put(ctx context.Context, cfg *Config) error
	// Seed stores cfg only when no config exists for its id yet.
	Seed(ctx context.Context, cfg *Config) error
	// List returns all stored practice configs.
	List(ctx context.Context) ([]*Config, error)
}

// RedisStore keeps practice configs in Redis.
type RedisStore struct {
	redis  *redis.Client
	tracer trace.Tracer
}

// NewRedisStore creates a Redis-backed practice config store.
func NewRedisStore(redisClient *redis.Client) *RedisStore {
	return &RedisStore{
		redis:  redisClient,
		tracer: otel.Tracer("dentalbridge.internal.practice.store"),
	}
}

const redisKeyPrefix = "practice:config:"

func (s *RedisStore) key(id string) string {
	return redisKeyPrefix + id
}

// Get retrieves a practice config, returning defaults if not found.
func (s *RedisStore) Get(ctx context.Context, id string) (*Config, error) {
	ctx, span := s.tracer.Start(ctx, "practice.store.get")
	defer span.End()

	data, err := s.redis.Get(ctx, s.key(id)).Bytes()
	if err == redis.Nil {
		return DefaultConfig(id), nil
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("practice: get config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("practice: unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Put saves a practice config.
func (s *RedisStore) Put(ctx context.Context, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("practice: marshal config: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "practice.store.put")
	defer span.End()

	if err := s.redis.Set(ctx, s.key(cfg.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("practice: set config: %w", err)
	}
	return nil
}

// Seed stores cfg only when absent, so boot-time defaults never clobber
// admin edits.
func (s *RedisStore) Seed(ctx context.Context, cfg *Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("practice: marshal config: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "practice.store.seed")
	defer span.End()

	if err := s.redis.SetNX(ctx, s.key(cfg.ID), data, 0).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("practice: seed config: %w", err)
	}
	return nil
}

// List scans all stored practice configs.
func (s *RedisStore) List(ctx context.Context) ([]*Config, error) {
	ctx, span := s.tracer.Start(ctx, "practice.store.list")
	defer span.End()

	var (
		cursor uint64
		out    []*Config
	)
	for {
		keys, next, err := s.redis.Scan(ctx, cursor, redisKeyPrefix+"*", 100).Result()
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("practice: scan configs: %w", err)
		}
		for _, key := range keys {
			data, err := s.redis.Get(ctx, key).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("practice: get config %s: %w", key, err)
			}
			var cfg Config
			if err := json.Unmarshal(data, &cfg); err != nil {
				span.RecordError(err)
				return nil, fmt.Errorf("practice: unmarshal config %s: %w", key, err)
			}
			out = append(out, &cfg)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// MemoryStore keeps practice configs in memory. Used when Redis is not
// configured and in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewMemoryStore creates an in-memory store seeded with the given configs.
func NewMemoryStore(seed ...*Config) *MemoryStore {
	s := &MemoryStore{configs: make(map[string]*Config)}
	for _, cfg := range seed {
		if cfg != nil {
			s.configs[cfg.ID] = cloneConfig(cfg)
		}
	}
	return s
}

// Get retrieves a practice config, returning defaults if not found.
func (s *MemoryStore) Get(ctx context.Context, id string) (*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cfg, ok := s.configs[id]; ok {
		return cloneConfig(cfg), nil
	}
	return DefaultConfig(id), nil
}

// Put saves a practice config.
func (s *MemoryStore) Put(ctx context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.ID] = cloneConfig(cfg)
	return nil
}

// Seed stores cfg only when absent.
func (s *MemoryStore) Seed(ctx context.Context, cfg *Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.configs[cfg.ID]; ok {
		return nil
	}
	s.configs[cfg.ID] = cloneConfig(cfg)
	return nil
}

// List returns all stored practice configs sorted by id.
func (s *MemoryStore) List(ctx context.Context) ([]*Config, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Config, 0, len(s.configs))
	for _, cfg := range s.configs {
		out = append(out, cloneConfig(cfg))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// cloneConfig deep-copies a config so callers never share the stored maps.
func cloneConfig(cfg *Config) *Config {
	out := *cfg
	if cfg.AppointmentTypes != nil {
		out.AppointmentTypes = make(map[string]string, len(cfg.AppointmentTypes))
		for k, v := range cfg.AppointmentTypes {
			out.AppointmentTypes[k] = v
		}
	}
	if cfg.Providers != nil {
		out.Providers = make(map[string]string, len(cfg.Providers))
		for k, v := range cfg.Providers {
			out.Providers[k] = v
		}
	}
	if cfg.Notifications.EmailRecipients != nil {
		out.Notifications.EmailRecipients = append([]string(nil), cfg.Notifications.EmailRecipients...)
	}
	if cfg.Notifications.SMSRecipients != nil {
		out.Notifications.SMSRecipients = append([]string(nil), cfg.Notifications.SMSRecipients...)
	}
	return &out
}

var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)
