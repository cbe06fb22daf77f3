package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"biseogo/internal/models"
	"biseogo/internal/redis"
	"biseogo/internal/session"
)

// SettingsStoreType selects the settings persistence driver.
type SettingsStoreType string

const (
	SettingsStoreFile  SettingsStoreType = "file"
	SettingsStoreRedis SettingsStoreType = "redis"
)

// ErrInvalidStoreConfig reports a driver missing its required options.
var ErrInvalidStoreConfig = errors.New("invalid settings store configuration")

type settingsStoreConfig struct {
	dir         string
	redisClient *redis.Client
}

// SettingsStoreOption configures NewSettingsStore.
type SettingsStoreOption func(*settingsStoreConfig)

// WithSettingsDir sets the directory for the file driver.
func WithSettingsDir(dir string) SettingsStoreOption {
	return func(c *settingsStoreConfig) { c.dir = dir }
}

// WithRedisClient supplies the client for the redis driver.
func WithRedisClient(client *redis.Client) SettingsStoreOption {
	return func(c *settingsStoreConfig) { c.redisClient = client }
}

// NewSettingsStore builds a per-mode settings store for the given driver.
func NewSettingsStore(storeType SettingsStoreType, opts ...SettingsStoreOption) (session.SettingsStore, error) {
	cfg := &settingsStoreConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	switch storeType {
	case SettingsStoreFile:
		if cfg.dir == "" {
			return nil, ErrInvalidStoreConfig
		}
		if err := os.MkdirAll(cfg.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create settings dir: %w", err)
		}
		return &fileSettingsStore{dir: cfg.dir}, nil

	case SettingsStoreRedis:
		if cfg.redisClient == nil {
			return nil, ErrInvalidStoreConfig
		}
		return &redisSettingsStore{client: cfg.redisClient}, nil

	default:
		return nil, fmt.Errorf("unsupported settings store type: %s", storeType)
	}
}

// fileSettingsStore keeps one JSON file per mode under the data dir.
type fileSettingsStore struct {
	mu  sync.Mutex
	dir string
}

func (s *fileSettingsStore) path(mode models.Mode) string {
	return filepath.Join(s.dir, fmt.Sprintf("settings_%s.json", mode))
}

func (s *fileSettingsStore) Load(_ context.Context, mode models.Mode) (session.Settings, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(mode))
	if err != nil {
		if os.IsNotExist(err) {
			return session.Settings{}, false, nil
		}
		return session.Settings{}, false, fmt.Errorf("read settings: %w", err)
	}
	var settings session.Settings
	if err := json.Unmarshal(data, &settings); err != nil {
		return session.Settings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *fileSettingsStore) Save(_ context.Context, mode models.Mode, settings session.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return writeFileAtomic(s.path(mode), data)
}

// redisSettingsStore keeps one key per mode so the two modes can never
// cross-contaminate.
type redisSettingsStore struct {
	client *redis.Client
}

func settingsKey(mode models.Mode) string {
	return fmt.Sprintf("biseogo:settings:%s", mode)
}

func (s *redisSettingsStore) Load(ctx context.Context, mode models.Mode) (session.Settings, bool, error) {
	raw, err := s.client.Get(ctx, settingsKey(mode))
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return session.Settings{}, false, nil
		}
		return session.Settings{}, false, fmt.Errorf("load settings: %w", err)
	}
	var settings session.Settings
	if err := json.Unmarshal([]byte(raw), &settings); err != nil {
		return session.Settings{}, false, fmt.Errorf("decode settings: %w", err)
	}
	return settings, true, nil
}

func (s *redisSettingsStore) Save(ctx context.Context, mode models.Mode, settings session.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	return s.client.Set(ctx, settingsKey(mode), data, 0)
}
