package services

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driven"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeySourceURL        = "source.url"
	KeySourceUsername   = "source.username"
	KeySourcePassword   = "source.password"
	KeySourceToken      = "source.token"
	KeySourceTokenURL   = "source.token_url"
	KeySourceClientID   = "source.client_id"
	KeySourceSecret     = "source.client_secret"
	KeySourceTimeout    = "source.timeout"
	KeySourceRateLimit  = "source.rate_limit"
	KeyIndexURL         = "index.url"
	KeyIndexName        = "index.name"
	KeyIndexUsername    = "index.username"
	KeyIndexPassword    = "index.password"
	KeyIndexDeleteInit  = "index.delete_on_init"
	KeyIncrementalLimit = "sync.incremental_limit"
	KeyQueueSize        = "sync.queue_size"
	KeyFullReindexEvery = "sync.full_reindex_interval"
	KeyServerAddr       = "server.addr"
	KeyRedisAddr        = "redis.addr"
	KeyRedisQueue       = "redis.queue"
	KeyStoreDir         = "store.dir"
	KeyLogLevel         = "log.level"
)

// textKeys hold free text and are never parsed as numbers or booleans.
var textKeys = map[string]bool{
	KeySourceURL:      true,
	KeySourceUsername: true,
	KeySourcePassword: true,
	KeySourceToken:    true,
	KeySourceTokenURL: true,
	KeySourceClientID: true,
	KeySourceSecret:   true,
	KeyIndexURL:       true,
	KeyIndexName:      true,
	KeyIndexUsername:  true,
	KeyIndexPassword:  true,
	KeyServerAddr:     true,
	KeyRedisAddr:      true,
	KeyRedisQueue:     true,
	KeyStoreDir:       true,
	KeyLogLevel:       true,
}

// Keys returns every recognised config key in sorted order.
func Keys() []string {
	keys := []string{
		KeySourceURL, KeySourceUsername, KeySourcePassword, KeySourceToken,
		KeySourceTokenURL, KeySourceClientID, KeySourceSecret,
		KeySourceTimeout, KeySourceRateLimit,
		KeyIndexURL, KeyIndexName, KeyIndexUsername, KeyIndexPassword, KeyIndexDeleteInit,
		KeyIncrementalLimit, KeyQueueSize, KeyFullReindexEvery,
		KeyServerAddr, KeyRedisAddr, KeyRedisQueue, KeyStoreDir, KeyLogLevel,
	}
	sort.Strings(keys)
	return keys
}

// IsTextKey reports whether key holds free text.
func IsTextKey(key string) bool {
	return textKeys[key]
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current settings. Unset keys take their default; values
// that are set but unusable are reported as errors.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	timeout, err := s.getDuration(KeySourceTimeout, defaults.Source.Timeout)
	if err != nil {
		return nil, err
	}
	reindexEvery, err := s.getDuration(KeyFullReindexEvery, defaults.Sync.FullReindexInterval)
	if err != nil {
		return nil, err
	}

	settings := &domain.Settings{
		Source: domain.SourceSettings{
			URL:          s.getString(KeySourceURL, defaults.Source.URL),
			Username:     s.configStore.GetString(KeySourceUsername),
			Password:     s.configStore.GetString(KeySourcePassword),
			Token:        s.configStore.GetString(KeySourceToken),
			TokenURL:     s.configStore.GetString(KeySourceTokenURL),
			ClientID:     s.configStore.GetString(KeySourceClientID),
			ClientSecret: s.configStore.GetString(KeySourceSecret),
			Timeout:      timeout,
			RateLimit:    s.configStore.GetFloat(KeySourceRateLimit),
		},
		Index: domain.IndexSettings{
			URL:          s.getString(KeyIndexURL, defaults.Index.URL),
			Name:         s.getString(KeyIndexName, defaults.Index.Name),
			Username:     s.configStore.GetString(KeyIndexUsername),
			Password:     s.configStore.GetString(KeyIndexPassword),
			DeleteOnInit: s.getBool(KeyIndexDeleteInit, defaults.Index.DeleteOnInit),
		},
		Sync: domain.SyncSettings{
			IncrementalLimit:    s.getInt(KeyIncrementalLimit, defaults.Sync.IncrementalLimit),
			QueueSize:           s.getInt(KeyQueueSize, defaults.Sync.QueueSize),
			FullReindexInterval: reindexEvery,
		},
		Server: domain.ServerSettings{
			Addr: s.getString(KeyServerAddr, defaults.Server.Addr),
		},
		Redis: domain.RedisSettings{
			Addr:  s.configStore.GetString(KeyRedisAddr),
			Queue: s.getString(KeyRedisQueue, defaults.Redis.Queue),
		},
		Store: domain.StoreSettings{
			Dir: expandHome(s.getString(KeyStoreDir, defaults.Store.Dir)),
		},
		Log: domain.LogSettings{
			Level: s.getString(KeyLogLevel, defaults.Log.Level),
		},
	}

	if err := validate(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

func validate(settings *domain.Settings) error {
	urls := map[string]string{
		KeySourceURL: settings.Source.URL,
		KeyIndexURL:  settings.Index.URL,
	}
	if settings.Source.TokenURL != "" {
		urls[KeySourceTokenURL] = settings.Source.TokenURL
	}
	for key, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %s must be an absolute URL, got %q", domain.ErrInvalidInput, key, raw)
		}
	}
	if settings.Source.RateLimit < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeySourceRateLimit)
	}
	if settings.Sync.IncrementalLimit < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeyIncrementalLimit)
	}
	if settings.Sync.FullReindexInterval < 0 {
		return fmt.Errorf("%w: %s must not be negative", domain.ErrInvalidInput, KeyFullReindexEvery)
	}
	if settings.Sync.QueueSize < 1 {
		return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, KeyQueueSize)
	}
	if _, ok := logger.ParseLevel(settings.Log.Level); !ok {
		return fmt.Errorf("%w: unknown %s %q", domain.ErrInvalidInput, KeyLogLevel, settings.Log.Level)
	}
	return nil
}

// Set updates a single configuration key and persists it.
func (s *SettingsService) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("%w: empty config key", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Values returns every configured key with its value.
func (s *SettingsService) Values() map[string]any {
	out := make(map[string]any)
	for _, key := range s.configStore.Keys() {
		if v, ok := s.configStore.Get(key); ok {
			out[key] = v
		}
	}
	return out
}

// Reload re-reads the configuration file.
func (s *SettingsService) Reload() error {
	if err := s.configStore.Load(); err != nil {
		return fmt.Errorf("reload config: %w", err)
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

// getDuration accepts a Go duration string ("30s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw, exists := s.configStore.Get(key)
	if !exists {
		return defaultVal, nil
	}
	switch v := raw.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", domain.ErrInvalidInput, key, err)
		}
		return d, nil
	case int64:
		return time.Duration(v) * time.Second, nil
	case int:
		return time.Duration(v) * time.Second, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%w: %s has unsupported type %T", domain.ErrInvalidInput, key, raw)
	}
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
