package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driven/storage/memory"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

func TestNewSettingsService(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	require.NotNil(t, service)
}

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())

	settings, err := service.Get()
	require.NoError(t, err)

	defaults := domain.DefaultSettings()
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	defaults.Store.Dir = filepath.Join(home, ".termsync/data")

	assert.Equal(t, defaults, *settings)
	assert.Equal(t, domain.DefaultSettings(), service.GetDefaults())
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeySourceURL:        "https://termed.example.org/api",
		KeySourceUsername:   "admin",
		KeySourcePassword:   "secret",
		KeySourceTimeout:    "5s",
		KeySourceRateLimit:  int64(10),
		KeyIndexURL:         "https://es.example.org:9200",
		KeyIndexName:        "terms",
		KeyIndexDeleteInit:  true,
		KeyIncrementalLimit: int64(5),
		KeyQueueSize:        int64(16),
		KeyServerAddr:       ":9000",
		KeyRedisAddr:        "localhost:6379",
		KeyStoreDir:         "/var/lib/termsync",
		KeyLogLevel:         "debug",
	})
	service := NewSettingsService(store)

	settings, err := service.Get()
	require.NoError(t, err)

	assert.Equal(t, "https://termed.example.org/api", settings.Source.URL)
	assert.True(t, settings.Source.HasBasicAuth())
	assert.Equal(t, 5*time.Second, settings.Source.Timeout)
	assert.Equal(t, float64(10), settings.Source.RateLimit)
	assert.Equal(t, "terms", settings.Index.Name)
	assert.True(t, settings.Index.DeleteOnInit)
	assert.Equal(t, 5, settings.Sync.IncrementalLimit)
	assert.Equal(t, 16, settings.Sync.QueueSize)
	assert.Equal(t, ":9000", settings.Server.Addr)
	assert.True(t, settings.Redis.IsEnabled())
	assert.Equal(t, "termsync:notifications", settings.Redis.Queue)
	assert.Equal(t, "/var/lib/termsync", settings.Store.Dir)
	assert.Equal(t, "debug", settings.Log.Level)
}

func TestSettingsService_Get_Timeout(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    time.Duration
		wantErr bool
	}{
		{"duration string", "1m30s", 90 * time.Second, false},
		{"integer seconds", int64(12), 12 * time.Second, false},
		{"fractional seconds", 1.5, 1500 * time.Millisecond, false},
		{"bad string", "soon", 0, true},
		{"bad type", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(map[string]any{KeySourceTimeout: tt.value}))
			settings, err := service.Get()
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, settings.Source.Timeout)
		})
	}
}

func TestSettingsService_Get_FullReindexInterval(t *testing.T) {
	settings, err := NewSettingsService(memory.NewConfigStore()).Get()
	require.NoError(t, err)
	assert.Zero(t, settings.Sync.FullReindexInterval)

	settings, err = NewSettingsService(memory.NewConfigStore(map[string]any{KeyFullReindexEvery: "6h"})).Get()
	require.NoError(t, err)
	assert.Equal(t, 6*time.Hour, settings.Sync.FullReindexInterval)
}

func TestSettingsService_Get_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"relative source url", KeySourceURL, "termed/api"},
		{"index url without host", KeyIndexURL, "http://"},
		{"negative rate", KeySourceRateLimit, -1.0},
		{"negative limit", KeyIncrementalLimit, int64(-1)},
		{"empty queue", KeyQueueSize, int64(0)},
		{"negative reindex interval", KeyFullReindexEvery, "-1h"},
		{"unknown level", KeyLogLevel, "chatty"},
		{"relative token url", KeySourceTokenURL, "/oauth/token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := NewSettingsService(memory.NewConfigStore(map[string]any{tt.key: tt.val}))
			_, err := service.Get()
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestSettingsService_SetAndValues(t *testing.T) {
	store := memory.NewConfigStore()
	service := NewSettingsService(store)

	require.NoError(t, service.Set(KeyIndexName, "other"))
	assert.Equal(t, "other", store.GetString(KeyIndexName))
	assert.Equal(t, map[string]any{KeyIndexName: "other"}, service.Values())

	assert.ErrorIs(t, service.Set(" ", "x"), domain.ErrInvalidInput)
	assert.NoError(t, service.Reload())
}

func TestSettingsService_Get_ClientCredentials(t *testing.T) {
	store := memory.NewConfigStore(map[string]any{
		KeySourceTokenURL: "https://auth.example.org/token",
		KeySourceClientID: "termsync",
		KeySourceSecret:   "s3cret",
	})

	settings, err := NewSettingsService(store).Get()

	require.NoError(t, err)
	assert.True(t, settings.Source.HasClientCredentials())
	assert.Equal(t, "termsync", settings.Source.ClientID)
	assert.Equal(t, "s3cret", settings.Source.ClientSecret)
}

func TestKeys(t *testing.T) {
	keys := Keys()

	assert.IsIncreasing(t, keys)
	assert.Contains(t, keys, KeyFullReindexEvery)
	assert.Contains(t, keys, KeySourceSecret)
	assert.True(t, IsTextKey(KeySourceURL))
	assert.False(t, IsTextKey(KeyQueueSize))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, expandHome("~"))
	assert.Equal(t, filepath.Join(home, "data"), expandHome("~/data"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
	assert.Equal(t, "~user/x", expandHome("~user/x"))
}
