package file

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestNewConfigStore_Success(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "termsync.toml")

	store, err := NewConfigStore(path)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, path, store.Path())
	assert.DirExists(t, filepath.Dir(path))
	assert.Empty(t, store.Keys())
}

func TestDefaultPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot determine home directory")
	}

	path, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".termsync", "config.toml"), path)
}

func TestNewConfigStore_LoadsNestedTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `
[source]
url = "http://termed:9102/api"
timeout = "10s"
rate_limit = 5

[index]
name = "terms"
delete_on_init = true

[sync]
incremental_limit = 30
`)

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	assert.Equal(t, "http://termed:9102/api", store.GetString("source.url"))
	assert.Equal(t, "10s", store.GetString("source.timeout"))
	assert.Equal(t, float64(5), store.GetFloat("source.rate_limit"))
	assert.Equal(t, "terms", store.GetString("index.name"))
	assert.True(t, store.GetBool("index.delete_on_init"))
	assert.Equal(t, 30, store.GetInt("sync.incremental_limit"))
	assert.Equal(t, []string{
		"index.delete_on_init", "index.name",
		"source.rate_limit", "source.timeout", "source.url",
		"sync.incremental_limit",
	}, store.Keys())
}

func TestNewConfigStore_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[source\nurl = ")

	_, err := NewConfigStore(path)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, err := NewConfigStore(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	require.NoError(t, store.Set("a.str", "x"))
	require.NoError(t, store.Set("a.int", 7))
	require.NoError(t, store.Set("a.float", 2.5))
	require.NoError(t, store.Set("a.bool", true))

	assert.Equal(t, "x", store.GetString("a.str"))
	assert.Equal(t, "", store.GetString("a.int"))
	assert.Equal(t, 7, store.GetInt("a.int"))
	assert.Equal(t, 0, store.GetInt("a.str"))
	assert.Equal(t, 2.5, store.GetFloat("a.float"))
	assert.Equal(t, float64(7), store.GetFloat("a.int"))
	assert.Equal(t, float64(0), store.GetFloat("a.bool"))
	assert.True(t, store.GetBool("a.bool"))
	assert.False(t, store.GetBool("missing"))

	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_SetPersistsAsTables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	store, err := NewConfigStore(path)
	require.NoError(t, err)

	require.NoError(t, store.Set("index.name", "terms"))
	require.NoError(t, store.Set("sync.queue_size", 16))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "[index]")
	assert.NotContains(t, string(content), "'index.name'")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewConfigStore(path)
	require.NoError(t, err)
	assert.Equal(t, "terms", reopened.GetString("index.name"))
	assert.Equal(t, 16, reopened.GetInt("sync.queue_size"))
}

func TestConfigStore_LoadMissingFileClears(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	store, err := NewConfigStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("index.name", "terms"))

	require.NoError(t, os.Remove(path))
	require.NoError(t, store.Load())
	assert.Empty(t, store.Keys())
}

func TestNestMap(t *testing.T) {
	nested := nestMap(map[string]any{
		"a.b":   1,
		"a.c.d": "x",
		"e":     true,
	})
	assert.Equal(t, map[string]any{
		"a": map[string]any{"b": 1, "c": map[string]any{"d": "x"}},
		"e": true,
	}, nested)

	t.Run("value and table prefix collide", func(t *testing.T) {
		nested := nestMap(map[string]any{"a": 1, "a.b": 2})
		assert.Equal(t, map[string]any{"a": 1, "a.b": 2}, nested)
	})

	assert.Equal(t, map[string]any{"a.b": 1, "c": 2},
		flattenMap(map[string]any{"a": map[string]any{"b": 1}, "c": 2}, ""))
}

func TestConfigStore_Watch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "[log]\nlevel = \"info\"\n")

	store, err := NewConfigStore(path)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func() { reloads.Add(1) })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	writeConfig(t, path, "[log]\nlevel = \"debug\"\n")

	assert.Eventually(t, func() bool {
		return store.GetString("log.level") == "debug" && reloads.Load() >= 1
	}, 2*time.Second, 20*time.Millisecond)

	t.Run("invalid edit keeps previous values", func(t *testing.T) {
		writeConfig(t, path, "[log\n")
		time.Sleep(3 * watchDebounce)
		assert.Equal(t, "debug", store.GetString("log.level"))
	})

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop")
	}
}
