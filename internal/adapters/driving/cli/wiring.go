package cli

import (
	"fmt"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driven/config/file"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driven/elastic"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driven/storage/sqlite"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driven/termed"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/services"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

// Services used by the commands. They are built on first use; tests
// replace them with mocks.
var (
	settingsService  driving.SettingsService
	syncEngine       driving.SyncEngine
	changeDispatcher driving.ChangeDispatcher
)

// Concrete adapters kept for serve and for cleanup.
var (
	configStore *file.ConfigStore
	runStore    *sqlite.Store
)

// requireSettings returns the settings service, opening the config file
// on first use.
func requireSettings() (driving.SettingsService, error) {
	if settingsService != nil {
		return settingsService, nil
	}

	store, err := file.NewConfigStore(configPath)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	configStore = store
	settingsService = services.NewSettingsService(store)
	return settingsService, nil
}

// loadSettings reads the validated settings and applies the log level.
func loadSettings() (*domain.Settings, error) {
	svc, err := requireSettings()
	if err != nil {
		return nil, err
	}
	settings, err := svc.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	applyLogLevel(settings.Log.Level)
	return settings, nil
}

// applyLogLevel sets the configured level unless --verbose asked for debug.
func applyLogLevel(name string) {
	if verbose {
		return
	}
	if level, ok := logger.ParseLevel(name); ok {
		logger.SetLevel(level)
	}
}

// requireSync builds the engine and dispatcher on first use.
func requireSync() error {
	if syncEngine != nil && changeDispatcher != nil {
		return nil
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	client, err := termed.NewClient(settings.Source)
	if err != nil {
		return fmt.Errorf("creating source client: %w", err)
	}
	index, err := elastic.NewGateway(settings.Index, nil)
	if err != nil {
		return fmt.Errorf("creating index client: %w", err)
	}
	store, err := sqlite.NewStore(settings.Store.Dir)
	if err != nil {
		return fmt.Errorf("opening run history: %w", err)
	}
	runStore = store

	engine := services.NewSyncEngine(
		termed.NewGateway(client),
		index,
		store.SyncRunStore(),
		elastic.DefaultDefinition(),
		services.WithIncrementalLimit(settings.Sync.IncrementalLimit),
	)
	syncEngine = engine
	changeDispatcher = services.NewChangeDispatcher(engine)

	logger.Debug("Source %s, index %s/%s", client.BaseURL(), settings.Index.URL, index.Name())
	return nil
}

// closeResources releases what requireSync and lockWriter opened.
func closeResources() {
	releaseWriterLock()
	if runStore == nil {
		return
	}
	if err := runStore.Close(); err != nil {
		logger.Warn("Closing run history: %v", err)
	}
	runStore = nil
}
