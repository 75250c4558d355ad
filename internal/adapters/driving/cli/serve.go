package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/httpapi"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/redisqueue"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/services"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the sync service",
	Long: `Initialises the index and then applies change notifications as they
arrive. Notifications are accepted over HTTP (POST /v1/notifications) and,
when redis.addr is configured, from a Redis list. All work is applied by a
single worker in arrival order.

The config file is watched while serving; log.level changes take effect
immediately, other changes need a restart.

serve holds a lock file in store.dir. While it runs, reindex and apply
queue their work on it over HTTP at server.addr, and init and mcp serve
refuse to start.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides server.addr)")
	serveCmd.Flags().Bool("skip-init", false, "do not initialise the index on startup")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if err := lockWriter(); err != nil {
		if errors.Is(err, errWriterBusy) {
			return fmt.Errorf("%w; is serve already running?", err)
		}
		return err
	}
	if err := requireSync(); err != nil {
		return err
	}
	settings, err := loadSettings()
	if err != nil {
		return err
	}

	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}
	if addr != "" {
		settings.Server.Addr = addr
	}
	skipInit, err := cmd.Flags().GetBool("skip-init")
	if err != nil {
		return fmt.Errorf("getting skip-init flag: %w", err)
	}

	ctx := cmd.Context()
	logger.SetTimestamps(true)
	logger.Info("termsync %s starting", version)

	if !skipInit {
		if err := changeDispatcher.InitIndex(ctx, settings.Index.DeleteOnInit); err != nil {
			return fmt.Errorf("initialising index: %w", err)
		}
	}

	queue := services.NewNotificationQueue(changeDispatcher, settings.Sync.QueueSize)
	api, err := httpapi.NewServer(queue, syncEngine, settings.Server.Addr)
	if err != nil {
		return err
	}

	var consumer *redisqueue.Consumer
	if settings.Redis.IsEnabled() {
		consumer, err = redisqueue.NewConsumer(settings.Redis, queue)
		if err != nil {
			return err
		}
		defer consumer.Close()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return queue.Run(gctx) })
	g.Go(func() error { return api.Run(gctx) })

	if consumer != nil {
		g.Go(func() error { return consumer.Run(gctx) })
	}

	if runStore != nil && settings.Sync.FullReindexInterval > 0 {
		scheduler := services.NewScheduler(runStore.SchedulerStore(), queue, settings.Sync.FullReindexInterval)
		g.Go(func() error { return scheduler.Run(gctx) })
	}

	if configStore != nil {
		g.Go(func() error { return configStore.Watch(gctx, reloadSettings) })
	}

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}
	logger.Info("Shut down")
	return nil
}

// reloadSettings re-applies what can change without a restart.
func reloadSettings() {
	settings, err := settingsService.Get()
	if err != nil {
		logger.Warn("Ignoring invalid configuration: %v", err)
		return
	}
	applyLogLevel(settings.Log.Level)
	logger.Info("Configuration reloaded (log level %s)", settings.Log.Level)
}
