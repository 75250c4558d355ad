package cli

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/services"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View and change configuration",
	Long: `Shows the effective configuration or changes a single key in the
config file. Keys use dotted names such as source.url or sync.queue_size.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration key",
	Long: `Sets a configuration key and saves the config file. Numbers and booleans
are stored as such; durations are written as strings like "30s" or "24h".`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Source]")
	cmd.Printf("  URL: %s\n", settings.Source.URL)
	switch {
	case settings.Source.Token != "":
		cmd.Printf("  Auth: bearer token %s\n", maskSecret(settings.Source.Token))
	case settings.Source.HasClientCredentials():
		cmd.Printf("  Auth: client credentials (%s at %s)\n", settings.Source.ClientID, settings.Source.TokenURL)
	case settings.Source.HasBasicAuth():
		cmd.Printf("  Auth: basic (%s / %s)\n", settings.Source.Username, maskSecret(settings.Source.Password))
	default:
		cmd.Println("  Auth: none")
	}
	cmd.Printf("  Timeout: %s\n", settings.Source.Timeout)
	if settings.Source.RateLimit > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.Source.RateLimit)
	} else {
		cmd.Println("  Rate limit: unlimited")
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  URL: %s\n", settings.Index.URL)
	cmd.Printf("  Name: %s\n", settings.Index.Name)
	if settings.Index.Username != "" {
		cmd.Printf("  Auth: basic (%s / %s)\n", settings.Index.Username, maskSecret(settings.Index.Password))
	}
	cmd.Printf("  Delete on init: %t\n", settings.Index.DeleteOnInit)
	cmd.Println()

	cmd.Println("[Sync]")
	cmd.Printf("  Incremental limit: %d\n", settings.Sync.IncrementalLimit)
	cmd.Printf("  Queue size: %d\n", settings.Sync.QueueSize)
	if settings.Sync.FullReindexInterval > 0 {
		cmd.Printf("  Full reindex every: %s\n", settings.Sync.FullReindexInterval)
	} else {
		cmd.Println("  Full reindex every: disabled")
	}
	cmd.Println()

	cmd.Println("[Service]")
	cmd.Printf("  HTTP address: %s\n", settings.Server.Addr)
	if settings.Redis.IsEnabled() {
		cmd.Printf("  Redis: %s (list %s)\n", settings.Redis.Addr, settings.Redis.Queue)
	} else {
		cmd.Println("  Redis: disabled")
	}
	cmd.Printf("  Store: %s\n", settings.Store.Dir)
	cmd.Printf("  Log level: %s\n", settings.Log.Level)

	if values := svc.Values(); len(values) > 0 {
		cmd.Println()
		cmd.Println("[File]")
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			v := fmt.Sprint(values[k])
			if isSecretKey(k) {
				v = maskSecret(v)
			}
			cmd.Printf("  %s = %s\n", k, v)
		}
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettings()
	if err != nil {
		return err
	}

	key := strings.TrimSpace(args[0])
	if !isKnownKey(key) {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrInvalidInput, key)
	}

	if err := svc.Set(key, parseValue(key, args[1])); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	// Surface invalid values now rather than on the next start.
	if _, err := svc.Get(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	}

	value := args[1]
	if isSecretKey(key) {
		value = maskSecret(value)
	}
	cmd.Printf("Set %s = %s\n", key, value)
	return nil
}

// parseValue stores numbers and booleans with their TOML types.
func parseValue(key, raw string) any {
	if services.IsTextKey(key) {
		return raw
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	switch strings.ToLower(raw) {
	case "true":
		return true
	case "false":
		return false
	}
	return raw
}

func isKnownKey(key string) bool {
	for _, k := range services.Keys() {
		if k == key {
			return true
		}
	}
	return false
}

func isSecretKey(key string) bool {
	return strings.HasSuffix(key, ".password") ||
		strings.HasSuffix(key, ".token") ||
		strings.HasSuffix(key, "_secret")
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}
