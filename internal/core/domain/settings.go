package domain

import "time"

// Settings holds the configuration of the sync service.
type Settings struct {
	Source SourceSettings
	Index  IndexSettings
	Sync   SyncSettings
	Server ServerSettings
	Redis  RedisSettings
	Store  StoreSettings
	Log    LogSettings
}

// SourceSettings configures the graph API client.
type SourceSettings struct {
	// URL is the API base, e.g. http://localhost:9102/api.
	URL string

	// Username and Password enable basic auth when set.
	Username string
	Password string

	// Token enables bearer auth and takes precedence over basic auth.
	Token string

	// TokenURL, ClientID and ClientSecret fetch bearer tokens with the
	// OAuth2 client credentials grant. Ignored when Token is set.
	TokenURL     string
	ClientID     string
	ClientSecret string

	// Timeout bounds each request.
	Timeout time.Duration

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64
}

// HasBasicAuth returns true if basic auth credentials are configured.
func (s SourceSettings) HasBasicAuth() bool {
	return s.Username != ""
}

// HasClientCredentials returns true if the client credentials grant is configured.
func (s SourceSettings) HasClientCredentials() bool {
	return s.TokenURL != "" && s.ClientID != ""
}

// IndexSettings configures the Elasticsearch index.
type IndexSettings struct {
	URL      string
	Name     string
	Username string
	Password string

	// DeleteOnInit clears every document before the startup index check.
	DeleteOnInit bool
}

// SyncSettings tunes the engine.
type SyncSettings struct {
	// IncrementalLimit is the largest concept batch patched incrementally.
	// Larger batches rebuild the whole graph.
	IncrementalLimit int

	// QueueSize bounds the notification queue.
	QueueSize int

	// FullReindexInterval schedules a periodic full reindex while serving.
	// Zero disables it.
	FullReindexInterval time.Duration
}

// ServerSettings configures the HTTP intake.
type ServerSettings struct {
	Addr string
}

// RedisSettings configures the optional Redis list intake.
type RedisSettings struct {
	// Addr disables the consumer when empty.
	Addr  string
	Queue string
}

// IsEnabled returns true if a Redis address is configured.
func (r RedisSettings) IsEnabled() bool {
	return r.Addr != ""
}

// StoreSettings locates local state.
type StoreSettings struct {
	// Dir holds the run history database.
	Dir string
}

// LogSettings configures logging.
type LogSettings struct {
	Level string
}

// Default values.
const (
	DefaultSourceURL        = "http://localhost:9102/api"
	DefaultSourceTimeout    = 30 * time.Second
	DefaultIndexURL         = "http://localhost:9200"
	DefaultIndexName        = "concepts"
	DefaultIncrementalLimit = 20
	DefaultQueueSize        = 64
	DefaultServerAddr       = ":8001"
	DefaultRedisQueue       = "termsync:notifications"
	DefaultStoreDir         = "~/.termsync/data"
	DefaultLogLevel         = "info"
)

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Source: SourceSettings{
			URL:     DefaultSourceURL,
			Timeout: DefaultSourceTimeout,
		},
		Index: IndexSettings{
			URL:  DefaultIndexURL,
			Name: DefaultIndexName,
		},
		Sync: SyncSettings{
			IncrementalLimit: DefaultIncrementalLimit,
			QueueSize:        DefaultQueueSize,
		},
		Server: ServerSettings{Addr: DefaultServerAddr},
		Redis:  RedisSettings{Queue: DefaultRedisQueue},
		Store:  StoreSettings{Dir: DefaultStoreDir},
		Log:    LogSettings{Level: DefaultLogLevel},
	}
}
