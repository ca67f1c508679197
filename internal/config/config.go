package config

import (
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	Ingest      IngestConfig      `yaml:"ingest"`
	Matching    MatchingConfig    `yaml:"matching"`
	Adjudicator AdjudicatorConfig `yaml:"adjudicator"`
	Geocoding   GeocodingConfig   `yaml:"geocoding"`
	Nearby      NearbyConfig      `yaml:"nearby"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Accept,Content-Type,X-Request-Id"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"3000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
	AutoMigrate     bool          `yaml:"auto_migrate"       env:"DATABASE_AUTO_MIGRATE"       env-default:"true"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// IngestConfig holds invoice upload settings.
type IngestConfig struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"INGEST_MAX_UPLOAD_BYTES" env-default:"5242880"`
	DailyQuota     int   `yaml:"daily_quota"      env:"INGEST_DAILY_QUOTA"      env-default:"200"`
	// BeautifyNames rewrites barcode-less product names through the LLM
	// before they are stored.
	BeautifyNames bool `yaml:"beautify_names" env:"INGEST_BEAUTIFY_NAMES" env-default:"false"`
}

// MatchingConfig holds identity resolution thresholds.
type MatchingConfig struct {
	FuzzyMergeThreshold int           `yaml:"fuzzy_merge_threshold" env:"MATCHING_FUZZY_MERGE_THRESHOLD" env-default:"92"`
	GrayAreaThreshold   int           `yaml:"gray_area_threshold"   env:"MATCHING_GRAY_AREA_THRESHOLD"   env-default:"65"`
	AdjudicationTimeout time.Duration `yaml:"adjudication_timeout"  env:"MATCHING_ADJUDICATION_TIMEOUT"  env-default:"15s"`
}

// Adjudicator providers.
const (
	ProviderNone      = "none"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// AdjudicatorConfig selects and configures the LLM used for gray-area
// matches and name beautification.
type AdjudicatorConfig struct {
	Provider        string        `yaml:"provider"          env:"ADJUDICATOR_PROVIDER"          env-default:"none"`
	Timeout         time.Duration `yaml:"timeout"           env:"ADJUDICATOR_TIMEOUT"           env-default:"15s"`
	OllamaURL       string        `yaml:"ollama_url"        env:"OLLAMA_URL"                    env-default:"http://localhost:11434"`
	OllamaModel     string        `yaml:"ollama_model"      env:"OLLAMA_MODEL"                  env-default:"qwen2.5-coder:14b"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key" env:"ANTHROPIC_API_KEY"`
	AnthropicModel  string        `yaml:"anthropic_model"   env:"ADJUDICATOR_ANTHROPIC_MODEL"   env-default:"claude-3-5-haiku-latest"`
}

// GeocodingConfig holds place lookup settings. An empty APIKey disables
// geocoding.
type GeocodingConfig struct {
	APIKey      string        `yaml:"api_key"      env:"GOOGLE_MAPS_API_KEY"`
	Country     string        `yaml:"country"      env:"GEOCODING_COUNTRY"      env-default:"Costa Rica"`
	Timeout     time.Duration `yaml:"timeout"      env:"GEOCODING_TIMEOUT"      env-default:"10s"`
	BatchDelay  time.Duration `yaml:"batch_delay"  env:"GEOCODING_BATCH_DELAY"  env-default:"500ms"`
	QueueSize   int           `yaml:"queue_size"   env:"GEOCODING_QUEUE_SIZE"   env-default:"100"`
	TaskTimeout time.Duration `yaml:"task_timeout" env:"GEOCODING_TASK_TIMEOUT" env-default:"30s"`
}

// Enabled reports whether an API key is configured.
func (c GeocodingConfig) Enabled() bool { return c.APIKey != "" }

// NearbyConfig holds proximity query settings.
type NearbyConfig struct {
	CacheTTL        time.Duration `yaml:"cache_ttl"         env:"NEARBY_CACHE_TTL"         env-default:"10m"`
	CacheSize       int           `yaml:"cache_size"        env:"NEARBY_CACHE_SIZE"        env-default:"512"`
	MaxResults      int           `yaml:"max_results"       env:"NEARBY_MAX_RESULTS"       env-default:"50"`
	DefaultRadiusKm float64       `yaml:"default_radius_km" env:"NEARBY_DEFAULT_RADIUS_KM" env-default:"5"`
	HourlyQuota     int           `yaml:"hourly_quota"      env:"NEARBY_HOURLY_QUOTA"      env-default:"120"`
}
