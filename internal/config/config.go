package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

type AppConfig struct {
	AppEnv   string `envconfig:"APP_ENV" default:"dev" validate:"oneof=dev prod test"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	Port     string `envconfig:"PORT" default:"3000" validate:"required,numeric"`

	IQAir IQAirConfig

	// Zone sampled by the ingestion scheduler and served by the most-polluted route.
	Zone ZoneConfig

	// IngestInterval controls how often the zone is sampled.
	IngestInterval time.Duration `envconfig:"INGEST_INTERVAL" default:"1m" validate:"gt=0"`

	Store     StoreConfig
	LiveCache LiveCacheConfig
	RateLimit RateLimitConfig

	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
}

type IQAirConfig struct {
	APIKey  string `envconfig:"IQAIR_API_KEY" validate:"required"`
	BaseURL string `envconfig:"IQAIR_BASE_URL" default:"http://api.airvisual.com/v2" validate:"required,url"`
	// HTTPTimeout bounds every outbound provider call.
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s" validate:"gt=0"`
}

type ZoneConfig struct {
	Name      string  `envconfig:"ZONE_NAME" default:"Paris" validate:"required"`
	Latitude  float64 `envconfig:"ZONE_LATITUDE" default:"48.856613" validate:"gte=-90,lte=90"`
	Longitude float64 `envconfig:"ZONE_LONGITUDE" default:"2.352222" validate:"gte=-180,lte=180"`
}

type StoreConfig struct {
	Backend         string `envconfig:"STORE_BACKEND" default:"sqlite" validate:"oneof=memory sqlite mongo"`
	SQLitePath      string `envconfig:"SQLITE_PATH" default:"data/air-quality.db"`
	MongoURI        string `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string `envconfig:"MONGODB_DATABASE" default:"air_quality"`
	MongoCollection string `envconfig:"MONGODB_COLLECTION" default:"airqualities"`
}

type LiveCacheConfig struct {
	Backend          string        `envconfig:"LIVE_CACHE_BACKEND" default:"none" validate:"oneof=none in_memory memcached"`
	TTL              time.Duration `envconfig:"LIVE_CACHE_TTL" default:"0s" validate:"gte=0"`
	MemcachedAddrs   string        `envconfig:"MEMCACHED_ADDRS" default:"localhost:11211"`
	MemcachedTimeout time.Duration `envconfig:"MEMCACHED_TIMEOUT" default:"500ms"`
}

type RateLimitConfig struct {
	// RPS <= 0 disables rate limiting.
	RPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst int     `envconfig:"RATE_LIMIT_BURST" default:"40" validate:"gte=0"`
}

// DefaultZone returns the configured zone as a domain value.
func (c *AppConfig) DefaultZone() airquality.Zone {
	return airquality.Zone{
		Name:      c.Zone.Name,
		Latitude:  c.Zone.Latitude,
		Longitude: c.Zone.Longitude,
	}
}

// Load reads configuration from the environment (and a .env file, if any),
// applies defaults and validates the result.
func Load() (*AppConfig, error) {
	// A missing .env file is fine; real environment variables take precedence.
	_ = godotenv.Load()

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing environment configuration: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *AppConfig) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	if cfg.LiveCache.Backend != "none" && cfg.LiveCache.TTL <= 0 {
		return fmt.Errorf("LIVE_CACHE_TTL must be > 0 when LIVE_CACHE_BACKEND is %q", cfg.LiveCache.Backend)
	}
	if cfg.Store.Backend == "sqlite" && cfg.Store.SQLitePath == "" {
		return fmt.Errorf("SQLITE_PATH is required when STORE_BACKEND is sqlite")
	}
	if cfg.Store.Backend == "mongo" && cfg.Store.MongoURI == "" {
		return fmt.Errorf("MONGODB_URI is required when STORE_BACKEND is mongo")
	}
	return nil
}
