package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int32  `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int32  `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

// Mirror selects where cart snapshots are persisted.
type Mirror struct {
	Driver    string `mapstructure:"driver"     json:"driver"`
	Directory string `mapstructure:"directory"  json:"directory"`
	KeyPrefix string `mapstructure:"key_prefix" json:"key_prefix"`
}

type Backend struct {
	BaseURL             string        `mapstructure:"base_url"              json:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"               json:"timeout"`
	BreakerMaxRequests  uint32        `mapstructure:"breaker_max_requests"  json:"breaker_max_requests"`
	BreakerInterval     time.Duration `mapstructure:"breaker_interval"      json:"breaker_interval"`
	BreakerTimeout      time.Duration `mapstructure:"breaker_timeout"       json:"breaker_timeout"`
	BreakerFailureRatio float64       `mapstructure:"breaker_failure_ratio" json:"breaker_failure_ratio"`
	ListCacheTTL        time.Duration `mapstructure:"list_cache_ttl"        json:"list_cache_ttl"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Mirror      `mapstructure:"mirror"      json:"mirror"`
	Backend     `mapstructure:"backend"     json:"backend"`
}

const (
	MirrorDriverFile     = "file"
	MirrorDriverRedis    = "redis"
	MirrorDriverPostgres = "postgres"
	MirrorDriverMemory   = "memory"
)

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("mirror.driver", MirrorDriverFile)
	v.SetDefault("mirror.directory", "./data/carts")
	v.SetDefault("mirror.key_prefix", "carts")
	v.SetDefault("backend.base_url", "http://localhost:2424")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.breaker_max_requests", 3)
	v.SetDefault("backend.breaker_interval", time.Minute)
	v.SetDefault("backend.breaker_timeout", 30*time.Second)
	v.SetDefault("backend.breaker_failure_ratio", 0.6)
	v.SetDefault("backend.list_cache_ttl", 30*time.Second)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
}

// Load reads ./env/<filename>.yaml, overlaid by environment variables.
func Load(filename string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.AddConfigPath("./env")
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed reading config with error=%w", err)
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed unmarshaling config with error=%w", err)
	}
	return &cfg, nil
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		logger.Info().Msg("reading config")
		cfg, err := Load(filename)
		if err != nil {
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = cfg
		logger.Info().Any(log.KeyConfig, cfg).Msg("read config")
	})
	return config
}
