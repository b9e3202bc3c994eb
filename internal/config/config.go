package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		URL           string
		MaxOpenConns  int
		MaxIdleConns  int
		BusyTimeoutMS int
	}
	Log struct {
		Level string
	}
	GraphQL struct {
		MaxDepth       int
		MaxParallelism int
	}
	Backup struct {
		Bucket    string
		KeyPrefix string
		Interval  time.Duration
		Keep      int
		DataDir   string
	}
	Storage struct {
		Region   string
		Endpoint string
	}
	AWS struct {
		Profile string
	}
}

// Load reads configuration from environment variables and optional config files.
// DATABASE_URL is honoured without the BOARD_ prefix.
func Load() (Config, error) {
	// .env never overrides variables already present in the environment
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("BOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("database.url", "data/board.db")
	v.SetDefault("database.maxopenconns", 4)
	v.SetDefault("database.maxidleconns", 4)
	v.SetDefault("database.busytimeoutms", 5000)
	v.SetDefault("log.level", "info")
	v.SetDefault("graphql.maxdepth", 12)
	v.SetDefault("graphql.maxparallelism", 10)
	v.SetDefault("backup.bucket", "")
	v.SetDefault("backup.keyprefix", "message-board/snapshots")
	v.SetDefault("backup.interval", "6h")
	v.SetDefault("backup.keep", 10)
	v.SetDefault("backup.datadir", "data/snapshots")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("aws.profile", "")

	if err := v.BindEnv("database.url", "BOARD_DATABASE_URL", "DATABASE_URL"); err != nil {
		return Config{}, fmt.Errorf("bind database url: %w", err)
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if dir := os.Getenv("BOARD_CONFIG_DIR"); dir != "" {
		v.AddConfigPath(dir)
	}
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.Database.URL) == "" {
		return Config{}, fmt.Errorf("database url is required")
	}
	if cfg.Backup.Bucket != "" && cfg.Backup.Interval <= 0 {
		return Config{}, fmt.Errorf("backup interval must be positive")
	}

	return cfg, nil
}

// BackupEnabled reports whether snapshots should be shipped to object storage.
func (c Config) BackupEnabled() bool {
	return strings.TrimSpace(c.Backup.Bucket) != ""
}
