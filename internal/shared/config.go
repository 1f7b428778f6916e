package shared

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// Model store kinds.
const (
	StoreFile  = "file"
	StoreMySQL = "mysql"
)

type Config struct {
	AppEnv      string `koanf:"app_env"`
	LogLevel    string `koanf:"log_level"`
	HTTPAddr    string `koanf:"http_addr"`
	MetricsAddr string `koanf:"metrics_addr"`

	MySQLDSN  string `koanf:"mysql_dsn"`
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`
	RedisPass string `koanf:"redis_password"`

	ModelStore string `koanf:"model_store"`
	ModelPath  string `koanf:"model_path"`

	DatasetURL   string `koanf:"dataset_url"`
	DatasetRPS   int    `koanf:"dataset_rps"`
	CSVPath      string `koanf:"csv_path"`
	ImportWorker int    `koanf:"import_workers"`
	ImportBatch  int    `koanf:"import_batch"`

	DefaultK       int           `koanf:"default_k"`
	MaxK           int           `koanf:"max_k"`
	CacheTTL       time.Duration `koanf:"cache_ttl"`
	RateLimitRPS   float64       `koanf:"rate_limit_rps"`
	RateLimitBurst int           `koanf:"rate_limit_burst"`
}

// ConfigPathEnv overrides the YAML config location.
const ConfigPathEnv = "CONFIG_PATH"

func defaults() Config {
	return Config{
		AppEnv:         "prod",
		LogLevel:       "info",
		HTTPAddr:       ":8080",
		MetricsAddr:    "",
		MySQLDSN:       "root:root@tcp(localhost:3306)/hotelrec?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		RedisAddr:      "localhost:6379",
		ModelStore:     StoreFile,
		ModelPath:      "hotel_recommender_model.json",
		DatasetRPS:     2,
		CSVPath:        "hotel_bookings.csv",
		ImportWorker:   8,
		ImportBatch:    500,
		DefaultK:       5,
		MaxK:           50,
		CacheTTL:       15 * time.Minute,
		RateLimitRPS:   20,
		RateLimitBurst: 40,
	}
}

// Load layers built-in defaults, an optional YAML file and environment
// variables (APP_ENV, MYSQL_DSN, MODEL_PATH, ...), in that order. A .env
// file in the working directory is read first if present.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg(".env could not be read")
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path := configFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Only variables named after a known key are taken.
	envKey := func(s string) string {
		key := strings.ToLower(s)
		if !k.Exists(key) {
			return ""
		}
		return key
	}
	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var c Config
	if err := k.Unmarshal("", &c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the services cannot start with.
func (c Config) Validate() error {
	switch c.ModelStore {
	case StoreFile, StoreMySQL:
	default:
		return fmt.Errorf("model_store must be %q or %q, got %q", StoreFile, StoreMySQL, c.ModelStore)
	}
	if c.ModelStore == StoreFile && c.ModelPath == "" {
		return errors.New("model_path is required for the file model store")
	}
	if c.DefaultK < 1 || c.MaxK < c.DefaultK {
		return fmt.Errorf("need 1 <= default_k <= max_k, got %d and %d", c.DefaultK, c.MaxK)
	}
	if c.ImportWorker < 1 || c.ImportBatch < 1 {
		return fmt.Errorf("import_workers and import_batch must be positive")
	}
	return nil
}

func configFile() string {
	if p := os.Getenv(ConfigPathEnv); p != "" {
		return p
	}
	for _, p := range []string{"config.yaml", "config.yml"} {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
