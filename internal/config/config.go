package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Drivers de almacén soportados.
const (
	DriverMongoDB  = "mongodb"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	HTTPPort       string        `yaml:"http_port"`
	LogLevel       string        `yaml:"log_level"`
	StoreDriver    string        `yaml:"store_driver"`
	MongoURI       string        `yaml:"mongodb_uri"`
	MongoDatabase  string        `yaml:"mongodb_database"`
	MongoColl      string        `yaml:"mongodb_collection"`
	SQLitePath     string        `yaml:"sqlite_path"`
	DatabaseURL    string        `yaml:"database_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	DefaultLimit   int           `yaml:"default_limit"`
	MaxLimit       int           `yaml:"max_limit"`
	BatchSize      int           `yaml:"import_batch_size"`
	UseKafka       bool          `yaml:"use_kafka"`
	KafkaBrokers   []string      `yaml:"kafka_brokers"`
	KafkaTopic     string        `yaml:"kafka_topic"`
}

// Default devuelve la configuración por defecto.
func Default() *Config {
	return &Config{
		HTTPPort:       "8080",
		LogLevel:       "info",
		StoreDriver:    DriverMongoDB,
		MongoURI:       "mongodb://localhost:27017",
		MongoDatabase:  "insightdash",
		MongoColl:      "datas",
		SQLitePath:     "./insightdash.db",
		RequestTimeout: 5 * time.Second,
		DefaultLimit:   10,
		MaxLimit:       100,
		BatchSize:      500,
		KafkaBrokers:   []string{"localhost:9092"},
		KafkaTopic:     "insight-events",
	}
}

// Load aplica, por este orden: valores por defecto, el fichero YAML (si 'path'
// no está vacío) y las variables de entorno.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}

	var errs []error
	getInt := func(key string, fallback int) int {
		v := os.Getenv(key)
		if v == "" {
			return fallback
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			return fallback
		}
		return n
	}

	c.HTTPPort = getEnv("HTTP_PORT", c.HTTPPort)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.StoreDriver = getEnv("STORE_DRIVER", c.StoreDriver)
	c.MongoURI = getEnv("MONGODB_URI", c.MongoURI)
	c.MongoDatabase = getEnv("MONGODB_DATABASE", c.MongoDatabase)
	c.MongoColl = getEnv("MONGODB_COLLECTION", c.MongoColl)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.DefaultLimit = getInt("DEFAULT_LIMIT", c.DefaultLimit)
	c.MaxLimit = getInt("MAX_LIMIT", c.MaxLimit)
	c.BatchSize = getInt("IMPORT_BATCH_SIZE", c.BatchSize)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)

	if v := os.Getenv("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT: %w", err))
		} else {
			c.RequestTimeout = d
		}
	}
	if v := os.Getenv("USE_KAFKA"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("USE_KAFKA: %w", err))
		} else {
			c.UseKafka = b
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.KafkaBrokers = strings.Split(v, ",")
	}

	return errors.Join(errs...)
}

// Validate comprueba la coherencia de la configuración final.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongoDB, DriverSQLite, DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	if c.StoreDriver == DriverPostgres && c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for the postgres driver")
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("default limit must be >= 1, got %d", c.DefaultLimit)
	}
	if c.MaxLimit < c.DefaultLimit {
		return fmt.Errorf("max limit %d is below the default limit %d", c.MaxLimit, c.DefaultLimit)
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("import batch size must be >= 1, got %d", c.BatchSize)
	}
	return nil
}
