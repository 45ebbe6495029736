package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Data     DataConfig
	Training TrainingConfig
	Tracking TrackingConfig
	Model    ModelConfig
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
}

type DataConfig struct {
	Source        string // "local", "s3" or "postgres"
	NRows         int
	LocalPath     string `mapstructure:"local_path"`
	S3            S3Config
	GeohashPrefix string `mapstructure:"geohash_prefix"`
	// GeohashArea widens the prefix filter to the neighbouring cells.
	GeohashArea bool `mapstructure:"geohash_area"`
}

type S3Config struct {
	Bucket string
	Key    string
	Region string
}

type TrainingConfig struct {
	TestSize  float64 `mapstructure:"test_size"`
	Seed      int64
	Folds     int
	Grid      GridConfig
	Epsilon   float64
	MaxIter   int `mapstructure:"max_iter"`
	TimeZone  string
	RefitBest bool `mapstructure:"refit_best"`
}

type GridConfig struct {
	C   []float64
	Tol []float64
}

type TrackingConfig struct {
	Backend        string // "mlflow", "postgres" or "none"
	URI            string
	ExperimentName string `mapstructure:"experiment_name"`
	// RateLimit caps MLflow requests per second; 0 is unlimited.
	RateLimit float64 `mapstructure:"rate_limit"`
}

type ModelConfig struct {
	Path string
}

type ServerConfig struct {
	Addr       string
	TimeZone   string
	CacheModel bool `mapstructure:"cache_model"`
}

type DBConfig struct {
	User     string
	Password string
	DBName   string
	SSLMode  string
	Host     string
	Port     string
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// DSN returns the lib/pq connection string for the configured database.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the database as a postgres:// URL, the form golang-migrate expects.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("data.source", "local")
	v.SetDefault("data.nrows", 10000)
	v.SetDefault("data.local_path", "raw_data/train_10k.csv")
	v.SetDefault("data.s3.bucket", "wagon-public-datasets")
	v.SetDefault("data.s3.key", "taxi-fare-train.csv")
	v.SetDefault("data.s3.region", "eu-west-1")
	v.SetDefault("data.geohash_prefix", "")
	v.SetDefault("data.geohash_area", false)

	v.SetDefault("training.test_size", 0.2)
	v.SetDefault("training.seed", 42)
	v.SetDefault("training.folds", 5)
	v.SetDefault("training.grid.c", []float64{1, 10, 100})
	v.SetDefault("training.grid.tol", []float64{0.001, 0.01, 0.1})
	v.SetDefault("training.epsilon", 0.0)
	v.SetDefault("training.max_iter", 1000)
	v.SetDefault("training.timezone", "America/New_York")
	v.SetDefault("training.refit_best", false)

	v.SetDefault("tracking.backend", "mlflow")
	v.SetDefault("tracking.uri", "https://mlflow.lewagon.ai/")
	v.SetDefault("tracking.experiment_name", "[CN][SH][login]Taxi03")
	v.SetDefault("tracking.rate_limit", 0.0)

	v.SetDefault("model.path", "model.gob")

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.timezone", "America/New_York")
	v.SetDefault("server.cache_model", false)

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.dbname", "taxifare")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads config.yaml from the working directory, or path when it is set.
// A missing default file is not an error; every key has a default and can be
// overridden with a TAXIFARE_ environment variable (data.nrows -> TAXIFARE_DATA_NROWS).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("taxifare")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}
