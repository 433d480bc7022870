package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/complysense/complysense/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Postgres   PostgresConfig
	S3         S3Config
	Cache      CacheConfig
	Sentry     SentryConfig
	Pyroscope  PyroscopeConfig
	Kafka      KafkaConfig
	PubSub     PubSubConfig    `mapstructure:"pubsub"`
	Analysis   AnalysisConfig  `validate:"required"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address        string   `validate:"required"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type PostgresConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	Host                   string `mapstructure:"host"`
	Port                   int    `mapstructure:"port"`
	User                   string `mapstructure:"user"`
	Password               string `mapstructure:"password"`
	DBName                 string `mapstructure:"dbname"`
	SSLMode                string `mapstructure:"sslmode"`
	MaxOpenConns           int    `mapstructure:"max_open_conns"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes"`
}

type S3Config struct {
	Enabled               bool   `mapstructure:"enabled"`
	Region                string `mapstructure:"region"`
	Bucket                string `mapstructure:"bucket"`
	KeyPrefix             string `mapstructure:"key_prefix"`
	PresignExpiryDuration string `mapstructure:"presign_expiry_duration"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_password"`
	SampleRate      uint32   `mapstructure:"sample_rate"`
	DisableGCRuns   bool     `mapstructure:"disable_gc_runs"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

type KafkaConfig struct {
	Brokers       []string `mapstructure:"brokers"`
	ClientID      string   `mapstructure:"client_id"`
	ConsumerGroup string   `mapstructure:"consumer_group"`
	TLS           bool     `mapstructure:"tls"`
	UseSASL       bool     `mapstructure:"use_sasl"`
	SASLMechanism string   `mapstructure:"sasl_mechanism"`
	SASLUser      string   `mapstructure:"sasl_user"`
	SASLPassword  string   `mapstructure:"sasl_password"`
}

type PubSubConfig struct {
	Backend     types.PubSubBackend `mapstructure:"backend"`
	ReportTopic string              `mapstructure:"report_topic"`
	Consumer    ConsumerConfig      `mapstructure:"consumer"`
}

// ConsumerConfig drives the in-process router that consumes report events
type ConsumerConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxRetries      int           `mapstructure:"max_retries"`
	InitialInterval time.Duration `mapstructure:"initial_interval"`
	MaxInterval     time.Duration `mapstructure:"max_interval"`
	Multiplier      float64       `mapstructure:"multiplier"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time"`
}

// AnalysisConfig bounds the work done per analysis request
type AnalysisConfig struct {
	MaxInvoices    int   `mapstructure:"max_invoices" validate:"gt=0"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type RateLimitConfig struct {
	Enabled           bool                   `mapstructure:"enabled"`
	Backend           types.RateLimitBackend `mapstructure:"backend"`
	RequestsPerSecond float64                `mapstructure:"requests_per_second"`
	Burst             int                    `mapstructure:"burst"`
	Redis             RedisConfig            `mapstructure:"redis"`
}

// RedisConfig is used when rate limit buckets are shared across instances
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

func NewConfig() (*Configuration, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/complysense")

	v.SetEnvPrefix("COMPLYSENSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("postgres.sslmode", "disable")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.max_open_conns", 10)
	v.SetDefault("postgres.max_idle_conns", 5)
	v.SetDefault("postgres.conn_max_lifetime_minutes", 60)
	v.SetDefault("s3.presign_expiry_duration", "30m")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("pubsub.backend", types.PubSubBackendMemory)
	v.SetDefault("pubsub.report_topic", "report.generated")
	v.SetDefault("pubsub.consumer.enabled", true)
	v.SetDefault("pubsub.consumer.max_retries", 3)
	v.SetDefault("pubsub.consumer.initial_interval", time.Second)
	v.SetDefault("pubsub.consumer.max_interval", 10*time.Second)
	v.SetDefault("pubsub.consumer.multiplier", 2.0)
	v.SetDefault("pubsub.consumer.max_elapsed_time", 2*time.Minute)
	v.SetDefault("analysis.max_invoices", 200)
	v.SetDefault("analysis.max_upload_bytes", 10<<20)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("rate_limit.backend", types.RateLimitBackendMemory)
	v.SetDefault("rate_limit.redis.addr", "localhost:6379")
	v.SetDefault("rate_limit.redis.key_prefix", "complysense:rate_limit")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	return validate.Struct(c)
}

// GetDefaultConfig returns a default configuration for local development and tests
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080", AllowedOrigins: []string{"*"}},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Cache:      CacheConfig{Enabled: true},
		PubSub: PubSubConfig{
			Backend:     types.PubSubBackendMemory,
			ReportTopic: "report.generated",
			Consumer: ConsumerConfig{
				Enabled:         true,
				MaxRetries:      3,
				InitialInterval: time.Second,
				MaxInterval:     10 * time.Second,
				Multiplier:      2,
				MaxElapsedTime:  2 * time.Minute,
			},
		},
		Analysis: AnalysisConfig{
			MaxInvoices:    200,
			MaxUploadBytes: 10 << 20,
		},
	}
}

func (c PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"user=%s password=%s dbname=%s host=%s port=%d sslmode=%s",
		c.User,
		c.Password,
		c.DBName,
		c.Host,
		c.Port,
		c.SSLMode,
	)
}
