package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Kafka    KafkaConfig
	AWS      AWSConfig
	OpenAI   OpenAIConfig
	Advisory AdvisoryConfig
}

type AppConfig struct {
	Port        string
	Env         string
	LogLevel    string
	CORSOrigins string
}

type DBConfig struct {
	Host         string
	Port         string
	User         string
	Password     string
	Name         string
	MaxIdleConns int
	MaxOpenConns int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// KafkaConfig is optional; an empty broker list disables queue event publishing.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AWSConfig is optional; empty bucket/queue names disable the matching integration.
type AWSConfig struct {
	Region            string
	Endpoint          string
	ReportBucket      string
	NotificationQueue string
}

type OpenAIConfig struct {
	APIKey string
	Model  string
}

type AdvisoryConfig struct {
	Enabled  bool
	Timeout  time.Duration
	CacheTTL time.Duration
}

func (c *Config) IsDev() bool {
	return c.App.Env == "development"
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("KAFKA_TOPIC", "clinic.queue.events")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("ADVISORY_ENABLED", true)
	v.SetDefault("ADVISORY_TIMEOUT", "1500ms")
	v.SetDefault("ADVISORY_CACHE_TTL", "2m")

	// .env is optional, the environment alone is enough in containers
	_ = v.ReadInConfig()

	accessExpiry, err := time.ParseDuration(v.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 12 * time.Hour
	}

	advisoryTimeout, err := time.ParseDuration(v.GetString("ADVISORY_TIMEOUT"))
	if err != nil {
		advisoryTimeout = 1500 * time.Millisecond
	}

	advisoryCacheTTL, err := time.ParseDuration(v.GetString("ADVISORY_CACHE_TTL"))
	if err != nil {
		advisoryCacheTTL = 2 * time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			LogLevel:    v.GetString("LOG_LEVEL"),
			CORSOrigins: v.GetString("CORS_ALLOWED_ORIGINS"),
		},
		DB: DBConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			Name:         v.GetString("DB_NAME"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:       v.GetString("JWT_SECRET"),
			AccessExpiry: accessExpiry,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
			Topic:   v.GetString("KAFKA_TOPIC"),
		},
		AWS: AWSConfig{
			Region:            v.GetString("AWS_REGION"),
			Endpoint:          v.GetString("AWS_ENDPOINT"),
			ReportBucket:      v.GetString("AWS_REPORT_BUCKET"),
			NotificationQueue: v.GetString("AWS_NOTIFICATION_QUEUE"),
		},
		OpenAI: OpenAIConfig{
			APIKey: v.GetString("OPENAI_API_KEY"),
			Model:  v.GetString("OPENAI_MODEL"),
		},
		Advisory: AdvisoryConfig{
			Enabled:  v.GetBool("ADVISORY_ENABLED"),
			Timeout:  advisoryTimeout,
			CacheTTL: advisoryCacheTTL,
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
