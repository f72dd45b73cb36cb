package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("APP_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ADVISORY_TIMEOUT", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Env != "development" {
		t.Errorf("expected default env development, got %s", cfg.App.Env)
	}
	if cfg.Kafka.Topic != "clinic.queue.events" {
		t.Errorf("expected default kafka topic, got %s", cfg.Kafka.Topic)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Errorf("expected no kafka brokers, got %v", cfg.Kafka.Brokers)
	}
	if cfg.Advisory.Timeout != 1500*time.Millisecond {
		t.Errorf("expected advisory timeout 1.5s, got %v", cfg.Advisory.Timeout)
	}
	if cfg.JWT.AccessExpiry != 12*time.Hour {
		t.Errorf("expected access expiry 12h, got %v", cfg.JWT.AccessExpiry)
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("ADVISORY_TIMEOUT", "250ms")
	t.Setenv("JWT_ACCESS_EXPIRY", "30m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.App.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.App.Port)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "kafka-2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.Advisory.Timeout != 250*time.Millisecond {
		t.Errorf("expected advisory timeout 250ms, got %v", cfg.Advisory.Timeout)
	}
	if cfg.JWT.AccessExpiry != 30*time.Minute {
		t.Errorf("expected access expiry 30m, got %v", cfg.JWT.AccessExpiry)
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{App: AppConfig{Env: "development"}}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.App.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
