package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        int
	DatabaseURL string
	LogLevel    string
	APIKey      string

	MyGPTURL     string
	MyGPTKey     string
	MyGPTTimeout time.Duration

	NatsURL   string
	NatsToken string

	ClassifyInterval  time.Duration
	SummarizeInterval time.Duration
	ClassifyBatch     int
}

func Load() Config {
	return Config{
		Port:        envInt("MSGMON_PORT", 8000),
		DatabaseURL: envStr("DATABASE_URL", ""),
		LogLevel:    envStr("LOG_LEVEL", "info"),
		APIKey:      envStr("API_KEY", "dev-api-key"),

		MyGPTURL:     envStr("MYGPT_API_URL", ""),
		MyGPTKey:     envStr("MYGPT_API_KEY", ""),
		MyGPTTimeout: envDuration("MYGPT_TIMEOUT", 30*time.Second),

		NatsURL:   envStr("NATS_URL", ""),
		NatsToken: envStr("NATS_TOKEN", ""),

		ClassifyInterval:  envDuration("CLASSIFY_INTERVAL", 30*time.Second),
		SummarizeInterval: envDuration("SUMMARIZE_INTERVAL", 60*time.Second),
		ClassifyBatch:     envInt("CLASSIFY_BATCH", 50),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
