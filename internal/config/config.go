// SPDX-License-Identifier: MIT

// Package config loads the service configuration from environment
// variables. Every option has a default so the daemon starts without
// any configuration at all.
package config

import (
	"fmt"
	"time"
)

// Redis holds the connection settings for the replicated session store.
type Redis struct {
	Host     string
	Port     int
	Username string
	Password string
	DB       int
}

// Addr returns the host:port pair for the Redis client.
func (r Redis) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// ClickHouse holds the connection settings for the historical loader.
type ClickHouse struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

// Addr returns the host:port pair for the ClickHouse client.
func (c ClickHouse) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Mongo holds the settings for the optional step/event archive.
// An empty URI disables archiving.
type Mongo struct {
	URI              string
	Database         string
	StepsCollection  string
	EventsCollection string
	Timeout          time.Duration
}

// Tracing holds the OTLP span export settings. An empty exporter
// disables export; trace headers still propagate.
type Tracing struct {
	Exporter   string // "grpc", "http", or "" (disabled)
	Endpoint   string
	SampleRate float64
}

// Config is the immutable service configuration.
type Config struct {
	Listen        string
	LogLevel      string
	StoreBackend  string // "redis" or "memory"
	SessionPrefix string
	SessionTTL    time.Duration
	RateLimit     int // requests per minute per client IP
	Redis         Redis
	ClickHouse    ClickHouse
	Mongo         Mongo
	Tracing       Tracing
}

// Load reads the full configuration from the environment.
func Load() Config {
	return Config{
		Listen:        ParseString("OPTIONSIM_LISTEN", "0.0.0.0:7070"),
		LogLevel:      ParseString("LOG_LEVEL", "info"),
		StoreBackend:  ParseString("OPTIONSIM_STORE", "redis"),
		SessionPrefix: ParseString("OPTIONSIM_SESSION_PREFIX", "session:"),
		SessionTTL:    ParseDuration("OPTIONSIM_SESSION_TTL", 1800*time.Second),
		RateLimit:     ParseInt("OPTIONSIM_RATE_LIMIT", 100),
		Redis: Redis{
			Host:     ParseString("REDIS_HOST", "localhost"),
			Port:     ParseInt("REDIS_PORT", 6379),
			Username: ParseString("REDIS_USER", ""),
			Password: ParseString("REDIS_PASSWORD", ""),
			DB:       ParseInt("REDIS_DB", 0),
		},
		ClickHouse: ClickHouse{
			Host:     ParseString("CLICKHOUSE_HOST", "localhost"),
			Port:     ParseInt("CLICKHOUSE_PORT", 9000),
			Username: ParseString("CLICKHOUSE_USER", "default"),
			Password: ParseString("CLICKHOUSE_PASSWORD", ""),
			Database: ParseString("CLICKHOUSE_DB", "default"),
		},
		Mongo: Mongo{
			URI:              ParseString("MONGODB_URI", ""),
			Database:         ParseString("MONGODB_DATABASE", "optionsim"),
			StepsCollection:  ParseString("MONGODB_STEPS_COLLECTION", "steps"),
			EventsCollection: ParseString("MONGODB_EVENTS_COLLECTION", "events"),
			Timeout:          ParseDuration("MONGODB_TIMEOUT", 5*time.Second),
		},
		Tracing: Tracing{
			Exporter:   ParseString("OTEL_EXPORTER", ""),
			Endpoint:   ParseString("OTEL_ENDPOINT", "localhost:4317"),
			SampleRate: ParseFloat("OTEL_SAMPLE_RATE", 1.0),
		},
	}
}
