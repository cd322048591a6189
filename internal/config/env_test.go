// SPDX-License-Identifier: MIT

package config

import (
	"testing"
	"time"
)

func TestParseString(t *testing.T) {
	t.Setenv("OPTIONSIM_TEST_STR", "hello")
	if got := ParseString("OPTIONSIM_TEST_STR", "fallback"); got != "hello" {
		t.Errorf("got %q, want hello", got)
	}
	if got := ParseString("OPTIONSIM_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("got %q, want fallback", got)
	}
	t.Setenv("OPTIONSIM_TEST_EMPTY", "")
	if got := ParseString("OPTIONSIM_TEST_EMPTY", "fallback"); got != "fallback" {
		t.Errorf("empty env: got %q, want fallback", got)
	}
}

func TestParseInt(t *testing.T) {
	t.Setenv("OPTIONSIM_TEST_INT", "42")
	if got := ParseInt("OPTIONSIM_TEST_INT", 7); got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	t.Setenv("OPTIONSIM_TEST_BAD", "notanumber")
	if got := ParseInt("OPTIONSIM_TEST_BAD", 7); got != 7 {
		t.Errorf("invalid value: got %d, want default 7", got)
	}
	if got := ParseInt("OPTIONSIM_TEST_UNSET", 7); got != 7 {
		t.Errorf("unset: got %d, want 7", got)
	}
}

func TestParseFloat(t *testing.T) {
	t.Setenv("OPTIONSIM_TEST_FLOAT", "0.25")
	if got := ParseFloat("OPTIONSIM_TEST_FLOAT", 1.0); got != 0.25 {
		t.Errorf("got %v, want 0.25", got)
	}
	t.Setenv("OPTIONSIM_TEST_BADFLOAT", "lots")
	if got := ParseFloat("OPTIONSIM_TEST_BADFLOAT", 1.0); got != 1.0 {
		t.Errorf("invalid value: got %v, want default 1.0", got)
	}
	if got := ParseFloat("OPTIONSIM_TEST_UNSET", 0.5); got != 0.5 {
		t.Errorf("unset: got %v, want 0.5", got)
	}
}

func TestParseDuration(t *testing.T) {
	t.Setenv("OPTIONSIM_TEST_DUR", "90s")
	if got := ParseDuration("OPTIONSIM_TEST_DUR", time.Minute); got != 90*time.Second {
		t.Errorf("got %v, want 90s", got)
	}
	// Bare numbers are seconds, matching the TTL convention.
	t.Setenv("OPTIONSIM_TEST_SECS", "1800")
	if got := ParseDuration("OPTIONSIM_TEST_SECS", time.Minute); got != 1800*time.Second {
		t.Errorf("got %v, want 1800s", got)
	}
	t.Setenv("OPTIONSIM_TEST_BADDUR", "soon")
	if got := ParseDuration("OPTIONSIM_TEST_BADDUR", time.Minute); got != time.Minute {
		t.Errorf("invalid value: got %v, want default", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Listen != "0.0.0.0:7070" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.SessionPrefix != "session:" {
		t.Errorf("prefix = %q", cfg.SessionPrefix)
	}
	if cfg.SessionTTL != 1800*time.Second {
		t.Errorf("ttl = %v", cfg.SessionTTL)
	}
	if cfg.Redis.Addr() != "localhost:6379" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr())
	}
	if cfg.ClickHouse.Addr() != "localhost:9000" {
		t.Errorf("clickhouse addr = %q", cfg.ClickHouse.Addr())
	}
	if cfg.Mongo.URI != "" {
		t.Errorf("mongo uri = %q, want disabled by default", cfg.Mongo.URI)
	}
	if cfg.Tracing.Exporter != "" {
		t.Errorf("trace exporter = %q, want disabled by default", cfg.Tracing.Exporter)
	}
	if cfg.Tracing.SampleRate != 1.0 {
		t.Errorf("sample rate = %v, want 1.0", cfg.Tracing.SampleRate)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("OPTIONSIM_LISTEN", "127.0.0.1:9999")
	t.Setenv("OPTIONSIM_STORE", "memory")
	t.Setenv("OPTIONSIM_SESSION_TTL", "600")
	t.Setenv("REDIS_HOST", "redis.internal")
	t.Setenv("REDIS_PORT", "6380")

	cfg := Load()
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.StoreBackend != "memory" {
		t.Errorf("store = %q", cfg.StoreBackend)
	}
	if cfg.SessionTTL != 600*time.Second {
		t.Errorf("ttl = %v", cfg.SessionTTL)
	}
	if cfg.Redis.Addr() != "redis.internal:6380" {
		t.Errorf("redis addr = %q", cfg.Redis.Addr())
	}
}
