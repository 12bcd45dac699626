package config

import (
	"os"
	"testing"
)

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_STR", "value")
	t.Setenv("TEST_INT", "123")
	t.Setenv("TEST_BOOL_TRUE", "true")
	t.Setenv("TEST_BOOL_FALSE", "false")
	t.Setenv("TEST_LIST", "http://a.test, ,http://b.test")

	if v := getEnv("TEST_STR", ""); v != "value" {
		t.Fatalf("expected value, got %s", v)
	}
	if v := getEnvAsInt("TEST_INT", 0); v != 123 {
		t.Fatalf("expected 123, got %d", v)
	}
	if !getEnvAsBool("TEST_BOOL_TRUE", false) {
		t.Fatalf("expected true")
	}
	if getEnvAsBool("TEST_BOOL_FALSE", true) {
		t.Fatalf("expected false")
	}
	list := getEnvAsList("TEST_LIST", nil)
	if len(list) != 2 || list[0] != "http://a.test" || list[1] != "http://b.test" {
		t.Fatalf("unexpected list: %v", list)
	}
	if v := getEnvAsList("TEST_LIST_ABSENT", []string{"*"}); len(v) != 1 || v[0] != "*" {
		t.Fatalf("expected default list, got %v", v)
	}
}

func TestLoadDefaults(t *testing.T) {
	// ensure no interfering env vars
	_ = os.Unsetenv("SERVER_PORT")
	_ = os.Unsetenv("VENUE_SOURCE")
	cfg := Load()
	if cfg.Server.Port == "" {
		t.Fatalf("expected default server port set")
	}
	if cfg.VenueAPI.Source != VenueSourceHTTP {
		t.Fatalf("expected http venue source by default, got %q", cfg.VenueAPI.Source)
	}
	if cfg.VenueAPI.CacheTTLSeconds == 0 || cfg.VenueAPI.BaseURL == "" {
		t.Fatalf("expected venue api defaults set")
	}
	if cfg.Kafka.Topics.Quotes == "" || cfg.Kafka.Topics.VenueUpdates == "" {
		t.Fatalf("expected kafka topics set")
	}
}

func TestLoad_VenueSourceNormalized(t *testing.T) {
	t.Setenv("VENUE_SOURCE", "Postgres")
	cfg := Load()
	if cfg.VenueAPI.Source != VenueSourcePostgres {
		t.Fatalf("expected postgres source, got %q", cfg.VenueAPI.Source)
	}
}
