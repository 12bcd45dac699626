package services

import (
	"testing"

	"delivery-pricing/internal/config"
	"delivery-pricing/internal/logger"
	"delivery-pricing/internal/redis"

	miniredis "github.com/alicebob/miniredis/v2"
)

func newTestLogger() *logger.Logger {
	return logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
}

func newTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.Connect(&config.RedisConfig{Host: "127.0.0.1", Port: mr.Port()}, newTestLogger())
	if err != nil {
		t.Fatalf("redis connect failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func floatPtr(v float64) *float64 { return &v }
