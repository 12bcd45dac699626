package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Venue sources
const (
	VenueSourceHTTP     = "http"
	VenueSourcePostgres = "postgres"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	VenueAPI  VenueAPIConfig  `json:"venue_api"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	CORS      CORSConfig      `json:"cors"`
	Admin     AdminConfig     `json:"admin"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию каталога заведений в PostgreSQL
type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Quotes       string `json:"quotes"`
	VenueUpdates string `json:"venue_updates"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// VenueAPIConfig описывает источник данных заведений
type VenueAPIConfig struct {
	Source               string `json:"source"`   // http | postgres
	BaseURL              string `json:"base_url"` // https://consumer-api.development.dev.woltapi.com
	TimeoutSeconds       int    `json:"timeout_seconds"`
	RetryMaxElapsedMs    int    `json:"retry_max_elapsed_ms"`
	RetryInitialInterval int    `json:"retry_initial_interval_ms"`
	CacheTTLSeconds      int    `json:"cache_ttl_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// CORSConfig описывает разрешённые источники для браузерного клиента
type CORSConfig struct {
	AllowedOrigins []string `json:"allowed_origins"`
}

// AdminConfig защищает служебные маршруты; пустой токен отключает их
type AdminConfig struct {
	Token string `json:"-"`
}

// Load загружает конфигурацию из .env (если есть) и переменных окружения
func Load() *Config {
	// .env необязателен, переменные окружения имеют приоритет
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8000"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "pricing_user"),
			Password: getEnv("DB_PASSWORD", "pricing_pass"),
			DBName:   getEnv("DB_NAME", "venues"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "delivery-pricing"),
			Topics: Topics{
				Quotes:       getEnv("KAFKA_TOPIC_QUOTES", "price-quotes"),
				VenueUpdates: getEnv("KAFKA_TOPIC_VENUE_UPDATES", "venue-updates"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		VenueAPI: VenueAPIConfig{
			Source:               strings.ToLower(getEnv("VENUE_SOURCE", VenueSourceHTTP)),
			BaseURL:              getEnv("HOME_ASSIGNMENT_API_BASE", "https://consumer-api.development.dev.woltapi.com"),
			TimeoutSeconds:       getEnvAsInt("VENUE_API_TIMEOUT_SECONDS", 5),
			RetryMaxElapsedMs:    getEnvAsInt("VENUE_API_RETRY_MAX_ELAPSED_MS", 3000),
			RetryInitialInterval: getEnvAsInt("VENUE_API_RETRY_INITIAL_INTERVAL_MS", 100),
			CacheTTLSeconds:      getEnvAsInt("VENUE_CACHE_TTL_SECONDS", 300),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Admin: AdminConfig{
			Token: getEnv("ADMIN_TOKEN", ""),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}

// getEnvAsList разбивает значение по запятой, пустые элементы отбрасываются
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
