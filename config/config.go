package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreBackendPostgres = "postgres"
	StoreBackendMemory   = "memory"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Elastic  ElasticsearchConfig
	Image    ImageConfig
}

type ServerConfig struct {
	AppEnv       string
	HTTPPort     string
	GRPCPort     string
	TimeZone     string
	StoreBackend string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type PostgresConfig struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
}

// RedisConfig backs the duplicate-submission guard. An empty Addr keeps the guard in
// process memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig is optional; no brokers means events are dropped and no delivery feed is read.
type KafkaConfig struct {
	Brokers       []string
	EventsTopic   string
	DeliveryTopic string
	GroupID       string
}

func (c KafkaConfig) Enabled() bool {
	return len(c.Brokers) > 0
}

// ElasticsearchConfig is optional; without addresses product search reads the store.
type ElasticsearchConfig struct {
	Addresses []string
	Username  string
	Password  string
}

type ImageConfig struct {
	UploadURL    string
	UploadPreset string
	Timeout      int
}

func LoadEnv() *Config {
	_ = godotenv.Load() // Load .env file if it exists

	return &Config{
		Server: ServerConfig{
			AppEnv:       getEnv("APP_ENV", "dev"),
			HTTPPort:     getEnv("HTTP_PORT", ":8080"),
			GRPCPort:     getEnv("GRPC_PORT", ":8082"),
			TimeZone:     getEnv("STORE_TIMEZONE", "America/La_Paz"),
			StoreBackend: getEnv("STORE_BACKEND", StoreBackendPostgres),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "localhost"),
			Port:            getEnv("POSTGRES_PORT", "5433"),
			User:            getEnv("POSTGRES_USER", "omnipos"),
			Password:        getEnv("POSTGRES_PASSWORD", "omnipos"),
			DBName:          getEnv("POSTGRES_DB", "omnipos_store"),
			SSLMode:         getEnv("POSTGRES_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("POSTGRES_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvInt("POSTGRES_CONN_MAX_LIFETIME", 300),
			ConnMaxIdleTime: getEnvInt("POSTGRES_CONN_MAX_IDLE_TIME", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:       getEnvSlice("KAFKA_BROKERS", nil),
			EventsTopic:   getEnv("KAFKA_TOPIC_STORE_EVENTS", "store.events"),
			DeliveryTopic: getEnv("KAFKA_TOPIC_DELIVERIES", "restock.deliveries"),
			GroupID:       getEnv("KAFKA_GROUP_STORE", "omnipos-store"),
		},
		Elastic: ElasticsearchConfig{
			Addresses: getEnvSlice("ELASTICSEARCH_ADDRESSES", nil),
			Username:  getEnv("ELASTICSEARCH_USERNAME", ""),
			Password:  getEnv("ELASTICSEARCH_PASSWORD", ""),
		},
		Image: ImageConfig{
			UploadURL:    getEnv("IMAGE_UPLOAD_URL", ""),
			UploadPreset: getEnv("IMAGE_UPLOAD_PRESET", ""),
			Timeout:      getEnvInt("IMAGE_UPLOAD_TIMEOUT", 30),
		},
	}
}

// Location resolves the store's time zone, used for "today" and "this week".
func (c *ServerConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("STORE_TIMEZONE %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
