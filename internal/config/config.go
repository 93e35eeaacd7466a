package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Kafka    KafkaConfig
	Redis    RedisConfig
	Stripe   StripeConfig
	Auth     AuthConfig
	Client   ClientConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
}

type KafkaConfig struct {
	Brokers  []string
	GroupID  string
	MockMode bool
}

type RedisConfig struct {
	Addr string
}

type StripeConfig struct {
	SecretKey  string
	Currency   string
	SuccessURL string
	CancelURL  string
}

type AuthConfig struct {
	JWTSecret string
}

type ClientConfig struct {
	Origin string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", ":8085"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "root"),
			Password:     getEnv("DB_PASS", "password"),
			Database:     getEnv("DB_NAME", "ticket_marketplace"),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:  getDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers:  strings.Split(getEnv("KAFKA_BROKERS", "localhost:29092"), ","),
			GroupID:  getEnv("KAFKA_GROUP_ID", "ticket-marketplace"),
			MockMode: getEnv("KAFKA_MOCK_MODE", "true") == "true",
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Stripe: StripeConfig{
			SecretKey:  os.Getenv("STRIPE_SECRET_KEY"),
			Currency:   getEnv("STRIPE_CURRENCY", "usd"),
			SuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:5173/dashboard/payment-success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:5173/dashboard/my-bookings"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", "dev-secret"),
		},
		Client: ClientConfig{
			Origin: getEnv("CLIENT_DOMAIN", "*"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
