package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const minJWTSecretLength = 32

var (
	ErrMissingJWTSecret = errors.New("JWT_SECRET environment variable is required")
	ErrShortJWTSecret   = fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength)
)

type Config struct {
	Port     int
	LogLevel string

	// Empty DatabaseURL runs against the in-memory store.
	DatabaseURL    string
	LocalStorePath string

	KafkaBrokers []string
	KafkaTopic   string
	InstanceID   string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
	ImagesFolder    string

	JWTSecret        string
	SessionTTL       time.Duration
	AdminCredentials string
}

// Load reads an optional .env file, then the process environment.
func Load() Config {
	if os.Getenv("ENV") != "production" {
		if err := godotenv.Load(); err != nil {
			slog.Debug(".env not loaded, using process environment", "error", err)
		}
	}
	return FromEnv()
}

func FromEnv() Config {
	hostname, _ := os.Hostname()
	return Config{
		Port:     EnvIntDefault("PORT", 8080),
		LogLevel: EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL:    os.Getenv("DATABASE_URL"),
		LocalStorePath: EnvDefault("LOCAL_STORE_PATH", "storefront-local.db"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_TOPIC", "storefront-changes"),
		InstanceID:   EnvDefault("INSTANCE_ID", hostname),

		S3Bucket:        os.Getenv("S3_BUCKET"),
		S3Region:        EnvDefault("S3_REGION", "us-east-1"),
		S3Endpoint:      os.Getenv("S3_ENDPOINT"),
		S3AccessKey:     os.Getenv("S3_ACCESS_KEY_ID"),
		S3SecretKey:     os.Getenv("S3_SECRET_ACCESS_KEY"),
		S3PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
		ImagesFolder:    EnvDefault("IMAGES_FOLDER", "site-images"),

		JWTSecret:        os.Getenv("JWT_SECRET"),
		SessionTTL:       EnvDurationDefault("SESSION_TTL", 12*time.Hour),
		AdminCredentials: os.Getenv("ADMIN_CREDENTIALS"),
	}
}

// Validate reports settings the server cannot start without.
func (c Config) Validate() error {
	if c.JWTSecret == "" {
		return ErrMissingJWTSecret
	}
	if len(c.JWTSecret) < minJWTSecretLength {
		return ErrShortJWTSecret
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

func (c Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func EnvDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
