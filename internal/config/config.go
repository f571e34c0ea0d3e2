package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	Env            string
	DatabaseDSN    string
	AutoMigrate    bool
	MaxUploadBytes int64
	CORSOrigins    []string
	MetricsEnabled bool
	Storage        StorageConfig
}

// StorageConfig selects and configures the content store for recipe images.
type StorageConfig struct {
	Backend   string // "local" or "s3"
	MediaRoot string
	MediaURL  string

	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string
	S3UsePathStyle bool
}

func Load() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		Env:            getEnv("ENV", "development"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/recipes?parseTime=true"),
		AutoMigrate:    getBool("AUTO_MIGRATE", true),
		MaxUploadBytes: getInt64("MAX_UPLOAD_BYTES", 10<<20),
		CORSOrigins:    getList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled: getBool("METRICS_ENABLED", true),
		Storage: StorageConfig{
			Backend:        getEnv("STORAGE_BACKEND", "local"),
			MediaRoot:      getEnv("MEDIA_ROOT", "./media"),
			MediaURL:       getEnv("MEDIA_URL", "/media/"),
			S3Bucket:       os.Getenv("S3_BUCKET"),
			S3Region:       getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:     os.Getenv("S3_ENDPOINT"),
			S3AccessKey:    os.Getenv("S3_ACCESS_KEY"),
			S3SecretKey:    os.Getenv("S3_SECRET_KEY"),
			S3PublicURL:    os.Getenv("S3_PUBLIC_URL"),
			S3UsePathStyle: getBool("S3_USE_PATH_STYLE", false),
		},
	}

	if cfg.Storage.Backend == "s3" && cfg.Storage.S3Bucket == "" {
		slog.Error("S3_BUCKET must be set when STORAGE_BACKEND=s3")
		os.Exit(1)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("ignoring invalid boolean env var", "key", key, "value", v)
		return fallback
	}
	return b
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		slog.Warn("ignoring invalid integer env var", "key", key, "value", v)
		return fallback
	}
	return n
}

func getList(key string, fallback []string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
