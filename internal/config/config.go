package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Addr       string
	Profile    string
	CORSOrigin string
	// Session tokens
	TokenSecret string
	SessionTTL  time.Duration
	// Redis holds the live document
	RedisURL string
	// Postgres contribution archive, disabled when empty
	DatabaseURL   string
	MigrationsDir string
	// Git snapshot history, disabled when empty
	HistoryDir string
	// Meilisearch, disabled when URL is empty
	MeiliURL       string
	MeiliMasterKey string
	// MinIO asset offload, disabled when endpoint is empty
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

func Load() Config {
	return Config{
		Addr:          getenv("API_ADDR", ":8790"),
		Profile:       getenv("BRIGADE_PROFILE", "default"),
		CORSOrigin:    getenv("BRIGADE_CORS_ORIGIN", "*"),
		TokenSecret:   getenv("BRIGADE_TOKEN_SECRET", "brigade-dev-secret"),
		SessionTTL:    time.Duration(getenvInt("BRIGADE_SESSION_TTL_SECONDS", 43200)) * time.Second,
		RedisURL:      getenv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:   getenv("DATABASE_URL", ""),
		MigrationsDir: getenv("BRIGADE_MIGRATIONS_DIR", "./db/migrations"),
		HistoryDir:    getenv("BRIGADE_HISTORY_DIR", "./data/history"),
		// Meilisearch - empty by default, search falls back to document scan
		MeiliURL:       getenv("MEILI_URL", ""),
		MeiliMasterKey: getenv("MEILI_MASTER_KEY", ""),
		// MinIO - empty by default, photos stay inline if not configured
		MinioEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "brigade-assets"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
	}
}

func getenv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
