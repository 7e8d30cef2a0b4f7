package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig holds PostgreSQL connection settings for the shared
// rate-limit counter store. The database is optional: with no DB_HOST the
// gateway falls back to its in-process counters.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// Enabled reports whether a shared database was configured at all.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig holds object storage settings for the upload archive.
// Archiving is optional: with no endpoint configured uploads are forwarded
// without being retained.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Enabled reports whether the upload archive was configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// BackendConfig points at the Analysis Backend.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// ExtractPolicy is the authoritative file-intake policy. The 30-file and
// 15 MB figures floating around older docs are stale; 5 files of 10 MB is
// what the gateway enforces and documents.
type ExtractPolicy struct {
	MaxFiles       int
	MaxSizePerFile int64
	AcceptedTypes  []string
	RequiredField  string
}

// RateLimitConfig is the extraction endpoint's fixed-window budget.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// AppConfig is the centralized configuration struct for the gateway,
// populated from environment variables. Sensitive values are never
// hardcoded.
type AppConfig struct {
	Port      string
	Backend   BackendConfig
	Extract   ExtractPolicy
	RateLimit RateLimitConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// Real environment variables take precedence over the .env file.
func Load() *AppConfig {
	return &AppConfig{
		Port: getEnv("PORT", "8080"),
		Backend: BackendConfig{
			BaseURL: getEnv("ANALYSIS_BACKEND_URL", "http://localhost:8000/api/v1/extractor"),
			Timeout: time.Duration(getEnvInt("ANALYSIS_BACKEND_TIMEOUT_SEC", 120)) * time.Second,
		},
		Extract: ExtractPolicy{
			MaxFiles:       getEnvInt("EXTRACT_MAX_FILES", 5),
			MaxSizePerFile: getEnvInt64("EXTRACT_MAX_FILE_SIZE_BYTES", 10*1024*1024),
			AcceptedTypes:  getEnvList("EXTRACT_ACCEPTED_TYPES", []string{"application/pdf", "image/jpeg", "image/png"}),
			RequiredField:  "files",
		},
		RateLimit: RateLimitConfig{
			Limit:  getEnvInt("RATE_LIMIT_REQUESTS", 20),
			Window: time.Duration(getEnvInt("RATE_LIMIT_WINDOW_SEC", 3600)) * time.Second,
		},
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
