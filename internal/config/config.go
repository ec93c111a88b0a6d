package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env                string
	HTTPAddr           string
	DatabaseURL        string
	JWTSecret          string
	MaxBodyBytes       int64
	RabbitMQURL        string
	RabbitMQWorkerMode string
	CorsAllowedOrigins []string

	ReportsDir     string
	ReportFormat   string
	ReportFont     string
	ReportQLEN     int64
	ReportWindow   string
	ZonePolicy     string
	RenderTimeout  time.Duration
	RenderRetries  int64
	RegistryTTL    time.Duration
	RegistryMaxLen int64

	ObjectStoreEndpoint        string
	ObjectStoreRegion          string
	ObjectStoreAccessKeyID     string
	ObjectStoreSecretAccessKey string
	ObjectStoreBucket          string
	ObjectStorePublicBaseURL   string
	ObjectStoreStorageClass    string
	ObjectStorePrefix          string
}

func Load() Config {
	cfg := Config{
		Env:                getEnv("APP_ENV", "development"),
		HTTPAddr:           getEnv("HTTP_ADDR", ":8086"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MaxBodyBytes:       getEnvInt64("MAX_BODY_SIZE", 16*1024*1024),
		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQWorkerMode: getEnv("RABBITMQ_WORKER_MODE", "daemon"),
		CorsAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),

		ReportsDir:     getEnv("REPORTS_DIR", "reports"),
		ReportFormat:   getEnv("REPORT_FORMAT", "png"),
		ReportFont:     getEnv("REPORT_FONT", ""),
		ReportQLEN:     getEnvInt64("REPORT_QLEN", 600),
		ReportWindow:   getEnv("REPORT_WINDOW", "rolling"),
		ZonePolicy:     getEnv("ZONE_POLICY", "skip"),
		RenderTimeout:  getEnvDuration("RENDER_TIMEOUT", 20*time.Second),
		RenderRetries:  getEnvInt64("RENDER_RETRIES", 1),
		RegistryTTL:    getEnvDuration("REPORT_REGISTRY_TTL", 5*time.Minute),
		RegistryMaxLen: getEnvInt64("REPORT_REGISTRY_MAX_ENTRIES", 1000),

		// Object store (Cloudflare R2 / S3-compatible)
		ObjectStoreEndpoint:        getEnvFirst([]string{"OBJECT_STORE_ENDPOINT", "R2_S3_ENDPOINT"}, ""),
		ObjectStoreRegion:          getEnvFirst([]string{"OBJECT_STORE_REGION", "R2_REGION"}, "auto"),
		ObjectStoreAccessKeyID:     getEnvFirst([]string{"OBJECT_STORE_ACCESS_KEY_ID", "R2_ACCESS_KEY_ID"}, ""),
		ObjectStoreSecretAccessKey: getEnvFirst([]string{"OBJECT_STORE_SECRET_ACCESS_KEY", "R2_SECRET_ACCESS_KEY"}, ""),
		ObjectStoreBucket:          getEnvFirst([]string{"OBJECT_STORE_BUCKET", "R2_BUCKET"}, ""),
		ObjectStorePublicBaseURL:   getEnvFirst([]string{"OBJECT_STORE_PUBLIC_BASE_URL", "R2_PUBLIC_BASE_URL"}, ""),
		ObjectStoreStorageClass:    getEnvFirst([]string{"OBJECT_STORE_STORAGE_CLASS", "R2_STORAGE_CLASS"}, "STANDARD"),
		ObjectStorePrefix:          getEnv("OBJECT_STORE_PREFIX", "wolt/reports"),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 16 * 1024 * 1024
	}
	if cfg.ReportQLEN <= 0 {
		cfg.ReportQLEN = 600
	}
	if cfg.RenderRetries < 0 {
		cfg.RenderRetries = 0
	}

	// Back-compat: allow R2_ACCOUNT_ID -> endpoint
	if strings.TrimSpace(cfg.ObjectStoreEndpoint) == "" {
		accountID := strings.TrimSpace(os.Getenv("R2_ACCOUNT_ID"))
		if accountID != "" {
			cfg.ObjectStoreEndpoint = "https://" + accountID + ".r2.cloudflarestorage.com"
		}
	}

	return cfg
}

// UseObjectStore reports whether artifacts go to the S3-compatible store
// instead of REPORTS_DIR.
func (c Config) UseObjectStore() bool {
	return c.ObjectStoreEndpoint != "" && c.ObjectStoreBucket != ""
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getEnvFirst(keys []string, fallback string) string {
	for _, k := range keys {
		value := strings.TrimSpace(os.Getenv(k))
		if value != "" {
			return value
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
