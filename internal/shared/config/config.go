package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration. It is built once at startup and
// passed by value into component constructors.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	APIPrefix       string

	JWTSecret    string
	JWTAlgorithm string
	ServiceID    string

	OpenAIKey       string
	OpenAIModel     string
	OpenAIBaseURL   string
	GrokKey         string
	GrokModel       string
	GrokBaseURL     string
	ProviderTimeout time.Duration

	FileFetchTimeout time.Duration
	MaxUploadBytes   int64

	ArchiveBackend    string
	ArchiveBaseURL    string
	ArchiveAuthToken  string
	ArchiveAppID      string
	ArchiveDeviceID   string
	ArchiveBusinessID string
	ArchiveRequestID  string
	ArchiveTimeout    time.Duration
	DefaultTenant     string

	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	S3Endpoint      string
	S3PublicBaseURL string
	S3AccessKeyID   string
	S3SecretKey     string
	SSEKMSKeyID     string
	LocalStoreDir   string
	LocalPublicBase string

	RateLimitRPS   float64
	RateLimitBurst int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience; missing files are fine.
	_ = godotenv.Load(".env")
	_ = godotenv.Load("cmd/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		APIPrefix:       normalizePrefix(v.GetString("API_V1_STR")),

		JWTSecret:    strings.TrimSpace(v.GetString("API_JWT_SECRET_KEY")),
		JWTAlgorithm: strings.ToUpper(strings.TrimSpace(v.GetString("API_JWT_ALGORITHM"))),
		ServiceID:    strings.TrimSpace(v.GetString("API_SERVICE_ID")),

		OpenAIKey:       v.GetString("API_OPENAI_KEY"),
		OpenAIModel:     v.GetString("OPENAI_MODEL"),
		OpenAIBaseURL:   strings.TrimRight(v.GetString("OPENAI_BASE_URL"), "/"),
		GrokKey:         v.GetString("API_GROK_KEY"),
		GrokModel:       v.GetString("GROK_MODEL"),
		GrokBaseURL:     strings.TrimRight(v.GetString("GROK_BASE_URL"), "/"),
		ProviderTimeout: seconds(v.GetInt("PROVIDER_TIMEOUT_SECONDS")),

		FileFetchTimeout: seconds(v.GetInt("FILE_FETCH_TIMEOUT_SECONDS")),
		MaxUploadBytes:   v.GetInt64("MAX_UPLOAD_BYTES"),

		ArchiveBackend:    normalizeArchiveBackend(v.GetString("ARCHIVE_BACKEND")),
		ArchiveBaseURL:    strings.TrimRight(v.GetString("API_S3_BASE_URL"), "/"),
		ArchiveAuthToken:  v.GetString("API_S3_AUTH_TOKEN"),
		ArchiveAppID:      v.GetString("ARCHIVE_APP_ID"),
		ArchiveDeviceID:   v.GetString("ARCHIVE_DEVICE_ID"),
		ArchiveBusinessID: v.GetString("ARCHIVE_BUSINESS_ID"),
		ArchiveRequestID:  v.GetString("ARCHIVE_REQUEST_ID"),
		ArchiveTimeout:    seconds(v.GetInt("ARCHIVE_TIMEOUT_SECONDS")),
		DefaultTenant:     v.GetString("DEFAULT_TENANT"),

		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		S3PublicBaseURL: strings.TrimRight(v.GetString("S3_PUBLIC_BASE_URL"), "/"),
		S3AccessKeyID:   v.GetString("S3_ACCESS_KEY_ID"),
		S3SecretKey:     v.GetString("S3_SECRET_ACCESS_KEY"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),
		LocalStoreDir:   v.GetString("LOCAL_STORE_DIR"),
		LocalPublicBase: strings.TrimRight(v.GetString("LOCAL_PUBLIC_BASE_URL"), "/"),

		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "dev")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("API_V1_STR", "/api/v1")

	v.SetDefault("API_JWT_ALGORITHM", "HS256")

	v.SetDefault("OPENAI_MODEL", "gpt-4o-mini")
	v.SetDefault("OPENAI_BASE_URL", "https://api.openai.com/v1")
	v.SetDefault("GROK_MODEL", "grok-2-vision-latest")
	v.SetDefault("GROK_BASE_URL", "https://api.x.ai/v1")
	v.SetDefault("PROVIDER_TIMEOUT_SECONDS", 30)

	v.SetDefault("FILE_FETCH_TIMEOUT_SECONDS", 30)
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)

	v.SetDefault("ARCHIVE_BACKEND", "http")
	v.SetDefault("ARCHIVE_APP_ID", "docextract")
	v.SetDefault("ARCHIVE_DEVICE_ID", "docextract-api")
	v.SetDefault("ARCHIVE_REQUEST_ID", "docextract")
	v.SetDefault("ARCHIVE_TIMEOUT_SECONDS", 60)
	v.SetDefault("DEFAULT_TENANT", "placeorder")

	v.SetDefault("LOCAL_STORE_DIR", "./data")
	v.SetDefault("LOCAL_PUBLIC_BASE_URL", "http://localhost:8080/files")

	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 20)
}

// Validate reports configuration that cannot serve requests.
func (c Config) Validate() error {
	var errs []error
	if c.Env == "production" {
		if c.JWTSecret == "" {
			errs = append(errs, errors.New("API_JWT_SECRET_KEY is required in production"))
		}
		if c.ServiceID == "" {
			errs = append(errs, errors.New("API_SERVICE_ID is required in production"))
		}
	}
	switch c.JWTAlgorithm {
	case "HS256", "HS384", "HS512":
	default:
		errs = append(errs, errors.New("API_JWT_ALGORITHM must be one of HS256, HS384, HS512"))
	}
	if c.ArchiveBackend == "http" && c.ArchiveBaseURL == "" && c.Env == "production" {
		errs = append(errs, errors.New("API_S3_BASE_URL is required for ARCHIVE_BACKEND=http"))
	}
	if c.ArchiveBackend == "s3" && strings.TrimSpace(c.S3Bucket) == "" {
		errs = append(errs, errors.New("S3_BUCKET is required for ARCHIVE_BACKEND=s3"))
	}
	return errors.Join(errs...)
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePrefix(raw string) string {
	p := "/" + strings.Trim(strings.TrimSpace(raw), "/")
	if p == "/" {
		return ""
	}
	return p
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeArchiveBackend(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	case "local":
		return "local"
	default:
		return "http"
	}
}
