package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	JWT       JWTConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	APIPrefix      string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
}

// StorageConfig describes where uploaded product images live.
type StorageConfig struct {
	Driver         string // "local" or "s3"
	UploadDir      string
	PublicPath     string
	MaxUploadBytes int64
	S3             S3Config
}

type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	PresignTTLSec   int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type RateLimitConfig struct {
	Enabled   bool
	Requests  int
	WindowSec int
}

type JWTConfig struct {
	Secret string
}

// IsDevelopment reports whether the server runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("API_URL", "/api/v1")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("MIGRATIONS_DIR", "migrations")
	viper.SetDefault("STORAGE_DRIVER", "local")
	viper.SetDefault("STORAGE_UPLOAD_DIR", "public/uploads")
	viper.SetDefault("STORAGE_PUBLIC_PATH", "/public/uploads")
	viper.SetDefault("STORAGE_MAX_UPLOAD_BYTES", 10<<20)
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_PRESIGN_TTL_SEC", 900)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SEC", 60)

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			LogLevel:       viper.GetString("LOG_LEVEL"),
			APIPrefix:      normalizePrefix(viper.GetString("API_URL")),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("MIGRATIONS_DIR"),
		},
		Storage: StorageConfig{
			Driver:         strings.ToLower(viper.GetString("STORAGE_DRIVER")),
			UploadDir:      viper.GetString("STORAGE_UPLOAD_DIR"),
			PublicPath:     normalizePrefix(viper.GetString("STORAGE_PUBLIC_PATH")),
			MaxUploadBytes: viper.GetInt64("STORAGE_MAX_UPLOAD_BYTES"),
			S3: S3Config{
				Bucket:          viper.GetString("S3_BUCKET"),
				Region:          viper.GetString("S3_REGION"),
				Endpoint:        viper.GetString("S3_ENDPOINT"),
				AccessKeyID:     viper.GetString("S3_ACCESS_KEY_ID"),
				SecretAccessKey: viper.GetString("S3_SECRET_ACCESS_KEY"),
				PresignTTLSec:   viper.GetInt("S3_PRESIGN_TTL_SEC"),
			},
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Enabled:   viper.GetBool("RATE_LIMIT_ENABLED"),
			Requests:  viper.GetInt("RATE_LIMIT_REQUESTS"),
			WindowSec: viper.GetInt("RATE_LIMIT_WINDOW_SEC"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
		},
	}
}

// normalizePrefix returns p with a single leading slash and no trailing slash.
func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return "/" + p
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
