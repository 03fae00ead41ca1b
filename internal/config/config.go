package config

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

type R2Config struct {
	AccountID       string `env:"ACCOUNT_ID"`
	AccessKeyID     string `env:"ACCESS_KEY_ID"`
	SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	BucketName      string `env:"BUCKET_NAME"`
	Region          string `env:"REGION" envDefault:"auto"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	// Endpoint overrides the account endpoint, e.g. for a local MinIO.
	Endpoint string `env:"ENDPOINT"`
}

type GoogleConfig struct {
	ClientID     string `env:"CLIENT_ID"`
	ClientSecret string `env:"CLIENT_SECRET"`
	RedirectURL  string `env:"REDIRECT_URL" envDefault:"http://localhost:8080/api/v1/auth/google/callback"`
}

type Config struct {
	DB_URL      string        `env:"DB_URL,required"`
	Port        string        `env:"PORT" envDefault:"8080"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"not-so-secret-now-is-it?"`
	JWTTTL      time.Duration `env:"JWT_TTL" envDefault:"168h"`
	Environment string        `env:"ENV" envDefault:"development"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	FrontendURL string        `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	CORSOrigins []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173"`

	MaxUploadBytes    int64         `env:"MAX_UPLOAD_BYTES" envDefault:"104857600"`
	BlobTimeout       time.Duration `env:"BLOB_TIMEOUT" envDefault:"10s"`
	PresignTTL        time.Duration `env:"PRESIGN_TTL" envDefault:"15m"`
	MaxTreeDepth      int           `env:"MAX_TREE_DEPTH" envDefault:"256"`
	ReconcileInterval time.Duration `env:"RECONCILE_INTERVAL" envDefault:"15m"`

	R2     R2Config     `envPrefix:"R2_"`
	Google GoogleConfig `envPrefix:"GOOGLE_"`
}

// Load reads the optional env file and parses the process environment.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		slog.Debug("no env file loaded", "file", envFile)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

// Level maps LOG_LEVEL to a slog level, defaulting to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (c Config) CorsConfig() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}
}
