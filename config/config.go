package config

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Addr        string `envconfig:"ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// JWTSecretKey is the base64-encoded HMAC signing secret. It is decoded
	// once at startup and never rotated at runtime.
	JWTSecretKey  string        `envconfig:"JWT_SECRET_KEY" required:"true"`
	TokenLifetime time.Duration `envconfig:"JWT_TOKEN_LIFETIME" default:"1h"`

	GoogleClientID string `envconfig:"GOOGLE_CLIENT_ID"`

	FCMProjectID          string `envconfig:"FCM_PROJECT_ID"`
	FCMServiceAccountFile string `envconfig:"FCM_SERVICE_ACCOUNT_FILE"`

	UploadBaseDir string   `envconfig:"FILE_UPLOAD_BASE_DIR" default:"uploads"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS" default:"http://localhost:4200"`
}

// Load reads configuration from environment variables into a Config struct.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SigningKey decodes the configured base64 JWT secret into raw key bytes.
func (c *Config) SigningKey() ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(c.JWTSecretKey)
	if err != nil {
		return nil, fmt.Errorf("config: decode JWT_SECRET_KEY: %w", err)
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("config: JWT_SECRET_KEY is empty")
	}
	return key, nil
}
