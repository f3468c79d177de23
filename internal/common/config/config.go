// Package config loads the blog service configuration from an optional YAML
// file overlaid by environment variables.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/AlibekovAA/blog-backend/internal/common/constants"
	commonerrors "github.com/AlibekovAA/blog-backend/internal/common/errors"
)

const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"

	UploadsDisk  = "disk"
	UploadsMinio = "minio"
)

// Config is the root configuration. Sources, highest priority first:
//  1. explicit path passed to Load;
//  2. CONFIG_PATH;
//  3. ./local.yaml;
//  4. environment only.
//
// Environment variables always overlay file values.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Uploads UploadsConfig `yaml:"uploads"`
	Log     LogConfig     `yaml:"log"`
}

type HTTPConfig struct {
	Host           string        `yaml:"host" env:"BLOG_HTTP_HOST" env-default:"0.0.0.0"`
	Port           string        `yaml:"port" env:"BLOG_HTTP_PORT" env-default:"4444"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"BLOG_REQUEST_TIMEOUT" env-default:"5s"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" env:"BLOG_MAX_BODY_BYTES" env-default:"1048576"`
	AllowedOrigins []string      `yaml:"cors_allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"720h"`
	Header    string        `yaml:"header" env:"AUTH_HEADER" env-default:"Authorization"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`
	MongoURL    string `yaml:"mongo_url" env:"MONGO_URL"`
	DatabaseURL string `yaml:"database_url" env:"DATABASE_URL"`
}

type UploadsConfig struct {
	Driver   string      `yaml:"driver" env:"UPLOADS_DRIVER" env-default:"disk"`
	Dir      string      `yaml:"dir" env:"UPLOADS_DIR" env-default:"uploads"`
	MaxBytes int64       `yaml:"max_bytes" env:"UPLOADS_MAX_BYTES" env-default:"10485760"`
	S3       MinioConfig `yaml:"s3"`
}

type MinioConfig struct {
	Endpoint string `yaml:"endpoint" env:"S3_ENDPOINT"`
	Bucket   string `yaml:"bucket" env:"S3_BUCKET" env-default:"uploads"`
	User     string `yaml:"root_user" env:"S3_ROOT_USER"`
	Password string `yaml:"root_password" env:"S3_ROOT_PASSWORD"`
	UseSSL   bool   `yaml:"use_ssl" env:"S3_USE_SSL" env-default:"false"`
}

type LogConfig struct {
	Dir   string `yaml:"dir" env:"LOG_DIR"`
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"INFO"`
}

func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

func Load(path string) (*Config, error) {
	var cfg Config

	switch {
	case path != "":
		if err := readFile(path, &cfg); err != nil {
			return nil, err
		}
	case os.Getenv("CONFIG_PATH") != "":
		if err := readFile(os.Getenv("CONFIG_PATH"), &cfg); err != nil {
			return nil, err
		}
	case fileExists("local.yaml"):
		if err := readFile("local.yaml", &cfg); err != nil {
			return nil, err
		}
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("%w: %v", commonerrors.ErrMissingRequiredEnv, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("config file %q stat failed: %w", path, err)
	}

	if err := cleanenv.ReadConfig(path, cfg); err != nil {
		return fmt.Errorf("failed to read config %q: %w", path, err)
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("failed to overlay env: %w", err)
	}

	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (c *Config) validate() error {
	if len(c.Auth.JWTSecret) < constants.JWTSecretMinLength {
		return fmt.Errorf("%w: got %d bytes", commonerrors.ErrInvalidJWTSecret, len(c.Auth.JWTSecret))
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be > 0")
	}

	if strings.TrimSpace(c.Auth.Header) == "" {
		return fmt.Errorf("auth.header must not be empty")
	}

	switch c.Storage.Driver {
	case StorageMongo:
		if c.Storage.MongoURL == "" {
			return fmt.Errorf("%w: MONGO_URL", commonerrors.ErrMissingRequiredEnv)
		}
	case StoragePostgres:
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("%w: DATABASE_URL", commonerrors.ErrMissingRequiredEnv)
		}
	default:
		return fmt.Errorf("storage.driver must be %q or %q, got %q", StorageMongo, StoragePostgres, c.Storage.Driver)
	}

	switch c.Uploads.Driver {
	case UploadsDisk:
		if c.Uploads.Dir == "" {
			return fmt.Errorf("uploads.dir must not be empty")
		}
	case UploadsMinio:
		if c.Uploads.S3.Endpoint == "" || c.Uploads.S3.Bucket == "" {
			return fmt.Errorf("%w: S3_ENDPOINT and S3_BUCKET", commonerrors.ErrMissingRequiredEnv)
		}
	default:
		return fmt.Errorf("uploads.driver must be %q or %q, got %q", UploadsDisk, UploadsMinio, c.Uploads.Driver)
	}

	if c.Uploads.MaxBytes <= 0 {
		c.Uploads.MaxBytes = constants.DefaultMaxUploadSize
	}

	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = constants.DefaultMaxRequestSize
	}

	if c.HTTP.RequestTimeout <= 0 {
		c.HTTP.RequestTimeout = constants.DefaultRequestTimeout
	}

	return nil
}
