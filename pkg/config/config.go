package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = "CRAFTLINE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

type Config struct {
	App    AppConfig
	Remote RemoteConfig
	Media  MediaConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Remote.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"CRAFTLINE_APP_ENV" default:"dev"`
	Port         string `envconfig:"CRAFTLINE_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"CRAFTLINE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"CRAFTLINE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// RemoteConfig locates the storefront REST backend the engine talks to.
type RemoteConfig struct {
	BaseURL        string        `envconfig:"CRAFTLINE_API_BASE_URL" required:"true"`
	RequestTimeout time.Duration `envconfig:"CRAFTLINE_API_REQUEST_TIMEOUT" default:"15s"`
	UploadFolder   string        `envconfig:"CRAFTLINE_API_UPLOAD_FOLDER" default:"custom"`
}

func (r RemoteConfig) validate() error {
	parsed, err := url.Parse(r.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("api base url must be http(s), got %q", r.BaseURL)
	}
	if r.RequestTimeout <= 0 {
		return fmt.Errorf("api request timeout must be positive")
	}
	return nil
}

type MediaConfig struct {
	MaxUploadBytes int64 `envconfig:"CRAFTLINE_MEDIA_MAX_UPLOAD_BYTES" default:"20971520"`
}
