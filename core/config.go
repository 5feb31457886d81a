package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderGraph  = "graph"
	ProviderGoogle = "google"
)

const (
	// DefaultEnvPrefix is stripped from environment keys; "__" separates
	// sections, so CALREMEDIATE_CREDENTIALS__CLIENT_ID is credentials.client_id.
	DefaultEnvPrefix  = "CALREMEDIATE_"
	DefaultConfigFile = "config.yaml"
	DefaultPageSize   = 100
)

var ErrUnknownProvider = errors.New("unknown calendar provider")

type Credentials struct {
	TenantID     string `koanf:"tenant_id"`
	ClientID     string `koanf:"client_id"`
	ClientSecret string `koanf:"client_secret"`
}

type GraphSettings struct {
	AuthorityURL string `koanf:"authority_url"`
	BaseURL      string `koanf:"base_url"`
}

type GoogleSettings struct {
	ServiceAccountFile    string `koanf:"service_account_file"`
	ServiceAccountJSONB64 string `koanf:"service_account_json_b64"`
}

type Config struct {
	Provider    string         `koanf:"provider"`
	LogLevel    string         `koanf:"log_level"`
	PageSize    int            `koanf:"page_size"`
	Credentials Credentials    `koanf:"credentials"`
	Graph       GraphSettings  `koanf:"graph"`
	Google      GoogleSettings `koanf:"google"`
}

func DefaultConfig() Config {
	return Config{
		Provider: ProviderGraph,
		LogLevel: "warn",
		PageSize: DefaultPageSize,
		Graph: GraphSettings{
			AuthorityURL: defaultAuthorityURL,
			BaseURL:      defaultGraphBaseURL,
		},
	}
}

// ConfigLoader layers defaults, a YAML file and the environment.
type ConfigLoader struct {
	k          *koanf.Koanf
	envPrefix  string
	filePath   string
	fileNeeded bool
	dotenv     bool
}

type ConfigOption func(*ConfigLoader)

// WithConfigFile sets the YAML file. An explicitly named file must exist;
// the default one is optional.
func WithConfigFile(path string) ConfigOption {
	return func(l *ConfigLoader) {
		l.filePath = path
		l.fileNeeded = true
	}
}

func WithEnvPrefix(prefix string) ConfigOption {
	return func(l *ConfigLoader) {
		l.envPrefix = prefix
	}
}

// WithoutDotenv skips loading .env; tests use it to stay hermetic.
func WithoutDotenv() ConfigOption {
	return func(l *ConfigLoader) {
		l.dotenv = false
	}
}

func NewConfigLoader(opts ...ConfigOption) *ConfigLoader {
	l := &ConfigLoader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		filePath:  DefaultConfigFile,
		dotenv:    true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *ConfigLoader) Load() (Config, error) {
	cfg := DefaultConfig()

	if l.dotenv {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintln(os.Stderr, "Warning: no .env file found, relying on environment vars")
		}
	}

	if l.filePath != "" {
		_, statErr := os.Stat(l.filePath)
		switch {
		case statErr == nil:
			if err := l.k.Load(file.Provider(l.filePath), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("load config file %s: %w", l.filePath, err)
			}
		case l.fileNeeded:
			return cfg, fmt.Errorf("load config file: %w", statErr)
		}
	}

	transform := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		return strings.ReplaceAll(strings.ToLower(s), "__", ".")
	}
	if err := l.k.Load(env.Provider(l.envPrefix, ".", transform), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := l.k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	return cfg, nil
}

// Validate reports every missing setting for the selected provider.
func (c Config) Validate() error {
	var errs []error
	if c.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("invalid page_size %d: must be > 0", c.PageSize))
	}

	switch c.Provider {
	case ProviderGraph:
		if c.Credentials.TenantID == "" {
			errs = append(errs, errors.New("missing credentials.tenant_id"))
		}
		if c.Credentials.ClientID == "" {
			errs = append(errs, errors.New("missing credentials.client_id"))
		}
		if c.Credentials.ClientSecret == "" {
			errs = append(errs, errors.New("missing credentials.client_secret"))
		}
	case ProviderGoogle:
		if c.Google.ServiceAccountFile == "" && c.Google.ServiceAccountJSONB64 == "" {
			errs = append(errs, errors.New("missing google.service_account_file or google.service_account_json_b64"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q (must be graph or google)", ErrUnknownProvider, c.Provider))
	}

	return errors.Join(errs...)
}
