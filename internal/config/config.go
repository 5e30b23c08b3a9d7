package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/chupakbra/userboard/internal/store"
)

const configFileName = ".userboard.yaml"

// DefaultTimeout bounds a single request to the users endpoint.
const DefaultTimeout = 10 * time.Second

// EndpointConfig holds configuration for a single users endpoint.
type EndpointConfig struct {
	URL       string        `yaml:"url"`
	VerifyTLS bool          `yaml:"verify-tls,omitempty"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
}

// Config is the top-level configuration structure.
type Config struct {
	CurrentEndpoint string                    `yaml:"current-endpoint,omitempty"`
	Endpoints       map[string]EndpointConfig `yaml:"endpoints,omitempty"`
	StateBackend    string                    `yaml:"state-backend,omitempty"`
	StatePath       string                    `yaml:"state-path,omitempty"`
	RowsPerPage     int                       `yaml:"rows-per-page,omitempty"`
	Locale          string                    `yaml:"locale,omitempty"`
	LogFile         string                    `yaml:"log-file,omitempty"`
}

// Overrides carries values that take precedence over the config file. It is
// filled from the environment by ParseEnv and from command-line flags.
type Overrides struct {
	APIURL       string        `env:"USERBOARD_API_URL"`
	Endpoint     string        `env:"USERBOARD_ENDPOINT"`
	StateBackend string        `env:"USERBOARD_STATE_BACKEND"`
	StatePath    string        `env:"USERBOARD_STATE_PATH"`
	RowsPerPage  int           `env:"USERBOARD_ROWS_PER_PAGE"`
	Locale       string        `env:"USERBOARD_LOCALE"`
	LogFile      string        `env:"USERBOARD_LOG_FILE"`
	Timeout      time.Duration `env:"USERBOARD_TIMEOUT"`
}

// Settings is the effective configuration for one run.
type Settings struct {
	EndpointName string
	Endpoint     EndpointConfig
	StateBackend string
	StatePath    string
	RowsPerPage  int
	Locale       string
	LogFile      string
}

// Path returns the path to the config file.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, configFileName)
}

// Load reads the config file and returns a Config.
func Load() (*Config, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Endpoints: map[string]EndpointConfig{}}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Endpoints == nil {
		cfg.Endpoints = map[string]EndpointConfig{}
	}
	return &cfg, nil
}

// Save writes the config to disk.
func Save(cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(Path(), data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ParseEnv loads overrides from USERBOARD_* environment variables.
func ParseEnv() (Overrides, error) {
	var o Overrides
	if err := env.Parse(&o); err != nil {
		return Overrides{}, fmt.Errorf("parse env: %w", err)
	}
	return o, nil
}

// Merge returns o with every zero field filled from fallback.
func (o Overrides) Merge(fallback Overrides) Overrides {
	pick := func(a, b string) string {
		if strings.TrimSpace(a) != "" {
			return a
		}
		return b
	}
	out := Overrides{
		APIURL:       pick(o.APIURL, fallback.APIURL),
		Endpoint:     pick(o.Endpoint, fallback.Endpoint),
		StateBackend: pick(o.StateBackend, fallback.StateBackend),
		StatePath:    pick(o.StatePath, fallback.StatePath),
		Locale:       pick(o.Locale, fallback.Locale),
		LogFile:      pick(o.LogFile, fallback.LogFile),
		RowsPerPage:  o.RowsPerPage,
		Timeout:      o.Timeout,
	}
	if out.RowsPerPage == 0 {
		out.RowsPerPage = fallback.RowsPerPage
	}
	if out.Timeout == 0 {
		out.Timeout = fallback.Timeout
	}
	// A URL and a profile name are alternatives; the stronger layer's choice
	// wins as a whole.
	if o.APIURL != "" || o.Endpoint != "" {
		out.APIURL, out.Endpoint = o.APIURL, o.Endpoint
	}
	return out
}

// ResolveEndpoint returns the endpoint to use based on priority:
// 1. an explicit URL (from --api-url or USERBOARD_API_URL)
// 2. named endpoint (from --endpoint or USERBOARD_ENDPOINT)
// 3. current-endpoint in config
func (c *Config) ResolveEndpoint(o Overrides) (*EndpointConfig, string, error) {
	if o.APIURL != "" {
		return &EndpointConfig{URL: o.APIURL, VerifyTLS: true}, "", nil
	}
	name := o.Endpoint
	if name == "" {
		name = c.CurrentEndpoint
	}
	if name == "" {
		return nil, "", fmt.Errorf("no endpoint selected: run 'userboard endpoint use <name>' or set USERBOARD_API_URL")
	}
	ep, ok := c.Endpoints[name]
	if !ok {
		return nil, "", fmt.Errorf("endpoint %q not found in config", name)
	}
	return &ep, name, nil
}

// Resolve layers o over the file configuration and fills defaults. The
// endpoint is optional here: commands that only read local state can run
// without one, and EndpointName/Endpoint.URL are left empty.
func (c *Config) Resolve(o Overrides) (Settings, error) {
	s := Settings{
		StateBackend: firstNonEmpty(o.StateBackend, c.StateBackend),
		StatePath:    firstNonEmpty(o.StatePath, c.StatePath),
		Locale:       firstNonEmpty(o.Locale, c.Locale),
		LogFile:      firstNonEmpty(o.LogFile, c.LogFile),
		RowsPerPage:  o.RowsPerPage,
	}
	if s.RowsPerPage == 0 {
		s.RowsPerPage = c.RowsPerPage
	}
	if s.RowsPerPage == 0 {
		s.RowsPerPage = store.DefaultRowsPerPage
	}
	if !store.ValidPageSize(s.RowsPerPage) {
		return Settings{}, fmt.Errorf("rows per page must be one of %v, got %d", store.PageSizes, s.RowsPerPage)
	}

	if ep, name, err := c.ResolveEndpoint(o); err == nil {
		s.Endpoint = *ep
		s.EndpointName = name
	}
	if o.Timeout > 0 {
		s.Endpoint.Timeout = o.Timeout
	}
	if s.Endpoint.Timeout <= 0 {
		s.Endpoint.Timeout = DefaultTimeout
	}
	return s, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
