package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/teemow/tickfewer/internal/logging"
	v1 "github.com/teemow/tickfewer/internal/ticktick/v1"
	v2 "github.com/teemow/tickfewer/internal/ticktick/v2"
	"github.com/teemow/tickfewer/internal/unified"
)

// Environment variables read by ApplyEnv.
const (
	EnvConfigFile   = "TICKFEWER_CONFIG"
	EnvClientID     = "TICKTICK_CLIENT_ID"
	EnvClientSecret = "TICKTICK_CLIENT_SECRET"
	EnvRedirectURI  = "TICKTICK_REDIRECT_URI"
	EnvAccessToken  = "TICKTICK_ACCESS_TOKEN"
	EnvRefreshToken = "TICKTICK_REFRESH_TOKEN"
	EnvUsername     = "TICKTICK_USERNAME"
	EnvPassword     = "TICKTICK_PASSWORD"
	EnvDeviceID     = "TICKTICK_DEVICE_ID"
	EnvTimeout      = "TICKTICK_TIMEOUT"
	EnvV1BaseURL    = "TICKTICK_V1_BASE_URL"
	EnvV2BaseURL    = "TICKTICK_V2_BASE_URL"
	EnvRateLimit    = "TICKTICK_RATE_LIMIT"
	EnvRateBurst    = "TICKTICK_RATE_BURST"
)

// Defaults applied before any source is read.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5.0
	DefaultRateBurst = 10
)

// Duration is a time.Duration that reads "30s" style values from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := time.ParseDuration(node.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", node.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// OpenAPI configures the token-authenticated open API.
type OpenAPI struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURI  string `yaml:"redirect_uri,omitempty"`
	AccessToken  string `yaml:"access_token"`
	RefreshToken string `yaml:"refresh_token,omitempty"`
	BaseURL      string `yaml:"base_url,omitempty"`
}

// PrivateAPI configures the session-authenticated private API.
type PrivateAPI struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DeviceID string `yaml:"device_id,omitempty"`
	BaseURL  string `yaml:"base_url,omitempty"`
}

// Config is the complete upstream configuration.
type Config struct {
	V1 OpenAPI    `yaml:"v1"`
	V2 PrivateAPI `yaml:"v2"`

	Timeout   Duration `yaml:"timeout,omitempty"`
	RateLimit float64  `yaml:"rate_limit,omitempty"`
	RateBurst int      `yaml:"rate_burst,omitempty"`
}

// Default returns a Config with only the defaults set.
func Default() *Config {
	return &Config{
		Timeout:   Duration(DefaultTimeout),
		RateLimit: DefaultRateLimit,
		RateBurst: DefaultRateBurst,
	}
}

// Load builds the configuration from, in increasing precedence, the
// defaults, the YAML file at path, the .env file at envFile and the process
// environment. An empty path skips the file; a missing .env is ignored.
func Load(path, envFile string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile merges the YAML file at path into c.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides c with every variable lookup finds.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		EnvClientID:     &c.V1.ClientID,
		EnvClientSecret: &c.V1.ClientSecret,
		EnvRedirectURI:  &c.V1.RedirectURI,
		EnvAccessToken:  &c.V1.AccessToken,
		EnvRefreshToken: &c.V1.RefreshToken,
		EnvV1BaseURL:    &c.V1.BaseURL,
		EnvUsername:     &c.V2.Username,
		EnvPassword:     &c.V2.Password,
		EnvDeviceID:     &c.V2.DeviceID,
		EnvV2BaseURL:    &c.V2.BaseURL,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = strings.TrimSpace(v)
		}
	}

	if v, ok := lookup(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = Duration(d)
	}
	if v, ok := lookup(EnvRateLimit); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateLimit, err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup(EnvRateBurst); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRateBurst, err)
		}
		c.RateBurst = n
	}
	return nil
}

// parseTimeout accepts a Go duration or a plain number of seconds.
func parseTimeout(s string) (time.Duration, error) {
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate reports every missing or invalid setting in one error.
func (c *Config) Validate() error {
	var errs []error
	missing := func(value, env string) {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s is not set", env))
		}
	}
	missing(c.V1.ClientID, EnvClientID)
	missing(c.V1.ClientSecret, EnvClientSecret)
	missing(c.V1.AccessToken, EnvAccessToken)
	missing(c.V2.Username, EnvUsername)
	missing(c.V2.Password, EnvPassword)

	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", time.Duration(c.Timeout)))
	}
	if c.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("rate limit must not be negative, got %g", c.RateLimit))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("rate burst must be at least 1, got %d", c.RateBurst))
	}
	return errors.Join(errs...)
}

// HasV2Credentials reports whether the private API can be signed on to.
func (c *Config) HasV2Credentials() bool {
	return c.V2.Username != "" && c.V2.Password != ""
}

// Unified returns the settings of both upstream clients.
func (c *Config) Unified(logger logging.Logger) unified.Config {
	timeout := time.Duration(c.Timeout)
	return unified.Config{
		V1: v1.Config{
			ClientID:     c.V1.ClientID,
			ClientSecret: c.V1.ClientSecret,
			RedirectURL:  c.V1.RedirectURI,
			AccessToken:  c.V1.AccessToken,
			RefreshToken: c.V1.RefreshToken,
			BaseURL:      c.V1.BaseURL,
			Timeout:      timeout,
			RateLimit:    c.RateLimit,
			RateBurst:    c.RateBurst,
			Logger:       logger,
		},
		V2: v2.Config{
			DeviceID:  c.V2.DeviceID,
			BaseURL:   c.V2.BaseURL,
			Timeout:   timeout,
			RateLimit: c.RateLimit,
			RateBurst: c.RateBurst,
			Logger:    logger,
		},
		Username: c.V2.Username,
		Password: c.V2.Password,
	}
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	c.V1.ClientSecret = logging.SanitizeToken(c.V1.ClientSecret)
	c.V1.AccessToken = logging.SanitizeToken(c.V1.AccessToken)
	c.V1.RefreshToken = logging.SanitizeToken(c.V1.RefreshToken)
	if c.V2.Password != "" {
		c.V2.Password = "[REDACTED]"
	}
	return c
}
