// Package config loads the platform configuration: built-in defaults, then
// an optional TOML file, then BIM_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration is a time.Duration that reads "1.2s" style strings from TOML.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

type Server struct {
	Addr       string  `toml:"addr"`
	CORSOrigin string  `toml:"cors_origin"`
	RateLimit  float64 `toml:"rate_limit"` // requests per second, 0 disables
	RateBurst  int     `toml:"rate_burst"`
}

type NATS struct {
	URL           string `toml:"url"` // empty disables publishing
	SubjectPrefix string `toml:"subject_prefix"`
}

type Telemetry struct {
	ServiceName string `toml:"service_name"`
}

type Viewer struct {
	FPS           int      `toml:"fps"`
	FillRatio     float64  `toml:"fill_ratio"`
	FocusDuration Duration `toml:"focus_duration"`
	Concurrency   int      `toml:"concurrency"`
}

type Client struct {
	APIURL  string   `toml:"api_url"`
	Timeout Duration `toml:"timeout"`
}

// Config is the whole configuration tree.
type Config struct {
	LogLevel  string    `toml:"log_level"`
	Fixtures  string    `toml:"fixtures"` // directory; empty uses the embedded set
	Server    Server    `toml:"server"`
	NATS      NATS      `toml:"nats"`
	Telemetry Telemetry `toml:"telemetry"`
	Viewer    Viewer    `toml:"viewer"`
	Client    Client    `toml:"client"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Addr:       ":8080",
			CORSOrigin: "*",
			RateLimit:  50,
			RateBurst:  100,
		},
		NATS:      NATS{SubjectPrefix: "bim.selection"},
		Telemetry: Telemetry{ServiceName: "bridge-bim-api"},
		Viewer: Viewer{
			FPS:           30,
			FillRatio:     0.8,
			FocusDuration: Duration(1200 * time.Millisecond),
			Concurrency:   8,
		},
		Client: Client{
			APIURL:  "http://localhost:8080",
			Timeout: Duration(10 * time.Second),
		},
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	c.LogLevel = envOr("BIM_LOG_LEVEL", c.LogLevel)
	c.Fixtures = envOr("BIM_FIXTURES", c.Fixtures)
	c.Server.Addr = envOr("BIM_ADDR", c.Server.Addr)
	c.Server.CORSOrigin = envOr("BIM_CORS_ORIGIN", c.Server.CORSOrigin)
	c.NATS.URL = envOr("BIM_NATS_URL", c.NATS.URL)
	c.NATS.SubjectPrefix = envOr("BIM_NATS_SUBJECT_PREFIX", c.NATS.SubjectPrefix)
	c.Telemetry.ServiceName = envOr("BIM_OTEL_SERVICE", c.Telemetry.ServiceName)
	c.Client.APIURL = envOr("BIM_API_URL", c.Client.APIURL)

	var errs []error
	errs = append(errs,
		envFloat("BIM_RATE_LIMIT", &c.Server.RateLimit),
		envInt("BIM_RATE_BURST", &c.Server.RateBurst),
		envInt("BIM_VIEWER_FPS", &c.Viewer.FPS),
		envFloat("BIM_VIEWER_FILL", &c.Viewer.FillRatio),
		envDuration("BIM_VIEWER_FOCUS_DURATION", &c.Viewer.FocusDuration),
		envInt("BIM_VIEWER_CONCURRENCY", &c.Viewer.Concurrency),
		envDuration("BIM_CLIENT_TIMEOUT", &c.Client.Timeout),
	)
	return errors.Join(errs...)
}

// Validate rejects values the server or viewer cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("server.rate_limit %v is negative", c.Server.RateLimit))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, fmt.Errorf("server.rate_burst %d must be at least 1", c.Server.RateBurst))
	}
	if c.Viewer.FPS <= 0 {
		errs = append(errs, fmt.Errorf("viewer.fps %d must be positive", c.Viewer.FPS))
	}
	if c.Viewer.FillRatio <= 0 || c.Viewer.FillRatio > 1 {
		errs = append(errs, fmt.Errorf("viewer.fill_ratio %v must be in (0, 1]", c.Viewer.FillRatio))
	}
	if c.Viewer.FocusDuration < 0 {
		errs = append(errs, errors.New("viewer.focus_duration is negative"))
	}
	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		errs = append(errs, errors.New("nats.subject_prefix is empty"))
	}
	return errors.Join(errs...)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = f
	return nil
}

func envDuration(key string, dst *Duration) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = Duration(d)
	return nil
}
