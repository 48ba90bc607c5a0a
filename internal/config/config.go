// Package config loads catalog service settings from defaults, an optional
// YAML file, an optional .env file and CATALOG_* environment variables, in
// increasing order of priority.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"
)

const EnvPrefix = "CATALOG_"

type Config struct {
	Service   ServiceConfig   `koanf:"service"`
	HTTP      HTTPConfig      `koanf:"http"`
	Log       LogConfig       `koanf:"log"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	RateLimit RateLimitConfig `koanf:"ratelimit"`
	CORS      CORSConfig      `koanf:"cors"`
	Tracing   TracingConfig   `koanf:"tracing"`
}

type ServiceConfig struct {
	Name        string `koanf:"name"`
	Development bool   `koanf:"development"`
}

type HTTPConfig struct {
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"readtimeout"`
	WriteTimeout    time.Duration `koanf:"writetimeout"`
	IdleTimeout     time.Duration `koanf:"idletimeout"`
	ShutdownTimeout time.Duration `koanf:"shutdowntimeout"`
}

func (c HTTPConfig) Addr() string { return fmt.Sprintf(":%d", c.Port) }

type LogConfig struct {
	Level string `koanf:"level"`
}

type MetricsConfig struct {
	Enabled bool   `koanf:"enabled"`
	Token   string `koanf:"token"`
}

// RateLimitConfig applies per client IP. Requests == 0 disables limiting.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

type CORSConfig struct {
	Origins string `koanf:"origins"`
}

// AllowedOrigins splits the comma-separated origin list.
func (c CORSConfig) AllowedOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.Origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// TracingConfig.Endpoint is an OTLP/HTTP URL; empty disables tracing.
type TracingConfig struct {
	Endpoint string `koanf:"endpoint"`
}

var defaults = map[string]any{
	"service.name":         "catalog",
	"service.development":  false,
	"http.port":            8000,
	"http.readtimeout":     "10s",
	"http.writetimeout":    "30s",
	"http.idletimeout":     "60s",
	"http.shutdowntimeout": "10s",
	"log.level":            "info",
	"metrics.enabled":      false,
	"metrics.token":        "",
	"ratelimit.requests":   100,
	"ratelimit.window":     "1m",
	"cors.origins":         "*",
	"tracing.endpoint":     "",
}

// Load resolves the configuration. configFile and dotEnvFile may be empty or
// point at files that do not exist; both are optional layers.
func Load(configFile, dotEnvFile string) (Config, error) {
	var cfg Config
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return cfg, fmt.Errorf("load defaults: %w", err)
	}

	if configFile != "" {
		if err := k.Load(file.Provider(configFile), yaml.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("load config file %q: %w", configFile, err)
		}
	}

	if dotEnvFile != "" {
		vars, err := godotenv.Read(dotEnvFile)
		switch {
		case err == nil:
			m := make(map[string]any, len(vars))
			for key, value := range vars {
				if strings.HasPrefix(key, EnvPrefix) {
					m[envKey(key)] = value
				}
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return cfg, fmt.Errorf("load dotenv %q: %w", dotEnvFile, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read dotenv %q: %w", dotEnvFile, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return cfg, fmt.Errorf("load env: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps CATALOG_HTTP_PORT to http.port.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Service.Name) == "" {
		return errors.New("service name is required")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("invalid HTTP server port: %d", c.HTTP.Port)
	}
	if c.HTTP.ReadTimeout <= 0 {
		return fmt.Errorf("invalid HTTP server read timeout: %v", c.HTTP.ReadTimeout)
	}
	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("invalid HTTP server write timeout: %v", c.HTTP.WriteTimeout)
	}
	if c.HTTP.IdleTimeout <= 0 {
		return fmt.Errorf("invalid HTTP server idle timeout: %v", c.HTTP.IdleTimeout)
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid HTTP server shutdown timeout: %v", c.HTTP.ShutdownTimeout)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimit.Requests)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("invalid rate limit window: %v", c.RateLimit.Window)
	}
	if c.Metrics.Enabled && c.Metrics.Token == "" {
		return errors.New("metrics token is required when metrics are enabled")
	}
	return nil
}

// String renders the effective configuration with secrets masked.
func (c Config) String() string {
	var b strings.Builder
	b.WriteString("\n--- Server ---\n")
	fmt.Fprintf(&b, "  service.name: %s\n", c.Service.Name)
	fmt.Fprintf(&b, "  service.development: %t\n", c.Service.Development)
	fmt.Fprintf(&b, "  http.port: %d\n", c.HTTP.Port)
	fmt.Fprintf(&b, "  http.readtimeout: %v\n", c.HTTP.ReadTimeout)
	fmt.Fprintf(&b, "  http.writetimeout: %v\n", c.HTTP.WriteTimeout)
	fmt.Fprintf(&b, "  http.idletimeout: %v\n", c.HTTP.IdleTimeout)
	fmt.Fprintf(&b, "  http.shutdowntimeout: %v\n", c.HTTP.ShutdownTimeout)
	b.WriteString("\n--- Observability ---\n")
	fmt.Fprintf(&b, "  log.level: %s\n", c.Log.Level)
	fmt.Fprintf(&b, "  metrics.enabled: %t\n", c.Metrics.Enabled)
	fmt.Fprintf(&b, "  metrics.token: %s\n", mask(c.Metrics.Token))
	fmt.Fprintf(&b, "  tracing.endpoint: %s\n", c.Tracing.Endpoint)
	b.WriteString("\n--- Edge ---\n")
	fmt.Fprintf(&b, "  ratelimit.requests: %d\n", c.RateLimit.Requests)
	fmt.Fprintf(&b, "  ratelimit.window: %v\n", c.RateLimit.Window)
	fmt.Fprintf(&b, "  cors.origins: %s\n", c.CORS.Origins)
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "<not configured>"
	}
	return "****"
}
