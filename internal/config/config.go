// Package config reads process configuration once at startup into an explicit
// Config value.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"chat-relay/internal/provider"
)

const (
	defaultPort            = "8000"
	defaultProviderTimeout = 30 * time.Second
)

var defaultAllowedOrigins = []string{"http://localhost:3000", "http://localhost:5173"}

type Config struct {
	Port            string
	AllowedOrigins  []string
	ProviderTimeout time.Duration
	LogLevel        slog.Level
	ProvidersFile   string
	// ParamPrefix enables SSM lookup for credentials missing from the environment.
	ParamPrefix string
	Credentials provider.Credentials
}

// Load builds a Config from getenv, normally os.Getenv.
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Port:            envOr(getenv, "PORT", defaultPort),
		AllowedOrigins:  splitList(getenv("ALLOWED_ORIGINS")),
		ProviderTimeout: defaultProviderTimeout,
		ProvidersFile:   strings.TrimSpace(getenv("PROVIDERS_FILE")),
		ParamPrefix:     strings.TrimSpace(getenv("PARAM_PREFIX")),
		Credentials:     provider.Credentials{},
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = append([]string(nil), defaultAllowedOrigins...)
	}

	if v := strings.TrimSpace(getenv("PROVIDER_TIMEOUT_SECONDS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: PROVIDER_TIMEOUT_SECONDS must be a positive integer, got %q", v)
		}
		cfg.ProviderTimeout = time.Duration(n) * time.Second
	}

	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, fmt.Errorf("config: invalid LOG_LEVEL %q: %w", v, err)
		}
	}

	for _, b := range provider.Builtins {
		if v := strings.TrimSpace(getenv(b.CredentialEnv)); v != "" {
			cfg.Credentials[b.Key] = v
		}
	}
	return cfg, nil
}

// MissingCredentialKeys lists builtin provider keys with no credential yet.
func (c *Config) MissingCredentialKeys() []string {
	var keys []string
	for _, b := range provider.Builtins {
		if _, ok := c.Credentials[b.Key]; !ok {
			keys = append(keys, b.Key)
		}
	}
	return keys
}

// MergeCredentials adds credentials without replacing ones already present.
func (c *Config) MergeCredentials(extra map[string]string) {
	if c.Credentials == nil {
		c.Credentials = provider.Credentials{}
	}
	for k, v := range extra {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := c.Credentials[k]; ok {
			continue
		}
		c.Credentials[k] = v
	}
}

func envOr(getenv func(string) string, key, def string) string {
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
