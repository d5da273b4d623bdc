package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/provider"
)

func mapEnv(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(mapEnv(nil))
	require.NoError(t, err)
	require.Equal(t, "8000", cfg.Port)
	require.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	require.Equal(t, 30*time.Second, cfg.ProviderTimeout)
	require.Equal(t, slog.LevelInfo, cfg.LogLevel)
	require.Empty(t, cfg.Credentials)
	require.Empty(t, cfg.ParamPrefix)
	require.Len(t, cfg.MissingCredentialKeys(), len(provider.Builtins))
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	cfg, err := Load(mapEnv(map[string]string{
		"PORT":                     "9090",
		"ALLOWED_ORIGINS":          " https://chat.example.com , *,",
		"PROVIDER_TIMEOUT_SECONDS": "12",
		"LOG_LEVEL":                "debug",
		"PARAM_PREFIX":             "/chat-relay",
		"PROVIDERS_FILE":           "providers.yaml",
		"GROQ_API_KEY":             "gsk-1",
		"OPENAI_API_KEY":           "   ",
		"HUGGINGFACE_TOKEN":        "hf-1",
	}))
	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, []string{"https://chat.example.com", "*"}, cfg.AllowedOrigins)
	require.Equal(t, 12*time.Second, cfg.ProviderTimeout)
	require.Equal(t, slog.LevelDebug, cfg.LogLevel)
	require.Equal(t, "/chat-relay", cfg.ParamPrefix)
	require.Equal(t, "providers.yaml", cfg.ProvidersFile)
	require.Equal(t, provider.Credentials{"groq": "gsk-1", "huggingface": "hf-1"}, cfg.Credentials)
	require.Equal(t, []string{"together", "openai"}, cfg.MissingCredentialKeys())
}

func TestLoad_InvalidValues(t *testing.T) {
	_, err := Load(mapEnv(map[string]string{"PROVIDER_TIMEOUT_SECONDS": "soon"}))
	require.Error(t, err)

	_, err = Load(mapEnv(map[string]string{"PROVIDER_TIMEOUT_SECONDS": "0"}))
	require.Error(t, err)

	_, err = Load(mapEnv(map[string]string{"LOG_LEVEL": "loud"}))
	require.Error(t, err)
}

func TestMergeCredentials_KeepsExisting(t *testing.T) {
	cfg := &Config{Credentials: provider.Credentials{"groq": "from-env"}}
	cfg.MergeCredentials(map[string]string{"groq": "from-ssm", "openai": "sk", "together": " "})
	require.Equal(t, provider.Credentials{"groq": "from-env", "openai": "sk"}, cfg.Credentials)

	empty := &Config{}
	empty.MergeCredentials(map[string]string{"groq": "g"})
	require.Equal(t, provider.Credentials{"groq": "g"}, empty.Credentials)
}

func TestParseProviderOverrides(t *testing.T) {
	overrides, err := ParseProviderOverrides([]byte(`
providers:
  groq:
    model: llama-3.3-70b-versatile
  openai:
    url: http://localhost:8080/v1/chat/completions
  huggingface:
    disabled: true
`))
	require.NoError(t, err)
	require.Equal(t, map[string]provider.Override{
		"groq":        {Model: "llama-3.3-70b-versatile"},
		"openai":      {URL: "http://localhost:8080/v1/chat/completions"},
		"huggingface": {Disabled: true},
	}, overrides)
}

func TestParseProviderOverrides_EmptyAndInvalid(t *testing.T) {
	overrides, err := ParseProviderOverrides(nil)
	require.NoError(t, err)
	require.Nil(t, overrides)

	_, err = ParseProviderOverrides([]byte("providers:\n  groq:\n    temperature: 1\n"))
	require.Error(t, err, "unknown fields are rejected")

	_, err = ParseProviderOverrides([]byte("providers: [1, 2"))
	require.Error(t, err)
}

func TestLoadProviderOverrides_File(t *testing.T) {
	overrides, err := LoadProviderOverrides("")
	require.NoError(t, err)
	require.Nil(t, overrides)

	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  together:\n    disabled: true\n"), 0o600))
	overrides, err = LoadProviderOverrides(path)
	require.NoError(t, err)
	require.True(t, overrides["together"].Disabled)

	_, err = LoadProviderOverrides(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
