package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chat-relay/internal/config"
	"chat-relay/internal/provider"
)

type fakeSource struct {
	creds     map[string]string
	err       error
	requested []string
}

func (f *fakeSource) Credentials(_ context.Context, keys []string) (map[string]string, error) {
	f.requested = keys
	return f.creds, f.err
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(creds provider.Credentials) *config.Config {
	return &config.Config{
		Port:            "8000",
		ProviderTimeout: 30 * time.Second,
		Credentials:     creds,
	}
}

func TestBuild_NilConfig(t *testing.T) {
	_, err := Build(context.Background(), nil, quietLogger())
	require.Error(t, err)
}

func TestBuild_DemoMode(t *testing.T) {
	a, err := Build(context.Background(), testConfig(provider.Credentials{}), quietLogger())
	require.NoError(t, err)
	require.NotNil(t, a.Handler)
	require.Empty(t, a.Registry.Enabled())
}

func TestBuild_EnvCredentialsOnly_DoesNotQuerySource(t *testing.T) {
	src := &fakeSource{}
	a, err := Build(context.Background(), testConfig(provider.Credentials{"groq": "g"}), quietLogger(), WithCredentialSource(src))
	require.NoError(t, err)
	require.Nil(t, src.requested, "source is only used when PARAM_PREFIX is set")
	require.Equal(t, []string{"Groq (Free & Fast)"}, a.Registry.EnabledNames())
}

func TestBuild_FillsMissingCredentialsFromSource(t *testing.T) {
	cfg := testConfig(provider.Credentials{"groq": "from-env"})
	cfg.ParamPrefix = "/chat-relay"
	src := &fakeSource{creds: map[string]string{"openai": "from-ssm"}}

	a, err := Build(context.Background(), cfg, quietLogger(), WithCredentialSource(src))
	require.NoError(t, err)
	require.Equal(t, []string{"together", "openai", "huggingface"}, src.requested)
	require.Equal(t, []string{"Groq (Free & Fast)", "OpenAI (Paid)"}, a.Registry.EnabledNames())
	require.Equal(t, "from-env", cfg.Credentials["groq"])
}

func TestBuild_SourceError(t *testing.T) {
	cfg := testConfig(provider.Credentials{})
	cfg.ParamPrefix = "/chat-relay"
	_, err := Build(context.Background(), cfg, quietLogger(), WithCredentialSource(&fakeSource{err: errors.New("ssm down")}))
	require.Error(t, err)
	require.ErrorContains(t, err, "ssm down")
}

func TestBuild_AppliesProvidersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  groq:\n    disabled: true\n  openai:\n    model: gpt-4o-mini\n"), 0o600))

	cfg := testConfig(provider.Credentials{"groq": "g", "openai": "o"})
	cfg.ProvidersFile = path
	a, err := Build(context.Background(), cfg, quietLogger())
	require.NoError(t, err)

	enabled := a.Registry.Enabled()
	require.Len(t, enabled, 1)
	require.Equal(t, "openai", enabled[0].Key)
	require.Equal(t, "gpt-4o-mini", enabled[0].Model)
}

func TestBuild_InvalidProvidersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("providers:\n  mistral:\n    model: x\n"), 0o600))

	cfg := testConfig(provider.Credentials{})
	cfg.ProvidersFile = path
	_, err := Build(context.Background(), cfg, quietLogger())
	require.Error(t, err)
	require.Contains(t, err.Error(), "mistral")
}
