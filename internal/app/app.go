// Package app wires configuration, provider registry, dispatcher and HTTP
// handler together. It is shared by the server and Lambda entrypoints.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"chat-relay/handler"
	"chat-relay/internal/config"
	"chat-relay/internal/integrations/paramstore"
	"chat-relay/internal/integrations/upstream"
	"chat-relay/internal/metrics"
	"chat-relay/internal/provider"
	"chat-relay/internal/usecase"
)

// CredentialSource supplies provider credentials missing from the environment.
type CredentialSource interface {
	Credentials(ctx context.Context, keys []string) (map[string]string, error)
}

type App struct {
	Handler  *handler.Handler
	Registry *provider.Registry
}

type options struct {
	credentials CredentialSource
}

type Option func(*options)

// WithCredentialSource replaces the SSM-backed source used when PARAM_PREFIX
// is set.
func WithCredentialSource(src CredentialSource) Option {
	return func(o *options) {
		o.credentials = src
	}
}

// Build constructs the application. cfg.Credentials may be extended with
// values from the credential source.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: config must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	if err := fillCredentials(ctx, cfg, o.credentials, logger); err != nil {
		return nil, err
	}

	overrides, err := config.LoadProviderOverrides(cfg.ProvidersFile)
	if err != nil {
		return nil, err
	}
	registry, err := provider.NewRegistry(provider.Builtins, cfg.Credentials, overrides)
	if err != nil {
		return nil, err
	}
	for _, d := range registry.All() {
		logger.Info("provider configured", "provider", d.Name, "kind", d.Kind, "enabled", d.Enabled)
	}
	metrics.EnabledProviders.Set(float64(len(registry.Enabled())))
	if len(registry.Enabled()) == 0 {
		logger.Warn("no provider credentials configured, running in demo mode")
	}

	poster := upstream.NewClient(upstream.WithTimeout(cfg.ProviderTimeout))
	svc, err := usecase.NewReplyService(registry, poster, usecase.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	h, err := handler.NewHandler(svc, logger)
	if err != nil {
		return nil, err
	}
	return &App{Handler: h, Registry: registry}, nil
}

func fillCredentials(ctx context.Context, cfg *config.Config, src CredentialSource, logger *slog.Logger) error {
	if cfg.ParamPrefix == "" {
		return nil
	}
	missing := cfg.MissingCredentialKeys()
	if len(missing) == 0 {
		return nil
	}
	if src == nil {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("app: load AWS config: %w", err)
		}
		ps, err := paramstore.New(awsssm.NewFromConfig(awsCfg), cfg.ParamPrefix)
		if err != nil {
			return fmt.Errorf("app: create SSM client: %w", err)
		}
		src = ps
	}
	creds, err := src.Credentials(ctx, missing)
	if err != nil {
		return fmt.Errorf("app: load provider credentials: %w", err)
	}
	logger.Info("loaded provider credentials from parameter store", "found", len(creds), "requested", len(missing))
	cfg.MergeCredentials(creds)
	return nil
}
