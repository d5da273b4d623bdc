package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"chat-relay/internal/provider"
)

// providersFile is the on-disk shape of PROVIDERS_FILE:
//
//	providers:
//	  groq:
//	    model: llama-3.3-70b-versatile
//	  huggingface:
//	    disabled: true
type providersFile struct {
	Providers map[string]provider.Override `yaml:"providers"`
}

// LoadProviderOverrides reads the overrides file at path. An empty path yields
// no overrides.
func LoadProviderOverrides(path string) (map[string]provider.Override, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read providers file: %w", err)
	}
	return ParseProviderOverrides(data)
}

func ParseProviderOverrides(data []byte) (map[string]provider.Override, error) {
	var f providersFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parse providers file: %w", err)
	}
	return f.Providers, nil
}
