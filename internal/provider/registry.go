// Package provider holds the fixed, ordered set of external LLM providers and
// the adapters that translate chat turns into each provider family's wire
// format.
package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Kind selects the request/response adapter used for a provider.
type Kind string

const (
	KindChatCompletion Kind = "chat-completion"
	KindTextGeneration Kind = "text-generation"
)

// Descriptor describes a single provider. It is built once at startup and
// never mutated afterwards.
type Descriptor struct {
	Key        string
	Name       string
	Kind       Kind
	URL        string
	Model      string
	AuthHeader string
	Enabled    bool
}

// Builtin is a provider known to the relay, before credentials are applied.
type Builtin struct {
	Key           string
	Name          string
	Kind          Kind
	URL           string
	Model         string
	CredentialEnv string
}

// Builtins lists the supported providers in dispatch priority order.
var Builtins = []Builtin{
	{
		Key:           "groq",
		Name:          "Groq (Free & Fast)",
		Kind:          KindChatCompletion,
		URL:           "https://api.groq.com/openai/v1/chat/completions",
		Model:         "llama-3.1-8b-instant",
		CredentialEnv: "GROQ_API_KEY",
	},
	{
		Key:           "together",
		Name:          "Together AI (Free)",
		Kind:          KindChatCompletion,
		URL:           "https://api.together.xyz/v1/chat/completions",
		Model:         "meta-llama/Llama-2-7b-chat-hf",
		CredentialEnv: "TOGETHER_API_KEY",
	},
	{
		Key:           "openai",
		Name:          "OpenAI (Paid)",
		Kind:          KindChatCompletion,
		URL:           "https://api.openai.com/v1/chat/completions",
		Model:         "gpt-3.5-turbo",
		CredentialEnv: "OPENAI_API_KEY",
	},
	{
		Key:           "huggingface",
		Name:          "HuggingFace - Simple Test",
		Kind:          KindTextGeneration,
		URL:           "https://api-inference.huggingface.co/models/microsoft/DialoGPT-small",
		CredentialEnv: "HUGGINGFACE_TOKEN",
	},
}

// Credentials maps a provider key to its secret.
type Credentials map[string]string

// Override replaces parts of a builtin provider definition.
type Override struct {
	URL      string `yaml:"url"`
	Model    string `yaml:"model"`
	Disabled bool   `yaml:"disabled"`
}

// Registry is an immutable, ordered list of provider descriptors. It is safe
// for concurrent use.
type Registry struct {
	descriptors []Descriptor
}

// NewRegistry builds the registry from builtins. A provider is enabled iff its
// credential is present and non-empty and no override disables it.
func NewRegistry(builtins []Builtin, creds Credentials, overrides map[string]Override) (*Registry, error) {
	known := make(map[string]struct{}, len(builtins))
	descriptors := make([]Descriptor, 0, len(builtins))
	for _, b := range builtins {
		key := strings.TrimSpace(b.Key)
		if key == "" {
			return nil, fmt.Errorf("provider: builtin %q has an empty key", b.Name)
		}
		if _, dup := known[key]; dup {
			return nil, fmt.Errorf("provider: duplicate provider key %q", key)
		}
		if _, err := AdapterFor(b.Kind); err != nil {
			return nil, err
		}
		known[key] = struct{}{}

		d := Descriptor{
			Key:   key,
			Name:  b.Name,
			Kind:  b.Kind,
			URL:   b.URL,
			Model: b.Model,
		}
		disabled := false
		if o, ok := overrides[key]; ok {
			if u := strings.TrimSpace(o.URL); u != "" {
				d.URL = u
			}
			if m := strings.TrimSpace(o.Model); m != "" {
				d.Model = m
			}
			disabled = o.Disabled
		}

		secret := strings.TrimSpace(creds[key])
		if secret != "" {
			d.AuthHeader = "Bearer " + secret
		}
		d.Enabled = secret != "" && !disabled
		descriptors = append(descriptors, d)
	}

	var unknown []string
	for key := range overrides {
		if _, ok := known[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("provider: overrides reference unknown providers: %s", strings.Join(unknown, ", "))
	}

	return &Registry{descriptors: descriptors}, nil
}

// All returns every descriptor in priority order.
func (r *Registry) All() []Descriptor {
	out := make([]Descriptor, len(r.descriptors))
	copy(out, r.descriptors)
	return out
}

// Enabled returns the enabled descriptors in priority order.
func (r *Registry) Enabled() []Descriptor {
	var out []Descriptor
	for _, d := range r.descriptors {
		if d.Enabled {
			out = append(out, d)
		}
	}
	return out
}

func (r *Registry) EnabledNames() []string {
	var names []string
	for _, d := range r.Enabled() {
		names = append(names, d.Name)
	}
	return names
}
