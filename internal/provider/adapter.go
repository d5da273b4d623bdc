package provider

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"chat-relay/internal/domain"
)

const (
	maxTokens   = 2000
	temperature = 0.7
)

// ErrEmptyReply is returned when a provider answered with a well-formed but
// empty completion.
var ErrEmptyReply = errors.New("provider: empty reply")

// Adapter converts a chat turn into a provider request body and extracts the
// generated text from the provider's response body.
type Adapter interface {
	BuildRequest(d Descriptor, message string, history []domain.ChatMessage) ([]byte, error)
	ParseResponse(raw []byte, message string) (string, error)
}

// AdapterFor returns the adapter for the given provider kind.
func AdapterFor(kind Kind) (Adapter, error) {
	switch kind {
	case KindChatCompletion:
		return chatCompletionAdapter{}, nil
	case KindTextGeneration:
		return textGenerationAdapter{}, nil
	default:
		return nil, fmt.Errorf("provider: unknown provider kind %q", kind)
	}
}

// --- chat completions ---

type chatCompletionMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string                  `json:"model"`
	Messages    []chatCompletionMessage `json:"messages"`
	MaxTokens   int                     `json:"max_tokens"`
	Temperature float64                 `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatCompletionAdapter struct{}

func (chatCompletionAdapter) BuildRequest(d Descriptor, message string, history []domain.ChatMessage) ([]byte, error) {
	if strings.TrimSpace(d.Model) == "" {
		return nil, fmt.Errorf("provider: %s has no model configured", d.Key)
	}
	messages := make([]chatCompletionMessage, 0, len(history)+1)
	for _, m := range history {
		messages = append(messages, chatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	messages = append(messages, chatCompletionMessage{Role: string(domain.RoleUser), Content: message})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       d.Model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("provider: marshal chat completion request: %w", err)
	}
	return body, nil
}

func (chatCompletionAdapter) ParseResponse(raw []byte, _ string) (string, error) {
	var payload chatCompletionResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("provider: decode chat completion response: %w", err)
	}
	if len(payload.Choices) == 0 {
		return "", errors.New("provider: no choices in response")
	}
	content := payload.Choices[0].Message.Content
	if content == nil {
		return "", errors.New("provider: choice has no message content")
	}
	if strings.TrimSpace(*content) == "" {
		return "", ErrEmptyReply
	}
	return *content, nil
}

// --- legacy text generation ---

type textGenerationRequest struct {
	Inputs string `json:"inputs"`
}

type generatedText struct {
	GeneratedText *string `json:"generated_text"`
}

type textGenerationAdapter struct{}

func (textGenerationAdapter) BuildRequest(_ Descriptor, message string, _ []domain.ChatMessage) ([]byte, error) {
	body, err := json.Marshal(textGenerationRequest{Inputs: message})
	if err != nil {
		return nil, fmt.Errorf("provider: marshal text generation request: %w", err)
	}
	return body, nil
}

// ParseResponse accepts either a list whose first element carries
// generated_text or a single object carrying it. An echoed copy of the input
// at the start of the text is stripped.
func (textGenerationAdapter) ParseResponse(raw []byte, message string) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", errors.New("provider: empty text generation response")
	}

	var item generatedText
	switch trimmed[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return "", fmt.Errorf("provider: decode text generation list: %w", err)
		}
		if len(list) == 0 {
			return "", errors.New("provider: empty text generation list")
		}
		if err := json.Unmarshal(list[0], &item); err != nil {
			return "", fmt.Errorf("provider: decode text generation item: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return "", fmt.Errorf("provider: decode text generation object: %w", err)
		}
	default:
		return "", errors.New("provider: unrecognized text generation response")
	}
	if item.GeneratedText == nil {
		return "", errors.New("provider: response has no generated_text")
	}

	text := strings.TrimSpace(*item.GeneratedText)
	if message != "" && strings.HasPrefix(text, message) {
		text = strings.TrimSpace(text[len(message):])
	}
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}
