package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"chat-relay/internal/domain"
	"chat-relay/internal/metrics"
	"chat-relay/internal/provider"
	"chat-relay/internal/responder"
)

const (
	maxHistoryTurns = 5

	StatusOnline      = "online"
	StatusMessage     = "Chatbot API is running"
	DemoModeProvider  = "Simple Rule-Based AI (Demo Mode)"
	SourceRuleBased   = "rule-based"
	maxLoggedErrorLen = 300
)

type ProviderRegistry interface {
	Enabled() []provider.Descriptor
	EnabledNames() []string
}

type Poster interface {
	PostJSON(ctx context.Context, url, authorization string, body []byte) ([]byte, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// ReplyService walks the provider registry in priority order and falls back to
// the rule-based responder when no provider produces a reply.
type ReplyService struct {
	registry ProviderRegistry
	poster   Poster
	logger   *slog.Logger
	now      func() time.Time
}

type ChatInput struct {
	Message string
	History []domain.ChatMessage
}

type ChatOutput struct {
	Reply  string
	Source string
}

type StatusOutput struct {
	Status    string
	Providers []string
	Message   string
}

type ReplyOption func(*ReplyService)

func WithLogger(l *slog.Logger) ReplyOption {
	return func(s *ReplyService) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewReplyService(r ProviderRegistry, p Poster, opts ...ReplyOption) (*ReplyService, error) {
	if r == nil {
		return nil, errors.New("usecase: provider registry must not be nil")
	}
	if p == nil {
		return nil, errors.New("usecase: poster must not be nil")
	}
	s := &ReplyService{
		registry: r,
		poster:   p,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat validates the inbound message and produces a reply.
func (s *ReplyService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	for _, m := range in.History {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return ChatOutput{}, newError(ErrorInvalidInput, "invalid_history_role", nil)
		}
	}
	reply, source := s.dispatch(ctx, message, in.History)
	return ChatOutput{Reply: reply, Source: source}, nil
}

// GetReply returns the first non-empty provider reply for message, or the
// rule-based answer if every enabled provider fails. Only invalid input is
// reported as an error.
func (s *ReplyService) GetReply(ctx context.Context, message string, history []domain.ChatMessage) (string, error) {
	out, err := s.Chat(ctx, ChatInput{Message: message, History: history})
	if err != nil {
		return "", err
	}
	return out.Reply, nil
}

func (s *ReplyService) Status() StatusOutput {
	names := s.registry.EnabledNames()
	if len(names) == 0 {
		names = []string{DemoModeProvider}
	}
	return StatusOutput{
		Status:    StatusOnline,
		Providers: names,
		Message:   StatusMessage,
	}
}

func (s *ReplyService) dispatch(ctx context.Context, message string, history []domain.ChatMessage) (reply, source string) {
	history = lastTurns(history, maxHistoryTurns)

	for _, d := range s.registry.Enabled() {
		started := s.now()
		text, result, err := s.tryProvider(ctx, d, message, history)
		metrics.ProviderDurationSeconds.WithLabelValues(d.Key).Observe(s.now().Sub(started).Seconds())
		metrics.ProviderAttemptsTotal.WithLabelValues(d.Key, result).Inc()
		if err != nil {
			attrs := []any{"provider", d.Name, "result", result, "err", truncate(err.Error(), maxLoggedErrorLen)}
			if status, ok := upstreamStatusCode(err); ok {
				attrs = append(attrs, "status", status)
			}
			s.logger.WarnContext(ctx, "provider failed, trying next", attrs...)
			continue
		}
		s.logger.InfoContext(ctx, "provider replied", "provider", d.Name, "reply_len", len(text))
		return text, d.Name
	}

	reply, topic := responder.Match(message)
	metrics.FallbackTotal.WithLabelValues(topic).Inc()
	s.logger.InfoContext(ctx, "no provider replied, using rule-based fallback", "topic", topic)
	return reply, SourceRuleBased
}

func (s *ReplyService) tryProvider(ctx context.Context, d provider.Descriptor, message string, history []domain.ChatMessage) (string, string, error) {
	adapter, err := provider.AdapterFor(d.Kind)
	if err != nil {
		return "", metrics.ResultBuild, err
	}
	body, err := adapter.BuildRequest(d, message, history)
	if err != nil {
		return "", metrics.ResultBuild, err
	}

	raw, err := s.poster.PostJSON(ctx, d.URL, d.AuthHeader, body)
	if err != nil {
		if _, ok := upstreamStatusCode(err); ok {
			return "", metrics.ResultHTTPError, err
		}
		return "", metrics.ResultTransport, err
	}

	text, err := adapter.ParseResponse(raw, message)
	if err != nil {
		if errors.Is(err, provider.ErrEmptyReply) {
			return "", metrics.ResultEmpty, err
		}
		return "", metrics.ResultBadShape, err
	}
	return text, metrics.ResultSuccess, nil
}

// lastTurns keeps the newest n turns, preserving order.
func lastTurns(history []domain.ChatMessage, n int) []domain.ChatMessage {
	if len(history) <= n {
		return history
	}
	return history[len(history)-n:]
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
