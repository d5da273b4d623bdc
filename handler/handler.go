// Package handler exposes the relay over HTTP, either as a gin router for a
// long-running server or as an API Gateway proxy handler for AWS Lambda. Both
// share the request logic in this file.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"chat-relay/internal/domain"
	"chat-relay/internal/usecase"
)

const (
	correlationHeader = "X-Correlation-Id"

	rootMessage = "GenAI Chatbot API"
	docsPath    = "/docs"
)

type ChatService interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
	Status() usecase.StatusOutput
}

type Handler struct {
	svc    ChatService
	logger *slog.Logger
}

type errorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail"`
}

type rootResponse struct {
	Message string `json:"message"`
	Docs    string `json:"docs"`
}

func NewHandler(svc ChatService, logger *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, errors.New("handler: chat service must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}, nil
}

func (h *Handler) chat(ctx context.Context, body []byte) (int, any) {
	var req domain.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return http.StatusBadRequest, errorResponse{
			Error:  string(usecase.ErrorInvalidInput),
			Detail: "Request body must be a JSON object with a message field",
		}
	}

	out, err := h.svc.Chat(ctx, usecase.ChatInput{
		Message: req.Message,
		History: req.ConversationHistory,
	})
	if err != nil {
		return h.mapError(ctx, err)
	}
	return http.StatusOK, domain.ChatResponse{
		Response: out.Reply,
		Status:   domain.StatusSuccess,
	}
}

func (h *Handler) status() (int, any) {
	st := h.svc.Status()
	return http.StatusOK, domain.StatusResponse{
		Status:      st.Status,
		AIProviders: st.Providers,
		Message:     st.Message,
	}
}

func root() (int, any) {
	return http.StatusOK, rootResponse{Message: rootMessage, Docs: docsPath}
}

func (h *Handler) mapError(ctx context.Context, err error) (int, any) {
	var ucErr *usecase.Error
	if errors.As(err, &ucErr) && ucErr.Code == usecase.ErrorInvalidInput {
		return http.StatusBadRequest, errorResponse{
			Error:  string(ucErr.Code),
			Detail: invalidInputDetail(ucErr.Reason),
		}
	}
	h.logger.ErrorContext(ctx, "chat request failed", "err", err)
	return http.StatusInternalServerError, errorResponse{
		Error:  string(usecase.ErrorInternal),
		Detail: "Error processing chat: " + err.Error(),
	}
}

func invalidInputDetail(reason string) string {
	switch reason {
	case "empty_message":
		return "Message cannot be empty"
	case "invalid_history_role":
		return "Conversation history roles must be user or assistant"
	default:
		return "Invalid request"
	}
}

// correlationID returns the caller-supplied id, or a fresh one.
func correlationID(supplied string) string {
	if id := strings.TrimSpace(supplied); id != "" {
		return id
	}
	return newCorrelationID()
}

var newCorrelationID = func() string {
	return uuid.NewString()
}
