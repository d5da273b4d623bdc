package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"chat-relay/internal/usecase"
)

// Handle serves the relay endpoints from API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	id := correlationID(headerValue(event.Headers, correlationHeader))
	path := normalizePath(event.Path)

	var status int
	var payload any
	switch {
	case path == EndPointRoot && event.HTTPMethod == http.MethodGet:
		status, payload = root()
	case matches(path, EndPointStatus) && event.HTTPMethod == http.MethodGet:
		status, payload = h.status()
	case matches(path, EndPointChat) && event.HTTPMethod == http.MethodPost:
		body, err := eventBody(event)
		if err != nil {
			status, payload = http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput), Detail: "Request body is not valid base64"}
			break
		}
		status, payload = h.chat(ctx, body)
	case path == EndPointRoot || matches(path, EndPointStatus) || matches(path, EndPointChat):
		status, payload = http.StatusMethodNotAllowed, errorResponse{Error: "METHOD_NOT_ALLOWED", Detail: event.HTTPMethod + " is not allowed on " + path}
	default:
		status, payload = http.StatusNotFound, errorResponse{Error: "NOT_FOUND", Detail: "No route for " + path}
	}

	h.logger.InfoContext(ctx, "request",
		"method", event.HTTPMethod,
		"path", path,
		"status", status,
		"correlation_id", id,
	)
	return jsonResponse(status, payload, id)
}

func jsonResponse(status int, payload any, correlationID string) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(body),
	}, nil
}

func eventBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	return base64.StdEncoding.DecodeString(event.Body)
}

// headerValue looks a header up case-insensitively; API Gateway preserves the
// client's casing.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func normalizePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return EndPointRoot
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
	}
	if p == "" {
		return EndPointRoot
	}
	return p
}

func matches(path, endpoint string) bool {
	return path == endpoint || path == apiPrefix+endpoint
}
