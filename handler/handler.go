package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"khata-advisor/internal/domain"
	"khata-advisor/internal/usecase"
)

// ChatPath is the only route served by the proxy.
const ChatPath = "/api/ai/chat"

const correlationHeader = "X-Correlation-Id"

type ChatUseCase interface {
	Chat(ctx context.Context, in usecase.ChatInput) (usecase.ChatOutput, error)
}

type chatRequest struct {
	UserMessage         string               `json:"userMessage"`
	ConversationHistory []domain.ChatMessage `json:"conversationHistory"`
	Transactions        []domain.Transaction `json:"transactions"`
	ConversationID      string               `json:"conversationId,omitempty"`
}

type chatResponse struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Handler serves POST /api/ai/chat behind API Gateway.
type Handler struct {
	uc     ChatUseCase
	logger *slog.Logger
}

func NewHandler(uc ChatUseCase) (*Handler, error) {
	if uc == nil {
		return nil, errors.New("handler: use case must not be nil")
	}
	return &Handler{uc: uc, logger: slog.Default()}, nil
}

func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	corrID := correlationID(req.Headers)
	log := h.logger.With("correlation_id", corrID)

	if strings.TrimRight(req.Path, "/") != ChatPath {
		return jsonResponse(http.StatusNotFound, corrID, errorResponse{Error: "not found", Code: "NOT_FOUND"}), nil
	}
	if req.HTTPMethod != http.MethodPost {
		resp := jsonResponse(http.StatusMethodNotAllowed, corrID, errorResponse{Error: "method not allowed", Code: "METHOD_NOT_ALLOWED"})
		resp.Headers["Allow"] = http.MethodPost
		return resp, nil
	}

	body, err := requestBody(req)
	if err != nil {
		log.WarnContext(ctx, "invalid request body encoding", "err", err)
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{Error: "invalid request body", Code: string(usecase.ErrorInvalidInput)}), nil
	}
	var in chatRequest
	if err := json.Unmarshal(body, &in); err != nil {
		log.WarnContext(ctx, "invalid request body", "err", err)
		return jsonResponse(http.StatusBadRequest, corrID, errorResponse{Error: "invalid request body", Code: string(usecase.ErrorInvalidInput)}), nil
	}

	out, err := h.uc.Chat(ctx, usecase.ChatInput{
		UserMessage:    in.UserMessage,
		History:        in.ConversationHistory,
		Transactions:   in.Transactions,
		ConversationID: in.ConversationID,
		CorrelationID:  corrID,
	})
	if err != nil {
		status, payload := mapError(err)
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		log.Log(ctx, level, "chat request failed", "err", err, "status", status, "code", payload.Code)
		return jsonResponse(status, corrID, payload), nil
	}

	return jsonResponse(http.StatusOK, corrID, chatResponse{
		Message:        out.Message,
		ConversationID: out.ConversationID,
	}), nil
}

func mapError(err error) (int, errorResponse) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, errorResponse{Error: "Unknown server error", Code: string(usecase.ErrorInternal)}
	}
	message := ucErr.Message
	if message == "" {
		message = http.StatusText(ucErr.HTTPStatus())
	}
	return ucErr.HTTPStatus(), errorResponse{Error: message, Code: string(ucErr.Code)}
}

func requestBody(req events.APIGatewayProxyRequest) ([]byte, error) {
	if !req.IsBase64Encoded {
		return []byte(req.Body), nil
	}
	return base64.StdEncoding.DecodeString(req.Body)
}

// correlationID reuses the caller's X-Correlation-Id (any casing) or mints one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}

func jsonResponse(status int, corrID string, payload any) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Unknown server error","code":"INTERNAL_ERROR"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: corrID,
		},
		Body: string(body),
	}
}
