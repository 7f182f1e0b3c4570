package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"khata-advisor/internal/domain"
	"khata-advisor/internal/integrations/groq"
	"khata-advisor/internal/prompt"
)

type LLMClient interface {
	Chat(ctx context.Context, messages []domain.ChatMessage) (string, error)
	Model() string
}

// TurnLogger records answered turns. Implementations must not be relied on
// for serving requests.
type TurnLogger interface {
	SaveTurn(ctx context.Context, turn domain.Turn) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type ChatService struct {
	llm    LLMClient
	turns  TurnLogger
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*ChatService)

// WithTurnLog enables the audit trail of answered turns.
func WithTurnLog(t TurnLogger) Option {
	return func(s *ChatService) {
		s.turns = t
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *ChatService) {
		if l != nil {
			s.logger = l
		}
	}
}

type ChatInput struct {
	UserMessage    string
	History        []domain.ChatMessage
	Transactions   []domain.Transaction
	ConversationID string
	CorrelationID  string
}

type ChatOutput struct {
	Message        string
	ConversationID string
}

func NewChatService(llm LLMClient, opts ...Option) (*ChatService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	s := &ChatService{
		llm:    llm,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Chat answers one user message grounded in the caller's transactions.
// Every failure is returned as *Error.
func (s *ChatService) Chat(ctx context.Context, in ChatInput) (ChatOutput, error) {
	if strings.TrimSpace(in.UserMessage) == "" {
		return ChatOutput{}, newError(ErrorInvalidInput, "empty_message", "userMessage is required", nil)
	}
	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = newUUID()
	}

	reply, err := s.llm.Chat(ctx, prompt.Messages(in.Transactions, in.History, in.UserMessage))
	if err != nil {
		return ChatOutput{}, mapLLMError(err)
	}

	s.recordTurn(ctx, domain.Turn{
		ConversationID:   convID,
		CorrelationID:    in.CorrelationID,
		UserMessage:      in.UserMessage,
		Reply:            reply,
		Model:            s.llm.Model(),
		TransactionCount: len(in.Transactions),
		CreatedAt:        s.now(),
	})

	return ChatOutput{Message: reply, ConversationID: convID}, nil
}

func (s *ChatService) recordTurn(ctx context.Context, turn domain.Turn) {
	if s.turns == nil {
		return
	}
	if err := s.turns.SaveTurn(ctx, turn); err != nil {
		s.logger.WarnContext(ctx, "failed to record chat turn",
			"err", err,
			"conversation_id", turn.ConversationID,
			"correlation_id", turn.CorrelationID,
		)
	}
}

func mapLLMError(err error) *Error {
	switch {
	case errors.Is(err, groq.ErrMissingAPIKey):
		return newError(ErrorConfig, "missing_api_key", msgMissingKey, err)
	case errors.Is(err, groq.ErrNoChoices):
		return newError(ErrorEmptyResponse, "groq_empty_response", msgNoResponse, err)
	}

	var statusErr httpStatusCoder
	if errors.As(err, &statusErr) {
		message := msgUpstreamDefault
		var upstream *groq.HTTPStatusError
		if errors.As(err, &upstream) && upstream.Message != "" {
			message = upstream.Message
		}
		e := newError(ErrorUpstream, "groq_error", message, err)
		e.Status = statusErr.HTTPStatusCode()
		return e
	}
	return newError(ErrorInternal, "groq_request_failed", msgUnknown, err)
}

var newUUID = func() string {
	return uuid.NewString()
}
