package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/chatbot"
	"github.com/nextedu/portal/internal/domain/shared"
)

// Assistant outcomes reported to ChatbotObserver.
const (
	OutcomeAnswered = "answered"
	OutcomeFallback = "fallback"
	OutcomeDisabled = "disabled"
)

// AskAssistantCommand is one question in a chat.
type AskAssistantCommand struct {
	History  []chatbot.Message
	Question string
}

// AskAssistantResult is what the chat window shows. Fallback is true
// when Answer is the apology.
type AskAssistantResult struct {
	Answer   string
	Fallback bool
}

// AskAssistantHandler handles AskAssistantCommand.
type AskAssistantHandler struct {
	assistant chatbot.Assistant
	observer  ChatbotObserver
	logger    *slog.Logger
	now       func() time.Time
}

// NewAskAssistantHandler creates a new AskAssistantHandler. A nil
// assistant answers every question with the apology.
func NewAskAssistantHandler(assistant chatbot.Assistant, observer ChatbotObserver, logger *slog.Logger) *AskAssistantHandler {
	return &AskAssistantHandler{
		assistant: assistant,
		observer:  observer,
		logger:    loggerOrDefault(logger).With("handler", "ask_assistant"),
		now:       time.Now,
	}
}

// Handle asks the assistant once. Any failure becomes the apology; the
// only error is an empty question.
func (h *AskAssistantHandler) Handle(ctx context.Context, cmd AskAssistantCommand) (*AskAssistantResult, error) {
	req := chatbot.Request{PriorMessages: cmd.History, CurrentQuestion: cmd.Question}.Normalize()
	if req.CurrentQuestion == "" {
		return nil, shared.NewDomainError("chatbot", "Ask", shared.ErrEmptyValue, "question cannot be empty")
	}

	if h.assistant == nil {
		h.observe(OutcomeDisabled, 0)
		return &AskAssistantResult{Answer: chatbot.Apology, Fallback: true}, nil
	}

	start := h.now()
	resp, err := h.assistant.Answer(ctx, req)
	elapsed := h.now().Sub(start)
	if err != nil || resp.Answer == "" {
		h.logger.Warn("assistant failed, answering with apology",
			"error", err,
			"duration", elapsed.String(),
			"prior_messages", len(req.PriorMessages),
		)
		h.observe(OutcomeFallback, elapsed)
		return &AskAssistantResult{Answer: chatbot.Apology, Fallback: true}, nil
	}

	h.observe(OutcomeAnswered, elapsed)
	return &AskAssistantResult{Answer: resp.Answer}, nil
}

func (h *AskAssistantHandler) observe(outcome string, d time.Duration) {
	if h.observer != nil {
		h.observer.ObserveChatbot(outcome, d)
	}
}
