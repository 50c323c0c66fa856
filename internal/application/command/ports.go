// Package command contains the portal's write operations. Each command
// validates its input, changes the directory and publishes a domain event.
package command

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"log/slog"
	"time"

	"github.com/nextedu/portal/internal/domain/shared"
)

// HistoryInvalidator drops cached semester records of a student.
type HistoryInvalidator interface {
	Invalidate(ctx context.Context, studentID string) error
}

// ChatbotObserver receives assistant measurements.
type ChatbotObserver interface {
	ObserveChatbot(outcome string, d time.Duration)
}

// LoginObserver receives login attempts.
type LoginObserver interface {
	ObserveLogin(role string, err error)
}

// publish sends an event if a publisher is configured. A failed publish
// never fails the command: the directory change already happened.
func publish(p shared.EventPublisher, logger *slog.Logger, e shared.Event) {
	if p == nil {
		return
	}
	if err := p.Publish(e); err != nil {
		logger.Warn("failed to publish event", "event", string(e.EventType()), "error", err)
	}
}

func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
