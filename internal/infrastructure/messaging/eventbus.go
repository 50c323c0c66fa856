// Package messaging delivers portal domain events to in-process handlers.
package messaging

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nextedu/portal/internal/domain/shared"
)

// ErrEventBusClosed is returned after Close.
var ErrEventBusClosed = errors.New("event bus is closed")

// Observer receives bus measurements. The metrics package implements it.
type Observer interface {
	EventPublished(eventType string)
	HandlerFinished(eventType string, d time.Duration, err error)
}

// ══════════════════════════════════════════════════════════════════════════════
// IN-MEMORY EVENT BUS
// ══════════════════════════════════════════════════════════════════════════════

// InMemoryEventBus implements shared.EventBus for a single portal process.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	handlers    map[shared.EventType][]shared.EventHandler
	allHandlers []shared.EventHandler
	asyncMode   bool
	workerPool  chan struct{}
	logger      *slog.Logger
	observer    Observer
	closed      bool
	closeCh     chan struct{}
	wg          sync.WaitGroup
}

// Config contains configuration for InMemoryEventBus.
type Config struct {
	// AsyncMode runs handlers on a bounded worker pool. Otherwise Publish
	// returns after every handler has run.
	AsyncMode bool

	// WorkerPoolSize bounds concurrent async handlers.
	WorkerPoolSize int

	Logger   *slog.Logger
	Observer Observer
}

// DefaultConfig returns an async bus with 10 workers.
func DefaultConfig() Config {
	return Config{
		AsyncMode:      true,
		WorkerPoolSize: 10,
	}
}

// NewInMemoryEventBus creates a new in-memory event bus.
func NewInMemoryEventBus(config Config) *InMemoryEventBus {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.WorkerPoolSize <= 0 {
		config.WorkerPoolSize = 10
	}

	return &InMemoryEventBus{
		handlers:   make(map[shared.EventType][]shared.EventHandler),
		asyncMode:  config.AsyncMode,
		workerPool: make(chan struct{}, config.WorkerPoolSize),
		logger:     config.Logger.With("component", "event_bus"),
		observer:   config.Observer,
		closeCh:    make(chan struct{}),
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

// Subscribe registers a handler for a specific event type.
func (b *InMemoryEventBus) Subscribe(eventType shared.EventType, handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.handlers[eventType] = append(b.handlers[eventType], handler)
	return nil
}

// SubscribeAll registers a handler for all events.
func (b *InMemoryEventBus) SubscribeAll(handler shared.EventHandler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrEventBusClosed
	}
	b.allHandlers = append(b.allHandlers, handler)
	return nil
}

// Publish delivers an event to its type's handlers and to global handlers.
// Handler errors are logged, never returned.
func (b *InMemoryEventBus) Publish(event shared.Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return ErrEventBusClosed
	}
	handlers := make([]shared.EventHandler, 0, len(b.handlers[event.EventType()])+len(b.allHandlers))
	handlers = append(handlers, b.handlers[event.EventType()]...)
	handlers = append(handlers, b.allHandlers...)
	if b.asyncMode {
		b.wg.Add(len(handlers))
	}
	b.mu.RUnlock()

	if b.observer != nil {
		b.observer.EventPublished(string(event.EventType()))
	}

	for _, handler := range handlers {
		if b.asyncMode {
			go b.executeAsync(event, handler)
		} else {
			b.execute(event, handler)
		}
	}
	return nil
}

func (b *InMemoryEventBus) executeAsync(event shared.Event, handler shared.EventHandler) {
	defer b.wg.Done()

	select {
	case b.workerPool <- struct{}{}:
		defer func() { <-b.workerPool }()
	case <-b.closeCh:
		return
	}
	b.execute(event, handler)
}

func (b *InMemoryEventBus) execute(event shared.Event, handler shared.EventHandler) {
	start := time.Now()
	err := safeCall(event, handler)
	d := time.Since(start)

	if b.observer != nil {
		b.observer.HandlerFinished(string(event.EventType()), d, err)
	}
	if err != nil {
		b.logger.Error("event handler failed",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"duration", d,
			"error", err,
		)
	}
}

func safeCall(event shared.Event, handler shared.EventHandler) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("handler panic: %v", p)
		}
	}()
	return handler(event)
}

// Close stops accepting events and waits for running handlers.
// Queued async handlers that have not started are dropped.
func (b *InMemoryEventBus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	close(b.closeCh)
	b.mu.Unlock()

	b.wg.Wait()
	b.logger.Info("event bus closed")
	return nil
}
