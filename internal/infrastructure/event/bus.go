package event

import (
	"context"
	"sync"

	"github.com/merchstock/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// HandlerFunc processes a single domain event. Handlers run synchronously
// on the publishing goroutine and must not block for long.
type HandlerFunc func(ctx context.Context, event shared.DomainEvent)

// InMemoryBus is a process-local publish/subscribe dispatcher for domain
// events. It implements shared.EventPublisher: publishing never fails and
// never gates the transaction that produced the event.
type InMemoryBus struct {
	mu       sync.RWMutex
	handlers map[string][]HandlerFunc
	logger   *zap.Logger
}

// NewInMemoryBus creates a new in-memory event bus
func NewInMemoryBus(logger *zap.Logger) *InMemoryBus {
	return &InMemoryBus{
		handlers: make(map[string][]HandlerFunc),
		logger:   logger,
	}
}

// Subscribe registers a handler for the given event type
func (b *InMemoryBus) Subscribe(eventType string, fn HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], fn)
	b.logger.Debug("event handler subscribed", zap.String("event_type", eventType))
}

// Publish dispatches the event to all handlers registered for its type.
// Handler panics are recovered and logged so one bad handler cannot take
// down the publisher.
func (b *InMemoryBus) Publish(ctx context.Context, event shared.DomainEvent) error {
	b.mu.RLock()
	handlers := b.handlers[event.EventType()]
	b.mu.RUnlock()

	for _, fn := range handlers {
		b.dispatch(ctx, fn, event)
	}
	return nil
}

func (b *InMemoryBus) dispatch(ctx context.Context, fn HandlerFunc, event shared.DomainEvent) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()
	fn(ctx, event)
}
