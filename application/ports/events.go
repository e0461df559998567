package ports

import (
	"context"

	"github.com/1CEs/xams-sub001/domain/events"
)

// EventPublisher publishes domain events
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}
