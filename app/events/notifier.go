package events

import (
	"context"
	"log/slog"
	"strings"
)

// ProductPayload describes a product in a product.* event.
type ProductPayload struct {
	Name       string `json:"name"`
	Price      string `json:"price"`
	CategoryID uint   `json:"category_id"`
}

// CategoryPayload describes a category in a category.* event.
type CategoryPayload struct {
	Name            string `json:"name"`
	DeletedProducts int64  `json:"deleted_products,omitempty"`
}

// Recorder counts what the Notifier sees.
type Recorder interface {
	RecordWrite(entity, operation string)
	RecordCascadeDelete(products int64)
	RecordPublishFailure()
}

// Notifier reports a committed write: it is counted, then published. A publish
// failure is logged and counted but never returned.
type Notifier struct {
	publisher Publisher
	recorder  Recorder
	logger    *slog.Logger
}

func NewNotifier(publisher Publisher, recorder Recorder, logger *slog.Logger) *Notifier {
	return &Notifier{
		publisher: publisher,
		recorder:  recorder,
		logger:    logger,
	}
}

func (n *Notifier) Notify(ctx context.Context, event Event) {
	entity, operation, _ := strings.Cut(event.Type, ".")
	n.recorder.RecordWrite(entity, operation)
	if p, ok := event.Payload.(CategoryPayload); ok && event.Type == CategoryDeleted {
		n.recorder.RecordCascadeDelete(p.DeletedProducts)
	}

	if err := n.publisher.Publish(ctx, event); err != nil {
		n.recorder.RecordPublishFailure()
		n.logger.WarnContext(ctx, "failed to publish event",
			"event_type", event.Type,
			"event_id", event.ID,
			"entity_id", event.EntityID,
			"error", err,
		)
	}
}
