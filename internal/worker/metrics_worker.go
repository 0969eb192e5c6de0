package worker

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/customer-care-api/internal/events"
	"github.com/spec-kit/customer-care-api/internal/observability"
)

// StartMetricsWorker subscribes the in-memory counters to ticket events so
// lifecycle activity is observable.
func StartMetricsWorker(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) {
	if dispatcher == nil || metrics == nil {
		return
	}

	record := func(ctx context.Context, event events.Event) error {
		metrics.RecordEvent(string(event.Type))
		logger.Debug("event recorded",
			zap.String("type", string(event.Type)),
			zap.String("ticket_id", event.TicketID),
		)
		return nil
	}

	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketStatusChanged, record)
	dispatcher.Subscribe(events.EventTicketAssigned, record)
	dispatcher.Subscribe(events.EventResponseAdded, record)
}
