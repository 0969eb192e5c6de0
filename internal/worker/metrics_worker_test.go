package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/customer-care-api/internal/events"
	"github.com/spec-kit/customer-care-api/internal/observability"
)

func TestMetricsWorkerCountsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()
	StartMetricsWorker(dispatcher, metrics, zap.NewNop())

	publish := func(eventType events.EventType, times int) {
		for i := 0; i < times; i++ {
			require.NoError(t, dispatcher.Publish(context.Background(), events.Event{Type: eventType, TicketID: "tck-1"}))
		}
	}
	publish(events.EventTicketCreated, 2)
	publish(events.EventTicketStatusChanged, 3)
	publish(events.EventResponseAdded, 1)

	assert.Equal(t, int64(2), metrics.EventCount(string(events.EventTicketCreated)))
	assert.Equal(t, int64(3), metrics.EventCount(string(events.EventTicketStatusChanged)))
	assert.Equal(t, int64(1), metrics.EventCount(string(events.EventResponseAdded)))
	assert.Equal(t, int64(0), metrics.EventCount(string(events.EventTicketAssigned)))
}

func TestMetricsWorkerNilGuards(t *testing.T) {
	// Must not panic with missing wiring.
	StartMetricsWorker(nil, observability.NewMetrics(), zap.NewNop())
	StartMetricsWorker(events.NewInMemoryDispatcher(), nil, zap.NewNop())
}
