package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"krisha-parser-service/internal/constants"
	"krisha-parser-service/internal/contextkeys"
	"krisha-parser-service/internal/core/domain"
	"krisha-parser-service/internal/core/port"

	amqp "github.com/rabbitmq/amqp091-go"
)

const publishTimeout = 10 * time.Second

// messagePublisher - то, что нужно адаптеру от rabbitmq_producer.Publisher
type messagePublisher interface {
	Publish(ctx context.Context, routingKey string, msg amqp.Publishing) error
}

// ImageJobAdapter реализует ImageJobPort публикацией события о завершении запуска
type ImageJobAdapter struct {
	producer   messagePublisher
	routingKey string
}

func NewImageJobAdapter(producer messagePublisher, routingKey string) (*ImageJobAdapter, error) {
	if producer == nil {
		return nil, fmt.Errorf("rabbitmq adapter: producer cannot be nil")
	}
	if routingKey == "" {
		return nil, fmt.Errorf("rabbitmq adapter: routingKey cannot be empty")
	}
	return &ImageJobAdapter{
		producer:   producer,
		routingKey: routingKey,
	}, nil
}

func (a *ImageJobAdapter) Trigger(ctx context.Context, stats *domain.RunStats) error {
	logger := contextkeys.LoggerFromContext(ctx)
	adapterLogger := logger.WithFields(port.Fields{
		"component":   "ImageJobAdapter",
		"routing_key": a.routingKey,
	})

	body, err := json.Marshal(toRunCompletedEvent(stats))
	if err != nil {
		return fmt.Errorf("rabbitmq adapter: failed to marshal run event: %w", err)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Type:         constants.EventRunCompleted,
		Headers:      make(amqp.Table),
	}
	if traceID := contextkeys.TraceIDFromContext(ctx); traceID != "" {
		msg.Headers["x-trace-id"] = traceID
	}

	publishCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	adapterLogger.Info("Publishing run completed event", port.Fields{"ads": len(stats.SavedAdIDs)})
	if err := a.producer.Publish(publishCtx, a.routingKey, msg); err != nil {
		adapterLogger.Error("Failed to publish run completed event", err, nil)
		return fmt.Errorf("rabbitmq adapter: failed to publish event for run %s: %w", stats.RunID, err)
	}

	adapterLogger.Info("Successfully published run completed event", nil)
	return nil
}

func toRunCompletedEvent(stats *domain.RunStats) RunCompletedEventDTO {
	cities := make([]CitySummaryDTO, 0, len(stats.Cities))
	for _, c := range stats.Cities {
		cities = append(cities, CitySummaryDTO{City: c.City, Saved: c.Saved})
	}
	adIDs := stats.SavedAdIDs
	if adIDs == nil {
		adIDs = []string{}
	}

	return RunCompletedEventDTO{
		Event:      constants.EventRunCompleted,
		RunID:      stats.RunID,
		StartedAt:  stats.StartedAt,
		FinishedAt: stats.FinishedAt,
		TotalSaved: stats.TotalSaved(),
		AdIDs:      adIDs,
		Cities:     cities,
	}
}

// NoopImageJob используется, когда брокер не настроен: запуск просто логируется
type NoopImageJob struct{}

func (NoopImageJob) Trigger(ctx context.Context, stats *domain.RunStats) error {
	contextkeys.LoggerFromContext(ctx).Info("Image job is disabled, RABBITMQ_URL is not set", port.Fields{
		"component": "NoopImageJob",
		"ads":       len(stats.SavedAdIDs),
	})
	return nil
}
