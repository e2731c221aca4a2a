package service

import (
	"context"
	"time"

	"rideboard/internal/events"
	"rideboard/internal/logger"
)

//go:generate mockgen -destination=../mocks/mock_publisher.go -package=mocks rideboard/internal/service EventPublisher

// EventPublisher delivers domain events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// publish never fails the caller: the state change has already committed.
func publish(ctx context.Context, pub EventPublisher, log logger.Logger, event events.Event) {
	if pub == nil {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := pub.Publish(ctx, event); err != nil {
		log.WithFields(logger.LogFields{
			"event_type": event.Type,
			"ride_id":    event.RideID,
		}).Error("publish_event_failed", err)
	}
}
