package audit

import (
	"context"

	"github.com/lifelink-health/portal/pkg/common/kafka"
	"github.com/lifelink-health/portal/pkg/common/logger"
)

// Publisher records workflow state transitions. Publishing is best-effort:
// an audit failure never fails the transition that produced it.
type Publisher interface {
	Publish(ctx context.Context, eventType, actor string, data map[string]interface{})
}

type kafkaPublisher struct {
	producer *kafka.Producer
	source   string
}

func NewKafkaPublisher(producer *kafka.Producer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType, actor string, data map[string]interface{}) {
	if err := p.producer.PublishEvent(ctx, eventType, p.source, actor, data); err != nil {
		logger.Log.WithError(err).WithField("event_type", eventType).Warn("Audit publish failed")
	}
}

type nopPublisher struct{}

// NewNopPublisher is for tests and for running without Kafka.
func NewNopPublisher() Publisher {
	return nopPublisher{}
}

func (nopPublisher) Publish(context.Context, string, string, map[string]interface{}) {}
