package repository

import (
	"context"

	"SignalPulse/internal/domain/models"
	"SignalPulse/internal/domain/repository"
	pkgkafka "SignalPulse/pkg/kafka"
)

// KafkaSignalPublisher implements SignalPublisher on Kafka. Messages
// are keyed by asset so downstream consumers see per-asset ordering.
type KafkaSignalPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaSignalPublisher creates the Kafka signal publisher.
func NewKafkaSignalPublisher(producer *pkgkafka.Producer, topic string) repository.SignalPublisher {
	return &KafkaSignalPublisher{producer: producer, topic: topic}
}

func (p *KafkaSignalPublisher) Publish(ctx context.Context, s *models.Signal) error {
	return p.producer.Publish(ctx, p.topic, []byte(s.Asset), signalPayload(s))
}

func (p *KafkaSignalPublisher) PublishBatch(ctx context.Context, signals []models.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(signals))
	for i := range signals {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(signals[i].Asset),
			Value: signalPayload(&signals[i]),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaSignalPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// LogPublisher adapts the Kafka producer to the logger's aggregated
// error sink.
type LogPublisher struct {
	producer *pkgkafka.Producer
}

// NewLogPublisher creates the aggregated-log publisher.
func NewLogPublisher(producer *pkgkafka.Producer) *LogPublisher {
	return &LogPublisher{producer: producer}
}

func (p *LogPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return p.producer.Publish(ctx, topic, nil, payload)
}

func signalPayload(s *models.Signal) map[string]interface{} {
	return map[string]interface{}{
		"asset":      s.Asset,
		"action":     s.Action,
		"strength":   s.Strength,
		"score":      s.Score,
		"raw_score":  s.RawScore,
		"confidence": s.Confidence,
		"price":      s.Price,
		"change_24h": s.Change24h,
		"reasons":    s.Reasons,
		"ts":         s.Timestamp.Unix(),
	}
}
