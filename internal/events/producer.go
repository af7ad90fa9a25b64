// Package events publishes freshly produced weather data to Kafka
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/briangreenhill/weatherinsight/internal/weather"
)

// Event is the JSON value written for every record
type Event struct {
	Key        string    `json:"key"`
	Kind       string    `json:"kind"`
	ProducedAt time.Time `json:"produced_at"`
	Data       any       `json:"data"`
}

// recordClient is the part of *kgo.Client the producer uses
type recordClient interface {
	Produce(ctx context.Context, r *kgo.Record, promise func(*kgo.Record, error))
	Flush(ctx context.Context) error
	Close()
}

type Producer struct {
	topic  string
	client recordClient
	logger zerolog.Logger
	now    func() time.Time
}

var _ weather.Publisher = (*Producer)(nil)

// NewProducer connects to brokers. Records go to topic unless overridden.
func NewProducer(brokers []string, topic string, logger zerolog.Logger) (*Producer, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerLinger(50*time.Millisecond),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	logger.Info().Strs("brokers", brokers).Str("topic", topic).Msg("kafka producer initialized")
	return newProducer(client, topic, logger), nil
}

func newProducer(client recordClient, topic string, logger zerolog.Logger) *Producer {
	return &Producer{topic: topic, client: client, logger: logger, now: time.Now}
}

// Publish queues value for delivery and returns immediately. Delivery
// failures are logged.
func (p *Producer) Publish(ctx context.Context, key string, value any) {
	b, err := json.Marshal(Event{
		Key:        key,
		Kind:       kindOf(key),
		ProducedAt: p.now().UTC(),
		Data:       value,
	})
	if err != nil {
		p.logger.Error().Err(err).Str("key", key).Msg("marshal event")
		return
	}

	rec := &kgo.Record{Topic: p.topic, Key: []byte(key), Value: b}
	p.client.Produce(ctx, rec, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Warn().Err(err).Str("key", string(r.Key)).Msg("kafka publish failed")
			return
		}
		p.logger.Debug().Str("key", string(r.Key)).Int32("partition", r.Partition).Int64("offset", r.Offset).Msg("published")
	})
}

// Close flushes buffered records and closes the client
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	if err != nil {
		return fmt.Errorf("kafka flush: %w", err)
	}
	return nil
}

// kindOf is the cache namespace of key, e.g. "weather" or "insight"
func kindOf(key string) string {
	kind, _, _ := strings.Cut(key, ":")
	return kind
}
