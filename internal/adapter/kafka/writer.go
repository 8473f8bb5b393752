package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/traffic-ops-analytics/internal/config"
	"github.com/couchcryptid/traffic-ops-analytics/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer publishes normalized records to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes multiple records to the sink topic
// in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	return w.writer.WriteMessages(ctx, msgs...)
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a record's normalized wire form into a Kafka message.
// The deterministic record ID is the key so compacted topics keep the latest value.
func serializeToMessage(rec domain.Record) (kafkago.Message, error) {
	data, err := json.Marshal(rec.ToRaw())
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s record: %w", rec.Kind, err)
	}
	return kafkago.Message{
		Key:   []byte(rec.ID()),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(rec.Kind)},
			{Key: "ingested_at", Value: []byte(ingestedAt(rec).Format(time.RFC3339))},
		},
	}, nil
}

func ingestedAt(rec domain.Record) time.Time {
	if rec.Kind == domain.KindVolume {
		return rec.Volume.IngestedAt
	}
	return rec.TravelTime.IngestedAt
}
