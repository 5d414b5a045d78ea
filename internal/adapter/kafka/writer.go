package kafka

import (
	"context"
	"log/slog"
	"sort"

	"github.com/couchcryptid/hazard-risk-etl/internal/config"
	"github.com/couchcryptid/hazard-risk-etl/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces assessed hazards to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic. Messages
// are keyed by hazard ID, so replays of the same report land on the same
// partition.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch publishes the assessed hazards in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, hazards []domain.AnnotatedHazard) error {
	if len(hazards) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(hazards))
	for i := range hazards {
		msg, err := serializeToMessage(hazards[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return err
	}
	w.logger.Debug("published assessed hazards", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage converts an assessed hazard into a Kafka message with
// headers sorted by key.
func serializeToMessage(h domain.AnnotatedHazard) (kafkago.Message, error) {
	out, err := domain.SerializeAssessment(h)
	if err != nil {
		return kafkago.Message{}, err
	}

	keys := make([]string, 0, len(out.Headers))
	for k := range out.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafkago.Header, len(keys))
	for i, k := range keys {
		headers[i] = kafkago.Header{Key: k, Value: []byte(out.Headers[k])}
	}

	return kafkago.Message{Key: out.Key, Value: out.Value, Headers: headers}, nil
}
