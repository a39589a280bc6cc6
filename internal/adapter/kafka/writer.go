package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/aemet-climate-etl/internal/config"
	"github.com/couchcryptid/aemet-climate-etl/internal/domain"
)

// Writer produces ranked risk scores to a Kafka topic.
// It implements pipeline.ScorePublisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// NewWriter creates a Kafka producer for the configured score topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishScores serializes every ranked station and publishes the batch in a
// single WriteMessages call. Messages are keyed by station name so reruns for
// the same station land on the same partition.
func (w *Writer) PublishScores(ctx context.Context, scores []domain.RiskScore, scoredAt time.Time) error {
	if len(scores) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(scores))
	for i := range scores {
		msg, err := serializeToMessage(scores[i], i+1, scoredAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish scores: %w", err)
	}
	w.logger.Info("published risk scores", "count", len(msgs))
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (w *Writer) Close() error {
	return w.writer.Close()
}

// scoreMessage is the wire form of one ranked station.
type scoreMessage struct {
	domain.RiskScore
	Rank     int    `json:"rank"`
	ScoredAt string `json:"scored_at"`
}

// serializeToMessage marshals a RiskScore into a Kafka message.
func serializeToMessage(score domain.RiskScore, rank int, scoredAt time.Time) (kafkago.Message, error) {
	ts := scoredAt.UTC().Format(time.RFC3339)
	data, err := json.Marshal(scoreMessage{RiskScore: score, Rank: rank, ScoredAt: ts})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize risk score: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(score.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(score.Station)},
			{Key: "scored_at", Value: []byte(ts)},
		},
	}, nil
}
