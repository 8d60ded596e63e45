package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/config"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/pipeline"
	kafkago "github.com/segmentio/kafka-go"
)

// Message kinds, carried in the "kind" header.
const (
	KindDensity   = "density"
	KindPartition = "partition"
)

// Writer publishes hotspot results to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured hotspot topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// densityMessage is the payload of one density cluster.
type densityMessage struct {
	RunID string `json:"run_id"`
	domain.DensityCluster
}

// partitionMessage is the payload of one partition center.
type partitionMessage struct {
	RunID string `json:"run_id"`
	domain.PartitionCenter
}

// Publish sends one message per density cluster and per partition center of
// res in a single WriteMessages call.
func (w *Writer) Publish(ctx context.Context, res *pipeline.Result) error {
	msgs, err := serializeResult(res)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish run %s: %w", res.RunID, err)
	}
	w.logger.Debug("hotspots published", "run_id", res.RunID, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func serializeResult(res *pipeline.Result) ([]kafkago.Message, error) {
	msgs := make([]kafkago.Message, 0, len(res.Clusters)+len(res.Centers))
	for _, c := range res.Clusters {
		msg, err := serializeToMessage(res, KindDensity, "density-"+strconv.Itoa(c.ID),
			densityMessage{RunID: res.RunID, DensityCluster: c})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	for _, c := range res.Centers {
		msg, err := serializeToMessage(res, KindPartition, "partition-"+strconv.Itoa(c.Index),
			partitionMessage{RunID: res.RunID, PartitionCenter: c})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// serializeToMessage marshals one hotspot payload into a Kafka message.
func serializeToMessage(res *pipeline.Result, kind, key string, payload any) (kafkago.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize %s hotspot: %w", kind, err)
	}
	return kafkago.Message{
		Key:   []byte(key),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "run_id", Value: []byte(res.RunID)},
			{Key: "kind", Value: []byte(kind)},
			{Key: "generated_at", Value: []byte(res.GeneratedAt.Format(time.RFC3339))},
		},
	}, nil
}
