//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/geo-hotspot/internal/adapter/kafka"
	"github.com/couchcryptid/geo-hotspot/internal/adapter/synthetic"
	"github.com/couchcryptid/geo-hotspot/internal/config"
	"github.com/couchcryptid/geo-hotspot/internal/domain"
	"github.com/couchcryptid/geo-hotspot/internal/observability"
	"github.com/couchcryptid/geo-hotspot/internal/pipeline"
	"github.com/couchcryptid/geo-hotspot/internal/store"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testHotspotTopic = "test-hotspots"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	ctr, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("hotspot-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	brokers, err := ctr.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestPipelinePublishesHotspots runs a full analysis pass over a synthetic
// dataset and reads every published hotspot back from the topic.
func TestPipelinePublishesHotspots(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testHotspotTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testHotspotTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	st := store.New(1, discardLogger(), metrics)
	p := pipeline.New(synthetic.NewGenerator(4000, synthetic.DefaultSeed), st, writer, discardLogger(), metrics)

	params := domain.DefaultParams()
	params.Eps = 0.3
	res, err := p.Run(ctx, params)
	require.NoError(t, err)
	require.False(t, res.Empty)
	require.NotEmpty(t, res.Centers)

	want := len(res.Clusters) + len(res.Centers)

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testHotspotTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	kinds := map[string]int{}
	for range want {
		readCtx, cancelRead := context.WithTimeout(ctx, 30*time.Second)
		msg, err := consumer.ReadMessage(readCtx)
		cancelRead()
		require.NoError(t, err, "read from hotspot topic")

		headers := make(map[string]string, len(msg.Headers))
		for _, h := range msg.Headers {
			headers[h.Key] = string(h.Value)
		}
		assert.Equal(t, res.RunID, headers["run_id"])
		_, err = time.Parse(time.RFC3339, headers["generated_at"])
		assert.NoError(t, err, "generated_at should be valid RFC3339")
		kinds[headers["kind"]]++

		var payload struct {
			RunID string `json:"run_id"`
		}
		require.NoError(t, json.Unmarshal(msg.Value, &payload))
		assert.Equal(t, res.RunID, payload.RunID)
		assert.True(t, strings.HasPrefix(string(msg.Key), headers["kind"]+"-"), "key %q", msg.Key)
	}

	assert.Equal(t, len(res.Clusters), kinds[kafka.KindDensity])
	assert.Equal(t, len(res.Centers), kinds[kafka.KindPartition])
}
