//go:build integration

package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"
)

func TestKafkaPublisherDeliversWorkoutLogged(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	kafkaC, err := kafkaContainer.RunContainer(ctx, testcontainers.WithEnv(map[string]string{
		"KAFKA_AUTO_CREATE_TOPICS_ENABLE": "true",
	}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kafkaC.Terminate(context.Background()) })

	brokers, err := kafkaC.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)

	topic := "workout_events"
	conn, err := kafka.Dial("tcp", brokers[0])
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	publisher := NewKafkaPublisher(brokers, topic)
	t.Cleanup(func() { _ = publisher.Close() })

	require.NoError(t, publisher.Publish(ctx, Event{
		Type: TypeWorkoutLogged,
		Key:  "w-1",
		Payload: WorkoutLogged{
			WorkoutID:   "w-1",
			Kind:        "cycling",
			Coordinates: [2]float64{38.7, -9.1},
			Distance:    27,
			Duration:    95,
			Description: "Cycling on December 3",
		},
	}))

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	require.Equal(t, "w-1", string(msg.Key))

	var evt WorkoutLogged
	require.NoError(t, json.Unmarshal(msg.Value, &evt))
	require.Equal(t, "cycling", evt.Kind)
	require.Equal(t, 27.0, evt.Distance)
}
