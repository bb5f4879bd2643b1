package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher lazily creates its writer on first publish.
type KafkaPublisher struct {
	brokers []string
	topic   string

	mu     sync.Mutex
	writer messageWriter
}

// NewKafkaPublisher creates a KafkaPublisher for a single topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{brokers: brokers, topic: topic}
}

// Publish encodes the payload as JSON with an event_type header.
func (p *KafkaPublisher) Publish(ctx context.Context, evt Event) error {
	msg, err := encode(evt, time.Now().UTC())
	if err != nil {
		return err
	}
	return p.writerForTopic().WriteMessages(ctx, msg)
}

func encode(evt Event, now time.Time) (kafka.Message, error) {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %s: %w", evt.Type, err)
	}
	return kafka.Message{
		Key:   []byte(evt.Key),
		Value: payload,
		Time:  now,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}, nil
}

func (p *KafkaPublisher) writerForTopic() messageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer != nil {
		return p.writer
	}
	p.writer = &kafka.Writer{
		Addr:                   kafka.TCP(p.brokers...),
		Topic:                  p.topic,
		RequiredAcks:           kafka.RequireAll,
		Compression:            kafka.Snappy,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return p.writer
}

// Close releases the writer.
func (p *KafkaPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.writer == nil {
		return nil
	}
	err := p.writer.Close()
	p.writer = nil
	return err
}
