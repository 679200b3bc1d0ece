package analytics

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Producer writes game events to kafka. A nil Producer drops everything, so
// callers need not check whether analytics is configured.
type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{writer: writer}
}

// Publish keys messages by game id so one game's events stay ordered.
func (p *Producer) Publish(ctx context.Context, e Event) {
	if p == nil || p.writer == nil {
		return
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("encode %s event: %v", e.Event, err)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(e.GameID), Value: data})
	if err != nil {
		log.Printf("kafka publish failed: %v", err)
	}
}

func (p *Producer) Close() {
	if p == nil || p.writer == nil {
		return
	}
	_ = p.writer.Close()
}
