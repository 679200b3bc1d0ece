package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/Halfis/Connect4/internal/analytics"
	"github.com/Halfis/Connect4/internal/config"

	"github.com/joho/godotenv"
	"github.com/segmentio/kafka-go"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment")
	}
	cfg := config.Load()
	brokers := cfg.KafkaBrokers
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: brokers,
		Topic:   cfg.KafkaTopic,
		GroupID: config.GetEnv("KAFKA_GROUP_ID", "analytics-consumer"),
	})
	defer reader.Close()

	log.Printf("analytics consumer listening on %v topic=%s", brokers, cfg.KafkaTopic)

	metrics := analytics.NewMetrics()
	go func() {
		ticker := time.NewTicker(config.DurationEnv("ANALYTICS_REPORT_INTERVAL", 30*time.Second))
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.PrintStats()
			}
		}
	}()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				metrics.PrintStats()
				return
			}
			log.Fatalf("read error: %v", err)
		}
		e, err := analytics.Decode(msg.Value)
		if err != nil {
			log.Printf("failed to unmarshal event: %v", err)
			continue
		}
		metrics.Record(e)
		log.Printf("event=%s gameId=%s difficulty=%v", e.Event, e.GameID, e.Payload["difficulty"])
	}
}
