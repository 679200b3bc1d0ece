package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Halfis/Connect4/internal/analytics"
	"github.com/Halfis/Connect4/internal/config"
	"github.com/Halfis/Connect4/internal/server"
	"github.com/Halfis/Connect4/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment")
	}
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.Store = storage.NewMemoryStore()
	if cfg.PostgresURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.PostgresURL)
		if err != nil {
			log.Printf("postgres disabled: %v", err)
		} else {
			defer pg.Close()
			if err := pg.EnsureTables(ctx); err != nil {
				log.Printf("postgres ensure tables failed: %v", err)
			}
			store = pg
		}
	}
	if cfg.RedisURL != "" {
		client, err := storage.NewRedisClient(ctx, cfg.RedisURL, cfg.RedisPassword)
		if err != nil {
			log.Printf("redis cache disabled: %v", err)
		} else {
			defer client.Close()
			store = storage.NewCachedStore(store, client, cfg.LeaderboardTTL)
		}
	}

	producer := analytics.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer producer.Close()

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(server.Config{
		Rows:           cfg.BoardRows,
		Cols:           cfg.BoardCols,
		IdleTimeout:    cfg.IdleTimeout,
		ParallelSearch: cfg.ParallelSearch,
		Store:          store,
		Analytics:      producer,
	})

	log.Printf("server listening on %s", cfg.Addr)
	if err := srv.Run(ctx, cfg.Addr); err != nil {
		log.Fatal(err)
	}
}
