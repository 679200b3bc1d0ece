package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Halfis/Connect4/internal/game"
)

type Config struct {
	Addr           string
	IdleTimeout    time.Duration
	PostgresURL    string
	RedisURL       string
	RedisPassword  string
	LeaderboardTTL time.Duration
	KafkaBrokers   []string
	KafkaTopic     string
	BoardRows      int
	BoardCols      int
	ParallelSearch bool
}

// Load reads the process environment. Values that fail to parse are logged
// and replaced by their defaults.
func Load() Config {
	// PORT wins over ADDR for hosts that inject it (Render, Fly.io, Heroku).
	addr := GetEnv("ADDR", ":8080")
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return Config{
		Addr:           addr,
		IdleTimeout:    DurationEnv("IDLE_TIMEOUT", 5*time.Minute),
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		LeaderboardTTL: DurationEnv("LEADERBOARD_TTL", 30*time.Second),
		KafkaBrokers:   ListEnv("KAFKA_BROKERS"),
		KafkaTopic:     GetEnv("KAFKA_TOPIC", "game-events"),
		BoardRows:      positive("BOARD_ROWS", game.DefaultRows),
		BoardCols:      positive("BOARD_COLS", game.DefaultColumns),
		ParallelSearch: BoolEnv("PARALLEL_SEARCH", false),
	}
}

func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func IntEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid integer for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

// DurationEnv reads whole seconds.
func DurationEnv(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	secs, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("invalid duration for %s: %q, using %s", key, v, fallback)
		return fallback
	}
	return time.Duration(secs) * time.Second
}

func BoolEnv(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("invalid boolean for %s: %q, using %v", key, v, fallback)
		return fallback
	}
	return b
}

// ListEnv splits a comma separated value, dropping blanks.
func ListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func positive(key string, fallback int) int {
	n := IntEnv(key, fallback)
	if n <= 0 {
		log.Printf("%s must be positive, using %d", key, fallback)
		return fallback
	}
	return n
}
