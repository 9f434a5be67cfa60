// Package main implements the background index worker. It consumes index
// jobs from NATS, embeds the text, and writes the vector to Qdrant.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/BlockSavvy/jetstream-sub001/engine/embed"
	"github.com/BlockSavvy/jetstream-sub001/engine/semantic"
	"github.com/BlockSavvy/jetstream-sub001/engine/sim"
	"github.com/BlockSavvy/jetstream-sub001/pkg/natsutil"
)

// Config holds all environment-based configuration.
type Config struct {
	NatsURL     string
	QdrantURL   string
	Prefix      string
	EmbedDims   int
	EmbedRate   float64
	CohereKey   string
	CohereModel string
	QueueSize   int
}

func loadConfig() Config {
	return Config{
		NatsURL:     envOr("NATS_URL", nats.DefaultURL),
		QdrantURL:   envOr("QDRANT_URL", "localhost:6334"),
		Prefix:      envOr("COLLECTION_PREFIX", "jetstream"),
		EmbedDims:   envIntOr("EMBED_DIMS", 1024),
		EmbedRate:   envFloatOr("EMBED_RATE", 10),
		CohereKey:   os.Getenv("COHERE_API_KEY"),
		CohereModel: envOr("COHERE_MODEL", "embed-english-v3.0"),
		QueueSize:   envIntOr("INDEX_QUEUE_SIZE", 256),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func main() {
	godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg := loadConfig()

	if err := run(cfg, logger); err != nil {
		logger.Error("worker exited with error", "err", err)
		os.Exit(1)
	}
}

func run(cfg Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	vectors, err := semantic.NewQdrant(cfg.QdrantURL, cfg.Prefix, cfg.EmbedDims)
	if err != nil {
		return fmt.Errorf("qdrant connect: %w", err)
	}
	defer vectors.Close()

	if cfg.CohereKey == "" {
		return fmt.Errorf("COHERE_API_KEY is required")
	}
	primary, err := embed.NewCohereProvider(cfg.CohereKey, cfg.CohereModel, "")
	if err != nil {
		return fmt.Errorf("cohere provider: %w", err)
	}
	enc := embed.NewClient(primary, cfg.EmbedDims,
		embed.WithLimiter(rate.NewLimiter(rate.Limit(cfg.EmbedRate), int(cfg.EmbedRate)+1)),
		embed.WithLogger(logger),
	)

	worker := sim.NewWorker(enc, vectors, cfg.QueueSize, logger)
	go worker.Run(ctx)

	nc, err := nats.Connect(cfg.NatsURL, nats.Name("jetstream-worker"))
	if err != nil {
		return fmt.Errorf("nats connect: %w", err)
	}
	defer nc.Close()

	sub, err := natsutil.QueueSubscribe(nc, sim.SubjectIndexJobs, sim.IndexQueueGroup,
		func(ctx context.Context, job sim.IndexJob) {
			if err := worker.Dispatch(ctx, job); err != nil {
				logger.Warn("index job dropped", "namespace", job.Namespace, "id", job.ID, "err", err)
			}
		})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", sim.SubjectIndexJobs, err)
	}
	defer sub.Drain()

	logger.Info("index worker running", "subject", sim.SubjectIndexJobs, "queue", sim.IndexQueueGroup)
	<-ctx.Done()
	logger.Info("shutting down", "pending", worker.Pending())
	return nil
}
