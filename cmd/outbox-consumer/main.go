package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/playhall/platform/internal/infra"
	"github.com/playhall/platform/internal/repository"
)

// Topic per aggregate type keeps consumer groups narrow; partition keys keep
// one player's events ordered.
func topicFor(aggregateType string) string {
	return "casino." + aggregateType + ".events"
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("outbox consumer failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("outbox-consumer connected to postgres")

	producer := infra.NewKafkaProducer(cfg.KafkaBrokers, cfg.KafkaEnabled, logger)
	defer producer.Close()

	pollInterval := 2 * time.Second
	if s := os.Getenv("OUTBOX_POLL_INTERVAL"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			pollInterval = d
		}
	}

	batchSize := 100
	if s := os.Getenv("OUTBOX_BATCH_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			batchSize = n
		}
	}

	repo := repository.NewOutboxRepository()
	logger.Info("outbox-consumer starting", "poll_interval", pollInterval, "batch_size", batchSize)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("outbox-consumer shutting down")
			return nil
		case <-ticker.C:
			if err := poll(ctx, pool, repo, producer, logger, batchSize); err != nil {
				logger.Error("poll error", "error", err)
			}
		}
	}
}

func poll(ctx context.Context, pool *pgxpool.Pool, repo repository.OutboxRepository, producer *infra.KafkaProducer, logger *slog.Logger, limit int) error {
	rows, err := repo.FetchUnpublished(ctx, pool, limit)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if len(rows) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		topic := topicFor(string(row.Draft.AggregateType))
		if err := producer.Publish(ctx, topic, []byte(row.Draft.PartitionKey), row.Draft.Payload); err != nil {
			// Stop the batch here; unpublished rows stay in the outbox and
			// the next tick retries in order.
			logger.Error("publish failed", "seq", row.Seq, "topic", topic, "error", err)
			break
		}
		logger.Info("outbox event published",
			"seq", row.Seq,
			"event_id", row.Draft.EventID,
			"event_type", row.Draft.EventType,
			"topic", topic,
		)
		ids = append(ids, row.Seq)
	}

	if err := repo.MarkPublished(ctx, pool, ids); err != nil {
		return fmt.Errorf("mark published: %w", err)
	}

	if len(ids) > 0 {
		logger.Info("processed outbox batch", "count", len(ids))
	}
	return nil
}
