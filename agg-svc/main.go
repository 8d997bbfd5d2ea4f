package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"restaurant-ordering/agg-svc/internal/service"
	"restaurant-ordering/agg-svc/internal/storage"
	"restaurant-ordering/config"
	"restaurant-ordering/logging"
)

const consumerGroup = "agg-svc-consumer"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(config.Config{}).WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg)

	if cfg.KafkaBroker == "" {
		log.Fatal("KAFKA_BROKER is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(cfg)
	defer db.Close()

	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg, config.TopicRatings, consumerGroup)
	defer reader.Close()

	consumer := service.NewConsumer(reader, storage.NewStore(db, rdb), log.WithField("service", "agg-svc"))
	consumer.Start(ctx)
}
