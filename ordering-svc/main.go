package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-ordering/config"
	"restaurant-ordering/logging"
	httpapi "restaurant-ordering/ordering-svc/internal/api/http"
	"restaurant-ordering/ordering-svc/internal/service"
	"restaurant-ordering/ordering-svc/internal/storage"
	"restaurant-ordering/ordering-svc/internal/upload"
)

const ratingMarkerTTL = 30 * 24 * time.Hour

func main() {
	cfg, err := config.Load()
	if err != nil {
		// logger config is not known yet
		logging.New(config.Config{}).WithError(err).Fatal("Failed to load configuration")
	}
	log := logging.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := config.MustInitPostgres(cfg)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.WithError(err).Fatal("Failed to ensure schema")
	}

	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	var orderEvents, ratingEvents storage.MessageWriter
	if cfg.KafkaBroker != "" {
		ordersWriter := config.NewKafkaWriter(cfg, config.TopicOrders)
		defer ordersWriter.Close()
		ratingsWriter := config.NewKafkaWriter(cfg, config.TopicRatings)
		defer ratingsWriter.Close()
		orderEvents, ratingEvents = ordersWriter, ratingsWriter
	} else {
		log.Warn("KAFKA_BROKER not set, events will not be published")
	}
	publisher := storage.NewKafkaPublisher(orderEvents, ratingEvents)

	qr := service.DefaultQRGenerator{BaseURL: cfg.PublicBaseURL}
	sink := upload.NewDiskSink(cfg.UploadDir)

	handler := &httpapi.Handler{
		Orders:        service.NewOrderService(repo, qr, publisher, log),
		Dishes:        service.NewDishService(repo, log),
		Ratings:       service.NewRatingService(repo, repo, storage.NewRedisCache(rdb, ratingMarkerTTL), publisher, log),
		Chefs:         service.NewChefService(repo, repo, log),
		DishUploads:   upload.NewIngestor(sink, upload.DishImages(), log),
		RatingUploads: upload.NewIngestor(sink, upload.RatingImages(), log),
		Log:           log,
		Production:    cfg.IsProduction(),
	}

	router := httpapi.NewRouter(handler, httpapi.RouterOptions{
		UploadDir:      cfg.UploadDir,
		MaxRequestSize: cfg.MaxRequestSize,
		Limiter:        storage.NewRateLimiter(rdb),
		TrustProxy:     cfg.TrustProxy,
	})

	if err := httpapi.StartServer(ctx, ":"+cfg.Port, router, log); err != nil {
		log.WithError(err).Fatal("Server stopped")
	}
}
