package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"restaurant-ordering/agg-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

// DefaultChefID is the chef every rating is credited to.
const DefaultChefID = 1

const (
	defaultRetryDelay = 500 * time.Millisecond
	maxRetryDelay     = 30 * time.Second
)

type Consumer struct {
	Reader     MessageReader
	Store      StoreInterface
	Log        logrus.FieldLogger
	ChefID     int
	RetryDelay time.Duration
}

func NewConsumer(reader MessageReader, store StoreInterface, log logrus.FieldLogger) *Consumer {
	return &Consumer{
		Reader:     reader,
		Store:      store,
		Log:        log,
		ChefID:     DefaultChefID,
		RetryDelay: defaultRetryDelay,
	}
}

func (c *Consumer) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}

// Start reads until ctx is cancelled or the reader is closed. Bad payloads and
// failed updates are logged and skipped; read errors back off exponentially.
func (c *Consumer) Start(ctx context.Context) {
	log := c.logger()
	log.Info("Starting rating aggregation consumer")

	delay := c.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	backoff := delay
	for {
		message, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				log.Info("Rating aggregation consumer stopped")
				return
			}
			log.WithError(err).WithField("retry_in", backoff.String()).Error("Error reading message")
			select {
			case <-ctx.Done():
				log.Info("Rating aggregation consumer stopped")
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxRetryDelay)
			continue
		}
		backoff = delay

		var evt domain.RatingEvent
		if err := json.Unmarshal(message.Value, &evt); err != nil {
			log.WithError(err).WithField("offset", message.Offset).Warn("Error unmarshaling message")
			continue
		}

		if err := c.ProcessEvent(ctx, evt); err != nil {
			log.WithError(err).WithField("order_id", evt.OrderID).Error("Error processing rating event")
		}
	}
}

func (c *Consumer) ProcessEvent(ctx context.Context, evt domain.RatingEvent) error {
	log := c.logger().WithFields(logrus.Fields{"type": evt.Type, "order_id": evt.OrderID})
	if evt.Type != domain.EventRatingSubmitted {
		log.Debug("Ignoring event")
		return nil
	}

	chefID := c.ChefID
	if chefID == 0 {
		chefID = DefaultChefID
	}

	stats, err := c.Store.RecomputeChefRating(ctx, chefID)
	if err != nil {
		return fmt.Errorf("recompute chef rating: %w", err)
	}

	if err := c.Store.MirrorStats(ctx, stats); err != nil {
		return fmt.Errorf("mirror stats: %w", err)
	}

	log.WithFields(logrus.Fields{
		"rating":  evt.Rating,
		"average": stats.Average,
		"count":   stats.Count,
	}).Info("Rating aggregated")
	return nil
}
