package service

import (
	"context"
	"fmt"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

type RatingService struct {
	orders     OrderRepository
	repository RatingRepository
	cache      RatingCache
	publisher  EventPublisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewRatingService(orders OrderRepository, repository RatingRepository, cache RatingCache, publisher EventPublisher, log logrus.FieldLogger) *RatingService {
	return &RatingService{
		orders:     orders,
		repository: repository,
		cache:      cache,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// Submit stores the one rating an order may have. The existence check and the
// insert are separate statements; two concurrent submissions can both pass the
// check, and UNIQUE(order_id) turns the later insert into ErrDuplicateRating.
func (s *RatingService) Submit(ctx context.Context, rating *domain.Rating) error {
	if err := domain.ValidateRating(rating); err != nil {
		return err
	}

	if _, err := s.orders.GetOrder(ctx, rating.OrderID); err != nil {
		return err
	}

	var markerKey string
	if s.cache != nil {
		markerKey = s.cache.RatingMarkerKey(rating.OrderID)
		if exists, err := s.cache.Exists(ctx, markerKey); err != nil {
			s.log.WithError(err).Warn("rating marker lookup failed")
		} else if exists {
			return domain.ErrDuplicateRating
		}
	}

	exists, err := s.repository.RatingExists(ctx, rating.OrderID)
	if err != nil {
		return fmt.Errorf("failed to check existing rating: %w", err)
	}
	if exists {
		return domain.ErrDuplicateRating
	}

	if rating.Images == nil {
		rating.Images = []string{}
	}
	rating.CreatedAt = s.now()
	if err := s.repository.InsertRating(ctx, rating); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.SetMarker(ctx, markerKey); err != nil {
			s.log.WithError(err).Warn("failed to set rating marker")
		}
	}

	s.log.WithFields(logrus.Fields{"order_id": rating.OrderID, "rating": rating.Rating}).Info("rating submitted")
	if s.publisher != nil {
		event := domain.RatingEvent{
			Type:      domain.EventRatingSubmitted,
			OrderID:   rating.OrderID,
			Rating:    rating.Rating,
			Timestamp: rating.CreatedAt,
		}
		if err := s.publisher.PublishRatingEvent(ctx, event); err != nil {
			s.log.WithError(err).WithField("order_id", rating.OrderID).Warn("failed to publish rating event")
		}
	}
	return nil
}
