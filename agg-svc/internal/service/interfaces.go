package service

import (
	"context"

	"restaurant-ordering/agg-svc/internal/domain"
	"restaurant-ordering/agg-svc/internal/storage"

	"github.com/segmentio/kafka-go"
)

type StoreInterface interface {
	RecomputeChefRating(ctx context.Context, chefID int) (domain.RatingStats, error)
	MirrorStats(ctx context.Context, stats domain.RatingStats) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type ConsumerInterface interface {
	Start(ctx context.Context)
	ProcessEvent(ctx context.Context, evt domain.RatingEvent) error
}

var (
	_ StoreInterface    = (*storage.Store)(nil)
	_ MessageReader     = (*kafka.Reader)(nil)
	_ ConsumerInterface = (*Consumer)(nil)
)
