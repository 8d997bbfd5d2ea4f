package service

import (
	"context"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"
)

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, completeTime *time.Time, updatedAt time.Time) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id string, status domain.OrderStatus) (int64, error)
}

type DishRepository interface {
	CreateDish(ctx context.Context, dish *domain.Dish) error
	GetDish(ctx context.Context, id int) (*domain.Dish, error)
	ListDishes(ctx context.Context, category string) ([]domain.Dish, error)
	DeleteDish(ctx context.Context, id int) (int64, error)
	ReplaceDishes(ctx context.Context, dishes []domain.Dish) (int, error)
	UnfinishedOrderIDsWithDish(ctx context.Context, dishID int) ([]string, error)
}

type RatingRepository interface {
	RatingExists(ctx context.Context, orderID string) (bool, error)
	InsertRating(ctx context.Context, rating *domain.Rating) error
}

type ChefRepository interface {
	GetChef(ctx context.Context, id int) (*domain.Chef, error)
}

type RatingCache interface {
	RatingMarkerKey(orderID string) string
	Exists(ctx context.Context, key string) (bool, error)
	SetMarker(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error
	PublishRatingEvent(ctx context.Context, event domain.RatingEvent) error
}

type OrderServiceInterface interface {
	Create(ctx context.Context, order *domain.Order) error
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) (*domain.GroupedOrders, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	QRCode(ctx context.Context, id string) ([]byte, error)
}

type DishServiceInterface interface {
	Create(ctx context.Context, dish *domain.Dish) error
	List(ctx context.Context) ([]domain.Dish, error)
	ListByCategory(ctx context.Context, category string) ([]domain.Dish, error)
	Delete(ctx context.Context, id int) error
	Seed(ctx context.Context) (int, error)
}

type RatingServiceInterface interface {
	Submit(ctx context.Context, rating *domain.Rating) error
}

type ChefServiceInterface interface {
	Info(ctx context.Context, orderID string) (*domain.Chef, error)
}

var (
	_ OrderServiceInterface  = (*OrderService)(nil)
	_ DishServiceInterface   = (*DishService)(nil)
	_ RatingServiceInterface = (*RatingService)(nil)
	_ ChefServiceInterface   = (*ChefService)(nil)
)
