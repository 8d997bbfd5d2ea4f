// Package mocks holds testify mocks for the service-layer interfaces.
package mocks

import (
	"context"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type OrderRepository struct {
	mock.Mock
}

func NewOrderRepository(t testingT) *OrderRepository {
	m := &OrderRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderRepository) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	orders, _ := args.Get(0).([]domain.Order)
	return orders, args.Error(1)
}

func (m *OrderRepository) UpdateOrderStatus(ctx context.Context, id string, from, to domain.OrderStatus, completeTime *time.Time, updatedAt time.Time) (*domain.Order, error) {
	args := m.Called(ctx, id, from, to, completeTime, updatedAt)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderRepository) DeleteOrder(ctx context.Context, id string, status domain.OrderStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

type DishRepository struct {
	mock.Mock
}

func NewDishRepository(t testingT) *DishRepository {
	m := &DishRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DishRepository) CreateDish(ctx context.Context, dish *domain.Dish) error {
	return m.Called(ctx, dish).Error(0)
}

func (m *DishRepository) GetDish(ctx context.Context, id int) (*domain.Dish, error) {
	args := m.Called(ctx, id)
	dish, _ := args.Get(0).(*domain.Dish)
	return dish, args.Error(1)
}

func (m *DishRepository) ListDishes(ctx context.Context, category string) ([]domain.Dish, error) {
	args := m.Called(ctx, category)
	dishes, _ := args.Get(0).([]domain.Dish)
	return dishes, args.Error(1)
}

func (m *DishRepository) DeleteDish(ctx context.Context, id int) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *DishRepository) ReplaceDishes(ctx context.Context, dishes []domain.Dish) (int, error) {
	args := m.Called(ctx, dishes)
	return args.Int(0), args.Error(1)
}

func (m *DishRepository) UnfinishedOrderIDsWithDish(ctx context.Context, dishID int) ([]string, error) {
	args := m.Called(ctx, dishID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type RatingRepository struct {
	mock.Mock
}

func NewRatingRepository(t testingT) *RatingRepository {
	m := &RatingRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RatingRepository) RatingExists(ctx context.Context, orderID string) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *RatingRepository) InsertRating(ctx context.Context, rating *domain.Rating) error {
	return m.Called(ctx, rating).Error(0)
}

type ChefRepository struct {
	mock.Mock
}

func NewChefRepository(t testingT) *ChefRepository {
	m := &ChefRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChefRepository) GetChef(ctx context.Context, id int) (*domain.Chef, error) {
	args := m.Called(ctx, id)
	chef, _ := args.Get(0).(*domain.Chef)
	return chef, args.Error(1)
}

type RatingCache struct {
	mock.Mock
}

func NewRatingCache(t testingT) *RatingCache {
	m := &RatingCache{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RatingCache) RatingMarkerKey(orderID string) string {
	return m.Called(orderID).String(0)
}

func (m *RatingCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *RatingCache) SetMarker(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type EventPublisher struct {
	mock.Mock
}

func NewEventPublisher(t testingT) *EventPublisher {
	m := &EventPublisher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *EventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *EventPublisher) PublishRatingEvent(ctx context.Context, event domain.RatingEvent) error {
	return m.Called(ctx, event).Error(0)
}

type QRGenerator struct {
	mock.Mock
}

func NewQRGenerator(t testingT) *QRGenerator {
	m := &QRGenerator{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *QRGenerator) Generate(orderID string) ([]byte, error) {
	args := m.Called(orderID)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}
