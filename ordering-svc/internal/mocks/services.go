package mocks

import (
	"context"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/stretchr/testify/mock"
)

type OrderServiceInterface struct {
	mock.Mock
}

func NewOrderServiceInterface(t testingT) *OrderServiceInterface {
	m := &OrderServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *OrderServiceInterface) Create(ctx context.Context, order *domain.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *OrderServiceInterface) Get(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderServiceInterface) List(ctx context.Context) (*domain.GroupedOrders, error) {
	args := m.Called(ctx)
	grouped, _ := args.Get(0).(*domain.GroupedOrders)
	return grouped, args.Error(1)
}

func (m *OrderServiceInterface) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	args := m.Called(ctx, id, status)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *OrderServiceInterface) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *OrderServiceInterface) QRCode(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	png, _ := args.Get(0).([]byte)
	return png, args.Error(1)
}

type DishServiceInterface struct {
	mock.Mock
}

func NewDishServiceInterface(t testingT) *DishServiceInterface {
	m := &DishServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *DishServiceInterface) Create(ctx context.Context, dish *domain.Dish) error {
	return m.Called(ctx, dish).Error(0)
}

func (m *DishServiceInterface) List(ctx context.Context) ([]domain.Dish, error) {
	args := m.Called(ctx)
	dishes, _ := args.Get(0).([]domain.Dish)
	return dishes, args.Error(1)
}

func (m *DishServiceInterface) ListByCategory(ctx context.Context, category string) ([]domain.Dish, error) {
	args := m.Called(ctx, category)
	dishes, _ := args.Get(0).([]domain.Dish)
	return dishes, args.Error(1)
}

func (m *DishServiceInterface) Delete(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *DishServiceInterface) Seed(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type RatingServiceInterface struct {
	mock.Mock
}

func NewRatingServiceInterface(t testingT) *RatingServiceInterface {
	m := &RatingServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *RatingServiceInterface) Submit(ctx context.Context, rating *domain.Rating) error {
	return m.Called(ctx, rating).Error(0)
}

type ChefServiceInterface struct {
	mock.Mock
}

func NewChefServiceInterface(t testingT) *ChefServiceInterface {
	m := &ChefServiceInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *ChefServiceInterface) Info(ctx context.Context, orderID string) (*domain.Chef, error) {
	args := m.Called(ctx, orderID)
	chef, _ := args.Get(0).(*domain.Chef)
	return chef, args.Error(1)
}
