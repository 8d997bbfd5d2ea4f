package tests

import (
	"context"
	"sort"
	"sync"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"
	"restaurant-ordering/ordering-svc/internal/service"
)

// memoryStore backs the end-to-end handler tests with the same contracts as
// the Postgres repository: compare-and-set status updates and unique ratings.
type memoryStore struct {
	mu      sync.Mutex
	orders  map[string]domain.Order
	dishes  map[int]domain.Dish
	ratings map[string]domain.Rating
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		orders:  map[string]domain.Order{},
		dishes:  map[int]domain.Dish{},
		ratings: map[string]domain.Rating{},
	}
}

var (
	_ service.OrderRepository  = (*memoryStore)(nil)
	_ service.DishRepository   = (*memoryStore)(nil)
	_ service.RatingRepository = (*memoryStore)(nil)
	_ service.ChefRepository   = (*memoryStore)(nil)
)

func (m *memoryStore) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[order.ID]; ok {
		return domain.ErrDuplicateOrder
	}
	m.orders[order.ID] = *order
	return nil
}

func (m *memoryStore) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	return &order, nil
}

func (m *memoryStore) ListOrders(_ context.Context) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	orders := make([]domain.Order, 0, len(m.orders))
	for _, order := range m.orders {
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreateTime.After(orders[j].CreateTime) })
	return orders, nil
}

func (m *memoryStore) UpdateOrderStatus(_ context.Context, id string, from, to domain.OrderStatus, completeTime *time.Time, updatedAt time.Time) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != from {
		return nil, domain.ErrStatusRaceLost
	}
	order.Status = to
	order.CompleteTime = completeTime
	order.UpdatedAt = updatedAt
	m.orders[id] = order
	return &order, nil
}

func (m *memoryStore) DeleteOrder(_ context.Context, id string, status domain.OrderStatus) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != status {
		return 0, nil
	}
	delete(m.orders, id)
	return 1, nil
}

func (m *memoryStore) UnfinishedOrderIDsWithDish(_ context.Context, dishID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, order := range m.orders {
		if !order.Status.Unfinished() {
			continue
		}
		for _, item := range order.Items {
			if item.ID == dishID {
				ids = append(ids, order.ID)
				break
			}
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *memoryStore) CreateDish(_ context.Context, dish *domain.Dish) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := 0
	for id := range m.dishes {
		next = max(next, id)
	}
	dish.ID = next + 1
	m.dishes[dish.ID] = *dish
	return nil
}

func (m *memoryStore) GetDish(_ context.Context, id int) (*domain.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dish, ok := m.dishes[id]
	if !ok {
		return nil, domain.ErrDishNotFound
	}
	return &dish, nil
}

func (m *memoryStore) ListDishes(_ context.Context, category string) ([]domain.Dish, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	dishes := []domain.Dish{}
	for _, dish := range m.dishes {
		if dish.Status == domain.DishOn && (category == "" || dish.Category == category) {
			dishes = append(dishes, dish)
		}
	}
	sort.Slice(dishes, func(i, j int) bool { return dishes[i].ID < dishes[j].ID })
	return dishes, nil
}

func (m *memoryStore) DeleteDish(_ context.Context, id int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.dishes[id]; !ok {
		return 0, nil
	}
	delete(m.dishes, id)
	return 1, nil
}

func (m *memoryStore) ReplaceDishes(_ context.Context, dishes []domain.Dish) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dishes = map[int]domain.Dish{}
	for _, dish := range dishes {
		m.dishes[dish.ID] = dish
	}
	return len(dishes), nil
}

func (m *memoryStore) RatingExists(_ context.Context, orderID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ratings[orderID]
	return ok, nil
}

func (m *memoryStore) InsertRating(_ context.Context, rating *domain.Rating) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ratings[rating.OrderID]; ok {
		return domain.ErrDuplicateRating
	}
	m.ratings[rating.OrderID] = *rating
	return nil
}

func (m *memoryStore) GetChef(_ context.Context, id int) (*domain.Chef, error) {
	if id != 1 {
		return nil, domain.ErrChefNotFound
	}
	chef := domain.DefaultChef()
	return &chef, nil
}

func (m *memoryStore) ratingCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ratings)
}
