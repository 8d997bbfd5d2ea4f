package service

import (
	"context"
	"strings"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

// AllCategories are the category values that disable filtering.
var AllCategories = []string{"全部", "all"}

const (
	sampleImageA = "https://gw.alicdn.com/tfs/TB1UdW.dHj1gK0jSZFuXXcrHpXa-1000-1000.jpg"
	sampleImageB = "https://gw.alicdn.com/tfs/TB1l_qbdO_1gK0jSZFqXXcpaXXa-1000-1000.jpg"
)

func SampleDishes() []domain.Dish {
	return []domain.Dish{
		{ID: 1, Name: "宫保鸡丁", Price: 28, Category: "热菜", Description: "传统川菜，口感麻辣鲜香", Image: sampleImageA, Status: domain.DishOn},
		{ID: 2, Name: "酸辣土豆丝", Price: 16, Category: "凉菜", Description: "开胃爽口", Image: sampleImageB, Status: domain.DishOn},
		{ID: 3, Name: "麻婆豆腐", Price: 22, Category: "热菜", Description: "香辣可口，入口即化", Image: sampleImageA, Status: domain.DishOn},
		{ID: 4, Name: "米饭", Price: 2, Category: "主食", Description: "香软可口", Image: sampleImageB, Status: domain.DishOn},
		{ID: 5, Name: "可乐", Price: 6, Category: "饮品", Description: "冰镇可乐", Image: sampleImageB, Status: domain.DishOn},
	}
}

type DishService struct {
	repository DishRepository
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewDishService(repository DishRepository, log logrus.FieldLogger) *DishService {
	return &DishService{repository: repository, log: log, now: time.Now}
}

// Create adds a dish with id = max(id)+1. Concurrent creates may race for the
// same id; the loser gets ErrDuplicateDish.
func (s *DishService) Create(ctx context.Context, dish *domain.Dish) error {
	if dish.Status == "" {
		dish.Status = domain.DishOn
	}
	if err := domain.ValidateDish(dish); err != nil {
		return err
	}

	now := s.now()
	dish.CreatedAt = now
	dish.UpdatedAt = now
	if err := s.repository.CreateDish(ctx, dish); err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"dish_id": dish.ID, "name": dish.Name}).Info("dish created")
	return nil
}

func (s *DishService) List(ctx context.Context) ([]domain.Dish, error) {
	return s.repository.ListDishes(ctx, "")
}

func (s *DishService) ListByCategory(ctx context.Context, category string) ([]domain.Dish, error) {
	category = strings.TrimSpace(category)
	for _, all := range AllCategories {
		if strings.EqualFold(category, all) {
			category = ""
			break
		}
	}
	return s.repository.ListDishes(ctx, category)
}

// Delete removes a dish unless a pending or processing order still lists it.
func (s *DishService) Delete(ctx context.Context, id int) error {
	if _, err := s.repository.GetDish(ctx, id); err != nil {
		return err
	}

	blocking, err := s.repository.UnfinishedOrderIDsWithDish(ctx, id)
	if err != nil {
		return err
	}
	if len(blocking) > 0 {
		return &domain.DishInUseError{DishID: id, OrderIDs: blocking}
	}

	rows, err := s.repository.DeleteDish(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrDishNotFound
	}
	s.log.WithField("dish_id", id).Info("dish deleted")
	return nil
}

// Seed replaces the whole catalog with the sample dishes.
func (s *DishService) Seed(ctx context.Context) (int, error) {
	now := s.now()
	dishes := SampleDishes()
	for i := range dishes {
		dishes[i].CreatedAt = now
		dishes[i].UpdatedAt = now
	}
	count, err := s.repository.ReplaceDishes(ctx, dishes)
	if err != nil {
		return 0, err
	}
	s.log.WithField("count", count).Info("dish catalog seeded")
	return count, nil
}
