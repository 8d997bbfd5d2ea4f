package service

import (
	"context"
	"errors"
	"strings"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

type ChefService struct {
	orders OrderRepository
	chefs  ChefRepository
	log    logrus.FieldLogger
}

func NewChefService(orders OrderRepository, chefs ChefRepository, log logrus.FieldLogger) *ChefService {
	return &ChefService{orders: orders, chefs: chefs, log: log}
}

// Info returns the chef of an order. Nothing assigns chefId today, so in
// practice this is the default chef for every existing order.
func (s *ChefService) Info(ctx context.Context, orderID string) (*domain.Chef, error) {
	fallback := domain.DefaultChef()

	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return &fallback, nil
	}

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.ChefID == nil {
		return &fallback, nil
	}

	chef, err := s.chefs.GetChef(ctx, *order.ChefID)
	if errors.Is(err, domain.ErrChefNotFound) {
		return &fallback, nil
	}
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateChef(chef); err != nil {
		s.log.WithError(err).WithField("chef_id", chef.ID).Warn("stored chef is invalid, using default")
		return &fallback, nil
	}
	return chef, nil
}
