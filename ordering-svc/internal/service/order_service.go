package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"restaurant-ordering/ordering-svc/internal/domain"

	"github.com/sirupsen/logrus"
)

type OrderService struct {
	repository OrderRepository
	qrEncoder  QRGenerator
	publisher  EventPublisher
	log        logrus.FieldLogger
	now        func() time.Time
}

func NewOrderService(repository OrderRepository, qr QRGenerator, publisher EventPublisher, log logrus.FieldLogger) *OrderService {
	return &OrderService{
		repository: repository,
		qrEncoder:  qr,
		publisher:  publisher,
		log:        log,
		now:        time.Now,
	}
}

// Create stores a new pending order. The caller's totalAmount is kept as sent.
func (s *OrderService) Create(ctx context.Context, order *domain.Order) error {
	if err := domain.ValidateOrder(order); err != nil {
		return err
	}

	now := s.now()
	order.ID = strings.TrimSpace(order.ID)
	if order.ID == "" {
		order.ID = fmt.Sprintf("OD%d", now.UnixMilli())
	}
	if order.CreateTime.IsZero() {
		order.CreateTime = now
	}
	order.Status = domain.OrderPending
	order.CompleteTime = nil
	order.ChefID = nil
	order.UpdatedAt = now

	if err := s.repository.CreateOrder(ctx, order); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{"order_id": order.ID, "table": order.TableNumber}).Info("order created")
	s.publish(ctx, domain.EventOrderCreated, order.ID, order.Status)
	return nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repository.GetOrder(ctx, id)
}

// List groups every order by status; each group keeps the repository's
// newest-first order.
func (s *OrderService) List(ctx context.Context) (*domain.GroupedOrders, error) {
	orders, err := s.repository.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	grouped := &domain.GroupedOrders{
		Pending:    []domain.Order{},
		Processing: []domain.Order{},
		Completed:  []domain.Order{},
	}
	for _, order := range orders {
		switch order.Status {
		case domain.OrderPending:
			grouped.Pending = append(grouped.Pending, order)
		case domain.OrderProcessing:
			grouped.Processing = append(grouped.Processing, order)
		case domain.OrderCompleted:
			grouped.Completed = append(grouped.Completed, order)
		default:
			s.log.WithFields(logrus.Fields{"order_id": order.ID, "status": order.Status}).Warn("order with unknown status skipped")
		}
	}
	return grouped, nil
}

// UpdateStatus advances an order by exactly one step. The write only lands if
// the order is still in the status that was read.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	target, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	current, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.CheckTransition(current.Status, target); err != nil {
		return nil, err
	}

	now := s.now()
	completeTime := current.CompleteTime
	if target == domain.OrderCompleted && completeTime == nil {
		completeTime = &now
	}

	updated, err := s.repository.UpdateOrderStatus(ctx, id, current.Status, target, completeTime, now)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"order_id": id, "from": current.Status, "to": target}).Info("order status changed")
	s.publish(ctx, domain.EventOrderStatusChanged, id, target)
	return updated, nil
}

// Delete cancels a pending order. Any other status is a conflict and the
// order is left untouched.
func (s *OrderService) Delete(ctx context.Context, id string) error {
	current, err := s.repository.GetOrder(ctx, id)
	if err != nil {
		return err
	}
	if current.Status != domain.OrderPending {
		return domain.ErrOrderNotPending
	}

	rows, err := s.repository.DeleteOrder(ctx, id, domain.OrderPending)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrStatusRaceLost
	}

	s.log.WithField("order_id", id).Info("order cancelled")
	s.publish(ctx, domain.EventOrderDeleted, id, "")
	return nil
}

func (s *OrderService) QRCode(ctx context.Context, id string) ([]byte, error) {
	if _, err := s.repository.GetOrder(ctx, id); err != nil {
		return nil, err
	}
	if s.qrEncoder == nil {
		return nil, fmt.Errorf("qr code generation is not configured")
	}
	qr, err := s.qrEncoder.Generate(id)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code for order %s: %w", id, err)
	}
	return qr, nil
}

func (s *OrderService) publish(ctx context.Context, eventType domain.EventType, orderID string, status domain.OrderStatus) {
	if s.publisher == nil {
		return
	}
	event := domain.OrderEvent{Type: eventType, OrderID: orderID, Status: status, Timestamp: s.now()}
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		s.log.WithError(err).WithField("order_id", orderID).Warn("failed to publish order event")
	}
}
