package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
)

// OrderStatuses lists the lifecycle in order.
var OrderStatuses = []OrderStatus{OrderPending, OrderProcessing, OrderCompleted}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderCompleted:
		return true
	}
	return false
}

// Next returns the only status s may move to. Completed is terminal.
func (s OrderStatus) Next() (OrderStatus, bool) {
	switch s {
	case OrderPending:
		return OrderProcessing, true
	case OrderProcessing:
		return OrderCompleted, true
	}
	return "", false
}

// Unfinished reports whether an order in this status still blocks dish deletion.
func (s OrderStatus) Unfinished() bool {
	return s == OrderPending || s == OrderProcessing
}

type DishStatus string

const (
	DishOn  DishStatus = "on"
	DishOff DishStatus = "off"
)

type ChefStatus string

const (
	ChefActive   ChefStatus = "active"
	ChefInactive ChefStatus = "inactive"
)

type Dish struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Description string     `json:"description,omitempty"`
	Image       string     `json:"image,omitempty"`
	Status      DishStatus `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LineItem is a copy of the dish at ordering time, not a live reference.
type LineItem struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID           string      `json:"id"`
	Items        []LineItem  `json:"items"`
	TotalAmount  float64     `json:"totalAmount"`
	Status       OrderStatus `json:"status"`
	TableNumber  string      `json:"tableNumber"`
	CustomerName string      `json:"customerName"`
	CreateTime   time.Time   `json:"createTime"`
	CompleteTime *time.Time  `json:"completeTime,omitempty"`
	ChefID       *int        `json:"chefId,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// GroupedOrders is the list view: one bucket per status, newest first.
type GroupedOrders struct {
	Pending    []Order `json:"pending"`
	Processing []Order `json:"processing"`
	Completed  []Order `json:"completed"`
}

type Rating struct {
	OrderID   string    `json:"orderId"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	Images    []string  `json:"images"`
	CreatedAt time.Time `json:"createdAt"`
}

type Chef struct {
	ID        int        `json:"id"`
	Name      string     `json:"name"`
	Avatar    string     `json:"avatar"`
	Rating    float64    `json:"rating"`
	Status    ChefStatus `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

const DefaultChefAvatar = "/images/chef-avatar.png"

// DefaultChef is returned whenever an order has no chef assigned.
func DefaultChef() Chef {
	return Chef{
		ID:     1,
		Name:   "主厨",
		Avatar: DefaultChefAvatar,
		Rating: 4.8,
		Status: ChefActive,
	}
}

type EventType string

const (
	EventOrderCreated       EventType = "order_created"
	EventOrderStatusChanged EventType = "order_status_changed"
	EventOrderDeleted       EventType = "order_deleted"
	EventRatingSubmitted    EventType = "rating_submitted"
)

type OrderEvent struct {
	Type      EventType   `json:"type"`
	OrderID   string      `json:"orderId"`
	Status    OrderStatus `json:"status,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

type RatingEvent struct {
	Type      EventType `json:"type"`
	OrderID   string    `json:"orderId"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}
