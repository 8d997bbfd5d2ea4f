package domain

import (
	"fmt"
	"strings"
)

const (
	MinRatingScore = 1
	MaxRatingScore = 5
)

func ValidateOrder(o *Order) error {
	verr := &ValidationError{}
	if len(o.Items) == 0 {
		verr.Add("items", "at least one item is required")
	}
	for i, item := range o.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.Quantity < 1 {
			verr.Add(field+".quantity", "must be at least 1")
		}
		if item.Price < 0 {
			verr.Add(field+".price", "must not be negative")
		}
	}
	// totalAmount is trusted as sent; only its sign is checked.
	if o.TotalAmount < 0 {
		verr.Add("totalAmount", "must not be negative")
	}
	if strings.TrimSpace(o.TableNumber) == "" {
		verr.Add("tableNumber", "is required")
	}
	if strings.TrimSpace(o.CustomerName) == "" {
		verr.Add("customerName", "is required")
	}
	return verr.OrNil()
}

func ValidateDish(d *Dish) error {
	verr := &ValidationError{}
	if strings.TrimSpace(d.Name) == "" {
		verr.Add("name", "is required")
	}
	if strings.TrimSpace(d.Category) == "" {
		verr.Add("category", "is required")
	}
	if d.Price < 0 {
		verr.Add("price", "must not be negative")
	}
	if d.Status != DishOn && d.Status != DishOff {
		verr.Add("status", "must be one of on, off")
	}
	return verr.OrNil()
}

func ValidateRating(r *Rating) error {
	verr := &ValidationError{}
	if strings.TrimSpace(r.OrderID) == "" {
		verr.Add("orderId", "is required")
	}
	if r.Rating < MinRatingScore || r.Rating > MaxRatingScore {
		verr.Add("rating", fmt.Sprintf("must be between %d and %d", MinRatingScore, MaxRatingScore))
	}
	return verr.OrNil()
}

func ValidateChef(c *Chef) error {
	verr := &ValidationError{}
	if strings.TrimSpace(c.Name) == "" {
		verr.Add("name", "is required")
	}
	if c.Rating < 0 || c.Rating > 5 {
		verr.Add("rating", "must be between 0 and 5")
	}
	if c.Status != ChefActive && c.Status != ChefInactive {
		verr.Add("status", "must be one of active, inactive")
	}
	return verr.OrNil()
}

func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if !status.Valid() {
		verr := &ValidationError{}
		verr.Add("status", "must be one of pending, processing, completed")
		return "", verr
	}
	return status, nil
}

// CheckTransition allows exactly one step forward: pending -> processing -> completed.
func CheckTransition(from, to OrderStatus) error {
	next, ok := from.Next()
	if !ok || next != to {
		return fmt.Errorf("%s -> %s: %w", from, to, ErrInvalidTransition)
	}
	return nil
}
