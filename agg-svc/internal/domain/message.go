package domain

import "time"

const EventRatingSubmitted = "rating_submitted"

// RatingEvent is the payload ordering-svc writes to the ratings topic.
type RatingEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	Rating    int       `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

type RatingStats struct {
	Average   float64
	Count     int64
	UpdatedAt time.Time
}
