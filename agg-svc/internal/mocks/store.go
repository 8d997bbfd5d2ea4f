// Package mocks holds testify mocks for the aggregator's dependencies.
package mocks

import (
	"context"

	"restaurant-ordering/agg-svc/internal/domain"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type testingT interface {
	mock.TestingT
	Cleanup(func())
}

type StoreInterface struct {
	mock.Mock
}

func NewStoreInterface(t testingT) *StoreInterface {
	m := &StoreInterface{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *StoreInterface) RecomputeChefRating(ctx context.Context, chefID int) (domain.RatingStats, error) {
	args := m.Called(ctx, chefID)
	return args.Get(0).(domain.RatingStats), args.Error(1)
}

func (m *StoreInterface) MirrorStats(ctx context.Context, stats domain.RatingStats) error {
	args := m.Called(ctx, stats)
	return args.Error(0)
}

type MessageReader struct {
	mock.Mock
}

func NewMessageReader(t testingT) *MessageReader {
	m := &MessageReader{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MessageReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	args := m.Called(ctx)
	return args.Get(0).(kafka.Message), args.Error(1)
}
