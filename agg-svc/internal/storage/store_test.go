package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"restaurant-ordering/agg-svc/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func setupStore(t *testing.T) (*Store, sqlmock.Sqlmock, *miniredis.Miniredis) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		rdb.Close()
		db.Close()
	})

	store := NewStore(db, rdb)
	store.Now = func() time.Time { return fixedNow }
	return store, mock, mr
}

func TestRecomputeChefRating(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery("SELECT COALESCE\\(AVG\\(rating\\), 0\\), COUNT\\(\\*\\)").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(4.666667, 3))
	mock.ExpectExec("UPDATE chefs").
		WithArgs(4.7, fixedNow, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))

	stats, err := store.RecomputeChefRating(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4.7, stats.Average)
	assert.Equal(t, int64(3), stats.Count)
	assert.Equal(t, fixedNow, stats.UpdatedAt)
}

func TestRecomputeChefRating_NoRatingsKeepsChef(t *testing.T) {
	store, mock, _ := setupStore(t)

	mock.ExpectQuery("SELECT COALESCE").
		WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(0, 0))

	stats, err := store.RecomputeChefRating(context.Background(), 1)
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
}

func TestRecomputeChefRating_Errors(t *testing.T) {
	t.Run("aggregate", func(t *testing.T) {
		store, mock, _ := setupStore(t)
		mock.ExpectQuery("SELECT COALESCE").WillReturnError(errors.New("connection reset"))

		_, err := store.RecomputeChefRating(context.Background(), 1)
		assert.ErrorContains(t, err, "aggregate ratings")
	})

	t.Run("missing chef", func(t *testing.T) {
		store, mock, _ := setupStore(t)
		mock.ExpectQuery("SELECT COALESCE").
			WillReturnRows(sqlmock.NewRows([]string{"avg", "count"}).AddRow(5, 1))
		mock.ExpectExec("UPDATE chefs").WillReturnResult(sqlmock.NewResult(0, 0))

		_, err := store.RecomputeChefRating(context.Background(), 9)
		assert.ErrorContains(t, err, "chef not found")
	})
}

func TestMirrorStats(t *testing.T) {
	store, _, mr := setupStore(t)
	ctx := context.Background()
	stats := statsFixture()

	require.NoError(t, store.MirrorStats(ctx, stats))
	require.NoError(t, store.MirrorStats(ctx, stats))

	assert.Equal(t, "4.5", mr.HGet(StatsKey, "average"))
	assert.Equal(t, "2", mr.HGet(StatsKey, "count"))

	dailyKey := DailyKey(fixedNow)
	assert.Equal(t, "ratings:daily:2024-05-01", dailyKey)
	value, err := mr.Get(dailyKey)
	require.NoError(t, err)
	assert.Equal(t, "2", value)
	assert.Equal(t, dailyTTL, mr.TTL(dailyKey))
}

func TestMirrorStats_RedisDown(t *testing.T) {
	store, _, mr := setupStore(t)
	mr.Close()

	assert.Error(t, store.MirrorStats(context.Background(), statsFixture()))
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 4.3, roundScore(4.25))
	assert.Equal(t, 5.0, roundScore(5.4))
	assert.Equal(t, 0.0, roundScore(-1))
}

func statsFixture() domain.RatingStats {
	return domain.RatingStats{Average: 4.5, Count: 2, UpdatedAt: fixedNow}
}
