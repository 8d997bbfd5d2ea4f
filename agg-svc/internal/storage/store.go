package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"restaurant-ordering/agg-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

const (
	StatsKey       = "ratings:stats"
	dailyKeyFormat = "ratings:daily:%s"
	dailyTTL       = 7 * 24 * time.Hour
)

type Store struct {
	db  *sql.DB
	rdb *redis.Client
	Now func() time.Time
}

func NewStore(db *sql.DB, rdb *redis.Client) *Store {
	return &Store{
		db:  db,
		rdb: rdb,
		Now: time.Now,
	}
}

func DailyKey(day time.Time) string {
	return fmt.Sprintf(dailyKeyFormat, day.Format("2006-01-02"))
}

// RecomputeChefRating folds every stored rating into the chef's score.
func (s *Store) RecomputeChefRating(ctx context.Context, chefID int) (domain.RatingStats, error) {
	var stats domain.RatingStats
	if err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(AVG(rating), 0), COUNT(*)
		FROM ratings
	`).Scan(&stats.Average, &stats.Count); err != nil {
		return stats, fmt.Errorf("aggregate ratings: %w", err)
	}

	stats.Average = roundScore(stats.Average)
	stats.UpdatedAt = s.Now()
	if stats.Count == 0 {
		return stats, nil
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE chefs
		SET rating = $1, updated_at = $2
		WHERE id = $3
	`, stats.Average, stats.UpdatedAt, chefID)
	if err != nil {
		return stats, fmt.Errorf("update chef %d rating: %w", chefID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return stats, fmt.Errorf("update chef %d rating: chef not found", chefID)
	}
	return stats, nil
}

func (s *Store) MirrorStats(ctx context.Context, stats domain.RatingStats) error {
	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, StatsKey, map[string]interface{}{
		"average":      stats.Average,
		"count":        stats.Count,
		"last_updated": stats.UpdatedAt.Unix(),
	})
	dailyKey := DailyKey(stats.UpdatedAt)
	pipe.Incr(ctx, dailyKey)
	pipe.Expire(ctx, dailyKey, dailyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("mirror rating stats: %w", err)
	}
	return nil
}

// one decimal, kept inside the 0..5 range the chefs table enforces
func roundScore(avg float64) float64 {
	avg = math.Round(avg*10) / 10
	return math.Max(0, math.Min(5, avg))
}
