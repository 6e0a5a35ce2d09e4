package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"chess_portal/internal/bootstrap"
	"chess_portal/internal/domain/stats"
)

const (
	collectionProgress = "weekly_progress"

	metricsCacheKey = "stats:metrics"
)

// StatsRepository persists the weekly training log and caches the
// dashboard rollup. The heavy reading (analyzed games) goes through
// GameRepository; this store only owns what is not derivable from games.
type StatsRepository struct {
	cfg   *bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewStatsRepository(cfg *bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *StatsRepository {
	return &StatsRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

// UpsertWeek writes one computed progress row, keyed by its Monday.
// Focus and notes are only touched when set so recomputing numbers never
// erases what the user wrote.
func (s *StatsRepository) UpsertWeek(ctx context.Context, week stats.WeeklyProgress) error {
	set := bson.M{
		"games_played": week.GamesPlayed,
		"win_rate":     week.WinRate,
		"avg_cp_loss":  week.AvgCPLoss,
		"blunder_rate": week.BlunderRate,
	}
	if week.FocusArea != "" {
		set["focus_area"] = week.FocusArea
	}
	if week.Notes != "" {
		set["notes"] = week.Notes
	}

	opts := options.Update().SetUpsert(true)
	_, err := s.mongo.Collection(collectionProgress).UpdateOne(ctx, bson.M{"_id": week.WeekStart}, bson.M{"$set": set}, opts)
	if err != nil {
		return fmt.Errorf("upsert week %s: %w", week.WeekStart, err)
	}
	return nil
}

// UpdateWeekNotes stores the user-authored part of a progress row without
// touching the computed numbers.
func (s *StatsRepository) UpdateWeekNotes(ctx context.Context, weekStart, focusArea, notes string) error {
	update := bson.M{"$set": bson.M{
		"focus_area": focusArea,
		"notes":      notes,
	}}

	opts := options.Update().SetUpsert(true)
	_, err := s.mongo.Collection(collectionProgress).UpdateOne(ctx, bson.M{"_id": weekStart}, update, opts)
	if err != nil {
		return fmt.Errorf("update week notes %s: %w", weekStart, err)
	}
	return nil
}

// GetWeeks returns up to n progress rows, newest week first.
func (s *StatsRepository) GetWeeks(ctx context.Context, n int) ([]stats.WeeklyProgress, error) {
	if n < 1 {
		n = 1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(n))

	cursor, err := s.mongo.Collection(collectionProgress).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find weeks: %w", err)
	}
	defer cursor.Close(ctx)

	weeks := make([]stats.WeeklyProgress, 0, n)
	if err := cursor.All(ctx, &weeks); err != nil {
		return nil, fmt.Errorf("decode weeks: %w", err)
	}
	return weeks, nil
}

// GetCachedMetrics returns the cached dashboard rollup, or nil, nil on a
// miss.
func (s *StatsRepository) GetCachedMetrics(ctx context.Context) (*stats.Metrics, error) {
	raw, err := s.redis.Get(ctx, metricsCacheKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get metrics: %w", err)
	}

	var cached stats.Metrics
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		s.log.Errorw("dropping unreadable metrics cache", "error", err)
		s.redis.Del(ctx, metricsCacheKey)
		return nil, nil
	}
	return &cached, nil
}

func (s *StatsRepository) PutCachedMetrics(ctx context.Context, metrics *stats.Metrics) error {
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}

	ttl := time.Duration(s.cfg.CacheTTLMinutes) * time.Minute
	if err := s.redis.Set(ctx, metricsCacheKey, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set metrics: %w", err)
	}
	return nil
}

// InvalidateMetrics drops the cached rollup, called after every new
// analyzed game so the dashboard never lags a full TTL behind.
func (s *StatsRepository) InvalidateMetrics(ctx context.Context) {
	if err := s.redis.Del(ctx, metricsCacheKey).Err(); err != nil {
		s.log.Errorw("metrics cache invalidation failed", "error", err)
	}
}
