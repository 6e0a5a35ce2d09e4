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
	"chess_portal/internal/domain/analysis"
	"chess_portal/internal/domain/game"
	ownErrors "chess_portal/internal/errors"
)

const (
	collectionGames    = "games"
	collectionAnalyses = "analyses"
)

type GameRepository struct {
	cfg   *bootstrap.Config
	log   *zap.SugaredLogger
	redis *redis.Client
	mongo *mongo.Database
}

func NewGameRepository(cfg *bootstrap.Config, log *zap.SugaredLogger, redis *redis.Client, mongo *mongo.Database) *GameRepository {
	return &GameRepository{
		cfg:   cfg,
		log:   log,
		redis: redis,
		mongo: mongo,
	}
}

func (g *GameRepository) PutGame(ctx context.Context, gameData game.Game) error {
	_, err := g.mongo.Collection(collectionGames).InsertOne(ctx, gameData)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

// PutAnalysis files the analysis under its game id, replacing any earlier
// run of the same game.
func (g *GameRepository) PutAnalysis(ctx context.Context, stored game.StoredAnalysis) error {
	opts := options.Replace().SetUpsert(true)
	_, err := g.mongo.Collection(collectionAnalyses).ReplaceOne(ctx, bson.M{"_id": stored.GameID}, stored, opts)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}
	return nil
}

// UpdateGameStatus moves a stored game through pending/analyzed/failed and
// attaches the summary once analysis finished.
func (g *GameRepository) UpdateGameStatus(ctx context.Context, gameID string, status string, summary *analysis.Summary) error {
	set := bson.M{"status": status}
	if summary != nil {
		set["summary"] = summary
	}

	res, err := g.mongo.Collection(collectionGames).UpdateOne(ctx, bson.M{"_id": gameID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update game status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ownErrors.ErrGameNotFound
	}
	return nil
}

func (g *GameRepository) GetGameByID(ctx context.Context, gameID string) (game.Game, error) {
	var found game.Game
	err := g.mongo.Collection(collectionGames).FindOne(ctx, bson.M{"_id": gameID}).Decode(&found)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return game.Game{}, ownErrors.ErrGameNotFound
	}
	if err != nil {
		return game.Game{}, fmt.Errorf("find game: %w", err)
	}
	return found, nil
}

func (g *GameRepository) GetAnalysisByGameID(ctx context.Context, gameID string) (*game.StoredAnalysis, error) {
	var stored game.StoredAnalysis
	err := g.mongo.Collection(collectionAnalyses).FindOne(ctx, bson.M{"_id": gameID}).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ownErrors.ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find analysis: %w", err)
	}
	return &stored, nil
}

// GetGamesPaginated lists stored games newest first. Pages are 1-based; a
// page past the end comes back empty, not as an error.
func (g *GameRepository) GetGamesPaginated(ctx context.Context, pageNum int) (*game.ListResponse, error) {
	if pageNum < 1 {
		pageNum = 1
	}
	pageLimit := g.cfg.PageLimitGames
	if pageLimit < 1 {
		pageLimit = 10
	}

	collection := g.mongo.Collection(collectionGames)

	total, err := collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count games: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((pageNum - 1) * pageLimit)).
		SetLimit(int64(pageLimit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find games: %w", err)
	}
	defer cursor.Close(ctx)

	games := make([]game.Game, 0, pageLimit)
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode games: %w", err)
	}

	return &game.ListResponse{
		PageNum:    pageNum,
		TotalPages: int((total + int64(pageLimit) - 1) / int64(pageLimit)),
		Games:      games,
	}, nil
}

func (g *GameRepository) CountGames(ctx context.Context) (int64, error) {
	total, err := g.mongo.Collection(collectionGames).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return total, nil
}

// GetAnalyzedGames returns every game that carries a summary, the input of
// the dashboard and progress rollups.
func (g *GameRepository) GetAnalyzedGames(ctx context.Context) ([]game.Game, error) {
	filter := bson.M{"summary": bson.M{"$ne": nil}}
	cursor, err := g.mongo.Collection(collectionGames).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find analyzed games: %w", err)
	}
	defer cursor.Close(ctx)

	var games []game.Game
	if err := cursor.All(ctx, &games); err != nil {
		return nil, fmt.Errorf("decode analyzed games: %w", err)
	}
	return games, nil
}

// GetCachedAnalysis looks an analysis result up in Redis. The analyzer is
// deterministic, so a hit is exactly what a fresh engine pass would have
// produced. A miss returns nil, nil.
func (g *GameRepository) GetCachedAnalysis(ctx context.Context, key string) (*analysis.GameAnalysis, error) {
	raw, err := g.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}

	var cached analysis.GameAnalysis
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		// a stale or truncated entry is a miss, not a failure
		g.log.Errorw("dropping unreadable cache entry", "key", key, "error", err)
		g.redis.Del(ctx, key)
		return nil, nil
	}
	return &cached, nil
}

func (g *GameRepository) PutCachedAnalysis(ctx context.Context, key string, value *analysis.GameAnalysis) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal analysis: %w", err)
	}

	ttl := time.Duration(g.cfg.CacheTTLMinutes) * time.Minute
	if err := g.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
