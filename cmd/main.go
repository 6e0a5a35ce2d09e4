package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"chess_portal/internal/adapters"
	"chess_portal/internal/bootstrap"
	analysisDelivery "chess_portal/internal/delivery/analysis"
	gamesDelivery "chess_portal/internal/delivery/games"
	statsDelivery "chess_portal/internal/delivery/stats"
	ownMiddleware "chess_portal/internal/middleware"
	repo "chess_portal/internal/repository"
	analysisuc "chess_portal/internal/usecase/analysis"
	gamesuc "chess_portal/internal/usecase/games"
	statsuc "chess_portal/internal/usecase/stats"
)

type mainDeliveryHandler struct {
	analysis *analysisDelivery.AnalysisHandler
	games    *gamesDelivery.GameHandler
	stats    *statsDelivery.StatsHandler
}

type dataBaseAdapters struct {
	redisAdapter *adapters.AdapterRedis
	mongoAdapter *adapters.AdapterMongo
}

func main() {
	logger := NewLogger()
	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Error("Failed to setup configuration", zap.Error(err))
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go handleShutdown(cancel, logger)

	databaseAdapters := initDatabaseAdapters(ctx, logger, cfg)
	defer databaseAdapters.mongoAdapter.Close(ctx)
	defer databaseAdapters.redisAdapter.Close(ctx)

	engine, err := repo.NewStockfishClient(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to start stockfish", zap.Error(err))
	}

	analyzer := analysisuc.NewAnalyzer(analysisuc.DefaultConfig(), engine, logger)
	defer analyzer.Close()

	r := chi.NewRouter()
	handlers := initializeDeliveryHandlers(cfg, logger, analyzer, databaseAdapters)
	handlers.Router(r, cfg.IsLocalCors)

	port := ":" + cfg.ServerPort
	logger.Infof("Server is running on port %s", port)
	if err := http.ListenAndServe(port, r); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

func NewLogger() *zap.SugaredLogger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	return logger.Sugar()
}

func (h *mainDeliveryHandler) Router(r *chi.Mux, isLocalCors bool) {
	if isLocalCors {
		r.Use(ownMiddleware.CORS)
	}
	r.Use(middleware.Logger)

	r.Post("/api/analyze", h.analysis.HandleAnalyze)
	r.Get("/api/analysis/live", h.analysis.HandleLive)
	r.Post("/api/upload", h.games.HandleUpload)
	r.Get("/api/games", h.games.HandleList)
	r.Get("/api/games/{id}", h.games.HandleGet)
	r.Get("/api/games/{id}/report.pdf", h.games.HandleReport)
	r.Get("/api/metrics", h.stats.HandleMetrics)
	r.Get("/api/progress", h.stats.HandleProgress)
	r.Post("/api/progress", h.stats.HandleSaveProgress)
}

func initDatabaseAdapters(ctx context.Context, log *zap.SugaredLogger, cfg *bootstrap.Config) *dataBaseAdapters {
	mongoAdapter := adapters.NewAdapterMongo(cfg)
	if err := mongoAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize MongoDB", zap.Error(err))
	}

	redisAdapter := adapters.NewAdapterRedis(cfg)
	if err := redisAdapter.Init(ctx); err != nil {
		log.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	log.Info("Database adapters initialized")
	return &dataBaseAdapters{
		redisAdapter: redisAdapter,
		mongoAdapter: mongoAdapter,
	}
}

func initializeDeliveryHandlers(
	cfg *bootstrap.Config,
	log *zap.SugaredLogger,
	analyzer *analysisuc.Analyzer,
	databaseAdapters *dataBaseAdapters,
) *mainDeliveryHandler {
	redisClient := databaseAdapters.redisAdapter.GetClient()
	mongoDB := databaseAdapters.mongoAdapter.Database

	gameRepo := repo.NewGameRepository(cfg, log, redisClient, mongoDB)
	statsRepo := repo.NewStatsRepository(cfg, log, redisClient, mongoDB)

	gameUC := gamesuc.NewGameUseCase(analysisuc.DefaultConfig(), log, gameRepo, analyzer, statsRepo)
	statsUC := statsuc.NewStatsUseCase(log, statsRepo, gameRepo)

	return &mainDeliveryHandler{
		analysis: analysisDelivery.NewAnalysisHandler(log, gameUC),
		games:    gamesDelivery.NewGameHandler(cfg, log, gameUC),
		stats:    statsDelivery.NewStatsHandler(log, statsUC),
	}
}

func handleShutdown(cancelFunc context.CancelFunc, log *zap.SugaredLogger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("Received shutdown signal")
	cancelFunc()
	time.Sleep(1 * time.Second)
}
