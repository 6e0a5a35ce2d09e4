package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"chess_portal/internal/common"
	"chess_portal/internal/domain/analysis"
	"chess_portal/internal/domain/game"
	domainStats "chess_portal/internal/domain/stats"
	ownErrors "chess_portal/internal/errors"
)

type StatsStore interface {
	UpsertWeek(ctx context.Context, week domainStats.WeeklyProgress) error
	UpdateWeekNotes(ctx context.Context, weekStart, focusArea, notes string) error
	GetWeeks(ctx context.Context, n int) ([]domainStats.WeeklyProgress, error)
	GetCachedMetrics(ctx context.Context) (*domainStats.Metrics, error)
	PutCachedMetrics(ctx context.Context, metrics *domainStats.Metrics) error
}

// GamesSource is the slice of the game store the rollups read from.
type GamesSource interface {
	CountGames(ctx context.Context) (int64, error)
	GetAnalyzedGames(ctx context.Context) ([]game.Game, error)
}

type StatsUseCase struct {
	log   *zap.SugaredLogger
	store StatsStore
	games GamesSource
}

func NewStatsUseCase(log *zap.SugaredLogger, store StatsStore, games GamesSource) *StatsUseCase {
	return &StatsUseCase{
		log:   log,
		store: store,
		games: games,
	}
}

// Metrics computes the dashboard rollup over every analyzed game, served
// from Redis while the cache is warm.
func (s *StatsUseCase) Metrics(ctx context.Context) (*domainStats.Metrics, error) {
	if cached, err := s.store.GetCachedMetrics(ctx); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.log.Errorw("metrics cache read failed", "error", err)
	}

	total, err := s.games.CountGames(ctx)
	if err != nil {
		return nil, err
	}
	analyzed, err := s.games.GetAnalyzedGames(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &domainStats.Metrics{
		TotalGames:    int(total),
		AnalyzedGames: len(analyzed),
	}

	var (
		wins                int
		accuracySum, cpLoss float64
		blunders, mistakes  int
	)
	for _, g := range analyzed {
		if g.Summary == nil {
			continue
		}
		if isWin(g) {
			wins++
		}
		accuracySum += g.Summary.Accuracy
		cpLoss += g.Summary.AverageCentipawnLoss
		blunders += g.Summary.BlunderCount
		mistakes += g.Summary.MistakeCount
	}
	if n := float64(len(analyzed)); n > 0 {
		metrics.WinRate = float64(wins) / n * 100
		metrics.AvgAccuracy = accuracySum / n
		metrics.AvgCentipawnLoss = cpLoss / n
		metrics.BlundersPerGame = float64(blunders) / n
		metrics.MistakesPerGame = float64(mistakes) / n
	}

	if err := s.store.PutCachedMetrics(ctx, metrics); err != nil {
		s.log.Errorw("metrics cache write failed", "error", err)
	}
	return metrics, nil
}

// Progress recomputes the weekly training log from stored games and merges
// in the user-authored focus notes. Computed rows are persisted so the log
// survives even after old games are pruned.
func (s *StatsUseCase) Progress(ctx context.Context, weeks int) (*domainStats.ProgressResponse, error) {
	if weeks < 1 {
		weeks = 12
	}

	analyzed, err := s.games.GetAnalyzedGames(ctx)
	if err != nil {
		return nil, err
	}

	byWeek := make(map[string][]game.Game)
	for _, g := range analyzed {
		week := common.WeekStart(g.CreatedAt)
		byWeek[week] = append(byWeek[week], g)
	}

	saved, err := s.store.GetWeeks(ctx, weeks)
	if err != nil {
		return nil, err
	}
	notes := make(map[string]domainStats.WeeklyProgress, len(saved))
	for _, w := range saved {
		notes[w.WeekStart] = w
	}

	rows := make([]domainStats.WeeklyProgress, 0, len(byWeek))
	for week, weekGames := range byWeek {
		row := computeWeek(week, weekGames)
		if prior, ok := notes[week]; ok {
			row.FocusArea = prior.FocusArea
			row.Notes = prior.Notes
		}
		if err := s.store.UpsertWeek(ctx, row); err != nil {
			s.log.Errorw("progress row upsert failed", "week", week, "error", err)
		}
		rows = append(rows, row)
	}

	// Keep note-only rows for weeks without any analyzed game.
	for week, prior := range notes {
		if _, ok := byWeek[week]; !ok {
			rows = append(rows, prior)
		}
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].WeekStart > rows[j].WeekStart })
	if len(rows) > weeks {
		rows = rows[:weeks]
	}
	return &domainStats.ProgressResponse{Weeks: rows}, nil
}

// SaveNote stores the focus area and notes for one week of the log.
func (s *StatsUseCase) SaveNote(ctx context.Context, req domainStats.ProgressNoteRequest) error {
	if _, err := time.Parse("2006-01-02", req.WeekStart); err != nil {
		return fmt.Errorf("%w: %q", ownErrors.ErrInvalidWeek, req.WeekStart)
	}
	return s.store.UpdateWeekNotes(ctx, req.WeekStart, req.FocusArea, req.Notes)
}

func computeWeek(week string, games []game.Game) domainStats.WeeklyProgress {
	row := domainStats.WeeklyProgress{
		WeekStart:   week,
		GamesPlayed: len(games),
	}

	var (
		wins, moves, blunders int
		cpLoss                float64
	)
	for _, g := range games {
		if isWin(g) {
			wins++
		}
		if g.Summary == nil {
			continue
		}
		cpLoss += g.Summary.AverageCentipawnLoss
		moves += g.Summary.AnalyzedMoves
		blunders += g.Summary.BlunderCount
	}

	row.WinRate = float64(wins) / float64(len(games)) * 100
	row.AvgCPLoss = cpLoss / float64(len(games))
	if moves > 0 {
		// blunders per hundred analyzed moves
		row.BlunderRate = float64(blunders) / float64(moves) * 100
	}
	return row
}

func isWin(g game.Game) bool {
	switch g.Result {
	case "1-0":
		return g.Color == analysis.ColorWhite
	case "0-1":
		return g.Color == analysis.ColorBlack
	default:
		return false
	}
}
