package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chess_portal/internal/domain/analysis"
	"chess_portal/internal/domain/game"
	domainStats "chess_portal/internal/domain/stats"
	ownErrors "chess_portal/internal/errors"
)

type memStatsStore struct {
	weeks   map[string]domainStats.WeeklyProgress
	metrics *domainStats.Metrics
}

func newMemStatsStore() *memStatsStore {
	return &memStatsStore{weeks: make(map[string]domainStats.WeeklyProgress)}
}

func (m *memStatsStore) UpsertWeek(ctx context.Context, week domainStats.WeeklyProgress) error {
	prior := m.weeks[week.WeekStart]
	if week.FocusArea == "" {
		week.FocusArea = prior.FocusArea
	}
	if week.Notes == "" {
		week.Notes = prior.Notes
	}
	m.weeks[week.WeekStart] = week
	return nil
}

func (m *memStatsStore) UpdateWeekNotes(ctx context.Context, weekStart, focusArea, notes string) error {
	week := m.weeks[weekStart]
	week.WeekStart = weekStart
	week.FocusArea = focusArea
	week.Notes = notes
	m.weeks[weekStart] = week
	return nil
}

func (m *memStatsStore) GetWeeks(ctx context.Context, n int) ([]domainStats.WeeklyProgress, error) {
	weeks := make([]domainStats.WeeklyProgress, 0, len(m.weeks))
	for _, w := range m.weeks {
		weeks = append(weeks, w)
	}
	return weeks, nil
}

func (m *memStatsStore) GetCachedMetrics(ctx context.Context) (*domainStats.Metrics, error) {
	return m.metrics, nil
}

func (m *memStatsStore) PutCachedMetrics(ctx context.Context, metrics *domainStats.Metrics) error {
	m.metrics = metrics
	return nil
}

type memGames struct {
	games []game.Game
}

func (m *memGames) CountGames(ctx context.Context) (int64, error) {
	return int64(len(m.games)), nil
}

func (m *memGames) GetAnalyzedGames(ctx context.Context) ([]game.Game, error) {
	analyzed := make([]game.Game, 0, len(m.games))
	for _, g := range m.games {
		if g.Summary != nil {
			analyzed = append(analyzed, g)
		}
	}
	return analyzed, nil
}

func analyzedGame(created time.Time, color, result string, accuracy float64, blunders, moves int) game.Game {
	return game.Game{
		ID:        created.Format(time.RFC3339Nano),
		Color:     color,
		Result:    result,
		CreatedAt: created,
		Summary: &analysis.Summary{
			TotalMoves:           moves,
			AnalyzedMoves:        moves,
			Accuracy:             accuracy,
			BlunderCount:         blunders,
			AverageCentipawnLoss: 40,
		},
	}
}

func TestMetrics(t *testing.T) {
	store := newMemStatsStore()
	now := time.Now().UTC()
	source := &memGames{games: []game.Game{
		analyzedGame(now, analysis.ColorWhite, "1-0", 90, 1, 40),
		analyzedGame(now.Add(time.Hour), analysis.ColorBlack, "1-0", 80, 3, 50),
		{ID: "pending"},
	}}
	uc := NewStatsUseCase(zap.NewNop().Sugar(), store, source)

	metrics, err := uc.Metrics(context.Background())
	require.NoError(t, err)

	require.Equal(t, 3, metrics.TotalGames)
	require.Equal(t, 2, metrics.AnalyzedGames)
	require.InDelta(t, 50, metrics.WinRate, 0.001) // won as White, lost as Black
	require.InDelta(t, 85, metrics.AvgAccuracy, 0.001)
	require.InDelta(t, 2, metrics.BlundersPerGame, 0.001)

	// the second read is served from cache
	source.games = nil
	cached, err := uc.Metrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, metrics, cached)
}

func TestProgressBucketsByWeekAndKeepsNotes(t *testing.T) {
	store := newMemStatsStore()
	monday := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	source := &memGames{games: []game.Game{
		analyzedGame(monday, analysis.ColorWhite, "1-0", 90, 1, 40),
		analyzedGame(monday.AddDate(0, 0, 2), analysis.ColorWhite, "0-1", 70, 4, 60),
		analyzedGame(monday.AddDate(0, 0, -7), analysis.ColorBlack, "0-1", 85, 0, 30),
	}}
	uc := NewStatsUseCase(zap.NewNop().Sugar(), store, source)

	require.NoError(t, uc.SaveNote(context.Background(), domainStats.ProgressNoteRequest{
		WeekStart: "2026-08-24",
		FocusArea: "endgames",
		Notes:     "rook endings keep going wrong",
	}))

	progress, err := uc.Progress(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, progress.Weeks, 2)

	current := progress.Weeks[0]
	require.Equal(t, "2026-08-24", current.WeekStart)
	require.Equal(t, 2, current.GamesPlayed)
	require.InDelta(t, 50, current.WinRate, 0.001)
	require.InDelta(t, 5, current.BlunderRate, 0.001) // 5 blunders in 100 moves
	require.Equal(t, "endgames", current.FocusArea)

	previous := progress.Weeks[1]
	require.Equal(t, "2026-08-17", previous.WeekStart)
	require.Equal(t, 1, previous.GamesPlayed)
	require.InDelta(t, 100, previous.WinRate, 0.001)
}

func TestSaveNoteValidatesWeekFormat(t *testing.T) {
	uc := NewStatsUseCase(zap.NewNop().Sugar(), newMemStatsStore(), &memGames{})

	err := uc.SaveNote(context.Background(), domainStats.ProgressNoteRequest{WeekStart: "next monday"})
	require.ErrorIs(t, err, ownErrors.ErrInvalidWeek)
}

func TestIsWin(t *testing.T) {
	tests := []struct {
		color  string
		result string
		want   bool
	}{
		{analysis.ColorWhite, "1-0", true},
		{analysis.ColorWhite, "0-1", false},
		{analysis.ColorBlack, "0-1", true},
		{analysis.ColorBlack, "1-0", false},
		{analysis.ColorWhite, "1/2-1/2", false},
		{analysis.ColorWhite, "*", false},
	}
	for _, tt := range tests {
		if got := isWin(game.Game{Color: tt.color, Result: tt.result}); got != tt.want {
			t.Errorf("isWin(%s, %s) = %v, want %v", tt.color, tt.result, got, tt.want)
		}
	}
}
