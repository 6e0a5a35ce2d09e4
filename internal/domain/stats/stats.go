package stats

// Metrics is the dashboard rollup over every analyzed game.
type Metrics struct {
	TotalGames       int     `json:"total_games"`
	AnalyzedGames    int     `json:"analyzed_games"`
	WinRate          float64 `json:"win_rate"`
	AvgAccuracy      float64 `json:"avg_accuracy"`
	AvgCentipawnLoss float64 `json:"avg_centipawn_loss"`
	BlundersPerGame  float64 `json:"blunders_per_game"`
	MistakesPerGame  float64 `json:"mistakes_per_game"`
}

// WeeklyProgress mirrors one row of the training log: computed numbers
// plus the user's own focus notes for that week.
type WeeklyProgress struct {
	WeekStart   string  `json:"week_start" bson:"_id"`
	GamesPlayed int     `json:"games_played" bson:"games_played"`
	WinRate     float64 `json:"win_rate" bson:"win_rate"`
	AvgCPLoss   float64 `json:"avg_cp_loss" bson:"avg_cp_loss"`
	BlunderRate float64 `json:"blunder_rate" bson:"blunder_rate"`
	FocusArea   string  `json:"focus_area,omitempty" bson:"focus_area,omitempty"`
	Notes       string  `json:"notes,omitempty" bson:"notes,omitempty"`
}

type ProgressResponse struct {
	Weeks []WeeklyProgress `json:"weeks"`
}

type ProgressNoteRequest struct {
	WeekStart string `json:"week_start"`
	FocusArea string `json:"focus_area"`
	Notes     string `json:"notes"`
}
