package game

import (
	"time"

	"chess_portal/internal/domain/analysis"
)

// Game is one stored game of the portal owner. Tag fields come straight
// from the PGN headers or the upload form; Summary is duplicated here so
// list views never load the full analysis document.
type Game struct {
	ID          string            `json:"id" bson:"_id"`
	Date        string            `json:"date" bson:"date"`
	Tournament  string            `json:"tournament" bson:"tournament"`
	Opponent    string            `json:"opponent" bson:"opponent"`
	Color       string            `json:"color" bson:"color"`
	Result      string            `json:"result" bson:"result"`
	ECO         string            `json:"eco,omitempty" bson:"eco,omitempty"`
	TimeControl string            `json:"time_control,omitempty" bson:"time_control,omitempty"`
	PGN         string            `json:"pgn" bson:"pgn"`
	Moves       []string          `json:"moves" bson:"moves"`
	Depth       int               `json:"depth" bson:"depth"`
	Status      string            `json:"status" bson:"status"`
	Summary     *analysis.Summary `json:"summary,omitempty" bson:"summary,omitempty"`
	CreatedAt   time.Time         `json:"created_at" bson:"created_at"`
}

// StoredAnalysis wraps the pure analysis value with the identity it is
// filed under.
type StoredAnalysis struct {
	GameID    string                `json:"game_id" bson:"_id"`
	Analysis  analysis.GameAnalysis `json:"analysis" bson:"analysis"`
	CreatedAt time.Time             `json:"created_at" bson:"created_at"`
}

type ListResponse struct {
	PageNum    int    `json:"page_num"`
	TotalPages int    `json:"total_pages"`
	Games      []Game `json:"games"`
}

type UploadResponse struct {
	Game     Game                   `json:"game"`
	Analysis *analysis.GameAnalysis `json:"analysis,omitempty"`
}
