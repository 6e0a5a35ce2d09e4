package analysis

// Forced mates are carried inside ordinary centipawn ints as
// ±(MateCeiling−pliesToMate); anything at or beyond MateThreshold is a
// mate score, never a positional value.
const (
	MateCeiling   = 10000
	MateThreshold = 9000
)

// Classification labels, ordered by severity.
const (
	ClassNone              = "none"
	ClassInaccuracy        = "inaccuracy"
	ClassMistake           = "mistake"
	ClassBlunder           = "blunder"
	ClassMissedOpportunity = "missed_opportunity"
)

const (
	ColorWhite = "white"
	ColorBlack = "black"
)

// Tactical pattern labels attached on top of a classification.
const (
	TacticHangingPiece          = "hanging_piece"
	TacticMateBlunder           = "mate_blunder"
	TacticWinningTactic         = "winning_tactic"
	TacticTacticalImprovement   = "tactical_improvement"
	TacticPositionalImprovement = "positional_improvement"
)

// Reasons recorded next to a classification.
const (
	ReasonMateDetection     = "mate_detection"
	ReasonWinProbDrop       = "win_probability_drop"
	ReasonCentipawnLoss     = "centipawn_loss"
	ReasonMissedOpportunity = "missed_opportunity"
)

type AnalysisRequest struct {
	Moves []string `json:"moves"`
	Depth int      `json:"depth"`
}

// EngineEvaluation is the raw engine answer for one position. The score is
// centipawns from the side to move; forced mates are folded into the
// ±(10000−pliesToMate) band. Alternatives holds every MultiPV line in
// engine order, the primary line first, so Alternatives[0].Move mirrors
// BestMove.
type EngineEvaluation struct {
	RawScore     int           `json:"raw_score"`
	BestMove     string        `json:"best_move"`
	Alternatives []Alternative `json:"alternatives"`
	Depth        int           `json:"depth"`
}

type Alternative struct {
	Move       string `json:"move" bson:"move"`
	Evaluation int    `json:"evaluation" bson:"evaluation"`
}

// GameAnalysis carries no identity or timestamps: the same moves at the
// same depth must produce the same value, so storage wraps it instead of
// extending it.
type GameAnalysis struct {
	Depth   int          `json:"depth" bson:"depth"`
	Moves   []MoveRecord `json:"moves" bson:"moves"`
	Summary Summary      `json:"summary" bson:"summary"`
}

type Summary struct {
	TotalMoves             int     `json:"total_moves" bson:"total_moves"`
	AnalyzedMoves          int     `json:"analyzed_moves" bson:"analyzed_moves"`
	Accuracy               float64 `json:"accuracy" bson:"accuracy"`
	WhiteAccuracy          float64 `json:"white_accuracy" bson:"white_accuracy"`
	BlackAccuracy          float64 `json:"black_accuracy" bson:"black_accuracy"`
	BlunderCount           int     `json:"blunder_count" bson:"blunder_count"`
	MistakeCount           int     `json:"mistake_count" bson:"mistake_count"`
	InaccuracyCount        int     `json:"inaccuracy_count" bson:"inaccuracy_count"`
	MissedOpportunityCount int     `json:"missed_opportunity_count" bson:"missed_opportunity_count"`
	AverageCentipawnLoss   float64 `json:"average_centipawn_loss" bson:"average_centipawn_loss"`
}
