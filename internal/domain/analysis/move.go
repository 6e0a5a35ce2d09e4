package analysis

// @name MoveRecord
// MoveRecord is one analyzed half-move. EvalBefore and EvalAfter are
// centipawns from the mover's perspective; CentipawnLoss never goes
// negative. When the engine failed on one of the two positions the record
// is kept with Unanalyzed set and the numeric fields zeroed.
type MoveRecord struct {
	MoveNumber     int           `json:"move_number" bson:"move_number"`
	Color          string        `json:"color" bson:"color"`
	San            string        `json:"san" bson:"san"`
	Uci            string        `json:"uci" bson:"uci"`
	EvalBefore     int           `json:"eval_before" bson:"eval_before"`
	EvalAfter      int           `json:"eval_after" bson:"eval_after"`
	CentipawnLoss  int           `json:"centipawn_loss" bson:"centipawn_loss"`
	WinProbBefore  float64       `json:"win_prob_before" bson:"win_prob_before"`
	WinProbAfter   float64       `json:"win_prob_after" bson:"win_prob_after"`
	Accuracy       float64       `json:"accuracy" bson:"accuracy"`
	Classification string        `json:"classification,omitempty" bson:"classification,omitempty"`
	IsBlunder      bool          `json:"is_blunder" bson:"is_blunder"`
	IsMistake      bool          `json:"is_mistake" bson:"is_mistake"`
	IsInaccuracy   bool          `json:"is_inaccuracy" bson:"is_inaccuracy"`
	TacticalType   string        `json:"tactical_type,omitempty" bson:"tactical_type,omitempty"`
	Reason         string        `json:"reason,omitempty" bson:"reason,omitempty"`
	BestMove       string        `json:"best_move,omitempty" bson:"best_move,omitempty"`
	Alternatives   []Alternative `json:"alternatives,omitempty" bson:"alternatives,omitempty"`
	Unanalyzed     bool          `json:"unanalyzed,omitempty" bson:"unanalyzed,omitempty"`
	AnalysisError  string        `json:"analysis_error,omitempty" bson:"analysis_error,omitempty"`
}

// @name MoveClassification
type MoveClassification struct {
	Classification string `json:"classification"`
	TacticalType   string `json:"tactical_type,omitempty"`
	Reason         string `json:"reason"`
}

// TacticalAssessment is the refinement produced from the MultiPV
// alternatives of the position the move was played in.
type TacticalAssessment struct {
	IsTacticalBlunder    bool   `json:"is_tactical_blunder"`
	HasMissedOpportunity bool   `json:"has_missed_opportunity"`
	Type                 string `json:"type,omitempty"`
	Severity             string `json:"severity,omitempty"`
	Reason               string `json:"reason"`
}
