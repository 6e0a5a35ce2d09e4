package analysis

import (
	"chess_portal/internal/domain/analysis"
)

// Search depth presets. Default and Max follow the engine defaults the
// portal has always used; Quick is for interactive previews.
const (
	DepthQuick   = 8
	DepthDefault = 15
	DepthDeep    = 20
	DepthMax     = 25
)

// AnalysisConfig is the single source of every calibration constant. It is
// an immutable value handed to the analyzer at construction: two analyzers
// with different profiles can coexist, and nothing here is mutated after
// startup.
type AnalysisConfig struct {
	DefaultDepth int
	MaxDepth     int

	// Win-probability drop thresholds, in percentage points, ascending.
	InaccuracyWinProbDrop float64
	MistakeWinProbDrop    float64
	BlunderWinProbDrop    float64

	// Centipawn-loss fallback thresholds for positions where only raw
	// evals are available, ascending.
	InaccuracyCPLoss int
	MistakeCPLoss    int
	BlunderCPLoss    int

	// A position counts as contestable while either side of the move sits
	// within this many centipawns of even.
	ContestableRange int

	// Tactical detection constants.
	HangingPieceMinLoss int
	MissedTacticMaxLoss int
	PositionalGainMin   int
	TacticalGainMin     int
}

func DefaultConfig() AnalysisConfig {
	return AnalysisConfig{
		DefaultDepth: DepthDefault,
		MaxDepth:     DepthMax,

		InaccuracyWinProbDrop: 5,
		MistakeWinProbDrop:    10,
		BlunderWinProbDrop:    15,

		InaccuracyCPLoss: 50,
		MistakeCPLoss:    100,
		BlunderCPLoss:    200,

		ContestableRange: 500,

		HangingPieceMinLoss: 200,
		MissedTacticMaxLoss: 30,
		PositionalGainMin:   100,
		TacticalGainMin:     250,
	}
}

// NormalizeDepth maps the caller's requested depth onto a usable one:
// zero or negative selects the default preset, anything above the maximum
// is clamped.
func (c AnalysisConfig) NormalizeDepth(depth int) int {
	if depth <= 0 {
		return c.DefaultDepth
	}
	if depth > c.MaxDepth {
		return c.MaxDepth
	}
	return depth
}

// ClassifyByWinProbDrop grades a move by its win-probability drop.
// mateScore is the mover-perspective post-move eval when it sits in the
// mate band, 0 otherwise: a negative sentinel (the mover walked into a
// forced mate) is a blunder no matter what the drop says, a positive one
// never upgrades anything.
func (c AnalysisConfig) ClassifyByWinProbDrop(drop float64, mateScore int) string {
	if mateScore < 0 {
		return analysis.ClassBlunder
	}
	switch {
	case drop >= c.BlunderWinProbDrop:
		return analysis.ClassBlunder
	case drop >= c.MistakeWinProbDrop:
		return analysis.ClassMistake
	case drop >= c.InaccuracyWinProbDrop:
		return analysis.ClassInaccuracy
	default:
		return analysis.ClassNone
	}
}

// ClassifyByCPLoss mirrors ClassifyByWinProbDrop on raw centipawn loss,
// including the identical mate override.
func (c AnalysisConfig) ClassifyByCPLoss(cpLoss int, mateScore int) string {
	if mateScore < 0 {
		return analysis.ClassBlunder
	}
	switch {
	case cpLoss >= c.BlunderCPLoss:
		return analysis.ClassBlunder
	case cpLoss >= c.MistakeCPLoss:
		return analysis.ClassMistake
	case cpLoss >= c.InaccuracyCPLoss:
		return analysis.ClassInaccuracy
	default:
		return analysis.ClassNone
	}
}

// IsContestable reports whether the game was still in doubt around this
// move. Mate-band values are decided by definition and never contestable.
func (c AnalysisConfig) IsContestable(evalBefore, evalAfter int) bool {
	return c.withinContestableRange(evalBefore) || c.withinContestableRange(evalAfter)
}

func (c AnalysisConfig) withinContestableRange(eval int) bool {
	if IsMateScore(eval) {
		return false
	}
	if eval < 0 {
		eval = -eval
	}
	return eval <= c.ContestableRange
}
