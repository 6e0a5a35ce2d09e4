package analysis

import (
	"fmt"

	"chess_portal/internal/domain/analysis"
)

// ClassificationInput carries everything the classifier needs for one ply.
// Evals are mover-perspective. Win probabilities are optional: when either
// is missing the classifier falls back to raw centipawn loss.
type ClassificationInput struct {
	Assessment    analysis.TacticalAssessment
	EvalBefore    int
	EvalAfter     int
	CentipawnLoss int
	WinProbBefore *float64
	WinProbAfter  *float64
}

// AnalyzeTacticalBlunder inspects one played move against the engine's
// alternatives and reports tactical patterns: a piece left hanging, a walk
// into forced mate, or a missed win. alternatives is the full candidate
// list from the engine, the primary line included; playedUCI is compared
// against candidate moves to find the best line the mover did not play.
func (c AnalysisConfig) AnalyzeTacticalBlunder(playedUCI string, cpLoss, evalAfter int, alternatives []analysis.Alternative) analysis.TacticalAssessment {
	if IsMateScore(evalAfter) && evalAfter < 0 {
		return analysis.TacticalAssessment{
			IsTacticalBlunder: true,
			Type:              analysis.TacticMateBlunder,
			Severity:          analysis.ClassBlunder,
			Reason:            fmt.Sprintf("position after move is lost to forced mate in %d", -MateDistance(evalAfter)),
		}
	}

	if len(alternatives) == 0 {
		return analysis.TacticalAssessment{Reason: "No alternative moves available"}
	}

	best, ok := bestUnplayed(playedUCI, alternatives)
	if !ok {
		return analysis.TacticalAssessment{}
	}
	gap := best.Evaluation - evalAfter

	if cpLoss >= c.HangingPieceMinLoss && gap >= c.HangingPieceMinLoss {
		return analysis.TacticalAssessment{
			IsTacticalBlunder: true,
			Type:              analysis.TacticHangingPiece,
			Severity:          analysis.ClassBlunder,
			Reason:            fmt.Sprintf("lost %d centipawns, %s was %d better", cpLoss, best.Move, gap),
		}
	}

	// Missed opportunities only apply to moves that were themselves fine:
	// pointing at a better line makes no sense when the played move already
	// threw the position away.
	if cpLoss <= c.MissedTacticMaxLoss {
		switch {
		case IsMateScore(best.Evaluation) && best.Evaluation > 0:
			return analysis.TacticalAssessment{
				HasMissedOpportunity: true,
				Type:                 analysis.TacticWinningTactic,
				Reason:               fmt.Sprintf("forced mate in %d available with %s", MateDistance(best.Evaluation), best.Move),
			}
		case gap >= c.TacticalGainMin:
			return analysis.TacticalAssessment{
				HasMissedOpportunity: true,
				Type:                 analysis.TacticTacticalImprovement,
				Reason:               fmt.Sprintf("%s wins %d more centipawns", best.Move, gap),
			}
		case gap >= c.PositionalGainMin:
			return analysis.TacticalAssessment{
				HasMissedOpportunity: true,
				Type:                 analysis.TacticPositionalImprovement,
				Reason:               fmt.Sprintf("%s improves the position by %d centipawns", best.Move, gap),
			}
		}
	}

	return analysis.TacticalAssessment{}
}

// bestUnplayed returns the strongest candidate whose move differs from the
// one played. ok is false when every candidate is the played move itself.
func bestUnplayed(playedUCI string, alternatives []analysis.Alternative) (analysis.Alternative, bool) {
	var best analysis.Alternative
	found := false
	for _, alt := range alternatives {
		if alt.Move == "" || alt.Move == playedUCI {
			continue
		}
		if !found || alt.Evaluation > best.Evaluation {
			best = alt
			found = true
		}
	}
	return best, found
}

// ClassifyMoveWithTactics produces the final verdict for one ply, or nil
// when the move deserves no annotation. Precedence is fixed:
//
//  1. walking into forced mate is a blunder, full stop;
//  2. a missed opportunity outranks quality grading — the move was fine,
//     the point is what it passed up;
//  3. win-probability thresholds, but only while the game is contestable —
//     shuffling pieces in a dead-lost position is not blunder material;
//  4. raw centipawn loss when win probabilities are unavailable.
func (c AnalysisConfig) ClassifyMoveWithTactics(in ClassificationInput) *analysis.MoveClassification {
	if IsMateScore(in.EvalAfter) && in.EvalAfter < 0 {
		return &analysis.MoveClassification{
			Classification: analysis.ClassBlunder,
			TacticalType:   analysis.TacticMateBlunder,
			Reason:         analysis.ReasonMateDetection,
		}
	}

	if in.Assessment.HasMissedOpportunity {
		return &analysis.MoveClassification{
			Classification: analysis.ClassMissedOpportunity,
			TacticalType:   in.Assessment.Type,
			Reason:         analysis.ReasonMissedOpportunity,
		}
	}

	mateScore := 0
	if IsMateScore(in.EvalAfter) {
		mateScore = in.EvalAfter
	}

	if in.WinProbBefore != nil && in.WinProbAfter != nil {
		if !c.IsContestable(in.EvalBefore, in.EvalAfter) {
			return nil
		}
		drop := *in.WinProbBefore - *in.WinProbAfter
		class := c.ClassifyByWinProbDrop(drop, mateScore)
		if class == analysis.ClassNone {
			return nil
		}
		return &analysis.MoveClassification{
			Classification: class,
			TacticalType:   tacticalTypeFor(in.Assessment),
			Reason:         analysis.ReasonWinProbDrop,
		}
	}

	class := c.ClassifyByCPLoss(in.CentipawnLoss, mateScore)
	if class == analysis.ClassNone {
		return nil
	}
	return &analysis.MoveClassification{
		Classification: class,
		TacticalType:   tacticalTypeFor(in.Assessment),
		Reason:         analysis.ReasonCentipawnLoss,
	}
}

func tacticalTypeFor(assessment analysis.TacticalAssessment) string {
	if assessment.IsTacticalBlunder {
		return assessment.Type
	}
	return ""
}
