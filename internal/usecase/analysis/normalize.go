package analysis

import (
	"chess_portal/internal/domain/analysis"
)

// The engine always scores a position for the side to move. Everything in
// this package compares consecutive evaluations from a single player's
// perspective, so the two helpers below do the flipping exactly once, at
// the boundary.

// ToWhitePerspective converts a side-to-move score into a White-perspective
// one. Folded mate scores flip sign like any other: a mate for the side to
// move is a mate against the other side.
func ToWhitePerspective(score int, whiteToMove bool) int {
	if whiteToMove {
		return score
	}
	return -score
}

// ToMoverPerspective converts the score of the position reached after a
// move into the mover's perspective. After the move it is the opponent's
// turn, so the engine's score is the opponent's view and negating it gives
// the mover's.
func ToMoverPerspective(scoreAfter int) int {
	return -scoreAfter
}

// CentipawnLoss is the non-negative drop between the mover's eval before
// and after the move. A move that improves the mover's position from the
// engine's point of view loses nothing.
func CentipawnLoss(evalBefore, evalAfter int) int {
	loss := evalBefore - evalAfter
	if loss < 0 {
		return 0
	}
	return loss
}

// IsMateScore reports whether a folded score encodes a forced mate rather
// than a positional judgement.
func IsMateScore(score int) bool {
	if score < 0 {
		score = -score
	}
	return score >= analysis.MateThreshold
}

// MateDistance recovers the signed mate distance from a folded score:
// positive means the perspective side mates in that many moves, negative
// means it is getting mated. Zero for non-mate scores.
func MateDistance(score int) int {
	if !IsMateScore(score) {
		return 0
	}
	if score > 0 {
		return analysis.MateCeiling - score
	}
	return -(analysis.MateCeiling + score)
}
