package analysis

import (
	"math"
)

// winProbMultiplier is lichess's logistic calibration constant: it maps
// centipawns to win probability so the model agrees with observed results
// across millions of rated games. Changing it silently changes every
// accuracy number the portal reports.
const winProbMultiplier = 0.00368208

// Volatility window bounds. The window scales with game length so short
// games are not judged by a single noisy swing.
const (
	minVolatilityWindow = 2
	maxVolatilityWindow = 8

	minVolatility = 0.5
	maxVolatility = 12.0
)

// CPToWinProbability converts a perspective-relative centipawn score into a
// win percentage in [0, 100]. Forced-mate scores pin the result to the
// extremes: the logistic curve saturates near them anyway, and mates are
// certainties, not probabilities.
func CPToWinProbability(cp int) float64 {
	if IsMateScore(cp) {
		if cp > 0 {
			return 100
		}
		return 0
	}
	p := 50 + 50*(2/(1+math.Exp(-winProbMultiplier*float64(cp)))-1)
	return clampFloat(p, 0, 100)
}

// MoveAccuracy grades a single move from its win-probability drop using
// lichess's exponential fit: 100 for a non-losing move, roughly 80 at a
// 5-point drop, 63 at 10, 40 at 20.
func MoveAccuracy(winProbBefore, winProbAfter float64) float64 {
	if winProbAfter >= winProbBefore {
		return 100
	}
	drop := winProbBefore - winProbAfter
	acc := 103.1668*math.Exp(-0.04354*drop) - 3.1669
	return clampFloat(acc, 0, 100)
}

// VolatilityWindowSize picks the sliding-window length for a game of the
// given move count: a tenth of the game, clamped to [2, 8].
func VolatilityWindowSize(totalMoves int) int {
	ws := totalMoves / 10
	if ws < minVolatilityWindow {
		return minVolatilityWindow
	}
	if ws > maxVolatilityWindow {
		return maxVolatilityWindow
	}
	return ws
}

// PositionVolatility is the sample standard deviation of a window of win
// probabilities, clamped to [0.5, 12]. Windows too short to have a spread
// get the floor.
func PositionVolatility(window []float64) float64 {
	if len(window) < 2 {
		return minVolatility
	}
	var sum float64
	for _, v := range window {
		sum += v
	}
	mean := sum / float64(len(window))
	var sq float64
	for _, v := range window {
		d := v - mean
		sq += d * d
	}
	sd := math.Sqrt(sq / float64(len(window)-1))
	return clampFloat(sd, minVolatility, maxVolatility)
}

// MoveVolatilities assigns each move a volatility weight from the win
// probabilities observed around it. values holds one entry per position,
// so one more than the number of moves. Early moves share the first full
// window; later moves use the window of positions trailing up to and just
// past the move.
func MoveVolatilities(values []float64, totalMoves int) []float64 {
	if totalMoves <= 0 {
		return nil
	}
	ws := VolatilityWindowSize(totalMoves)
	out := make([]float64, totalMoves)
	for i := 0; i < totalMoves; i++ {
		var window []float64
		if i < ws-1 {
			window = values[:min(ws, len(values))]
		} else {
			lo := i + 1 - (ws - 1)
			hi := min(i+2, len(values))
			window = values[lo:hi]
		}
		out[i] = PositionVolatility(window)
	}
	return out
}

// GameAccuracy aggregates per-move accuracies into a single percentage the
// way lichess does: the mean of a volatility-weighted average (sharp
// positions count for more) and a harmonic mean (one disaster drags the
// number down hard). Both halves are needed; either alone is gameable.
func GameAccuracy(accuracies, volatilities []float64) float64 {
	if len(accuracies) == 0 {
		return 0
	}

	var weighted, weightSum float64
	for i, acc := range accuracies {
		w := 1.0
		if i < len(volatilities) {
			w = volatilities[i]
		}
		weighted += acc * w
		weightSum += w
	}
	weightedMean := weighted / weightSum

	var reciprocals float64
	for _, acc := range accuracies {
		reciprocals += 1 / math.Max(1, acc)
	}
	harmonicMean := float64(len(accuracies)) / reciprocals

	return clampFloat((weightedMean+harmonicMean)/2, 0, 100)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
