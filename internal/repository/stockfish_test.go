package repo

import (
	"testing"

	"chess_portal/internal/domain/analysis"
)

func TestParseInfoLineCP(t *testing.T) {
	info, ok := parseInfoLine("info depth 15 seldepth 21 multipv 2 score cp 34 nodes 812345 nps 950000 pv e2e4 e7e5 g1f3")
	if !ok {
		t.Fatalf("parseInfoLine returned ok=false")
	}
	if info.MultiPV != 2 {
		t.Fatalf("multipv = %d, want 2", info.MultiPV)
	}
	if info.Depth != 15 {
		t.Fatalf("depth = %d, want 15", info.Depth)
	}
	if info.ScoreCP == nil || *info.ScoreCP != 34 {
		t.Fatalf("score cp = %v, want 34", info.ScoreCP)
	}
	if info.Mate != nil {
		t.Fatalf("mate = %v, want nil", info.Mate)
	}
	if len(info.PV) != 3 || info.PV[0] != "e2e4" {
		t.Fatalf("pv = %v, want [e2e4 e7e5 g1f3]", info.PV)
	}
}

func TestParseInfoLineMate(t *testing.T) {
	info, ok := parseInfoLine("info depth 22 score mate -3 pv h7h8q")
	if !ok {
		t.Fatalf("parseInfoLine returned ok=false")
	}
	if info.MultiPV != 1 {
		t.Fatalf("multipv = %d, want default 1", info.MultiPV)
	}
	if info.Mate == nil || *info.Mate != -3 {
		t.Fatalf("mate = %v, want -3", info.Mate)
	}
	if info.ScoreCP != nil {
		t.Fatalf("score cp = %v, want nil", info.ScoreCP)
	}
}

func TestParseInfoLineRejectsOtherOutput(t *testing.T) {
	for _, line := range []string{
		"bestmove e2e4 ponder e7e5",
		"readyok",
		"",
		"option name Hash type spin default 16 min 1 max 33554432",
	} {
		if _, ok := parseInfoLine(line); ok {
			t.Fatalf("parseInfoLine(%q) matched, want no match", line)
		}
	}
}

func TestParseBestMoveLine(t *testing.T) {
	best, ok := parseBestMoveLine("bestmove e2e4 ponder e7e5")
	if !ok || best != "e2e4" {
		t.Fatalf("best = %q ok=%v, want e2e4 true", best, ok)
	}

	best, ok = parseBestMoveLine("bestmove (none)")
	if !ok || best != "(none)" {
		t.Fatalf("best = %q ok=%v, want (none) true", best, ok)
	}

	if _, ok = parseBestMoveLine("info depth 1"); ok {
		t.Fatalf("parseBestMoveLine matched an info line")
	}
}

func TestFoldMateScore(t *testing.T) {
	cases := []struct {
		mate int
		want int
	}{
		{mate: 1, want: analysis.MateCeiling - 1},
		{mate: 3, want: 9997},
		{mate: -3, want: -9997},
		{mate: -1, want: -(analysis.MateCeiling - 1)},
		{mate: 0, want: -analysis.MateCeiling},
	}
	for _, tc := range cases {
		if got := foldMateScore(tc.mate); got != tc.want {
			t.Fatalf("foldMateScore(%d) = %d, want %d", tc.mate, got, tc.want)
		}
	}
}

func TestBuildEvaluation(t *testing.T) {
	cp1, cp2, mate3 := 52, 31, 3
	byPV := map[int]infoLine{
		1: {MultiPV: 1, Depth: 15, ScoreCP: &cp1, PV: []string{"e2e4", "e7e5"}},
		2: {MultiPV: 2, Depth: 15, ScoreCP: &cp2, PV: []string{"d2d4"}},
		3: {MultiPV: 3, Depth: 15, Mate: &mate3, PV: []string{"g1f3"}},
	}

	result, err := buildEvaluation("e2e4", byPV)
	if err != nil {
		t.Fatalf("buildEvaluation: %v", err)
	}
	if result.RawScore != 52 {
		t.Fatalf("raw score = %d, want 52", result.RawScore)
	}
	if result.BestMove != "e2e4" {
		t.Fatalf("best move = %q, want e2e4", result.BestMove)
	}
	if result.Depth != 15 {
		t.Fatalf("depth = %d, want 15", result.Depth)
	}
	if len(result.Alternatives) != 3 {
		t.Fatalf("alternatives = %d, want 3 (primary line included)", len(result.Alternatives))
	}
	if result.Alternatives[0].Move != "e2e4" || result.Alternatives[0].Evaluation != 52 {
		t.Fatalf("alt 0 = %+v, want primary e2e4/52", result.Alternatives[0])
	}
	if result.Alternatives[1].Move != "d2d4" || result.Alternatives[1].Evaluation != 31 {
		t.Fatalf("alt 1 = %+v, want d2d4/31", result.Alternatives[1])
	}
	if result.Alternatives[2].Evaluation != 9997 {
		t.Fatalf("alt 2 evaluation = %d, want folded mate 9997", result.Alternatives[2].Evaluation)
	}
}

func TestBuildEvaluationTerminalPosition(t *testing.T) {
	mate0 := 0
	byPV := map[int]infoLine{
		1: {MultiPV: 1, Depth: 0, Mate: &mate0},
	}

	result, err := buildEvaluation("(none)", byPV)
	if err != nil {
		t.Fatalf("buildEvaluation: %v", err)
	}
	if result.RawScore != -analysis.MateCeiling {
		t.Fatalf("raw score = %d, want %d (mover already mated)", result.RawScore, -analysis.MateCeiling)
	}
	if result.BestMove != "" {
		t.Fatalf("best move = %q, want empty", result.BestMove)
	}
}

func TestBuildEvaluationRejectsUnscoredPrimary(t *testing.T) {
	if _, err := buildEvaluation("e2e4", map[int]infoLine{}); err == nil {
		t.Fatalf("buildEvaluation accepted an empty PV map")
	}
}

func TestResolveEngineBinaryConfiguredMissing(t *testing.T) {
	if _, err := resolveEngineBinary("/nonexistent/path/stockfish"); err == nil {
		t.Fatalf("resolveEngineBinary accepted a missing configured path")
	}
}
