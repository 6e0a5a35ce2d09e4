package analysis

import (
	"strings"
	"testing"

	"chess_portal/internal/domain/analysis"
)

func TestAnalyzeTacticalBlunderMateSentinel(t *testing.T) {
	cfg := DefaultConfig()
	// The mate check needs no alternatives: it fires even when the engine
	// supplied none.
	got := cfg.AnalyzeTacticalBlunder("g2g4", 9949, -9997, nil)
	if !got.IsTacticalBlunder {
		t.Fatal("expected a tactical blunder")
	}
	if got.Type != analysis.TacticMateBlunder {
		t.Errorf("type = %q, want %q", got.Type, analysis.TacticMateBlunder)
	}
	if got.Severity != analysis.ClassBlunder {
		t.Errorf("severity = %q, want %q", got.Severity, analysis.ClassBlunder)
	}
	if !strings.Contains(got.Reason, "mate in 3") {
		t.Errorf("reason = %q, want mention of mate in 3", got.Reason)
	}
}

func TestAnalyzeTacticalBlunderNoAlternatives(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.AnalyzeTacticalBlunder("e2e4", 0, 20, nil)
	if got.IsTacticalBlunder || got.HasMissedOpportunity || got.Type != "" {
		t.Fatalf("expected a disabled assessment, got %+v", got)
	}
	if got.Reason != "No alternative moves available" {
		t.Errorf("reason = %q", got.Reason)
	}
}

func TestAnalyzeTacticalBlunderPatterns(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name         string
		played       string
		cpLoss       int
		evalAfter    int
		alternatives []analysis.Alternative
		wantBlunder  bool
		wantMissed   bool
		wantType     string
	}{
		{
			name:      "hanging piece",
			played:    "d7d5",
			cpLoss:    250,
			evalAfter: -200,
			alternatives: []analysis.Alternative{
				{Move: "g8f6", Evaluation: 30},
				{Move: "d7d5", Evaluation: -200},
			},
			wantBlunder: true,
			wantType:    analysis.TacticHangingPiece,
		},
		{
			name:      "catastrophic loss folds into hanging piece",
			played:    "f6e4",
			cpLoss:    400,
			evalAfter: -350,
			alternatives: []analysis.Alternative{
				{Move: "e8g8", Evaluation: 50},
			},
			wantBlunder: true,
			wantType:    analysis.TacticHangingPiece,
		},
		{
			name:      "big loss without a better line is no pattern",
			played:    "d7d5",
			cpLoss:    250,
			evalAfter: -200,
			alternatives: []analysis.Alternative{
				{Move: "g8f6", Evaluation: -50},
			},
		},
		{
			name:      "missed forced mate",
			played:    "b1c3",
			cpLoss:    10,
			evalAfter: 40,
			alternatives: []analysis.Alternative{
				{Move: "h5f7", Evaluation: 9998},
				{Move: "b1c3", Evaluation: 50},
			},
			wantMissed: true,
			wantType:   analysis.TacticWinningTactic,
		},
		{
			name:      "missed tactical improvement",
			played:    "a2a3",
			cpLoss:    20,
			evalAfter: 30,
			alternatives: []analysis.Alternative{
				{Move: "c3d5", Evaluation: 300},
			},
			wantMissed: true,
			wantType:   analysis.TacticTacticalImprovement,
		},
		{
			name:      "missed positional improvement",
			played:    "h2h3",
			cpLoss:    0,
			evalAfter: 10,
			alternatives: []analysis.Alternative{
				{Move: "a2a4", Evaluation: 150},
			},
			wantMissed: true,
			wantType:   analysis.TacticPositionalImprovement,
		},
		{
			name:      "own loss too big blocks missed opportunity",
			played:    "g1f3",
			cpLoss:    31,
			evalAfter: 0,
			alternatives: []analysis.Alternative{
				{Move: "a2a4", Evaluation: 9999},
			},
		},
		{
			name:      "played move is the only candidate",
			played:    "e2e4",
			cpLoss:    0,
			evalAfter: 50,
			alternatives: []analysis.Alternative{
				{Move: "e2e4", Evaluation: 50},
			},
		},
		{
			name:      "small gap is no opportunity",
			played:    "e2e4",
			cpLoss:    5,
			evalAfter: 20,
			alternatives: []analysis.Alternative{
				{Move: "g1f3", Evaluation: 60},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cfg.AnalyzeTacticalBlunder(tt.played, tt.cpLoss, tt.evalAfter, tt.alternatives)
			if got.IsTacticalBlunder != tt.wantBlunder {
				t.Errorf("IsTacticalBlunder = %v, want %v", got.IsTacticalBlunder, tt.wantBlunder)
			}
			if got.HasMissedOpportunity != tt.wantMissed {
				t.Errorf("HasMissedOpportunity = %v, want %v", got.HasMissedOpportunity, tt.wantMissed)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
		})
	}
}

func TestBestUnplayedPicksStrongest(t *testing.T) {
	alternatives := []analysis.Alternative{
		{Move: "e2e4", Evaluation: 40},
		{Move: "d2d4", Evaluation: 55},
		{Move: "g1f3", Evaluation: 70},
	}
	best, ok := bestUnplayed("g1f3", alternatives)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if best.Move != "d2d4" || best.Evaluation != 55 {
		t.Errorf("best = %+v, want d2d4 at 55", best)
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestClassifyMoveWithTacticsPrecedence(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("mate override beats everything", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			Assessment:    analysis.TacticalAssessment{HasMissedOpportunity: true, Type: analysis.TacticWinningTactic},
			EvalBefore:    40,
			EvalAfter:     -9995,
			CentipawnLoss: 10035,
			WinProbBefore: floatPtr(52),
			WinProbAfter:  floatPtr(0),
		})
		if got == nil {
			t.Fatal("expected a classification")
		}
		if got.Classification != analysis.ClassBlunder || got.Reason != analysis.ReasonMateDetection {
			t.Errorf("got %+v, want blunder via mate_detection", got)
		}
		if got.TacticalType != analysis.TacticMateBlunder {
			t.Errorf("tactical type = %q", got.TacticalType)
		}
	})

	t.Run("missed opportunity outranks quality grading", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			Assessment:    analysis.TacticalAssessment{HasMissedOpportunity: true, Type: analysis.TacticWinningTactic},
			EvalBefore:    40,
			EvalAfter:     30,
			CentipawnLoss: 10,
			WinProbBefore: floatPtr(52),
			WinProbAfter:  floatPtr(51),
		})
		if got == nil {
			t.Fatal("expected a classification")
		}
		if got.Classification != analysis.ClassMissedOpportunity {
			t.Errorf("classification = %q", got.Classification)
		}
		if got.TacticalType != analysis.TacticWinningTactic || got.Reason != analysis.ReasonMissedOpportunity {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("win probability drop with tactical annotation", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			Assessment:    analysis.TacticalAssessment{IsTacticalBlunder: true, Type: analysis.TacticHangingPiece, Severity: analysis.ClassBlunder},
			EvalBefore:    100,
			EvalAfter:     -100,
			CentipawnLoss: 200,
			WinProbBefore: floatPtr(59.1),
			WinProbAfter:  floatPtr(40.9),
		})
		if got == nil {
			t.Fatal("expected a classification")
		}
		if got.Classification != analysis.ClassBlunder || got.Reason != analysis.ReasonWinProbDrop {
			t.Errorf("got %+v", got)
		}
		if got.TacticalType != analysis.TacticHangingPiece {
			t.Errorf("tactical type = %q", got.TacticalType)
		}
	})

	t.Run("decided position gets no annotation", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			EvalBefore:    800,
			EvalAfter:     600,
			CentipawnLoss: 200,
			WinProbBefore: floatPtr(95.1),
			WinProbAfter:  floatPtr(90.0),
		})
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("centipawn fallback without win probabilities", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			EvalBefore:    50,
			EvalAfter:     -70,
			CentipawnLoss: 120,
		})
		if got == nil {
			t.Fatal("expected a classification")
		}
		if got.Classification != analysis.ClassMistake || got.Reason != analysis.ReasonCentipawnLoss {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("clean move gets no annotation", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			EvalBefore:    20,
			EvalAfter:     0,
			CentipawnLoss: 20,
			WinProbBefore: floatPtr(50.7),
			WinProbAfter:  floatPtr(50.0),
		})
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})

	t.Run("delivering mate is never penalized", func(t *testing.T) {
		got := cfg.ClassifyMoveWithTactics(ClassificationInput{
			EvalBefore:    9997,
			EvalAfter:     9996,
			CentipawnLoss: 1,
			WinProbBefore: floatPtr(100),
			WinProbAfter:  floatPtr(100),
		})
		if got != nil {
			t.Errorf("got %+v, want nil", got)
		}
	})
}
