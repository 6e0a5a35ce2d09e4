package analysis

import (
	"testing"
)

func TestToWhitePerspective(t *testing.T) {
	tests := []struct {
		name        string
		score       int
		whiteToMove bool
		want        int
	}{
		{"white to move keeps sign", 35, true, 35},
		{"black to move flips sign", 35, false, -35},
		{"negative flips to positive", -120, false, 120},
		{"mate score flips like any other", -9997, false, 9997},
		{"zero stays zero", 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToWhitePerspective(tt.score, tt.whiteToMove); got != tt.want {
				t.Errorf("ToWhitePerspective(%d, %v) = %d, want %d", tt.score, tt.whiteToMove, got, tt.want)
			}
		})
	}
}

func TestToMoverPerspective(t *testing.T) {
	if got := ToMoverPerspective(-42); got != 42 {
		t.Errorf("ToMoverPerspective(-42) = %d, want 42", got)
	}
	if got := ToMoverPerspective(9999); got != -9999 {
		t.Errorf("ToMoverPerspective(9999) = %d, want -9999", got)
	}
}

func TestCentipawnLoss(t *testing.T) {
	tests := []struct {
		name   string
		before int
		after  int
		want   int
	}{
		{"drop yields loss", 100, 40, 60},
		{"improvement yields zero", 40, 100, 0},
		{"no change yields zero", -50, -50, 0},
		{"losing less badly is still no loss", -300, -100, 0},
		{"mate walk-in yields huge loss", 25, -9997, 10022},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CentipawnLoss(tt.before, tt.after); got != tt.want {
				t.Errorf("CentipawnLoss(%d, %d) = %d, want %d", tt.before, tt.after, got, tt.want)
			}
		})
	}
}

func TestIsMateScore(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{9000, true},
		{8999, false},
		{-9000, true},
		{-8999, false},
		{0, false},
		{10000, true},
		{-10000, true},
		{350, false},
	}
	for _, tt := range tests {
		if got := IsMateScore(tt.score); got != tt.want {
			t.Errorf("IsMateScore(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestMateDistance(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{9999, 1},
		{9997, 3},
		{-9997, -3},
		{-9999, -1},
		{-10000, 0},
		{400, 0},
		{-400, 0},
	}
	for _, tt := range tests {
		if got := MateDistance(tt.score); got != tt.want {
			t.Errorf("MateDistance(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}
