package games

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"chess_portal/internal/domain/analysis"
	"chess_portal/internal/domain/game"
)

// BuildReport renders one analyzed game as a printable PDF: the game
// header, the summary numbers and every annotated move.
func BuildReport(g game.Game, a analysis.GameAnalysis) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "Game Analysis Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	for _, line := range []string{
		fmt.Sprintf("Date: %s", g.Date),
		fmt.Sprintf("Tournament: %s", g.Tournament),
		fmt.Sprintf("Opponent: %s (playing %s)", g.Opponent, g.Color),
		fmt.Sprintf("Result: %s", g.Result),
		fmt.Sprintf("Engine depth: %d", a.Depth),
	} {
		pdf.Cell(0, 6, line)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Summary")
	pdf.Ln(8)

	pdf.SetFont("Courier", "", 10)
	s := a.Summary
	for _, line := range []string{
		fmt.Sprintf("Accuracy          %6.1f%%  (white %.1f%%, black %.1f%%)", s.Accuracy, s.WhiteAccuracy, s.BlackAccuracy),
		fmt.Sprintf("Avg centipawn loss %5.1f", s.AverageCentipawnLoss),
		fmt.Sprintf("Blunders          %3d", s.BlunderCount),
		fmt.Sprintf("Mistakes          %3d", s.MistakeCount),
		fmt.Sprintf("Inaccuracies      %3d", s.InaccuracyCount),
		fmt.Sprintf("Missed chances    %3d", s.MissedOpportunityCount),
	} {
		pdf.Cell(0, 5, line)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Moves")
	pdf.Ln(8)

	pdf.SetFont("Courier", "", 9)
	for _, rec := range a.Moves {
		pdf.MultiCell(0, 4.5, moveLine(rec), "", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func moveLine(rec analysis.MoveRecord) string {
	prefix := fmt.Sprintf("%3d. %-7s (%s)", rec.MoveNumber, rec.San, rec.Color)

	if rec.Unanalyzed {
		return fmt.Sprintf("%s not analyzed: %s", prefix, rec.AnalysisError)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s loss %4d  acc %5.1f%%", prefix, rec.CentipawnLoss, rec.Accuracy)
	if rec.Classification != "" && rec.Classification != analysis.ClassNone {
		fmt.Fprintf(&sb, "  %s", strings.ToUpper(rec.Classification))
		if rec.TacticalType != "" {
			fmt.Fprintf(&sb, " (%s)", rec.TacticalType)
		}
	}
	if rec.BestMove != "" && rec.BestMove != rec.Uci {
		fmt.Fprintf(&sb, "  best: %s", rec.BestMove)
	}
	return sb.String()
}
