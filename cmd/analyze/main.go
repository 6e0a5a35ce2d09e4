package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chess_portal/internal/bootstrap"
	"chess_portal/internal/domain/analysis"
	repo "chess_portal/internal/repository"
	analysisuc "chess_portal/internal/usecase/analysis"
	gamesuc "chess_portal/internal/usecase/games"
)

var (
	pgnPaths      []string
	depth         int
	stockfishPath string
	asJSON        bool
)

type fileResult struct {
	Path     string                 `json:"path"`
	Analysis *analysis.GameAnalysis `json:"analysis"`
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "chess-analyze",
		Short:        "Offline chess game analysis",
		SilenceUsage: true,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze PGN files with a local engine",
		Long: "Analyze runs every position of the given PGN files through a local " +
			"Stockfish and prints per-move classifications and accuracy. Each file " +
			"gets its own engine process, so files are analyzed in parallel.",
		RunE: runAnalyze,
	}
	analyzeCmd.Flags().StringSliceVar(&pgnPaths, "pgn", nil, "PGN files to analyze")
	analyzeCmd.Flags().IntVar(&depth, "depth", 0, "search depth (0 = default preset)")
	analyzeCmd.Flags().StringVar(&stockfishPath, "stockfish", "", "path to the stockfish binary")
	analyzeCmd.Flags().BoolVar(&asJSON, "json", false, "print full analyses as JSON")
	_ = analyzeCmd.MarkFlagRequired("pgn")

	rootCmd.AddCommand(analyzeCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	logger := zapLogger.Sugar()

	results := make([]fileResult, len(pgnPaths))

	g, ctx := errgroup.WithContext(cmd.Context())
	for i, path := range pgnPaths {
		i, path := i, path
		g.Go(func() error {
			result, err := analyzeFile(ctx, logger, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = fileResult{Path: path, Analysis: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, res := range results {
		printSummary(res)
	}
	return nil
}

// analyzeFile gives every file its own engine process: files never share
// search state, so results are reproducible file by file.
func analyzeFile(ctx context.Context, logger *zap.SugaredLogger, path string) (*analysis.GameAnalysis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	parsed, err := gamesuc.ParsePGN(string(raw))
	if err != nil {
		return nil, err
	}

	cfg := &bootstrap.Config{
		StockfishPath:    stockfishPath,
		EngineTimeoutSec: 30,
		EngineHashMB:     128,
		EngineMultiPV:    3,
	}
	engine, err := repo.NewStockfishClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	analyzer := analysisuc.NewAnalyzer(analysisuc.DefaultConfig(), engine, logger)
	defer analyzer.Close()

	return analyzer.AnalyzeGame(ctx, analysis.AnalysisRequest{Moves: parsed.Moves, Depth: depth})
}

func printSummary(res fileResult) {
	s := res.Analysis.Summary
	fmt.Printf("%s\n", res.Path)
	fmt.Printf("  depth %d, %d moves, accuracy %.1f%% (white %.1f%%, black %.1f%%)\n",
		res.Analysis.Depth, s.TotalMoves, s.Accuracy, s.WhiteAccuracy, s.BlackAccuracy)
	fmt.Printf("  blunders %d, mistakes %d, inaccuracies %d, avg loss %.1f cp\n",
		s.BlunderCount, s.MistakeCount, s.InaccuracyCount, s.AverageCentipawnLoss)

	for _, rec := range res.Analysis.Moves {
		if rec.Classification == "" || rec.Classification == analysis.ClassNone {
			continue
		}
		line := fmt.Sprintf("  %3d. %-7s %-8s %s", rec.MoveNumber, rec.San, rec.Color, strings.ToUpper(rec.Classification))
		if rec.BestMove != "" && rec.BestMove != rec.Uci {
			line += " (best: " + rec.BestMove + ")"
		}
		fmt.Println(line)
	}
}
