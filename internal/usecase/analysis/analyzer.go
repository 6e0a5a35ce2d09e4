package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"chess_portal/internal/domain/analysis"
	ownErrors "chess_portal/internal/errors"
)

// Engine is the slice of the UCI client the analyzer needs. Declared on
// the consumer side so tests can script evaluations without a binary.
type Engine interface {
	Evaluate(ctx context.Context, fen string, depth int) (analysis.EngineEvaluation, error)
	Restart(ctx context.Context) error
	Close() error
}

// ProgressFunc receives each move record as soon as it is classified,
// before the game's summary exists. Called from the worker goroutine.
type ProgressFunc func(record analysis.MoveRecord)

// Analyzer serializes whole-game analyses onto a single engine process.
// Serialization is a correctness requirement, not a throughput tradeoff:
// the engine carries search state between evaluations, so the process is
// restarted before every game and evaluations within a game run strictly
// in order. Concurrent AnalyzeGame calls queue up and each gets a clean
// engine, which makes results independent of submission interleaving.
type Analyzer struct {
	cfg    AnalysisConfig
	engine Engine
	log    *zap.SugaredLogger

	jobs      chan *job
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

type job struct {
	ctx      context.Context
	plies    []ply
	finalFEN string
	depth    int
	progress ProgressFunc
	result   chan jobResult
}

type jobResult struct {
	analysis *analysis.GameAnalysis
	err      error
}

// ply is one move replayed on the board, with the position it was played
// from.
type ply struct {
	san         string
	uci         string
	fenBefore   string
	whiteToMove bool
	moveNumber  int
}

type positionEval struct {
	eval analysis.EngineEvaluation
	err  error
}

func NewAnalyzer(cfg AnalysisConfig, engine Engine, log *zap.SugaredLogger) *Analyzer {
	a := &Analyzer{
		cfg:    cfg,
		engine: engine,
		log:    log,
		jobs:   make(chan *job, 64),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go a.worker()
	return a
}

// AnalyzeGame evaluates every position of the game and classifies every
// move. Validation errors surface before the job is queued; engine
// failures on single positions degrade the affected records instead of
// failing the game.
func (a *Analyzer) AnalyzeGame(ctx context.Context, req analysis.AnalysisRequest) (*analysis.GameAnalysis, error) {
	return a.AnalyzeGameWithProgress(ctx, req, nil)
}

func (a *Analyzer) AnalyzeGameWithProgress(ctx context.Context, req analysis.AnalysisRequest, progress ProgressFunc) (*analysis.GameAnalysis, error) {
	if len(req.Moves) == 0 {
		return nil, ownErrors.ErrEmptyMoveList
	}
	plies, finalFEN, err := replayMoves(req.Moves)
	if err != nil {
		return nil, err
	}

	j := &job{
		ctx:      ctx,
		plies:    plies,
		finalFEN: finalFEN,
		depth:    a.cfg.NormalizeDepth(req.Depth),
		progress: progress,
		result:   make(chan jobResult, 1),
	}

	select {
	case a.jobs <- j:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.quit:
		return nil, ownErrors.ErrAnalyzerClosed
	}

	select {
	case res := <-j.result:
		return res.analysis, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-a.done:
		return nil, ownErrors.ErrAnalyzerClosed
	}
}

// Close stops the worker and shuts the engine down. Queued jobs that never
// started resolve with ErrAnalyzerClosed on the caller's side.
func (a *Analyzer) Close() {
	a.closeOnce.Do(func() {
		close(a.quit)
		<-a.done
		if err := a.engine.Close(); err != nil {
			a.log.Errorw("engine close failed", "error", err)
		}
	})
}

func (a *Analyzer) worker() {
	defer close(a.done)
	for {
		select {
		case <-a.quit:
			return
		case j := <-a.jobs:
			j.result <- a.runJob(j)
		}
	}
}

func (a *Analyzer) runJob(j *job) jobResult {
	// Cancellation is cooperative: a queued job is dropped here, a started
	// one is only abandoned between positions, never mid-evaluation.
	if err := j.ctx.Err(); err != nil {
		return jobResult{err: err}
	}

	if err := a.engine.Restart(context.Background()); err != nil {
		a.log.Errorw("engine restart failed", "error", err)
		return jobResult{err: err}
	}

	fens := make([]string, 0, len(j.plies)+1)
	for _, p := range j.plies {
		fens = append(fens, p.fenBefore)
	}
	fens = append(fens, j.finalFEN)

	evals := make([]positionEval, len(fens))
	for i, fen := range fens {
		if err := j.ctx.Err(); err != nil {
			return jobResult{err: err}
		}
		evals[i] = a.evaluate(fen, j.depth)
	}

	records, whiteWinProbs := a.buildRecords(j, evals)
	summary := a.buildSummary(records, whiteWinProbs)

	return jobResult{analysis: &analysis.GameAnalysis{
		Depth:   j.depth,
		Moves:   records,
		Summary: summary,
	}}
}

// evaluate runs one position through the engine, restarting it and
// retrying once on crash, timeout or protocol garbage. A second failure is
// carried in the result; the game goes on without this position.
func (a *Analyzer) evaluate(fen string, depth int) positionEval {
	ev, err := a.engine.Evaluate(context.Background(), fen, depth)
	if err == nil {
		return positionEval{eval: ev}
	}
	if !isRetryable(err) {
		return positionEval{err: err}
	}
	a.log.Errorw("evaluation failed, restarting engine", "fen", fen, "error", err)
	if rerr := a.engine.Restart(context.Background()); rerr != nil {
		return positionEval{err: rerr}
	}
	ev, err = a.engine.Evaluate(context.Background(), fen, depth)
	if err != nil {
		return positionEval{err: err}
	}
	return positionEval{eval: ev}
}

func isRetryable(err error) bool {
	return errors.Is(err, ownErrors.ErrEngineCrashed) ||
		errors.Is(err, ownErrors.ErrEngineTimeout) ||
		errors.Is(err, ownErrors.ErrMalformedEngineOutput)
}

// buildRecords turns raw evaluations into classified move records plus the
// White-perspective win-probability series used for volatility weighting.
// The series carries the last known value across failed evaluations so the
// sliding windows stay defined.
func (a *Analyzer) buildRecords(j *job, evals []positionEval) ([]analysis.MoveRecord, []float64) {
	n := len(j.plies)

	whiteWinProbs := make([]float64, len(evals))
	prev := 50.0
	for i := range evals {
		if evals[i].err == nil {
			whiteToMove := !j.plies[n-1].whiteToMove
			if i < n {
				whiteToMove = j.plies[i].whiteToMove
			}
			prev = CPToWinProbability(ToWhitePerspective(evals[i].eval.RawScore, whiteToMove))
		}
		whiteWinProbs[i] = prev
	}

	records := make([]analysis.MoveRecord, 0, n)
	for i, p := range j.plies {
		rec := analysis.MoveRecord{
			MoveNumber: p.moveNumber,
			Color:      colorOf(p.whiteToMove),
			San:        p.san,
			Uci:        p.uci,
		}

		if failure := firstError(evals[i], evals[i+1]); failure != nil {
			rec.Unanalyzed = true
			rec.AnalysisError = failure.Error()
			records = append(records, rec)
			if j.progress != nil {
				j.progress(rec)
			}
			continue
		}

		evalBefore := evals[i].eval.RawScore
		evalAfter := ToMoverPerspective(evals[i+1].eval.RawScore)
		cpLoss := CentipawnLoss(evalBefore, evalAfter)
		winBefore := CPToWinProbability(evalBefore)
		winAfter := CPToWinProbability(evalAfter)

		assessment := a.cfg.AnalyzeTacticalBlunder(p.uci, cpLoss, evalAfter, evals[i].eval.Alternatives)
		class := a.cfg.ClassifyMoveWithTactics(ClassificationInput{
			Assessment:    assessment,
			EvalBefore:    evalBefore,
			EvalAfter:     evalAfter,
			CentipawnLoss: cpLoss,
			WinProbBefore: &winBefore,
			WinProbAfter:  &winAfter,
		})

		rec.EvalBefore = evalBefore
		rec.EvalAfter = evalAfter
		rec.CentipawnLoss = cpLoss
		rec.WinProbBefore = winBefore
		rec.WinProbAfter = winAfter
		rec.Accuracy = MoveAccuracy(winBefore, winAfter)
		rec.BestMove = evals[i].eval.BestMove
		rec.Alternatives = evals[i].eval.Alternatives
		if class != nil {
			rec.Classification = class.Classification
			rec.TacticalType = class.TacticalType
			rec.Reason = class.Reason
			rec.IsBlunder = class.Classification == analysis.ClassBlunder
			rec.IsMistake = class.Classification == analysis.ClassMistake
			rec.IsInaccuracy = class.Classification == analysis.ClassInaccuracy
		}

		records = append(records, rec)
		if j.progress != nil {
			j.progress(rec)
		}
	}
	return records, whiteWinProbs
}

func (a *Analyzer) buildSummary(records []analysis.MoveRecord, whiteWinProbs []float64) analysis.Summary {
	volatilities := MoveVolatilities(whiteWinProbs, len(records))

	s := analysis.Summary{TotalMoves: len(records)}
	var (
		accAll, volAll     []float64
		accWhite, volWhite []float64
		accBlack, volBlack []float64
		lossSum            int
	)
	for i, rec := range records {
		switch rec.Classification {
		case analysis.ClassBlunder:
			s.BlunderCount++
		case analysis.ClassMistake:
			s.MistakeCount++
		case analysis.ClassInaccuracy:
			s.InaccuracyCount++
		case analysis.ClassMissedOpportunity:
			s.MissedOpportunityCount++
		}
		if rec.Unanalyzed {
			continue
		}
		s.AnalyzedMoves++
		lossSum += rec.CentipawnLoss
		accAll = append(accAll, rec.Accuracy)
		volAll = append(volAll, volatilities[i])
		if rec.Color == analysis.ColorWhite {
			accWhite = append(accWhite, rec.Accuracy)
			volWhite = append(volWhite, volatilities[i])
		} else {
			accBlack = append(accBlack, rec.Accuracy)
			volBlack = append(volBlack, volatilities[i])
		}
	}
	if s.AnalyzedMoves > 0 {
		s.AverageCentipawnLoss = float64(lossSum) / float64(s.AnalyzedMoves)
	}
	s.Accuracy = GameAccuracy(accAll, volAll)
	s.WhiteAccuracy = GameAccuracy(accWhite, volWhite)
	s.BlackAccuracy = GameAccuracy(accBlack, volBlack)
	return s
}

// replayMoves pushes the SAN list through a fresh board, capturing for
// each ply the FEN it was played from, its UCI form and whose turn it was.
// The final position's FEN comes back separately so the caller can
// evaluate all n+1 positions.
func replayMoves(moves []string) ([]ply, string, error) {
	game := chess.NewGame()
	plies := make([]ply, 0, len(moves))
	for i, san := range moves {
		pos := game.Position()
		fenBefore := pos.String()
		whiteToMove := pos.Turn() == chess.White
		if err := game.MoveStr(san); err != nil {
			return nil, "", fmt.Errorf("%w: move %d (%s): %v", ownErrors.ErrInvalidMove, i+1, san, err)
		}
		played := game.Moves()
		plies = append(plies, ply{
			san:         san,
			uci:         played[len(played)-1].String(),
			fenBefore:   fenBefore,
			whiteToMove: whiteToMove,
			moveNumber:  i/2 + 1,
		})
	}
	return plies, game.Position().String(), nil
}

func colorOf(whiteToMove bool) string {
	if whiteToMove {
		return analysis.ColorWhite
	}
	return analysis.ColorBlack
}

func firstError(before, after positionEval) error {
	if before.err != nil {
		return before.err
	}
	return after.err
}
