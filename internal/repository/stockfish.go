package repo

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"chess_portal/internal/bootstrap"
	"chess_portal/internal/domain/analysis"
	ownErrors "chess_portal/internal/errors"
)

// defaultEnginePaths is tried in order when STOCKFISH_PATH is not set.
var defaultEnginePaths = []string{
	"/opt/homebrew/bin/stockfish",
	"/usr/local/bin/stockfish",
	"/usr/bin/stockfish",
	"stockfish",
}

const handshakeTimeout = 10 * time.Second

// StockfishClient owns one UCI engine subprocess: it writes commands to
// the engine's stdin and reads answers from a scanner goroutine. Callers
// are serialized by the internal mutex; the analyzer on top of it never
// issues two evaluations at once anyway.
//
// Determinism contract: the engine runs a single search thread with fixed
// options, and Restart drops the whole process (hash tables included), so
// an identical position sequence always produces identical scores.
type StockfishClient struct {
	cfg *bootstrap.Config
	log *zap.SugaredLogger

	binary  string
	timeout time.Duration

	mu   sync.Mutex
	proc *engineProc
}

// engineProc is one running engine instance. A fresh one is built on every
// Restart so a reader goroutine of a dead process can never feed lines
// into its successor.
type engineProc struct {
	cmd    *exec.Cmd
	pipe   io.WriteCloser
	stdin  *bufio.Writer
	stdout io.ReadCloser
	lines  chan string
	done   chan struct{}
}

func NewStockfishClient(cfg *bootstrap.Config, log *zap.SugaredLogger) (*StockfishClient, error) {
	binary, err := resolveEngineBinary(cfg.StockfishPath)
	if err != nil {
		return nil, err
	}

	timeout := time.Duration(cfg.EngineTimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := &StockfishClient{
		cfg:     cfg,
		log:     log,
		binary:  binary,
		timeout: timeout,
	}

	ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
	defer cancel()

	if err := client.startLocked(ctx); err != nil {
		return nil, err
	}

	log.Infof("stockfish started: %s", binary)
	return client, nil
}

func resolveEngineBinary(configured string) (string, error) {
	candidates := defaultEnginePaths
	if configured != "" {
		candidates = []string{configured}
	}

	for _, candidate := range candidates {
		if filepath.IsAbs(candidate) {
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
			continue
		}
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("stockfish binary not found (tried %s)", strings.Join(candidates, ", "))
}

// Evaluate runs a fixed-depth search on the given FEN and returns the raw
// engine verdict: the primary score, the best move and up to MultiPV-1
// alternatives. Forced mates are folded into the ±(MateCeiling−n) band.
func (c *StockfishClient) Evaluate(ctx context.Context, fen string, depth int) (analysis.EngineEvaluation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc == nil {
		return analysis.EngineEvaluation{}, fmt.Errorf("%w: engine is not running", ownErrors.ErrEngineCrashed)
	}
	if depth < 1 {
		depth = 1
	}

	if err := c.send("position fen " + fen); err != nil {
		return analysis.EngineEvaluation{}, err
	}
	if err := c.send("go depth " + strconv.Itoa(depth)); err != nil {
		return analysis.EngineEvaluation{}, err
	}

	evalCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	byPV := make(map[int]infoLine)
	for {
		select {
		case <-evalCtx.Done():
			c.abortSearch()
			if ctx.Err() != nil {
				return analysis.EngineEvaluation{}, ctx.Err()
			}
			return analysis.EngineEvaluation{}, fmt.Errorf("%w: no bestmove within %s at depth %d",
				ownErrors.ErrEngineTimeout, c.timeout, depth)

		case line, ok := <-c.proc.lines:
			if !ok {
				c.markDead()
				return analysis.EngineEvaluation{}, fmt.Errorf("%w: engine exited mid-search", ownErrors.ErrEngineCrashed)
			}

			if info, matched := parseInfoLine(line); matched {
				merged := byPV[info.MultiPV]
				merged.MultiPV = info.MultiPV
				if info.Depth > 0 {
					merged.Depth = info.Depth
				}
				if info.ScoreCP != nil {
					merged.ScoreCP = info.ScoreCP
					merged.Mate = nil
				}
				if info.Mate != nil {
					merged.Mate = info.Mate
					merged.ScoreCP = nil
				}
				if len(info.PV) > 0 {
					merged.PV = info.PV
				}
				byPV[info.MultiPV] = merged
				continue
			}

			if strings.HasPrefix(line, "bestmove") {
				best, matched := parseBestMoveLine(line)
				if !matched {
					return analysis.EngineEvaluation{}, fmt.Errorf("%w: %q", ownErrors.ErrMalformedEngineOutput, line)
				}
				return buildEvaluation(best, byPV)
			}
		}
	}
}

// Restart kills the current process and boots a fresh one. All search
// state is discarded, which is what keeps repeated analyses of the same
// game bit-identical.
func (c *StockfishClient) Restart(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.markDead()

	startCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		startCtx, cancel = context.WithTimeout(ctx, handshakeTimeout)
		defer cancel()
	}

	return c.startLocked(startCtx)
}

func (c *StockfishClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.proc == nil {
		return nil
	}
	_ = c.send("quit")
	c.markDead()
	return nil
}

// startLocked launches the subprocess and walks the UCI handshake. The
// caller holds c.mu.
func (c *StockfishClient) startLocked(ctx context.Context) error {
	cmd := exec.Command(c.binary)
	cmd.Stderr = io.Discard

	stdinPipe, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.binary, err)
	}

	proc := &engineProc{
		cmd:    cmd,
		pipe:   stdinPipe,
		stdin:  bufio.NewWriter(stdinPipe),
		stdout: stdoutPipe,
		lines:  make(chan string, 256),
		done:   make(chan struct{}),
	}
	c.proc = proc

	go proc.listen()
	go func() {
		_ = cmd.Wait()
		close(proc.done)
	}()

	if err := c.handshake(ctx); err != nil {
		c.markDead()
		return err
	}
	return nil
}

func (c *StockfishClient) handshake(ctx context.Context) error {
	if err := c.send("uci"); err != nil {
		return err
	}
	if err := c.waitFor(ctx, "uciok"); err != nil {
		return fmt.Errorf("wait uciok: %w", err)
	}

	multiPV := c.cfg.EngineMultiPV
	if multiPV < 1 {
		multiPV = 1
	}
	hashMB := c.cfg.EngineHashMB
	if hashMB < 1 {
		hashMB = 16
	}

	// one search thread, always: multi-threaded search is not reproducible
	options := []string{
		"setoption name Threads value 1",
		"setoption name Hash value " + strconv.Itoa(hashMB),
		"setoption name Ponder value false",
		"setoption name MultiPV value " + strconv.Itoa(multiPV),
	}
	for _, option := range options {
		if err := c.send(option); err != nil {
			return err
		}
	}

	if err := c.send("isready"); err != nil {
		return err
	}
	if err := c.waitFor(ctx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

func (c *StockfishClient) send(command string) error {
	if c.proc == nil {
		return fmt.Errorf("%w: engine is not running", ownErrors.ErrEngineCrashed)
	}
	if _, err := c.proc.stdin.WriteString(command + "\n"); err != nil {
		c.markDead()
		return fmt.Errorf("%w: write %q: %v", ownErrors.ErrEngineCrashed, command, err)
	}
	if err := c.proc.stdin.Flush(); err != nil {
		c.markDead()
		return fmt.Errorf("%w: flush %q: %v", ownErrors.ErrEngineCrashed, command, err)
	}
	return nil
}

func (c *StockfishClient) waitFor(ctx context.Context, expected string) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-c.proc.lines:
			if !ok {
				return ownErrors.ErrEngineCrashed
			}
			if line == expected {
				return nil
			}
		}
	}
}

// abortSearch asks the engine to stop and drains output until the pending
// bestmove arrives. An engine that will not even answer "stop" is killed.
func (c *StockfishClient) abortSearch() {
	if c.proc == nil {
		return
	}
	if err := c.send("stop"); err != nil {
		return
	}

	grace := time.NewTimer(500 * time.Millisecond)
	defer grace.Stop()

	for {
		select {
		case <-grace.C:
			c.log.Errorw("engine ignored stop, killing process")
			c.markDead()
			return
		case line, ok := <-c.proc.lines:
			if !ok {
				c.markDead()
				return
			}
			if strings.HasPrefix(line, "bestmove") {
				return
			}
		}
	}
}

func (c *StockfishClient) markDead() {
	if c.proc == nil {
		return
	}
	c.proc.kill()
	c.proc = nil
}

func (p *engineProc) listen() {
	scanner := bufio.NewScanner(p.stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		p.lines <- strings.TrimSpace(scanner.Text())
	}
	close(p.lines)
}

func (p *engineProc) kill() {
	_ = p.pipe.Close()
	if p.cmd.Process != nil {
		_ = p.cmd.Process.Kill()
	}
	<-p.done
}

// -----------------------------------------------------
// UCI output parsing
// -----------------------------------------------------

type infoLine struct {
	MultiPV int
	Depth   int
	ScoreCP *int
	Mate    *int
	PV      []string
}

func parseInfoLine(line string) (infoLine, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return infoLine{}, false
	}

	info := infoLine{MultiPV: 1}
	for i := 1; i < len(fields); i++ {
		switch fields[i] {
		case "multipv":
			if i+1 < len(fields) {
				if pv, err := strconv.Atoi(fields[i+1]); err == nil && pv > 0 {
					info.MultiPV = pv
				}
				i++
			}
		case "depth":
			if i+1 < len(fields) {
				if depth, err := strconv.Atoi(fields[i+1]); err == nil {
					info.Depth = depth
				}
				i++
			}
		case "score":
			if i+2 < len(fields) {
				if value, err := strconv.Atoi(fields[i+2]); err == nil {
					switch fields[i+1] {
					case "cp":
						info.ScoreCP = &value
					case "mate":
						info.Mate = &value
					}
				}
				i += 2
			}
		case "pv":
			if i+1 < len(fields) {
				info.PV = append([]string(nil), fields[i+1:]...)
			}
			return info, true
		}
	}

	return info, true
}

func parseBestMoveLine(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[0] != "bestmove" {
		return "", false
	}
	return fields[1], true
}

// foldMateScore maps "score mate N" onto the categorical band the rest of
// the pipeline understands: mate in N for the mover becomes
// MateCeiling−N, mate against the mover −(MateCeiling−N). Stockfish
// reports mate 0 on a board where the mover is already checkmated.
func foldMateScore(mate int) int {
	if mate == 0 {
		return -analysis.MateCeiling
	}
	if mate > 0 {
		return analysis.MateCeiling - mate
	}
	return -(analysis.MateCeiling + mate)
}

func buildEvaluation(bestMove string, byPV map[int]infoLine) (analysis.EngineEvaluation, error) {
	if bestMove == "(none)" {
		bestMove = ""
	}

	primary, ok := byPV[1]
	if !ok || (primary.ScoreCP == nil && primary.Mate == nil) {
		return analysis.EngineEvaluation{}, fmt.Errorf("%w: bestmove without a scored primary line",
			ownErrors.ErrMalformedEngineOutput)
	}

	result := analysis.EngineEvaluation{
		RawScore: scoreOf(primary),
		BestMove: bestMove,
		Depth:    primary.Depth,
	}

	ids := make([]int, 0, len(byPV))
	for id := range byPV {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		line := byPV[id]
		if len(line.PV) == 0 || (line.ScoreCP == nil && line.Mate == nil) {
			continue
		}
		result.Alternatives = append(result.Alternatives, analysis.Alternative{
			Move:       line.PV[0],
			Evaluation: scoreOf(line),
		})
	}

	return result, nil
}

func scoreOf(line infoLine) int {
	if line.Mate != nil {
		return foldMateScore(*line.Mate)
	}
	return *line.ScoreCP
}
