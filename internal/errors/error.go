package errors

import "errors"

var (
	ErrEmptyMoveList         = errors.New("move list is empty")
	ErrInvalidMove           = errors.New("move list contains an illegal or unparseable move")
	ErrEngineTimeout         = errors.New("engine did not answer within the evaluation deadline")
	ErrEngineCrashed         = errors.New("engine process exited unexpectedly")
	ErrMalformedEngineOutput = errors.New("engine produced unparseable output")
	ErrAnalyzerClosed        = errors.New("analyzer is closed")
	ErrGameNotFound          = errors.New("game not found")
	ErrAnalysisNotFound      = errors.New("analysis not found")
	ErrNotPGN                = errors.New("uploaded file is not a .pgn")
	ErrInvalidWeek           = errors.New("week_start must be formatted YYYY-MM-DD")
	ErrInternal              = errors.New("internal error")
)
