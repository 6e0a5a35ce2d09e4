package games

import (
	"fmt"
	"strings"

	"github.com/notnil/chess"

	"chess_portal/internal/domain/analysis"
	ownErrors "chess_portal/internal/errors"
)

// ParsedPGN is the slice of a PGN the portal keeps: the SAN move list the
// analyzer consumes plus the header tags the stored game is built from.
type ParsedPGN struct {
	Moves  []string
	Result string
	tags   map[string]string
}

// ParsePGN reads a single-game PGN. Legality checking belongs to the chess
// library; any parse failure is surfaced as a validation error, never as
// an engine one.
func ParsePGN(raw string) (*ParsedPGN, error) {
	pgnFunc, err := chess.PGN(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ownErrors.ErrInvalidMove, err)
	}
	parsedGame := chess.NewGame(pgnFunc)

	moves := parsedGame.Moves()
	if len(moves) == 0 {
		return nil, ownErrors.ErrEmptyMoveList
	}

	// Re-encode every move as SAN from its own position: the analyzer
	// replays SAN, and PGN bodies are full of annotation noise.
	positions := parsedGame.Positions()
	sans := make([]string, len(moves))
	for i, move := range moves {
		sans[i] = chess.AlgebraicNotation{}.Encode(positions[i], move)
	}

	tags := make(map[string]string)
	for _, pair := range parsedGame.TagPairs() {
		tags[pair.Key] = pair.Value
	}

	return &ParsedPGN{
		Moves:  sans,
		Result: parsedGame.Outcome().String(),
		tags:   tags,
	}, nil
}

func (p *ParsedPGN) Tag(key string) string {
	return p.tags[key]
}

// OpponentFor returns the name of the other side, given the color the
// portal owner played.
func (p *ParsedPGN) OpponentFor(ownColor string) string {
	if strings.EqualFold(ownColor, analysis.ColorBlack) {
		return p.Tag("White")
	}
	return p.Tag("Black")
}
