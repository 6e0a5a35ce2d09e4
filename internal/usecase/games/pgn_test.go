package games

import (
	"testing"

	"github.com/stretchr/testify/require"

	ownErrors "chess_portal/internal/errors"
)

const scholarsMatePGN = `[Event "Weekly Blitz"]
[Site "?"]
[Date "2024.03.01"]
[White "Portal Owner"]
[Black "Rival"]
[Result "1-0"]
[ECO "C20"]

1. e4 e5 2. Qh5 Nc6 3. Bc4 Nf6 4. Qxf7# 1-0
`

func TestParsePGN(t *testing.T) {
	parsed, err := ParsePGN(scholarsMatePGN)
	require.NoError(t, err)

	require.Equal(t, []string{"e4", "e5", "Qh5", "Nc6", "Bc4", "Nf6", "Qxf7#"}, parsed.Moves)
	require.Equal(t, "1-0", parsed.Result)
	require.Equal(t, "C20", parsed.Tag("ECO"))
	require.Equal(t, "Weekly Blitz", parsed.Tag("Event"))
	require.Empty(t, parsed.Tag("TimeControl"))
}

func TestParsedPGNOpponentFor(t *testing.T) {
	parsed, err := ParsePGN(scholarsMatePGN)
	require.NoError(t, err)

	require.Equal(t, "Rival", parsed.OpponentFor("white"))
	require.Equal(t, "Portal Owner", parsed.OpponentFor("black"))
}

func TestParsePGNRejectsGarbage(t *testing.T) {
	_, err := ParsePGN("this is not a pgn {")
	require.ErrorIs(t, err, ownErrors.ErrInvalidMove)
}

func TestParsePGNRejectsMovelessGame(t *testing.T) {
	_, err := ParsePGN("[Event \"Empty\"]\n\n*\n")
	require.ErrorIs(t, err, ownErrors.ErrEmptyMoveList)
}
