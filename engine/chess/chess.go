// Package chess adapts the external rule library to the collaborator
// contract the lifecycle needs: given a position and a move, legalize
// or reject it and report the result. Positions travel as FEN strings
// so the session state blob stays flat.
package chess

import (
	"errors"
	"fmt"

	chesslib "github.com/corentings/chess"
)

// ErrIllegalMove is returned when the library rejects the move.
var ErrIllegalMove = errors.New("illegal move")

// Side to move or winner, as wire strings.
const (
	White = "white"
	Black = "black"
	Drawn = "draw"
)

// Snapshot is the position after a legalized move.
type Snapshot struct {
	FEN     string `json:"fen"`
	Turn    string `json:"turn"`
	Outcome string `json:"outcome,omitempty"` // "", white, black or draw
	Method  string `json:"method,omitempty"`  // e.g. "Checkmate", "Stalemate"
}

// StartFEN returns the initial position.
func StartFEN() string {
	return chesslib.NewGame().FEN()
}

// Turn reports which side moves next in fen.
func Turn(fen string) (string, error) {
	game, err := load(fen)
	if err != nil {
		return "", err
	}
	if game.Position().Turn() == chesslib.White {
		return White, nil
	}
	return Black, nil
}

// Apply plays moveStr (long algebraic, e.g. "e2e4") on fen. The move
// must match one of the library's valid moves; anything else is
// rejected with ErrIllegalMove and no new position.
func Apply(fen, moveStr string) (Snapshot, error) {
	game, err := load(fen)
	if err != nil {
		return Snapshot{}, err
	}

	var found *chesslib.Move
	for _, valid := range game.ValidMoves() {
		if valid.String() == moveStr {
			found = valid
			break
		}
	}
	if found == nil {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrIllegalMove, moveStr)
	}
	if err := game.Move(found); err != nil {
		return Snapshot{}, fmt.Errorf("applying move %s: %w", moveStr, err)
	}

	snap := Snapshot{FEN: game.FEN()}
	if game.Position().Turn() == chesslib.White {
		snap.Turn = White
	} else {
		snap.Turn = Black
	}
	switch game.Outcome() {
	case chesslib.WhiteWon:
		snap.Outcome = White
	case chesslib.BlackWon:
		snap.Outcome = Black
	case chesslib.Draw:
		snap.Outcome = Drawn
	}
	if snap.Outcome != "" {
		snap.Method = game.Method().String()
	}
	return snap, nil
}

func load(fen string) (*chesslib.Game, error) {
	opt, err := chesslib.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("invalid FEN: %w", err)
	}
	return chesslib.NewGame(opt), nil
}
