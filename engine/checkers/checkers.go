// Package checkers is the pure rule engine for 8x8 checkers with
// mandatory captures and chained multi-jumps. Every operation returns a
// fresh State snapshot; callers keep the latest snapshot and feed it
// into the next call, which keeps replay and testing trivial.
package checkers

import (
	"errors"
	"fmt"
)

// Size is the board edge length.
const Size = 8

// ErrIllegalMove is returned when a move is rejected. The state passed
// in is never mutated on rejection.
var ErrIllegalMove = errors.New("illegal move")

// Color of a piece or side. The zero value marks an empty cell.
type Color string

const (
	None  Color = ""
	Red   Color = "red"
	Black Color = "black"
)

// Opponent returns the other side.
func (c Color) Opponent() Color {
	switch c {
	case Red:
		return Black
	case Black:
		return Red
	}
	return None
}

// Piece occupies a dark square. A man promotes to king exactly once,
// on reaching the far row; kings never demote.
type Piece struct {
	Color Color `json:"color"`
	King  bool  `json:"king"`
}

// Empty reports whether the cell holds no piece.
func (p Piece) Empty() bool { return p.Color == None }

// Position addresses a board cell. Row 0 is the top (black's home).
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Valid reports whether the position is on the board.
func (p Position) Valid() bool {
	return p.Row >= 0 && p.Row < Size && p.Col >= 0 && p.Col < Size
}

// Move is a single turn: origin, destination and every piece captured
// along the way. A chain of N captures is one Move with an N-length
// capture list; MultiJump marks N > 1.
type Move struct {
	From      Position   `json:"from"`
	To        Position   `json:"to"`
	Captures  []Position `json:"captures,omitempty"`
	MultiJump bool       `json:"multiJump,omitempty"`
}

// Status of the game.
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	// Draw is never produced; there is no repetition or no-progress
	// rule, a side with no moves simply loses.
	Draw Status = "draw"
)

// Board is the 8x8 grid. Assignment copies the whole array.
type Board [Size][Size]Piece

// State is an immutable snapshot of a game. Red moves first and sits on
// rows 5-7; black sits on rows 0-2.
type State struct {
	Board Board `json:"board"`
	Turn  Color `json:"turn"`
	// Pieces lost per color, for display only. Win detection always
	// recomputes from the board.
	CapturedRed   int    `json:"capturedRed"`
	CapturedBlack int    `json:"capturedBlack"`
	Status        Status `json:"status"`
	Winner        Color  `json:"winner,omitempty"`
	LastMove      *Move  `json:"lastMove,omitempty"`
}

// NewState returns the initial position with red to move.
func NewState() State {
	var b Board
	for row := 0; row < 3; row++ {
		for col := 0; col < Size; col++ {
			if (row+col)%2 == 1 {
				b[row][col] = Piece{Color: Black}
			}
		}
	}
	for row := 5; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if (row+col)%2 == 1 {
				b[row][col] = Piece{Color: Red}
			}
		}
	}
	return State{Board: b, Turn: Red, Status: Playing}
}

// Piece returns the piece at pos, or the empty piece off-board.
func (s State) Piece(pos Position) Piece {
	if !pos.Valid() {
		return Piece{}
	}
	return s.Board[pos.Row][pos.Col]
}

// LegalMoves enumerates the moves available to the piece at from.
// If any piece of the side to move has a capture available anywhere on
// the board, only capturing moves are legal for the whole side that
// turn, so pieces without a chain get an empty result.
func (s State) LegalMoves(from Position) []Move {
	if s.Status != Playing {
		return nil
	}
	return legalMoves(&s.Board, s.Turn, from)
}

// AllLegalMoves enumerates every move available to the side to move.
func (s State) AllLegalMoves() []Move {
	if s.Status != Playing {
		return nil
	}
	return allLegalMoves(&s.Board, s.Turn)
}

// Apply plays the move from→to and returns the resulting snapshot.
// The move must be one of LegalMoves(from); otherwise ErrIllegalMove is
// returned and the receiver is untouched. Captured pieces are removed
// atomically with the placement, promotion happens on the far row, and
// the win condition is evaluated before the turn switches.
func (s State) Apply(from, to Position) (State, error) {
	if s.Status != Playing {
		return s, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	piece := s.Piece(from)
	if piece.Empty() || piece.Color != s.Turn {
		return s, fmt.Errorf("%w: no piece of the side to move at %d,%d", ErrIllegalMove, from.Row, from.Col)
	}

	var move *Move
	for _, m := range legalMoves(&s.Board, s.Turn, from) {
		if m.To == to {
			mv := m
			move = &mv
			break
		}
	}
	if move == nil {
		return s, fmt.Errorf("%w: %d,%d -> %d,%d", ErrIllegalMove, from.Row, from.Col, to.Row, to.Col)
	}

	next := s // value copy, the caller's snapshot stays intact
	next.Board[to.Row][to.Col] = piece
	next.Board[from.Row][from.Col] = Piece{}

	for _, cap := range move.Captures {
		captured := next.Board[cap.Row][cap.Col]
		switch captured.Color {
		case Red:
			next.CapturedRed++
		case Black:
			next.CapturedBlack++
		}
		next.Board[cap.Row][cap.Col] = Piece{}
	}

	// Promotion on the far row for the moving color.
	if (piece.Color == Red && to.Row == 0) || (piece.Color == Black && to.Row == Size-1) {
		next.Board[to.Row][to.Col].King = true
	}

	next.LastMove = move

	if hasWon(&next.Board, s.Turn) {
		next.Status = Won
		next.Winner = s.Turn
		return next, nil
	}

	next.Turn = s.Turn.Opponent()
	return next, nil
}

// moveDirections lists the diagonal step directions a piece may take,
// scanned up-left, up-right, down-left, down-right and filtered by
// rank and color.
func moveDirections(p Piece) [][2]int {
	var dirs [][2]int
	if p.Color == Red || p.King {
		dirs = append(dirs, [2]int{-1, -1}, [2]int{-1, 1})
	}
	if p.Color == Black || p.King {
		dirs = append(dirs, [2]int{1, -1}, [2]int{1, 1})
	}
	return dirs
}

func pieceAt(b *Board, pos Position) Piece {
	if !pos.Valid() {
		return Piece{}
	}
	return b[pos.Row][pos.Col]
}

// regularMoves enumerates the single-step moves of the piece at from.
func regularMoves(b *Board, from Position) []Move {
	piece := pieceAt(b, from)
	if piece.Empty() {
		return nil
	}
	var moves []Move
	for _, d := range moveDirections(piece) {
		to := Position{Row: from.Row + d[0], Col: from.Col + d[1]}
		if to.Valid() && pieceAt(b, to).Empty() {
			moves = append(moves, Move{From: from, To: to})
		}
	}
	return moves
}

// captureMoves enumerates capture chains starting at from. The search
// recurses from each landing square; only completed chains are
// returned, so a chain of N jumps surfaces as one move with N captures.
// path carries the squares already jumped so a chain cannot capture the
// same piece twice.
func captureMoves(b *Board, origin, from Position, piece Piece, path []Position) []Move {
	var moves []Move
	for _, d := range moveDirections(piece) {
		jumped := Position{Row: from.Row + d[0], Col: from.Col + d[1]}
		land := Position{Row: from.Row + 2*d[0], Col: from.Col + 2*d[1]}
		if !land.Valid() {
			continue
		}
		target := pieceAt(b, jumped)
		if target.Empty() || target.Color == piece.Color {
			continue
		}
		if !pieceAt(b, land).Empty() {
			continue
		}
		if onPath(path, jumped) {
			continue
		}

		newPath := append(append([]Position(nil), path...), jumped)
		further := captureMoves(b, origin, land, piece, newPath)
		if len(further) > 0 {
			moves = append(moves, further...)
			continue
		}
		moves = append(moves, Move{
			From:      origin,
			To:        land,
			Captures:  newPath,
			MultiJump: len(newPath) > 1,
		})
	}
	return moves
}

func onPath(path []Position, pos Position) bool {
	for _, p := range path {
		if p == pos {
			return true
		}
	}
	return false
}

// sideHasCapture reports whether any piece of color can capture.
func sideHasCapture(b *Board, color Color) bool {
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			pos := Position{Row: row, Col: col}
			piece := pieceAt(b, pos)
			if piece.Color != color {
				continue
			}
			if len(captureMoves(b, pos, pos, piece, nil)) > 0 {
				return true
			}
		}
	}
	return false
}

// legalMoves applies the board-wide mandatory-capture rule: when any
// piece of turn can capture, non-capturing moves are illegal for the
// whole side.
func legalMoves(b *Board, turn Color, from Position) []Move {
	piece := pieceAt(b, from)
	if piece.Empty() || piece.Color != turn {
		return nil
	}
	if sideHasCapture(b, turn) {
		return captureMoves(b, from, from, piece, nil)
	}
	return regularMoves(b, from)
}

func allLegalMoves(b *Board, turn Color) []Move {
	var moves []Move
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			moves = append(moves, legalMoves(b, turn, Position{Row: row, Col: col})...)
		}
	}
	return moves
}

// hasWon checks, from the mover's perspective, whether the opponent is
// defeated: no pieces left, or at least one piece but no legal move
// across the whole set (mandatory capture included).
func hasWon(b *Board, mover Color) bool {
	opponent := mover.Opponent()
	pieces := 0
	for row := 0; row < Size; row++ {
		for col := 0; col < Size; col++ {
			if b[row][col].Color == opponent {
				pieces++
			}
		}
	}
	if pieces == 0 {
		return true
	}
	return len(allLegalMoves(b, opponent)) == 0
}
