// Package connectfour is the pure rule engine for 6x7 connect four.
// Operations return fresh State snapshots instead of mutating in place.
package connectfour

import (
	"errors"
	"fmt"
)

// Board dimensions.
const (
	Rows    = 6
	Columns = 7
	winLen  = 4
)

// ErrIllegalMove is returned for out-of-range columns, full columns and
// drops after the game ended. The input snapshot is never changed.
var ErrIllegalMove = errors.New("illegal move")

// Cell holds a disc color; the zero value is an empty cell.
type Cell string

const (
	Empty  Cell = ""
	Red    Cell = "red"
	Yellow Cell = "yellow"
)

// Opponent returns the other color.
func (c Cell) Opponent() Cell {
	switch c {
	case Red:
		return Yellow
	case Yellow:
		return Red
	}
	return Empty
}

// Position addresses a cell; row 0 is the top.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Move records one drop for the history used by Undo.
type Move struct {
	Player Cell `json:"player"`
	Column int  `json:"column"`
	Row    int  `json:"row"`
}

// Status of the game.
type Status string

const (
	Playing Status = "playing"
	Won     Status = "won"
	Draw    Status = "draw"
)

// Board is the 6x7 grid. Assignment copies the whole array.
type Board [Rows][Columns]Cell

// State is an immutable snapshot. Red moves first.
type State struct {
	Board        Board      `json:"board"`
	Turn         Cell       `json:"turn"`
	Status       Status     `json:"status"`
	Winner       Cell       `json:"winner,omitempty"`
	WinningCells []Position `json:"winningCells,omitempty"`
	History      []Move     `json:"history,omitempty"`
}

// NewState returns an empty board with red to move.
func NewState() State {
	return State{Turn: Red, Status: Playing}
}

// Drop places the side-to-move's disc in the lowest empty row of
// column and evaluates the result. Rejections leave the snapshot
// untouched.
func (s State) Drop(column int) (State, error) {
	if column < 0 || column >= Columns {
		return s, fmt.Errorf("%w: column %d out of range", ErrIllegalMove, column)
	}
	if s.Status != Playing {
		return s, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}
	if s.Board[0][column] != Empty {
		return s, fmt.Errorf("%w: column %d is full", ErrIllegalMove, column)
	}

	next := s
	row := -1
	for r := Rows - 1; r >= 0; r-- {
		if next.Board[r][column] == Empty {
			next.Board[r][column] = s.Turn
			row = r
			break
		}
	}

	// History is copied, never shared, so older snapshots stay valid.
	next.History = append(append([]Move(nil), s.History...), Move{Player: s.Turn, Column: column, Row: row})

	if cells := winningRun(&next.Board); cells != nil {
		next.Status = Won
		next.Winner = next.Board[cells[0].Row][cells[0].Col]
		next.WinningCells = cells
		return next, nil
	}
	if topRowFull(&next.Board) {
		next.Status = Draw
		return next, nil
	}

	next.Turn = s.Turn.Opponent()
	return next, nil
}

// Undo pops the most recent move, clears its cell and hands the turn
// back to the mover. Terminal status is always reset to playing, so an
// undone winning move reopens the game.
func (s State) Undo() (State, error) {
	if len(s.History) == 0 {
		return s, fmt.Errorf("%w: nothing to undo", ErrIllegalMove)
	}
	last := s.History[len(s.History)-1]

	next := s
	next.Board[last.Row][last.Column] = Empty
	next.History = append([]Move(nil), s.History[:len(s.History)-1]...)
	next.Turn = last.Player
	next.Status = Playing
	next.Winner = Empty
	next.WinningCells = nil
	return next, nil
}

// ValidColumns lists the columns whose top cell is still empty.
func (s State) ValidColumns() []int {
	var cols []int
	for c := 0; c < Columns; c++ {
		if s.Board[0][c] == Empty {
			cols = append(cols, c)
		}
	}
	return cols
}

// winningRun scans every occupied cell in row-major order and each of
// the four ray directions (horizontal, vertical, diagonal down-right,
// diagonal down-left); the first four-in-a-row found is returned.
func winningRun(b *Board) []Position {
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}
	for row := 0; row < Rows; row++ {
		for col := 0; col < Columns; col++ {
			cell := b[row][col]
			if cell == Empty {
				continue
			}
			for _, d := range dirs {
				if cells := ray(b, row, col, d[0], d[1], cell); cells != nil {
					return cells
				}
			}
		}
	}
	return nil
}

func ray(b *Board, startRow, startCol, dRow, dCol int, player Cell) []Position {
	cells := make([]Position, 0, winLen)
	for i := 0; i < winLen; i++ {
		row := startRow + i*dRow
		col := startCol + i*dCol
		if row < 0 || row >= Rows || col < 0 || col >= Columns {
			return nil
		}
		if b[row][col] != player {
			return nil
		}
		cells = append(cells, Position{Row: row, Col: col})
	}
	return cells
}

func topRowFull(b *Board) bool {
	for c := 0; c < Columns; c++ {
		if b[0][c] == Empty {
			return false
		}
	}
	return true
}
