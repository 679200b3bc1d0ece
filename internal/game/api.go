package game

import (
	"errors"
	"time"
)

var ErrInvalidDepth = errors.New("search depth must not be negative")

// Outcome describes how a finished game ended.
type Outcome int

const (
	NoOutcome Outcome = iota
	PlayerWon
	MachineWon
	Draw
)

func (o Outcome) String() string {
	switch o {
	case PlayerWon:
		return "player_won"
	case MachineWon:
		return "machine_won"
	case Draw:
		return "draw"
	default:
		return ""
	}
}

func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// Winner is the winning side, or zero for a draw or unfinished game.
func (o Outcome) Winner() Side {
	switch o {
	case PlayerWon:
		return Player
	case MachineWon:
		return Machine
	default:
		return 0
	}
}

func winOutcome(s Side) Outcome {
	if s == Machine {
		return MachineWon
	}
	return PlayerWon
}

// NewGame returns an empty board for a new game.
func NewGame(rows, cols int) (*Board, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return NewBoard(rows, cols), nil
}

// AttemptPlayerMove drops side's piece into col and returns the row it
// landed on.
func AttemptPlayerMove(b *Board, col int, side Side) (int, error) {
	if col < 0 || col >= b.cols {
		return NoColumn, ErrInvalidColumn
	}
	if !b.IsValidLocation(col) {
		return NoColumn, ErrColumnFull
	}
	row := b.NextOpenRow(col)
	b.Drop(row, col, side)
	return row, nil
}

// IsGameOver reports the outcome of a terminal position.
func IsGameOver(b *Board) (Outcome, bool) {
	switch {
	case WinningMove(b, Machine):
		return MachineWon, true
	case WinningMove(b, Player):
		return PlayerWon, true
	case b.IsFull():
		return Draw, true
	default:
		return NoOutcome, false
	}
}

// MachineMove picks the machine's column by searching depth plies. The
// caller applies the drop.
func MachineMove(b *Board, depth int) (int, error) {
	if depth < 0 {
		return NoColumn, ErrInvalidDepth
	}
	if len(b.ValidLocations()) == 0 {
		return NoColumn, ErrNoLegalMove
	}
	s := NewSearcher(time.Now().UnixNano())
	return s.Minimax(b, depth, true).Column, nil
}
