package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultRows    = 6
	DefaultColumns = 7
	WindowLength   = 4
)

// Cell is the content of a single board square.
type Cell uint8

const (
	Empty Cell = iota
	PlayerPiece
	MachinePiece
)

func (c Cell) String() string {
	switch c {
	case PlayerPiece:
		return "P"
	case MachinePiece:
		return "M"
	default:
		return "."
	}
}

// Side is whoever is moving. Its numeric value matches the Cell it places.
type Side uint8

const (
	Player Side = iota + 1
	Machine
)

func (s Side) Piece() Cell { return Cell(s) }

func (s Side) Opponent() Side {
	if s == Player {
		return Machine
	}
	return Player
}

func (s Side) String() string {
	switch s {
	case Player:
		return "player"
	case Machine:
		return "machine"
	default:
		return "none"
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

var (
	ErrColumnFull        = errors.New("column is full")
	ErrInvalidColumn     = errors.New("invalid column")
	ErrInvalidDimensions = errors.New("board dimensions must be positive")
	ErrNoLegalMove       = errors.New("no legal move available")
)

// Board is a fixed rows x cols grid. Row 0 is the floor.
type Board struct {
	rows, cols int
	cells      [][]Cell
}

func NewBoard(rows, cols int) *Board {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("game: invalid board size %dx%d", rows, cols))
	}
	cells := make([][]Cell, rows)
	for r := range cells {
		cells[r] = make([]Cell, cols)
	}
	return &Board{rows: rows, cols: cols, cells: cells}
}

func (b *Board) Rows() int { return b.rows }

func (b *Board) Cols() int { return b.cols }

func (b *Board) CenterColumn() int { return b.cols / 2 }

func (b *Board) At(row, col int) Cell { return b.cells[row][col] }

// IsValidLocation reports whether col accepts another piece. Out-of-range
// columns are simply not valid.
func (b *Board) IsValidLocation(col int) bool {
	if col < 0 || col >= b.cols {
		return false
	}
	return b.cells[b.rows-1][col] == Empty
}

// NextOpenRow returns the lowest empty row of col. The column must not be full.
func (b *Board) NextOpenRow(col int) int {
	for r := 0; r < b.rows; r++ {
		if b.cells[r][col] == Empty {
			return r
		}
	}
	panic(fmt.Sprintf("game: next open row requested for full column %d", col))
}

// Drop places side's piece at (row, col) without re-checking the cell.
func (b *Board) Drop(row, col int, side Side) {
	b.cells[row][col] = side.Piece()
}

func (b *Board) ValidLocations() []int {
	cols := make([]int, 0, b.cols)
	for c := 0; c < b.cols; c++ {
		if b.IsValidLocation(c) {
			cols = append(cols, c)
		}
	}
	return cols
}

func (b *Board) IsFull() bool {
	for c := 0; c < b.cols; c++ {
		if b.cells[b.rows-1][c] == Empty {
			return false
		}
	}
	return true
}

func (b *Board) Copy() *Board {
	dest := NewBoard(b.rows, b.cols)
	for r := 0; r < b.rows; r++ {
		copy(dest.cells[r], b.cells[r])
	}
	return dest
}

// Count returns how many pieces side has on the board.
func (b *Board) Count(side Side) int {
	n := 0
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			if b.cells[r][c] == side.Piece() {
				n++
			}
		}
	}
	return n
}

// String renders the board top row first, one line per row.
func (b *Board) String() string {
	var sb strings.Builder
	for r := b.rows - 1; r >= 0; r-- {
		for c := 0; c < b.cols; c++ {
			sb.WriteString(b.cells[r][c].String())
		}
		if r > 0 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// ParseBoard is the inverse of String: lines are given top row first using
// '.', 'P' and 'M'. Gravity is not checked.
func ParseBoard(lines ...string) (*Board, error) {
	if len(lines) == 0 || len(lines[0]) == 0 {
		return nil, ErrInvalidDimensions
	}
	b := NewBoard(len(lines), len(lines[0]))
	for i, line := range lines {
		if len(line) != b.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(line), b.cols)
		}
		r := b.rows - 1 - i
		for c, ch := range line {
			switch ch {
			case '.':
			case 'P':
				b.cells[r][c] = PlayerPiece
			case 'M':
				b.cells[r][c] = MachinePiece
			default:
				return nil, fmt.Errorf("row %d: unexpected cell %q", i, ch)
			}
		}
	}
	return b, nil
}

type boardJSON struct {
	Rows  int     `json:"rows"`
	Cols  int     `json:"cols"`
	Cells [][]int `json:"cells"`
}

// MarshalJSON emits cells bottom row first as 0 (empty), 1 (player), 2 (machine).
func (b *Board) MarshalJSON() ([]byte, error) {
	cells := make([][]int, b.rows)
	for r := range cells {
		cells[r] = make([]int, b.cols)
		for c := range cells[r] {
			cells[r][c] = int(b.cells[r][c])
		}
	}
	return json.Marshal(boardJSON{Rows: b.rows, Cols: b.cols, Cells: cells})
}
