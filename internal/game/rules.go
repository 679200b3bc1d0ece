package game

// Coord addresses a cell, row 0 being the floor.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// directions holds the step of each window orientation: horizontal,
// vertical, up-right diagonal and down-right diagonal.
var directions = [4]Coord{{0, 1}, {1, 0}, {1, 1}, {-1, 1}}

// eachWindow calls fn for every WindowLength-long line on a rows x cols
// board, stopping early when fn returns false.
func eachWindow(rows, cols int, fn func(w [WindowLength]Coord) bool) {
	for _, d := range directions {
		for r := 0; r < rows; r++ {
			for c := 0; c < cols; c++ {
				endRow := r + d.Row*(WindowLength-1)
				endCol := c + d.Col*(WindowLength-1)
				if endRow < 0 || endRow >= rows || endCol >= cols {
					continue
				}
				var w [WindowLength]Coord
				for i := range w {
					w[i] = Coord{Row: r + d.Row*i, Col: c + d.Col*i}
				}
				if !fn(w) {
					return
				}
			}
		}
	}
}

func (b *Board) window(w [WindowLength]Coord) [WindowLength]Cell {
	var cells [WindowLength]Cell
	for i, p := range w {
		cells[i] = b.cells[p.Row][p.Col]
	}
	return cells
}

// WinningLine returns the first window completely held by side.
func WinningLine(b *Board, side Side) ([]Coord, bool) {
	var line []Coord
	piece := side.Piece()
	eachWindow(b.rows, b.cols, func(w [WindowLength]Coord) bool {
		for _, p := range w {
			if b.cells[p.Row][p.Col] != piece {
				return true
			}
		}
		line = w[:]
		return false
	})
	return line, line != nil
}

// WinningMove reports whether side has four in a row anywhere on the board.
func WinningMove(b *Board, side Side) bool {
	_, won := WinningLine(b, side)
	return won
}

// IsTerminal reports a won or drawn position.
func IsTerminal(b *Board) bool {
	return WinningMove(b, Player) || WinningMove(b, Machine) || b.IsFull()
}
