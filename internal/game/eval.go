package game

const (
	scoreFour       = 100
	scoreThree      = 5
	scoreTwo        = 2
	penaltyOppThree = 4
	centerWeight    = 6
)

// EvaluateWindow scores four cells from side's point of view.
func EvaluateWindow(window [WindowLength]Cell, side Side) int {
	own, opp, empty := 0, 0, 0
	for _, cell := range window {
		switch cell {
		case side.Piece():
			own++
		case Empty:
			empty++
		default:
			opp++
		}
	}

	score := 0
	if own == 4 {
		score += scoreFour
	} else if own == 3 && empty == 1 {
		score += scoreThree
	} else if own == 2 && empty == 2 {
		score += scoreTwo
	}
	// A window can't hold three of each side, so this never stacks with the
	// bonus above.
	if opp == 3 && empty == 1 {
		score -= penaltyOppThree
	}
	return score
}

// ScorePosition sums EvaluateWindow over every window on the board and adds
// a bonus for side's pieces in the center column. The value is only
// meaningful compared with sibling positions.
func ScorePosition(b *Board, side Side) int {
	score := 0
	center := b.CenterColumn()
	for r := 0; r < b.rows; r++ {
		if b.cells[r][center] == side.Piece() {
			score += centerWeight
		}
	}

	eachWindow(b.rows, b.cols, func(w [WindowLength]Coord) bool {
		score += EvaluateWindow(b.window(w), side)
		return true
	})
	return score
}
